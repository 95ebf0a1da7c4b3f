package report

import (
	"encoding/json"
	"testing"
)

func TestSub_Numbers(t *testing.T) {
	d := Sub(Number(0.85), Number(0.80))
	got, ok := d.Number()
	if !ok {
		t.Fatal("Sub of two numbers should be a number")
	}
	if diff := got - 0.05; diff > 1e-12 || diff < -1e-12 {
		t.Errorf("Sub = %v, want 0.05", got)
	}
}

func TestSub_FailsClosed(t *testing.T) {
	cases := []struct {
		name string
		a, b Value
	}{
		{"missing left", Missing(), Number(1)},
		{"missing right", Number(1), Missing()},
		{"text left", Text("other_intent"), Number(1)},
		{"text right", Number(1), Text("other_intent")},
		{"both missing", Missing(), Missing()},
	}
	for _, c := range cases {
		if got := Sub(c.a, c.b); !got.IsMissing() {
			t.Errorf("%s: Sub = %v, want Missing", c.name, got)
		}
	}
}

func TestSub_MissingIsNotZero(t *testing.T) {
	// A missing operand must never read as a zero diff.
	d := Sub(Missing(), Number(0))
	if n, ok := d.Number(); ok {
		t.Errorf("Sub(Missing, 0) = %v, want Missing", n)
	}
}

func TestValue_JSONRoundTrip(t *testing.T) {
	in := map[string]Value{
		"precision":    Number(0.9182),
		"support":      Number(42),
		"confused_with": Text("greet"),
		"recall":       Missing(),
	}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out map[string]Value
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if v, ok := out["support"].Number(); !ok || v != 42 {
		t.Errorf("support = %v, want 42", out["support"])
	}
	if s, ok := out["confused_with"].Text(); !ok || s != "greet" {
		t.Errorf("confused_with = %v, want greet", out["confused_with"])
	}
	if !out["recall"].IsMissing() {
		t.Errorf("recall = %v, want Missing", out["recall"])
	}
}

func TestValue_UnmarshalRejectsCompound(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte(`[1,2]`), &v); err == nil {
		t.Error("unmarshal of array should fail")
	}
	if err := json.Unmarshal([]byte(`true`), &v); err == nil {
		t.Error("unmarshal of boolean should fail")
	}
}

func TestValue_MarshalMissingAsNull(t *testing.T) {
	data, err := json.Marshal(Missing())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "null" {
		t.Errorf("Missing marshals to %s, want null", data)
	}
}
