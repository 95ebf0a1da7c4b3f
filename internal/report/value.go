// Package report models a single NLU evaluation report: an ordered table of
// labels, each carrying a metric→value mapping, plus non-tabular metadata
// such as a top-level accuracy figure.
package report

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind discriminates the value tag.
type Kind int

const (
	KindMissing Kind = iota // no value recorded for this cell
	KindNumber              // float64 payload, participates in diffing
	KindText                // display-only payload, e.g. confused_with
)

// Value is a tagged metric cell: Number, Text, or Missing. A Missing cell is
// distinct from a zero Number and from an empty Text in all comparisons.
type Value struct {
	kind Kind
	num  float64
	text string
}

// Missing returns the explicit missing marker.
func Missing() Value { return Value{} }

// Number returns a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Text returns a categorical value.
func Text(s string) Value { return Value{kind: KindText, text: s} }

func (v Value) Kind() Kind      { return v.kind }
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// Number returns the numeric payload; ok is false unless the tag is Number.
func (v Value) Number() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Text returns the text payload; ok is false unless the tag is Text.
func (v Value) Text() (string, bool) {
	return v.text, v.kind == KindText
}

// Sub subtracts b from a. Any non-numeric operand fails closed to Missing;
// a missing baseline must never read as "no change".
func Sub(a, b Value) Value {
	av, aok := a.Number()
	bv, bok := b.Number()
	if !aok || !bok {
		return Missing()
	}
	return Number(av - bv)
}

// String renders the value for logs and error messages. Table formatting
// lives in the render package.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindText:
		return v.text
	default:
		return "N/A"
	}
}

// MarshalJSON emits numbers as numbers, text as strings, and Missing as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return json.Marshal(v.num)
	case KindText:
		return json.Marshal(v.text)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a number, a string, or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := valueOf(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// valueOf converts a decoded JSON scalar into a Value.
func valueOf(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Missing(), nil
	case float64:
		return Number(x), nil
	case string:
		return Text(x), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Missing(), fmt.Errorf("metric value %q is not numeric: %w", x.String(), err)
		}
		return Number(f), nil
	}
	return Missing(), fmt.Errorf("metric value %v (%T) is neither number, string nor null", raw, raw)
}
