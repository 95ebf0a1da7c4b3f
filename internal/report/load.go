package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// LoadError reports a malformed input report or an invalid combination
// request (e.g. duplicate result-set names). It is detected eagerly at load
// time and propagates uncaught to the caller.
type LoadError struct {
	Msg string
}

func (e *LoadError) Error() string { return e.Msg }

// NewLoadError builds a LoadError from a format string.
func NewLoadError(format string, args ...any) *LoadError {
	return &LoadError{Msg: fmt.Sprintf(format, args...)}
}

// member preserves JSON object order, which encoding/json maps discard.
// val is one of: Value (scalar cell), or []member (nested object).
type member struct {
	key string
	val any
}

// Parse loads a raw report into a named ResultSet.
//
// Top-level object entries become label rows; top-level scalars (e.g. an
// accuracy summary) become metadata. A report whose rows are all nested one
// level deeper (every label value is itself an object of objects, as in
// response-selection reports) is flattened by one level. Metric sets are
// unioned across labels; absent cells read as the explicit Missing marker.
func Parse(data []byte, name string) (*ResultSet, error) {
	members, err := decodeObject(data)
	if err != nil {
		return nil, err
	}

	rs := &ResultSet{Name: name, Table: NewTable(), Metadata: map[string]Value{}}

	var objects []member
	for _, m := range members {
		switch v := m.val.(type) {
		case Value:
			rs.Metadata[m.key] = v
		case []member:
			objects = append(objects, m)
		default:
			return nil, NewLoadError("report entry %q is neither a metric mapping nor a scalar", m.key)
		}
	}

	for _, obj := range flattenNested(objects) {
		row, ok := obj.val.([]member)
		if !ok {
			return nil, NewLoadError("label %q is not a mapping of metric to value", obj.key)
		}
		cells := make(map[string]Value, len(row))
		order := make([]string, 0, len(row))
		for _, cell := range row {
			v, ok := cell.val.(Value)
			if !ok {
				return nil, NewLoadError("label %q metric %q is not a scalar value", obj.key, cell.key)
			}
			if _, seen := cells[cell.key]; !seen {
				order = append(order, cell.key)
			}
			cells[cell.key] = v
		}
		rs.Table.AddRow(obj.key, cells, order)
	}

	fill(rs.Table)
	return rs, nil
}

// flattenNested unwraps the one-level-deeper report shape: when every
// object-valued entry contains only object values itself, the inner objects
// are the real label rows.
func flattenNested(objects []member) []member {
	if len(objects) == 0 {
		return nil
	}
	for _, obj := range objects {
		inner := obj.val.([]member)
		if len(inner) == 0 {
			return objects
		}
		for _, m := range inner {
			if _, ok := m.val.([]member); !ok {
				return objects
			}
		}
	}
	var rows []member
	for _, obj := range objects {
		rows = append(rows, obj.val.([]member)...)
	}
	return rows
}

// fill materializes the population invariant: every row carries every metric,
// absent ones as Missing.
func fill(t *Table) {
	for _, label := range t.Labels {
		for _, metric := range t.Metrics {
			if _, ok := t.cells[label][metric]; !ok {
				t.cells[label][metric] = Missing()
			}
		}
	}
}

// decodeObject parses a JSON object token stream, keeping key order.
func decodeObject(data []byte) ([]member, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, NewLoadError("report is not valid JSON: %v", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, NewLoadError("report is not a JSON object (got %v)", tok)
	}
	members, err := decodeMembers(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, NewLoadError("trailing data after report object")
	}
	return members, nil
}

// decodeMembers reads object members up to and including the closing brace.
func decodeMembers(dec *json.Decoder) ([]member, error) {
	var members []member
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, NewLoadError("report is not valid JSON: %v", err)
		}
		if d, ok := tok.(json.Delim); ok && d == '}' {
			return members, nil
		}
		key := tok.(string)

		val, err := dec.Token()
		if err != nil {
			return nil, NewLoadError("report is not valid JSON: %v", err)
		}
		switch v := val.(type) {
		case json.Delim:
			if v != '{' {
				return nil, NewLoadError("report entry %q holds an array; expected mapping or scalar", key)
			}
			nested, err := decodeMembers(dec)
			if err != nil {
				return nil, err
			}
			members = append(members, member{key: key, val: nested})
		case bool:
			return nil, NewLoadError("report entry %q holds a boolean; expected mapping or scalar", key)
		default:
			parsed, err := valueOf(v)
			if err != nil {
				return nil, NewLoadError("report entry %q: %v", key, err)
			}
			members = append(members, member{key: key, val: parsed})
		}
	}
}
