package compare

import (
	"bytes"
	"encoding/json"

	"nlucompare/internal/report"
)

// Export is the JSON payload written next to the rendered table: the raw
// per-result-set reports, concatenated and keyed by result-set name. Feeding
// each entry back through report.Parse under its key reproduces the identical
// combined table, so re-combination is idempotent.
//
// Marshaling preserves the canonical set, label and metric orders; a plain
// map would re-sort keys alphabetically and lose the first-seen ordering the
// combiner guarantees.
type Export struct {
	table *Table
}

// MarshalJSON writes {set: {label: {metric: value}}} with Missing cells and
// diff columns omitted.
func (e Export) MarshalJSON() ([]byte, error) {
	if e.table == nil {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, set := range e.table.Sets {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, set); err != nil {
			return nil, err
		}
		if err := e.writeSetReport(&buf, set); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (e Export) writeSetReport(buf *bytes.Buffer, set string) error {
	buf.WriteByte('{')
	first := true
	for _, label := range e.table.Labels {
		row, any := e.rowFor(label, set)
		if !any {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		if err := writeKey(buf, label); err != nil {
			return err
		}
		buf.Write(row)
	}
	buf.WriteByte('}')
	return nil
}

// rowFor renders one label's metric object for a set; any is false when every
// cell is missing, in which case the label is omitted from that set's report
// so the absence survives the round trip.
func (e Export) rowFor(label, set string) ([]byte, bool) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, metric := range e.table.Metrics {
		v := e.table.Cell(label, Column{Metric: metric, Set: set})
		if v.IsMissing() {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		if err := writeKey(&buf, metric); err != nil {
			return nil, false
		}
		data, err := json.Marshal(v)
		if err != nil {
			return nil, false
		}
		buf.Write(data)
	}
	buf.WriteByte('}')
	return buf.Bytes(), !first
}

func writeKey(buf *bytes.Buffer, key string) error {
	data, err := json.Marshal(key)
	if err != nil {
		return err
	}
	buf.Write(data)
	buf.WriteByte(':')
	return nil
}

// ResultSets splits the export back into loadable result sets, one per
// original name, in order. Used by tests and by history round-trips.
func (e Export) ResultSets() ([]*report.ResultSet, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return ParseExport(data)
}

// ParseExport reloads a written export payload into result sets, preserving
// the set order of the document.
func ParseExport(data []byte) ([]*report.ResultSet, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, report.NewLoadError("export is not valid JSON: %v", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, report.NewLoadError("export is not a JSON object")
	}

	var sets []*report.ResultSet
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, report.NewLoadError("export is not valid JSON: %v", err)
		}
		name := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, report.NewLoadError("export entry %q is not valid JSON: %v", name, err)
		}
		rs, err := report.Parse(raw, name)
		if err != nil {
			return nil, err
		}
		sets = append(sets, rs)
	}
	return sets, nil
}
