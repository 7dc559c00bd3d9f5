// Package rows filters flat records by case-insensitive substring match.
//
// A record is matched against its canonical serialization: a JSON object with
// keys in sorted order and values in their literal form. The query therefore
// matches field names as well as values, the same way a table search box
// over JSON-stringified rows does.
package rows

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Record is one row of tabular data: field name to primitive value.
type Record map[string]any

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return maps.Clone(r)
}

// Filter returns the records whose serialization contains query, ignoring
// case. Input order is preserved. An empty query returns every record.
func Filter(records []Record, query string) []Record {
	result := make([]Record, 0, len(records))
	if query == "" {
		return append(result, records...)
	}
	q := strings.ToLower(query)
	for _, r := range records {
		if strings.Contains(strings.ToLower(Serialize(r)), q) {
			result = append(result, r)
		}
	}
	return result
}

// Matches reports whether a single record would be kept by Filter.
func Matches(r Record, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(Serialize(r)), strings.ToLower(query))
}

// Serialize returns the canonical text of a record.
//
// Keys are sorted. Strings are JSON-quoted, numbers and booleans keep their
// literal form. Values that cannot be encoded as JSON fall back to their fmt
// representation as a string, so Serialize never fails.
func Serialize(r Record) string {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range slices.Sorted(maps.Keys(r)) {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeValue(&buf, k)
		buf.WriteByte(':')
		writeValue(&buf, r[k])
	}
	buf.WriteByte('}')
	return buf.String()
}

// writeValue encodes v without HTML escaping and without the encoder's
// trailing newline.
func writeValue(buf *bytes.Buffer, v any) {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		tmp.Reset()
		_ = enc.Encode(fmt.Sprint(v))
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte{'\n'}))
}
