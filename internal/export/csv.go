// Package export turns record collections into CSV tables.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
)

// WriteCSV writes records as a table. The header is the JSON field names of
// the first record in declaration order; every row lists its own values for
// those fields. Nested objects and arrays are JSON-encoded into one cell.
// Nothing is written for an empty slice.
func WriteCSV[T any](w io.Writer, records []T) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([][]field, 0, len(records))
	for i, rec := range records {
		fields, err := orderedFields(rec)
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		rows = append(rows, fields)
	}

	header := make([]string, len(rows[0]))
	for i, f := range rows[0] {
		header[i] = f.key
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, fields := range rows {
		values := make(map[string]json.RawMessage, len(fields))
		for _, f := range fields {
			values[f.key] = f.value
		}
		record := make([]string, len(header))
		for i, key := range header {
			record[i] = cell(values[key])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type field struct {
	key   string
	value json.RawMessage
}

// orderedFields reads the top-level keys of v's JSON object in output order.
func orderedFields(v any) ([]field, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected an object, got %s", data)
	}

	var fields []field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		fields = append(fields, field{key: key, value: raw})
	}
	return fields, nil
}

func cell(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}
