package parser

import (
	"bytes"
	"encoding/json"
)

// Field is one (column, value) pair exactly as it appeared in the upload.
type Field struct {
	Name  string
	Value string
}

// Record is a single tabular row. Fields keep header order so the row can be
// replayed to the advisor the way it was read.
type Record struct {
	Fields []Field
}

// Get returns the value of the last field named name.
func (r Record) Get(name string) (string, bool) {
	for i := len(r.Fields) - 1; i >= 0; i-- {
		if r.Fields[i].Name == name {
			return r.Fields[i].Value, true
		}
	}
	return "", false
}

// Values returns the row values in column order.
func (r Record) Values() []string {
	out := make([]string, 0, len(r.Fields))
	for _, f := range r.Fields {
		out = append(out, f.Value)
	}
	return out
}

// MarshalJSON renders the row as an object in header order. A repeated column
// is written once, at its first position, with its last value.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	seen := make(map[string]bool, len(r.Fields))
	first := true
	for _, f := range r.Fields {
		if seen[f.Name] {
			continue
		}
		seen[f.Name] = true
		v, _ := r.Get(f.Name)
		k, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// NewRecord builds a record from a header row and a value row. Missing values
// become "" and values past the header are dropped.
func NewRecord(header, values []string) Record {
	fields := make([]Field, 0, len(header))
	for i, name := range header {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		fields = append(fields, Field{Name: name, Value: v})
	}
	return Record{Fields: fields}
}

func (r Record) blank() bool {
	for _, f := range r.Fields {
		if trimSpace(f.Value) != "" {
			return false
		}
	}
	return true
}
