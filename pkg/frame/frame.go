// Package frame holds the row-shaped records produced by the data-access layer.
package frame

import (
	"bytes"
	"encoding/json"
)

type naType struct{}

func (naType) String() string { return "<NA>" }

// NA marks a value that is absent from the source data.
var NA = naType{}

type Field struct {
	Name  string
	Value any
}

// Record is an ordered set of named values. Field order is column order and is
// kept when the record is encoded to JSON.
type Record []Field

// Map builds a new record applying fn to every value.
func (r Record) Map(fn func(any) any) Record {
	out := make(Record, len(r))
	for i, f := range r {
		out[i] = Field{Name: f.Name, Value: fn(f.Value)}
	}
	return out
}

func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Builder accumulates fields in insertion order.
type Builder struct {
	rec Record
}

func NewBuilder(size int) *Builder {
	return &Builder{rec: make(Record, 0, size)}
}

func (b *Builder) Add(name string, value any) *Builder {
	b.rec = append(b.rec, Field{Name: name, Value: value})
	return b
}

func (b *Builder) Record() Record {
	return b.rec
}
