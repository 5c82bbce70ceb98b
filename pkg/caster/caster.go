// Package caster converts values to and from single-line JSON text.
package caster

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

type Caster[T any] interface {
	From(string) (T, error)
	To(T) (string, error)
}

// JSONCaster writes compact JSON without HTML escaping, so "<" and "&" in
// names and URLs come out as is.
type JSONCaster[T any] struct{}

func (jc JSONCaster[T]) From(data string) (T, error) {
	var v T
	err := json.Unmarshal([]byte(data), &v)
	return v, errors.Wrap(err, "error decoding json")
}

func (jc JSONCaster[T]) To(v T) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", errors.Wrap(err, "error encoding json")
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
