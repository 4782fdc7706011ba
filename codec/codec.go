// Package codec converts items to and from their stored byte form.
//
// A codec must round-trip logical content: Decode(Encode(v)) compares equal
// to v for the types the caller stores. Byte-identical re-encoding is only
// required when the encoded form is used for identity (set membership).
package codec

import "encoding/json"

// Codec encodes and decodes a single item type.
type Codec[T any] interface {
	Encode(v T) ([]byte, error)
	Decode(b []byte) (T, error)
}

type jsonCodec[T any] struct{}

// JSON returns a Codec backed by encoding/json. Struct fields honor the
// usual json tags. Note that JSON map encoding sorts keys, which keeps the
// encoded form stable enough for set identity of plain values.
func JSON[T any]() Codec[T] { return jsonCodec[T]{} }

func (jsonCodec[T]) Encode(v T) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec[T]) Decode(b []byte) (T, error) {
	var v T
	err := json.Unmarshal(b, &v)
	return v, err
}

// Raw passes []byte items through unchanged.
func Raw() Codec[[]byte] { return rawCodec{} }

type rawCodec struct{}

func (rawCodec) Encode(v []byte) ([]byte, error) { return v, nil }
func (rawCodec) Decode(b []byte) ([]byte, error) { return b, nil }
