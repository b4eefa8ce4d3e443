package storage

import (
	"encoding"
	"encoding/json"
)

// Codec converts map keys or values to and from bytes.
// Key codecs must be deterministic: equal keys encode to equal bytes.
type Codec[T any] interface {
	Encode(T) ([]byte, error)
	Decode([]byte) (T, error)
}

// StringCodec stores strings as their raw bytes.
type StringCodec struct{}

func (StringCodec) Encode(s string) ([]byte, error) { return []byte(s), nil }
func (StringCodec) Decode(b []byte) (string, error) { return string(b), nil }

// JSONCodec stores values as JSON. Used for values only; map iteration order
// makes it unsuitable for keys containing maps.
type JSONCodec[T any] struct{}

func (JSONCodec[T]) Encode(v T) ([]byte, error) { return json.Marshal(v) }

func (JSONCodec[T]) Decode(b []byte) (T, error) {
	var v T
	err := json.Unmarshal(b, &v)
	return v, err
}

// BinaryCodec uses a type's own MarshalBinary/UnmarshalBinary.
type BinaryCodec[T any, PT interface {
	*T
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}] struct{}

func (BinaryCodec[T, PT]) Encode(v T) ([]byte, error) { return PT(&v).MarshalBinary() }

func (BinaryCodec[T, PT]) Decode(b []byte) (T, error) {
	var v T
	err := PT(&v).UnmarshalBinary(b)
	return v, err
}
