package codec

import "github.com/vmihailenco/msgpack/v5"

// Msgpack caches values as vmihailenco/msgpack/v5 payloads.
// Use `msgpack:"fieldName"` tags if you need explicit control.
func Msgpack[T any]() Codec[T, Blob[T]] {
	return Opaque[T](msgpackFormat[T]{})
}

type msgpackFormat[T any] struct{}

func (msgpackFormat[T]) Name() string { return "msgpack" }

func (msgpackFormat[T]) Marshal(v *T) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (msgpackFormat[T]) Unmarshal(b []byte) (T, error) {
	var v T
	err := msgpack.Unmarshal(b, &v)
	return v, err
}
