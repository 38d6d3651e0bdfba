package codec

import "encoding/json"

// JSON caches values as encoding/json payloads.
func JSON[T any]() Codec[T, Blob[T]] {
	return Opaque[T](jsonFormat[T]{})
}

type jsonFormat[T any] struct{}

func (jsonFormat[T]) Name() string                 { return "json" }
func (jsonFormat[T]) Marshal(v *T) ([]byte, error) { return json.Marshal(v) }
func (jsonFormat[T]) Unmarshal(b []byte) (T, error) {
	var v T
	err := json.Unmarshal(b, &v)
	return v, err
}
