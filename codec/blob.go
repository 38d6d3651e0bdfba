package codec

import (
	"errors"
	"fmt"

	"github.com/unkn0wn-root/archcache/archive"
)

var ErrFormat = errors.New("codec: payload format mismatch")

// Format is a conventional byte serializer used to cache types that have no
// archive layout at all. The value travels as an opaque payload next to the
// format name.
type Format[T any] interface {
	Name() string
	Marshal(v *T) ([]byte, error)
	Unmarshal(b []byte) (T, error)
}

// BlobShape is the layout of every opaque payload: {format, payload}.
var BlobShape = archive.StructShape(archive.StringShape, archive.BytesShape)

// Blob is the archived view of an opaque payload. Format and Payload read in
// place; Deserialize runs the format's decoder.
type Blob[T any] struct {
	s archive.Struct
	f Format[T]
}

func (b Blob[T]) Format() string { return b.s.String(0) }

// Payload aliases the archive; do not modify it.
func (b Blob[T]) Payload() []byte { return b.s.Bytes(1) }

func (b Blob[T]) Deserialize() (T, error) {
	if got := b.Format(); got != b.f.Name() {
		var zero T
		return zero, fmt.Errorf("%w: archived as %q, decoding as %q", ErrFormat, got, b.f.Name())
	}
	return b.f.Unmarshal(b.Payload())
}

// Opaque adapts any Format into a Codec with a Blob view.
func Opaque[T any](f Format[T]) Codec[T, Blob[T]] {
	ad := AdapterFunc[T](func(b *archive.Builder, v *T) (archive.Ref, error) {
		p, err := f.Marshal(v)
		if err != nil {
			return archive.Ref{}, err
		}
		data := b.Bytes(p)
		name := b.String(f.Name())
		return b.Struct(archive.Child(name), archive.Child(data)), nil
	})
	return Adapt[T, Blob[T]](BlobShape, ad, func(root archive.Node) Blob[T] {
		return Blob[T]{s: root.Struct(), f: f}
	})
}
