package codec

import "github.com/unkn0wn-root/archcache/archive"

type native[T archive.Marshaler, A View[T]] struct {
	shape *archive.Shape
	bind  func(archive.Node) A
}

// Native is the codec for types that implement archive.Marshaler themselves.
func Native[T archive.Marshaler, A View[T]](shape *archive.Shape, bind func(archive.Node) A) Codec[T, A] {
	return native[T, A]{shape: shape, bind: bind}
}

func (c native[T, A]) Shape() *archive.Shape            { return c.shape }
func (c native[T, A]) Marshaler(v *T) archive.Marshaler { return *v }
func (c native[T, A]) Bind(root archive.Node) A         { return c.bind(root) }
