package codec

import "github.com/unkn0wn-root/archcache/archive"

// Adapter lays out values of a type that does not implement
// archive.Marshaler, typically one owned by another module.
type Adapter[T any] interface {
	Archive(b *archive.Builder, v *T) (archive.Ref, error)
}

// AdapterFunc turns a function into an Adapter.
type AdapterFunc[T any] func(b *archive.Builder, v *T) (archive.Ref, error)

func (f AdapterFunc[T]) Archive(b *archive.Builder, v *T) (archive.Ref, error) { return f(b, v) }

// with is the cast view the encoder sees for adapted values: the value and
// its adapter together behave like a native Marshaler.
type with[T any] struct {
	v  *T
	ad Adapter[T]
}

func (w with[T]) MarshalArchive(b *archive.Builder) (archive.Ref, error) {
	return w.ad.Archive(b, w.v)
}

type adapted[T any, A View[T]] struct {
	shape *archive.Shape
	ad    Adapter[T]
	bind  func(archive.Node) A
}

// Adapt is the codec for types encoded through an external Adapter.
func Adapt[T any, A View[T]](shape *archive.Shape, ad Adapter[T], bind func(archive.Node) A) Codec[T, A] {
	return adapted[T, A]{shape: shape, ad: ad, bind: bind}
}

func (c adapted[T, A]) Shape() *archive.Shape            { return c.shape }
func (c adapted[T, A]) Marshaler(v *T) archive.Marshaler { return with[T]{v: v, ad: c.ad} }
func (c adapted[T, A]) Bind(root archive.Node) A         { return c.bind(root) }
