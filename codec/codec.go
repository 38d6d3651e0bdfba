// Package codec binds value types to their archived views.
//
// A Codec[T, A] tells the cache three things about a cacheable type: the
// Shape untrusted archives must match, how to lay out a *T (natively or
// through an Adapter), and how to bind a validated root node to the view A.
// The view owns the way back: A.Deserialize() materializes an owned T.
package codec

import "github.com/unkn0wn-root/archcache/archive"

// View is the archived form of a T, read in place.
type View[T any] interface {
	Deserialize() (T, error)
}

// Codec encodes T values into archives and binds archives to A views.
type Codec[T any, A View[T]] interface {
	Shape() *archive.Shape
	Marshaler(v *T) archive.Marshaler
	Bind(root archive.Node) A
}
