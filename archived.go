package archcache

import (
	"github.com/unkn0wn-root/archcache/archive"
	"github.com/unkn0wn-root/archcache/codec"
)

// Archived owns one archive buffer together with its bound view. It is only
// ever built from bytes that were validated or that this process encoded.
type Archived[T any, A codec.View[T]] struct {
	arc  archive.Archive
	view A
}

// Validated checks untrusted bytes (anything read from the store) against the
// codec's shape before binding the view. Unaligned input is copied first.
func Validated[T any, A codec.View[T]](c codec.Codec[T, A], buf []byte) (*Archived[T, A], error) {
	a, err := validated(c, buf)
	if err != nil {
		return nil, newError(KindValidation, "validate", "", err)
	}
	return a, nil
}

func validated[T any, A codec.View[T]](c codec.Codec[T, A], buf []byte) (*Archived[T, A], error) {
	arc, err := archive.Validate(buf, c.Shape())
	if err != nil {
		return nil, err
	}
	return &Archived[T, A]{arc: arc, view: c.Bind(arc.Root())}, nil
}

// Trusted binds bytes this process just encoded, skipping validation. Never
// pass it bytes that went through the store.
func Trusted[T any, A codec.View[T]](c codec.Codec[T, A], buf []byte) *Archived[T, A] {
	arc := archive.Trust(archive.Aligned(buf))
	return &Archived[T, A]{arc: arc, view: c.Bind(arc.Root())}
}

// Bytes returns the archive buffer. It must not be modified.
func (a *Archived[T, A]) Bytes() []byte { return a.arc.Bytes() }

func (a *Archived[T, A]) Len() int { return a.arc.Len() }

// Archive exposes the untyped archive, e.g. for archive.Describe.
func (a *Archived[T, A]) Archive() archive.Archive { return a.arc }

// View reads the value in place.
func (a *Archived[T, A]) View() A { return a.view }

// Deserialize materializes an owned T from the view.
func (a *Archived[T, A]) Deserialize() (T, error) {
	v, err := a.view.Deserialize()
	if err != nil {
		var zero T
		return zero, newError(KindDeserialization, "deserialize", "", err)
	}
	return v, nil
}
