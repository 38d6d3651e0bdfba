package codec

import (
	"github.com/fxamacker/cbor/v2"
)

// cborFormat serializes values using fxamacker/cbor.
// Construct with NewCBOR or MustCBOR.
//
// Use deterministic=true for canonical encoding (RFC 8949 Core Deterministic)
// when byte-for-byte stable payloads matter. Otherwise
// PreferredUnsortedEncOptions are used. Time values are encoded as
// RFC3339Nano.
type cborFormat[T any] struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

// NewCBOR constructs a codec caching values as CBOR payloads.
func NewCBOR[T any](deterministic bool) (Codec[T, Blob[T]], error) {
	var eo cbor.EncOptions
	if deterministic {
		eo = cbor.CoreDetEncOptions()
	} else {
		eo = cbor.PreferredUnsortedEncOptions()
	}
	eo.Time = cbor.TimeRFC3339Nano

	em, err := eo.EncMode()
	if err != nil {
		return nil, err
	}
	dm, err := (cbor.DecOptions{}).DecMode()
	if err != nil {
		return nil, err
	}
	return Opaque[T](cborFormat[T]{enc: em, dec: dm}), nil
}

// MustCBOR is like NewCBOR but panics on error.
// Handy for package-level policy declarations.
func MustCBOR[T any](deterministic bool) Codec[T, Blob[T]] {
	c, err := NewCBOR[T](deterministic)
	if err != nil {
		panic(err)
	}
	return c
}

func (cborFormat[T]) Name() string { return "cbor" }

func (c cborFormat[T]) Marshal(v *T) ([]byte, error) {
	return c.enc.Marshal(v)
}

func (c cborFormat[T]) Unmarshal(b []byte) (T, error) {
	var v T
	err := c.dec.Unmarshal(b, &v)
	return v, err
}
