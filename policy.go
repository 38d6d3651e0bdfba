package archcache

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/unkn0wn-root/archcache/archive"
	"github.com/unkn0wn-root/archcache/codec"
	"github.com/unkn0wn-root/archcache/internal/util"
)

// Policy declares how one kind of value is cached. Each kind declares its own
// policy, typically as a package-level variable next to the type:
//
//	var Profiles = archcache.Policy[Profile, ProfileView]{
//		Kind:  "user_profile",
//		TTL:   10 * time.Minute,
//		Codec: codec.Native[Profile](profileShape, bindProfile),
//	}
//
// There is no registry; kinds never learn about each other.
type Policy[T any, A codec.View[T]] struct {
	// Kind namespaces storage keys ("<kind>:<key>"). Required, and must not
	// contain ':'.
	Kind string

	// TTL handed to the store on every write; 0 means no expiry.
	TTL time.Duration

	Codec codec.Codec[T, A]
}

var (
	errPolicy     = errors.New("archcache: policy needs a Kind and a Codec")
	errPolicyKind = errors.New("archcache: policy Kind must not contain ':'")
)

func (p Policy[T, A]) check() error {
	if p.Kind == "" || p.Codec == nil {
		return errors.WithStack(errPolicy)
	}
	if !util.ValidKind(p.Kind) {
		return errors.Wrapf(errPolicyKind, "kind %q", p.Kind)
	}
	return nil
}

// StorageKey is the exact key sent to the store for k.
func (p Policy[T, A]) StorageKey(k Key) string {
	return util.StorageKey(p.Kind, k.Bytes())
}

// Serialize encodes v into a fresh, aligned archive.
func (p Policy[T, A]) Serialize(v *T) ([]byte, error) {
	return p.serialize(v, 0, "")
}

func (p Policy[T, A]) serialize(v *T, maxSize int, key string) ([]byte, error) {
	if err := p.check(); err != nil {
		return nil, newError(KindSerialization, "serialize", key, err)
	}
	if v == nil {
		return nil, newError(KindSerialization, "serialize", key, errors.New("nil value"))
	}
	buf, err := archive.EncodeLimit(p.Codec.Marshaler(v), maxSize)
	if err != nil {
		return nil, newError(KindSerialization, "serialize", key, err)
	}
	return buf, nil
}
