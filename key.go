package archcache

import (
	"bytes"
	"fmt"
	"strconv"
	"unsafe"
)

// Key is a byte key naming one cached value within a kind. Keys are taken
// as-is: no normalization, case folding or length limit is applied, so callers
// own canonical formatting.
type Key struct {
	b []byte
}

// BorrowBytes uses b without copying. The caller must not modify b while the
// key is in use.
func BorrowBytes(b []byte) Key { return Key{b: b} }

// OwnBytes copies b.
func OwnBytes(b []byte) Key { return Key{b: append([]byte(nil), b...)} }

// KeyString borrows the bytes of s. They are read-only.
func KeyString(s string) Key {
	return Key{b: unsafe.Slice(unsafe.StringData(s), len(s))}
}

// Keyf formats a new owned key, e.g. Keyf("user:%d", id).
func Keyf(format string, args ...any) Key {
	return Key{b: fmt.Appendf(nil, format, args...)}
}

// ID returns the canonical "<kind>:<id>" key.
func ID(kind string, id uint64) Key {
	b := make([]byte, 0, len(kind)+21)
	b = append(b, kind...)
	b = append(b, ':')
	return Key{b: strconv.AppendUint(b, id, 10)}
}

// Bytes returns the key bytes. They must not be modified.
func (k Key) Bytes() []byte  { return k.b }
func (k Key) String() string { return string(k.b) }
func (k Key) Len() int       { return len(k.b) }

// Owned returns a key that no longer shares memory with its source.
func (k Key) Owned() Key { return OwnBytes(k.b) }

func (k Key) Equal(o Key) bool { return bytes.Equal(k.b, o.b) }
