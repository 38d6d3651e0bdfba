package archive

import (
	"unsafe"

	"github.com/unkn0wn-root/archcache/internal/wire"
)

// alloc returns a zeroed byte slice of length n whose backing array is a
// []uint64, which the Go allocator always places on an 8-byte boundary. Heap
// objects never move, so the alignment holds for the slice's whole lifetime.
func alloc(n int) []byte {
	if n == 0 {
		return []byte{}
	}
	words := make([]uint64, (n+wire.Align-1)/wire.Align)
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(words))), n)
}

// IsAligned reports whether b starts on an 8-byte boundary.
func IsAligned(b []byte) bool {
	if len(b) == 0 {
		return true
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))%wire.Align == 0
}

// Aligned returns b unchanged when it is already aligned, otherwise a copy
// placed in aligned memory.
func Aligned(b []byte) []byte {
	if IsAligned(b) {
		return b
	}
	out := alloc(len(b))
	copy(out, b)
	return out
}
