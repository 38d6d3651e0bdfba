package archive

import (
	"encoding/binary"

	"github.com/unkn0wn-root/archcache/internal/wire"
)

// NodeKind identifies the layout of a node body.
type NodeKind uint8

const (
	KindStruct NodeKind = iota + 1
	KindList
	KindString
	KindBytes
)

func (k NodeKind) String() string {
	switch k {
	case KindStruct:
		return "struct"
	case KindList:
		return "list"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	default:
		return "invalid"
	}
}

// Tag identifies what a slot payload holds.
type Tag uint8

const (
	TagBool Tag = iota + 1
	TagInt
	TagUint
	TagFloat
	TagRef
)

func (t Tag) String() string {
	switch t {
	case TagBool:
		return "bool"
	case TagInt:
		return "int"
	case TagUint:
		return "uint"
	case TagFloat:
		return "float"
	case TagRef:
		return "ref"
	default:
		return "invalid"
	}
}

const (
	headerSize     = wire.HeaderSize
	nodeHeaderSize = 8
	slotSize       = 16
	align          = wire.Align

	// maxSize is the largest archive the u32 offsets can address.
	maxSize = 1<<32 - align
)

func pad(n uint64) uint64 { return (n + align - 1) &^ (align - 1) }

func u32(b []byte, off int) uint32 { return binary.LittleEndian.Uint32(b[off:]) }
func u64(b []byte, off int) uint64 { return binary.LittleEndian.Uint64(b[off:]) }

// bodySize returns the body length of a node with the given kind and count.
func bodySize(kind NodeKind, count uint32) (uint64, bool) {
	switch kind {
	case KindStruct, KindList:
		return uint64(count) * slotSize, true
	case KindString, KindBytes:
		return pad(uint64(count)), true
	default:
		return 0, false
	}
}
