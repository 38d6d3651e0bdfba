package archive

import (
	"encoding/binary"
	"math"
	"unicode/utf8"

	"github.com/unkn0wn-root/archcache/internal/wire"
)

// Ref points at a node written by a Builder. The zero Ref is "none".
type Ref struct{ off uint32 }

func (r Ref) IsZero() bool { return r.off == 0 }

// Slot is one fixed-size field of a struct or element of a list.
type Slot struct {
	tag  Tag
	bits uint64
	ref  uint32
}

func Bool(v bool) Slot {
	if v {
		return Slot{tag: TagBool, bits: 1}
	}
	return Slot{tag: TagBool}
}

func Int(v int64) Slot     { return Slot{tag: TagInt, bits: uint64(v)} }
func Uint(v uint64) Slot   { return Slot{tag: TagUint, bits: v} }
func Float(v float64) Slot { return Slot{tag: TagFloat, bits: math.Float64bits(v)} }

// Child references a child node. A zero Ref yields None.
func Child(r Ref) Slot { return Slot{tag: TagRef, ref: r.off} }

// None is the absent value of an optional field.
func None() Slot { return Slot{tag: TagRef} }

// Builder writes nodes children-first into one growing aligned region. It is
// the per-encode arena: Encode takes Builders from a pool and resets them, so
// repeated encodes reuse both the byte region and the slot scratch space.
//
// Errors are sticky. Once a write fails every later call returns the zero Ref
// and Finish reports the first error.
type Builder struct {
	buf   []byte
	arena slotArena
	last  uint32
	max   int
	err   error
}

func NewBuilder() *Builder {
	b := &Builder{}
	b.Reset()
	return b
}

// Reset drops all written nodes and scratch slots but keeps their memory.
func (b *Builder) Reset() {
	if b.buf == nil {
		b.buf = alloc(512)
	}
	b.buf = b.buf[:headerSize]
	clear(b.buf)
	b.arena.reset()
	b.last = 0
	b.max = maxSize
	b.err = nil
}

// SetMaxSize caps the size of the finished archive. n <= 0 restores the
// format limit.
func (b *Builder) SetMaxSize(n int) {
	if n <= 0 || n > maxSize {
		n = maxSize
	}
	b.max = n
}

func (b *Builder) Len() int   { return len(b.buf) }
func (b *Builder) Err() error { return b.err }

// Fail records err unless an earlier error is already recorded.
func (b *Builder) Fail(err error) {
	if b.err == nil && err != nil {
		b.err = err
	}
}

// Slots returns n zeroed slots from the builder's scratch arena. The slice is
// only valid until the builder is reset; it is meant for collecting list
// elements before calling List.
func (b *Builder) Slots(n int) []Slot {
	if n <= 0 {
		return nil
	}
	return b.arena.alloc(n)
}

// String writes a UTF-8 string node. Invalid UTF-8 fails the builder with
// ErrNotUTF8 so that every finished archive validates; use Bytes for
// arbitrary data.
func (b *Builder) String(s string) Ref {
	if !utf8.ValidString(s) {
		b.Fail(ErrNotUTF8)
		return Ref{}
	}
	off, ok := b.node(KindString, len(s))
	if !ok {
		return Ref{}
	}
	copy(b.buf[off+nodeHeaderSize:], s)
	return Ref{off: off}
}

func (b *Builder) Bytes(p []byte) Ref {
	off, ok := b.node(KindBytes, len(p))
	if !ok {
		return Ref{}
	}
	copy(b.buf[off+nodeHeaderSize:], p)
	return Ref{off: off}
}

func (b *Builder) Struct(fields ...Slot) Ref { return b.slots(KindStruct, fields) }
func (b *Builder) List(items ...Slot) Ref    { return b.slots(KindList, items) }

func (b *Builder) slots(kind NodeKind, ss []Slot) Ref {
	off, ok := b.node(kind, len(ss))
	if !ok {
		return Ref{}
	}
	pos := int(off) + nodeHeaderSize
	for _, s := range ss {
		b.buf[pos] = byte(s.tag)
		payload := s.bits
		if s.tag == TagRef && s.ref != 0 {
			if s.ref < headerSize || s.ref%align != 0 || s.ref >= off {
				b.Fail(ErrBadRef)
				return Ref{}
			}
			payload = uint64(int64(s.ref) - int64(pos))
		}
		binary.LittleEndian.PutUint64(b.buf[pos+8:], payload)
		pos += slotSize
	}
	return Ref{off: off}
}

// node reserves a zeroed node with its header filled in.
func (b *Builder) node(kind NodeKind, count int) (uint32, bool) {
	if b.err != nil {
		return 0, false
	}
	if uint64(count) > math.MaxUint32 {
		b.Fail(ErrTooLarge)
		return 0, false
	}
	body, _ := bodySize(kind, uint32(count))
	off := len(b.buf)
	if !b.grow(nodeHeaderSize + body) {
		return 0, false
	}
	b.buf[off] = byte(kind)
	binary.LittleEndian.PutUint32(b.buf[off+4:], uint32(count))
	b.last = uint32(off)
	return uint32(off), true
}

func (b *Builder) grow(n uint64) bool {
	need := uint64(len(b.buf)) + n
	if need > uint64(b.max) {
		b.Fail(ErrTooLarge)
		return false
	}
	if need > uint64(cap(b.buf)) {
		c := uint64(cap(b.buf)) * 2
		if c < need {
			c = need
		}
		nb := alloc(int(c))
		copy(nb, b.buf)
		b.buf = nb[:len(b.buf)]
	}
	start := len(b.buf)
	b.buf = b.buf[:need]
	clear(b.buf[start:])
	return true
}

// Finish seals the archive rooted at root into a new exact-size aligned
// buffer. root must be the last node written.
func (b *Builder) Finish(root Ref) ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	if root.IsZero() {
		return nil, ErrNoRoot
	}
	if root.off != b.last {
		return nil, ErrRootLast
	}
	out := alloc(len(b.buf))
	copy(out, b.buf)
	wire.Seal(out, root.off)
	return out, nil
}
