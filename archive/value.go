package archive

import (
	"math"

	"github.com/unkn0wn-root/archcache/internal/wire"
)

// Archive is a buffer that passed Validate or was vouched for with Trust.
type Archive struct {
	buf  []byte
	root uint32
}

// Trust wraps a buffer produced by this process's own encoder without
// validating it. Readers stay bounds-checked, so misuse yields garbage values
// rather than a crash, but only Validate guarantees meaningful results.
func Trust(buf []byte) Archive {
	if len(buf) < headerSize {
		return Archive{buf: buf}
	}
	return Archive{buf: buf, root: wire.Root(buf)}
}

func (a Archive) Bytes() []byte { return a.buf }
func (a Archive) Len() int      { return len(a.buf) }
func (a Archive) Root() Node    { return Node{buf: a.buf, off: int(a.root)} }

// Node is a view of one node inside an archive.
type Node struct {
	buf []byte
	off int
}

func (n Node) ok() bool {
	return n.off >= headerSize && n.off+nodeHeaderSize <= len(n.buf)
}

func (n Node) Kind() NodeKind {
	if !n.ok() {
		return 0
	}
	return NodeKind(n.buf[n.off])
}

// Len is the slot count of a struct or list and the byte length of a string
// or bytes node.
func (n Node) Len() int {
	if !n.ok() {
		return 0
	}
	return int(u32(n.buf, n.off+4))
}

// Offset is the node's absolute position in the archive.
func (n Node) Offset() int { return n.off }

func (n Node) Struct() Struct {
	if n.Kind() != KindStruct {
		return Struct{}
	}
	return Struct{n.slots()}
}

func (n Node) List() List {
	if n.Kind() != KindList {
		return List{}
	}
	return List{n.slots()}
}

func (n Node) slots() slots {
	cnt := n.Len()
	base := n.off + nodeHeaderSize
	if uint64(base)+uint64(cnt)*slotSize > uint64(len(n.buf)) {
		return slots{}
	}
	return slots{buf: n.buf, base: base, n: cnt}
}

// Data returns the body of a string or bytes node without copying. The slice
// aliases the archive and must not be modified.
func (n Node) Data() []byte {
	k := n.Kind()
	if k != KindString && k != KindBytes {
		return nil
	}
	start := n.off + nodeHeaderSize
	end := uint64(start) + uint64(n.Len())
	if end > uint64(len(n.buf)) {
		return nil
	}
	return n.buf[start:end:end]
}

// Text returns a copy of a string node's contents.
func (n Node) Text() string {
	if n.Kind() != KindString {
		return ""
	}
	return string(n.Data())
}

// slots is the shared accessor set of Struct and List. Accessors never panic:
// an index out of range or a slot holding a different tag yields the zero
// value. Validation against a Shape rules both out for untrusted data.
type slots struct {
	buf  []byte
	base int
	n    int
}

func (s slots) Len() int { return s.n }

func (s slots) at(i int) (Tag, uint64, int, bool) {
	if i < 0 || i >= s.n {
		return 0, 0, 0, false
	}
	pos := s.base + i*slotSize
	return Tag(s.buf[pos]), u64(s.buf, pos+8), pos, true
}

func (s slots) Tag(i int) Tag {
	t, _, _, _ := s.at(i)
	return t
}

func (s slots) Bool(i int) bool {
	t, p, _, ok := s.at(i)
	return ok && t == TagBool && p == 1
}

func (s slots) Int(i int) int64 {
	t, p, _, ok := s.at(i)
	if !ok || t != TagInt {
		return 0
	}
	return int64(p)
}

func (s slots) Uint(i int) uint64 {
	t, p, _, ok := s.at(i)
	if !ok || t != TagUint {
		return 0
	}
	return p
}

func (s slots) Float(i int) float64 {
	t, p, _, ok := s.at(i)
	if !ok || t != TagFloat {
		return 0
	}
	return math.Float64frombits(p)
}

// IsNone reports whether slot i holds the absent niche.
func (s slots) IsNone(i int) bool {
	t, p, _, ok := s.at(i)
	return ok && t == TagRef && p == 0
}

// Has reports whether slot i exists and is not none.
func (s slots) Has(i int) bool {
	_, _, _, ok := s.at(i)
	return ok && !s.IsNone(i)
}

// Node follows the reference in slot i.
func (s slots) Node(i int) Node {
	t, p, pos, ok := s.at(i)
	if !ok || t != TagRef || p == 0 {
		return Node{}
	}
	target := int64(pos) + int64(p)
	if target < headerSize || target >= int64(len(s.buf)) {
		return Node{}
	}
	return Node{buf: s.buf, off: int(target)}
}

func (s slots) String(i int) string { return s.Node(i).Text() }
func (s slots) Bytes(i int) []byte  { return s.Node(i).Data() }
func (s slots) Struct(i int) Struct { return s.Node(i).Struct() }
func (s slots) List(i int) List     { return s.Node(i).List() }

func (s slots) OptUint(i int) (uint64, bool) {
	return s.Uint(i), s.Tag(i) == TagUint
}

func (s slots) OptInt(i int) (int64, bool) {
	return s.Int(i), s.Tag(i) == TagInt
}

func (s slots) OptFloat(i int) (float64, bool) {
	return s.Float(i), s.Tag(i) == TagFloat
}

func (s slots) OptString(i int) (string, bool) {
	n := s.Node(i)
	return n.Text(), n.Kind() == KindString
}

// Struct is a fixed sequence of fields addressed by index.
type Struct struct{ slots }

// List is a variable-length sequence of elements addressed by index.
type List struct{ slots }
