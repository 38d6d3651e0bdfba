package archive

import (
	"unicode/utf8"

	"github.com/unkn0wn-root/archcache/internal/wire"
)

// Validate checks an untrusted buffer and returns an Archive whose views are
// guaranteed to match shape. A nil shape means AnyShape.
//
// Unaligned input is copied into aligned memory first; the returned Archive
// always owns an aligned buffer. Validation is linear in the buffer size even
// when many references share a node, and it never panics.
//
// Checks, in order:
//   - header: magic, version, reserved bits, length, alignment, checksum
//   - every node: known kind, zero reserved bytes, body within the buffer,
//     UTF-8 strings, zero padding
//   - every slot: known tag, zero reserved bytes, 0/1 bools, references that
//     point backward to the start of a node ending before the referrer
//   - the root is the last node and the nodes tile the buffer exactly
//   - the value reachable from the root matches shape
func Validate(buf []byte, shape *Shape) (Archive, error) {
	if shape == nil {
		shape = AnyShape
	}
	buf = Aligned(buf)

	root, err := wire.DecodeHeader(buf)
	if err != nil {
		return Archive{}, &ValidationError{Offset: 0, Reason: "header", Err: err}
	}

	v := &validator{
		buf:    buf,
		starts: make([]uint64, (len(buf)/align+63)/64),
	}
	last, err := v.scan()
	if err != nil {
		return Archive{}, err
	}
	if int(root) != last {
		return Archive{}, invalid(int(root), "root is not the last node (last node at %d)", last)
	}
	if shape.kind != shapeAny {
		if !shape.isNode() {
			return Archive{}, invalid(int(root), "root shape %s is not a node shape", shape)
		}
		v.seen = make(map[visit]struct{})
		if err := v.node(shape, int(root)); err != nil {
			return Archive{}, err
		}
	}
	return Archive{buf: buf, root: root}, nil
}

type visit struct {
	off   int
	shape *Shape
}

type validator struct {
	buf    []byte
	starts []uint64 // bitmap of node starts, one bit per 8-byte word
	seen   map[visit]struct{}
}

func (v *validator) mark(off int) {
	w := off / align
	v.starts[w/64] |= 1 << (w % 64)
}

func (v *validator) isStart(off int) bool {
	w := off / align
	return v.starts[w/64]&(1<<(w%64)) != 0
}

// scan walks the node sequence front to back and returns the last node's
// offset. Because references only point backward, every target has already
// been marked by the time its referrer is checked.
func (v *validator) scan() (int, error) {
	buf := v.buf
	off, last := headerSize, -1
	for off < len(buf) {
		if len(buf)-off < nodeHeaderSize {
			return 0, invalid(off, "truncated node header")
		}
		kind := NodeKind(buf[off])
		if buf[off+1] != 0 || buf[off+2] != 0 || buf[off+3] != 0 {
			return 0, invalid(off, "reserved node bytes set")
		}
		count := u32(buf, off+4)
		body, ok := bodySize(kind, count)
		if !ok {
			return 0, invalid(off, "unknown node kind %d", buf[off])
		}
		end := uint64(off) + nodeHeaderSize + body
		if end > uint64(len(buf)) {
			return 0, invalid(off, "%s node of count %d overruns buffer", kind, count)
		}
		v.mark(off)

		start := off + nodeHeaderSize
		switch kind {
		case KindStruct, KindList:
			for pos := start; pos < int(end); pos += slotSize {
				if err := v.slot(pos, off); err != nil {
					return 0, err
				}
			}
		case KindString, KindBytes:
			data := buf[start : start+int(count)]
			if kind == KindString && !utf8.Valid(data) {
				return 0, invalid(off, "string node is not valid UTF-8")
			}
			for i := start + int(count); i < int(end); i++ {
				if buf[i] != 0 {
					return 0, invalid(i, "non-zero padding")
				}
			}
		}
		last, off = off, int(end)
	}
	if last < 0 {
		return 0, invalid(headerSize, "archive has no nodes")
	}
	return last, nil
}

func (v *validator) slot(pos, nodeStart int) error {
	tag := Tag(v.buf[pos])
	if u64(v.buf, pos)>>8 != 0 {
		return invalid(pos, "reserved slot bytes set")
	}
	p := u64(v.buf, pos+8)
	switch tag {
	case TagBool:
		if p > 1 {
			return invalid(pos, "bool payload %d", p)
		}
	case TagInt, TagUint, TagFloat:
	case TagRef:
		if p == 0 {
			return nil
		}
		rel := int64(p)
		if rel >= 0 || rel%align != 0 {
			return invalid(pos, "reference offset %d is not backward and aligned", rel)
		}
		target := int64(pos) + rel
		if target < headerSize || target >= int64(nodeStart) {
			return invalid(pos, "reference target %d outside [%d, %d)", target, headerSize, nodeStart)
		}
		if !v.isStart(int(target)) {
			return invalid(pos, "reference target %d is not a node start", target)
		}
	default:
		return invalid(pos, "unknown slot tag %d", tag)
	}
	return nil
}

// node checks the node at off against a node shape. Results are memoized per
// (offset, shape) so shared sub-nodes are checked once.
func (v *validator) node(s *Shape, off int) error {
	key := visit{off: off, shape: s}
	if _, ok := v.seen[key]; ok {
		return nil
	}
	n := Node{buf: v.buf, off: off}
	kind := n.Kind()

	switch s.kind {
	case shapeString:
		if kind != KindString {
			return invalid(off, "expected string node, found %s", kind)
		}
	case shapeBytes:
		if kind != KindBytes {
			return invalid(off, "expected bytes node, found %s", kind)
		}
	case shapeStruct:
		if kind != KindStruct {
			return invalid(off, "expected struct node, found %s", kind)
		}
		ss := n.slots()
		if ss.Len() != len(s.fields) {
			return invalid(off, "struct has %d fields, expected %d", ss.Len(), len(s.fields))
		}
		for i, f := range s.fields {
			if err := v.value(f, ss, i); err != nil {
				return err
			}
		}
	case shapeList:
		if kind != KindList {
			return invalid(off, "expected list node, found %s", kind)
		}
		ss := n.slots()
		for i := 0; i < ss.Len(); i++ {
			if err := v.value(s.elem, ss, i); err != nil {
				return err
			}
		}
	}
	v.seen[key] = struct{}{}
	return nil
}

// value checks slot i of ss against s.
func (v *validator) value(s *Shape, ss slots, i int) error {
	tag, p, pos, _ := ss.at(i)
	want := func(t Tag) error {
		if tag != t {
			return invalid(pos, "expected %s slot, found %s", t, tag)
		}
		return nil
	}

	switch s.kind {
	case shapeAny:
		return nil
	case shapeBool:
		return want(TagBool)
	case shapeInt:
		return want(TagInt)
	case shapeUint:
		return want(TagUint)
	case shapeFloat:
		return want(TagFloat)
	case shapeEnum:
		if err := want(TagUint); err != nil {
			return err
		}
		if p >= s.n {
			return invalid(pos, "enum discriminant %d out of range [0, %d)", p, s.n)
		}
		return nil
	case shapeOptional:
		if tag == TagRef && p == 0 {
			return nil
		}
		return v.value(s.elem, ss, i)
	default:
		if err := want(TagRef); err != nil {
			return err
		}
		if p == 0 {
			return invalid(pos, "required %s is none", s)
		}
		return v.node(s, ss.Node(i).off)
	}
}
