// Package archive implements the self-describing binary layout used for cached
// values. An archive can be read in place through bounds-checked views after a
// single validation pass, or walked into an owned value.
//
// Layout (little endian, every node starts on an 8-byte boundary):
//
//	header  magic "ARCV" | ver | flags | reserved | len u32 | root u32 | xxhash64
//	node    kind u8 | reserved[3] | count u32 | body
//	struct  count x slot
//	list    count x slot
//	string  count bytes of UTF-8, zero padded to 8
//	bytes   count bytes, zero padded to 8
//	slot    tag u8 | reserved[7] | payload u64
//
// Slot payloads hold a bool (0/1), an int64, a uint64, float64 bits or, for
// references, an offset relative to the slot itself. References always point
// backward to the start of an earlier node, so children are written before
// their parents and the root is the last node. A reference with offset 0 is
// the "none" niche used for absent optional values.
//
// Writing:
//
//	func (p Profile) MarshalArchive(b *archive.Builder) (archive.Ref, error) {
//	    name := b.String(p.Name)
//	    return b.Struct(archive.Uint(p.ID), archive.Child(name)), nil
//	}
//
//	buf, err := archive.Encode(p)
//
// Reading:
//
//	a, err := archive.Validate(buf, archive.StructShape(archive.UintShape, archive.StringShape))
//	s := a.Root().Struct()
//	id, name := s.Uint(0), s.String(1)
package archive
