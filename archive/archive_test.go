package archive

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/unkn0wn-root/archcache/internal/wire"
)

// sample layout:
//
//	@24  string "ada"                 (24..40)
//	@40  list [uint 1, uint 2]        (40..80)
//	@80  struct                       (80..168)
//	     @88  uint 7
//	     @104 ref -> @24
//	     @120 ref -> @40
//	     @136 none
//	     @152 bool true
func sample(t *testing.T) []byte {
	t.Helper()
	b := NewBuilder()
	name := b.String("ada")
	tags := b.List(Uint(1), Uint(2))
	root := b.Struct(Uint(7), Child(name), Child(tags), None(), Bool(true))
	buf, err := b.Finish(root)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if len(buf) != 168 {
		t.Fatalf("sample layout changed: len=%d", len(buf))
	}
	return buf
}

var sampleShape = StructShape(UintShape, StringShape, ListShape(UintShape), OptionalShape(FloatShape), BoolShape)

func reseal(b []byte) []byte {
	wire.Seal(b, wire.Root(b))
	return b
}

func mustInvalid(t *testing.T, name string, buf []byte, shape *Shape) {
	t.Helper()
	_, err := Validate(buf, shape)
	if err == nil {
		t.Fatalf("%s: expected validation error", name)
	}
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("%s: error does not match ErrInvalid: %v", name, err)
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("%s: expected *ValidationError, got %T", name, err)
	}
}

func TestRoundTripAccessors(t *testing.T) {
	a, err := Validate(sample(t), sampleShape)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	s := a.Root().Struct()
	if s.Len() != 5 {
		t.Fatalf("fields: got %d", s.Len())
	}
	if s.Uint(0) != 7 || s.String(1) != "ada" || !s.Bool(4) {
		t.Fatalf("scalars: %d %q %v", s.Uint(0), s.String(1), s.Bool(4))
	}
	l := s.List(2)
	if l.Len() != 2 || l.Uint(0) != 1 || l.Uint(1) != 2 {
		t.Fatalf("list: len=%d [%d %d]", l.Len(), l.Uint(0), l.Uint(1))
	}
	if !s.IsNone(3) || s.Has(3) {
		t.Fatalf("slot 3 should be none")
	}
	if _, ok := s.OptFloat(3); ok {
		t.Fatalf("OptFloat on none should report !ok")
	}
}

func TestAccessorsNeverPanicOnMismatch(t *testing.T) {
	a := Trust(sample(t))
	s := a.Root().Struct()
	if s.Int(0) != 0 || s.String(0) != "" || s.Uint(1) != 0 || s.Float(99) != 0 || s.Bool(-1) {
		t.Fatalf("mismatched accessors should return zero values")
	}
	if s.Struct(2).Len() != 0 || s.List(1).Len() != 0 {
		t.Fatalf("kind mismatch should yield empty views")
	}
	if Trust(nil).Root().Kind() != 0 {
		t.Fatalf("empty archive root should be invalid")
	}
}

func TestScalarsRoundTrip(t *testing.T) {
	b := NewBuilder()
	root := b.Struct(Int(math.MinInt64), Int(-1), Uint(math.MaxUint64), Float(-0.5), Float(math.Inf(1)), Bool(false))
	buf, err := b.Finish(root)
	if err != nil {
		t.Fatal(err)
	}
	a, err := Validate(buf, StructShape(IntShape, IntShape, UintShape, FloatShape, FloatShape, BoolShape))
	if err != nil {
		t.Fatal(err)
	}
	s := a.Root().Struct()
	if s.Int(0) != math.MinInt64 || s.Int(1) != -1 || s.Uint(2) != math.MaxUint64 {
		t.Fatalf("ints: %d %d %d", s.Int(0), s.Int(1), s.Uint(2))
	}
	if s.Float(3) != -0.5 || !math.IsInf(s.Float(4), 1) || s.Bool(5) {
		t.Fatalf("floats/bool: %v %v %v", s.Float(3), s.Float(4), s.Bool(5))
	}
}

func TestEncodeIsAligned(t *testing.T) {
	for i := 0; i < 64; i++ {
		buf := sample(t)
		if !IsAligned(buf) {
			t.Fatalf("encoded buffer not aligned")
		}
	}
}

func TestValidateRealignsInput(t *testing.T) {
	buf := sample(t)
	raw := make([]byte, len(buf)+1)
	shifted := raw[1:]
	copy(shifted, buf)
	if IsAligned(shifted) {
		t.Skip("allocator returned an odd layout; cannot build unaligned input")
	}
	a, err := Validate(shifted, sampleShape)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !IsAligned(a.Bytes()) {
		t.Fatalf("validated archive not aligned")
	}
	if a.Root().Struct().String(1) != "ada" {
		t.Fatalf("realigned view mismatch")
	}
}

func TestEveryBitFlipRejected(t *testing.T) {
	buf := sample(t)
	for bit := 0; bit < len(buf)*8; bit++ {
		c := append([]byte(nil), buf...)
		c[bit/8] ^= 1 << (bit % 8)
		mustInvalid(t, "flip", c, sampleShape)
	}
}

func TestStructuralViolations(t *testing.T) {
	cases := []struct {
		name string
		edit func(b []byte)
	}{
		{"unknown node kind", func(b []byte) { b[24] = 9 }},
		{"reserved node byte", func(b []byte) { b[25] = 1 }},
		{"count overrun", func(b []byte) { binary.LittleEndian.PutUint32(b[44:], 100) }},
		{"invalid utf8", func(b []byte) { b[32] = 0xff }},
		{"non-zero padding", func(b []byte) { b[35] = 1 }},
		{"unknown slot tag", func(b []byte) { b[88] = 9 }},
		{"reserved slot byte", func(b []byte) { b[89] = 1 }},
		{"bool payload", func(b []byte) { b[160] = 2 }},
		{"self reference", func(b []byte) { putRel(b, 104, 80-104) }},
		{"forward reference", func(b []byte) { putRel(b, 104, 8) }},
		{"misaligned reference", func(b []byte) { putRel(b, 104, -81) }},
		{"reference into body", func(b []byte) { putRel(b, 104, 32-104) }},
		{"reference into header", func(b []byte) { putRel(b, 104, -104) }},
		{"root not last", func(b []byte) { binary.LittleEndian.PutUint32(b[12:], 40) }},
	}
	for _, tc := range cases {
		b := sample(t)
		tc.edit(b)
		mustInvalid(t, tc.name, reseal(b), nil)
	}
}

func putRel(b []byte, pos int, rel int64) {
	binary.LittleEndian.PutUint64(b[pos+8:], uint64(rel))
}

func TestShapeViolations(t *testing.T) {
	buf := sample(t)
	bad := map[string]*Shape{
		"field count":     StructShape(UintShape, StringShape),
		"scalar tag":      StructShape(IntShape, StringShape, ListShape(UintShape), OptionalShape(FloatShape), BoolShape),
		"node kind":       StructShape(UintShape, BytesShape, ListShape(UintShape), OptionalShape(FloatShape), BoolShape),
		"element":         StructShape(UintShape, StringShape, ListShape(StringShape), OptionalShape(FloatShape), BoolShape),
		"required none":   StructShape(UintShape, StringShape, ListShape(UintShape), FloatShape, BoolShape),
		"enum range":      StructShape(EnumShape(7), StringShape, ListShape(UintShape), OptionalShape(FloatShape), BoolShape),
		"root not struct": ListShape(AnyShape),
		"scalar root":     UintShape,
	}
	for name, shape := range bad {
		mustInvalid(t, name, buf, shape)
	}

	ok := StructShape(EnumShape(8), StringShape, ListShape(AnyShape), OptionalShape(StringShape), AnyShape)
	if _, err := Validate(buf, ok); err != nil {
		t.Fatalf("expected shape to match: %v", err)
	}
}

func TestSharedNodesValidateLinearly(t *testing.T) {
	b := NewBuilder()
	leaf := b.String("x")
	ref := leaf
	const width, depth = 64, 12
	shape := StringShape
	for d := 0; d < depth; d++ {
		items := b.Slots(width)
		for i := range items {
			items[i] = Child(ref)
		}
		ref = b.List(items...)
		shape = ListShape(shape)
	}
	buf, err := b.Finish(ref)
	if err != nil {
		t.Fatal(err)
	}
	// width^depth paths; only succeeds in reasonable time if memoized
	if _, err := Validate(buf, shape); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestRandomBytesNeverPanic(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	base := sample(t)
	for i := 0; i < 2000; i++ {
		c := append([]byte(nil), base...)
		for j := 0; j < 1+rng.Intn(6); j++ {
			c[wire.HeaderSize+rng.Intn(len(c)-wire.HeaderSize)] = byte(rng.Intn(256))
		}
		reseal(c)
		a, err := Validate(c, AnyShape)
		if err != nil {
			continue
		}
		_ = a.Root().Interface()
		_ = Describe(&bytes.Buffer{}, a)
	}
	for i := 0; i < 500; i++ {
		junk := make([]byte, rng.Intn(256))
		rng.Read(junk)
		if _, err := Validate(junk, sampleShape); err == nil {
			t.Fatalf("random junk validated")
		}
	}
}

func TestBuilderErrors(t *testing.T) {
	b := NewBuilder()
	if _, err := b.Finish(Ref{}); !errors.Is(err, ErrNoRoot) {
		t.Fatalf("expected ErrNoRoot, got %v", err)
	}

	b.Reset()
	first := b.String("a")
	b.String("b")
	if _, err := b.Finish(first); !errors.Is(err, ErrRootLast) {
		t.Fatalf("expected ErrRootLast, got %v", err)
	}

	b.Reset()
	b.SetMaxSize(64)
	b.Bytes(make([]byte, 128))
	if !b.Struct().IsZero() {
		t.Fatalf("writes after a failure should return the zero Ref")
	}
	if _, err := b.Finish(Ref{off: 24}); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}

	b.Reset()
	b.String("\xff")
	if !errors.Is(b.Err(), ErrNotUTF8) {
		t.Fatalf("expected ErrNotUTF8, got %v", b.Err())
	}

	other := NewBuilder()
	other.String("pad")
	foreign := other.String("foreign")
	b.Reset()
	b.Struct(Child(foreign))
	if !errors.Is(b.Err(), ErrBadRef) {
		t.Fatalf("expected ErrBadRef, got %v", b.Err())
	}
}

type pair struct {
	a string
	b []uint64
}

func (p pair) MarshalArchive(b *Builder) (Ref, error) {
	items := b.Slots(len(p.b))
	for i, v := range p.b {
		items[i] = Uint(v)
	}
	list := b.List(items...)
	name := b.String(p.a)
	return b.Struct(Child(name), Child(list)), nil
}

func TestEncodeReusesPooledBuilders(t *testing.T) {
	for i := 0; i < 100; i++ {
		p := pair{a: strings.Repeat("z", i), b: make([]uint64, i)}
		for j := range p.b {
			p.b[j] = uint64(i * j)
		}
		buf, err := Encode(p)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		a, err := Validate(buf, StructShape(StringShape, ListShape(UintShape)))
		if err != nil {
			t.Fatalf("Validate %d: %v", i, err)
		}
		s := a.Root().Struct()
		if s.String(0) != p.a || s.List(1).Len() != i {
			t.Fatalf("iteration %d: mismatch", i)
		}
		for j := 0; j < i; j++ {
			if s.List(1).Uint(j) != uint64(i*j) {
				t.Fatalf("iteration %d: element %d", i, j)
			}
		}
	}
}

func TestEncodeLimit(t *testing.T) {
	p := pair{a: strings.Repeat("x", 4096)}
	if _, err := EncodeLimit(p, 1024); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestDescribeAndInterface(t *testing.T) {
	a, err := Validate(sample(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := Describe(&out, a); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"struct @80 fields=5", `string @24 "ada"`, "[3] none", "[4] bool true"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("Describe output missing %q:\n%s", want, out.String())
		}
	}

	v, ok := a.Root().Interface().([]any)
	if !ok || len(v) != 5 {
		t.Fatalf("Interface: %#v", a.Root().Interface())
	}
	if v[0] != uint64(7) || v[1] != "ada" || v[3] != nil || v[4] != true {
		t.Fatalf("Interface values: %#v", v)
	}
}

func TestShapeString(t *testing.T) {
	got := sampleShape.String()
	want := "struct{uint, string, []uint, opt<float>, bool}"
	if got != want {
		t.Fatalf("Shape.String: got %q want %q", got, want)
	}
}
