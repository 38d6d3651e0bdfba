package codec

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/unkn0wn-root/archcache/archive"
)

// roundTrip encodes v with c, validates the bytes as untrusted input and
// deserializes through the bound view.
func roundTrip[T any, A View[T]](t *testing.T, c Codec[T, A], v T) (A, T) {
	t.Helper()
	buf, err := archive.Encode(c.Marshaler(&v))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	a, err := archive.Validate(buf, c.Shape())
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	view := c.Bind(a.Root())
	got, err := view.Deserialize()
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	return view, got
}

type point struct {
	X, Y int64
	Tag  string
}

type pointView struct{ s archive.Struct }

func (p point) MarshalArchive(b *archive.Builder) (archive.Ref, error) {
	tag := b.String(p.Tag)
	return b.Struct(archive.Int(p.X), archive.Int(p.Y), archive.Child(tag)), nil
}

func (v pointView) Deserialize() (point, error) {
	return point{X: v.s.Int(0), Y: v.s.Int(1), Tag: v.s.String(2)}, nil
}

var pointShape = archive.StructShape(archive.IntShape, archive.IntShape, archive.StringShape)

func bindPoint(n archive.Node) pointView { return pointView{s: n.Struct()} }

func TestNativeCodec(t *testing.T) {
	c := Native[point, pointView](pointShape, bindPoint)
	want := point{X: -3, Y: 9, Tag: "p"}
	view, got := roundTrip(t, c, want)
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
	if view.s.Int(1) != 9 {
		t.Fatalf("view read: %d", view.s.Int(1))
	}
}

// foreign stands in for a type owned by another module.
type foreign struct {
	when time.Time
	note string
}

type foreignView struct{ s archive.Struct }

func (v foreignView) Deserialize() (foreign, error) {
	return foreign{when: time.Unix(0, v.s.Int(0)).UTC(), note: v.s.String(1)}, nil
}

func TestAdaptedCodecUsesCastView(t *testing.T) {
	calls := 0
	ad := AdapterFunc[foreign](func(b *archive.Builder, v *foreign) (archive.Ref, error) {
		calls++
		note := b.String(v.note)
		return b.Struct(archive.Int(v.when.UnixNano()), archive.Child(note)), nil
	})
	c := Adapt[foreign, foreignView](archive.StructShape(archive.IntShape, archive.StringShape), ad,
		func(n archive.Node) foreignView { return foreignView{s: n.Struct()} })

	want := foreign{when: time.Date(2024, 5, 1, 12, 0, 0, 7, time.UTC), note: "ext"}
	_, got := roundTrip(t, c, want)
	if !got.when.Equal(want.when) || got.note != want.note {
		t.Fatalf("got %+v want %+v", got, want)
	}
	if calls != 1 {
		t.Fatalf("adapter calls: %d", calls)
	}
}

func TestAdapterErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")
	c := Adapt[int, nopView](archive.BytesShape,
		AdapterFunc[int](func(*archive.Builder, *int) (archive.Ref, error) { return archive.Ref{}, boom }),
		func(archive.Node) nopView { return nopView{} })
	v := 1
	if _, err := archive.Encode(c.Marshaler(&v)); !errors.Is(err, boom) {
		t.Fatalf("expected adapter error, got %v", err)
	}
}

type nopView struct{}

func (nopView) Deserialize() (int, error) { return 0, nil }

type ranking struct {
	Page    int               `json:"page" msgpack:"page" cbor:"page"`
	Players []string          `json:"players" msgpack:"players" cbor:"players"`
	Extra   map[string]string `json:"extra" msgpack:"extra" cbor:"extra"`
}

func sameRanking(a, b ranking) bool {
	if a.Page != b.Page || len(a.Players) != len(b.Players) || len(a.Extra) != len(b.Extra) {
		return false
	}
	for i := range a.Players {
		if a.Players[i] != b.Players[i] {
			return false
		}
	}
	for k, v := range a.Extra {
		if b.Extra[k] != v {
			return false
		}
	}
	return true
}

func TestOpaqueFormats(t *testing.T) {
	want := ranking{Page: 3, Players: []string{"a", "b", "c"}, Extra: map[string]string{"mode": "osu"}}
	codecs := map[string]Codec[ranking, Blob[ranking]]{
		"msgpack": Msgpack[ranking](),
		"cbor":    MustCBOR[ranking](true),
		"json":    JSON[ranking](),
	}
	for name, c := range codecs {
		view, got := roundTrip(t, c, want)
		if view.Format() != name {
			t.Fatalf("%s: archived format %q", name, view.Format())
		}
		if len(view.Payload()) == 0 {
			t.Fatalf("%s: empty payload", name)
		}
		if !sameRanking(got, want) {
			t.Fatalf("%s: got %+v want %+v", name, got, want)
		}
	}
}

func TestOpaqueFormatMismatch(t *testing.T) {
	v := ranking{Page: 1}
	buf, err := archive.Encode(Msgpack[ranking]().Marshaler(&v))
	if err != nil {
		t.Fatal(err)
	}
	js := JSON[ranking]()
	a, err := archive.Validate(buf, js.Shape())
	if err != nil {
		t.Fatalf("blob layouts share a shape: %v", err)
	}
	if _, err := js.Bind(a.Root()).Deserialize(); !errors.Is(err, ErrFormat) {
		t.Fatalf("expected ErrFormat, got %v", err)
	}
}

func TestCBORDeterministic(t *testing.T) {
	c := MustCBOR[ranking](true)
	v := ranking{Extra: map[string]string{"z": "1", "a": "2", "m": "3"}}
	first, err := archive.Encode(c.Marshaler(&v))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, err := archive.Encode(c.Marshaler(&v))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("deterministic CBOR archives differ")
		}
	}
}

func TestProtobuf(t *testing.T) {
	c := Protobuf(func() *wrapperspb.StringValue { return &wrapperspb.StringValue{} })
	_, got := roundTrip(t, c, wrapperspb.String("hello"))
	if !proto.Equal(got, wrapperspb.String("hello")) {
		t.Fatalf("got %v", got)
	}
}

func TestRawCodecs(t *testing.T) {
	bv, b := roundTrip(t, Bytes(), []byte{0, 1, 2, 255})
	if !bytes.Equal(b, []byte{0, 1, 2, 255}) || !bytes.Equal(bv.Data(), b) {
		t.Fatalf("bytes: %v", b)
	}
	sv, s := roundTrip(t, String(), "héllo")
	if s != "héllo" || sv.Len() != len("héllo") {
		t.Fatalf("string: %q", s)
	}

	bad := "\xff"
	if _, err := archive.Encode(String().Marshaler(&bad)); !errors.Is(err, archive.ErrNotUTF8) {
		t.Fatalf("expected ErrNotUTF8, got %v", err)
	}
}
