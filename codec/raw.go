package codec

import "github.com/unkn0wn-root/archcache/archive"

// BytesView reads an archived []byte in place.
type BytesView struct{ n archive.Node }

// Data aliases the archive; do not modify it.
func (v BytesView) Data() []byte { return v.n.Data() }

func (v BytesView) Deserialize() ([]byte, error) {
	return append([]byte(nil), v.n.Data()...), nil
}

// Bytes caches raw byte slices as a single bytes node.
func Bytes() Codec[[]byte, BytesView] {
	return Adapt[[]byte, BytesView](archive.BytesShape,
		AdapterFunc[[]byte](func(b *archive.Builder, v *[]byte) (archive.Ref, error) {
			return b.Bytes(*v), nil
		}),
		func(root archive.Node) BytesView { return BytesView{n: root} })
}

// StringView reads an archived string in place.
type StringView struct{ n archive.Node }

func (v StringView) Len() int { return v.n.Len() }

func (v StringView) Deserialize() (string, error) { return v.n.Text(), nil }

// String caches Go strings as a single UTF-8 string node. Encoding a string
// that is not valid UTF-8 fails; use Bytes for arbitrary data.
func String() Codec[string, StringView] {
	return Adapt[string, StringView](archive.StringShape,
		AdapterFunc[string](func(b *archive.Builder, v *string) (archive.Ref, error) {
			return b.String(*v), nil
		}),
		func(root archive.Node) StringView { return StringView{n: root} })
}
