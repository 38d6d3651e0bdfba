package kinds

import (
	"math"
	"time"

	"github.com/unkn0wn-root/archcache"
	"github.com/unkn0wn-root/archcache/archive"
	"github.com/unkn0wn-root/archcache/codec"
)

// MapVersion is one revision of a beatmap.
type MapVersion struct {
	MapID     uint32
	Version   uint32
	Checksum  string // md5 of the .osu file
	CreatedAt time.Time // zero when unknown
}

// MapVersions lists a map's revisions in the order they were fetched. The
// order is preserved exactly. An empty list decodes as nil.
type MapVersions []MapVersion

var mapVersionShape = archive.StructShape(
	archive.UintShape,
	archive.UintShape,
	archive.StringShape,
	timeSecShape,
	timeNsecShape,
)

// MapVersionsByID caches revision lists for thirty seconds; maps are edited
// often while pending.
var MapVersionsByID = archcache.Policy[MapVersions, MapVersionsView]{
	Kind:  "map_versions",
	TTL:   30 * time.Second,
	Codec: codec.Native[MapVersions, MapVersionsView](archive.ListShape(mapVersionShape), bindMapVersions),
}

func MapKey(id uint32) archcache.Key { return archcache.ID("map", uint64(id)) }

func (vs MapVersions) MarshalArchive(b *archive.Builder) (archive.Ref, error) {
	items := b.Slots(len(vs))
	for i, v := range vs {
		sum := b.String(v.Checksum)
		sec, nsec := timeSlots(v.CreatedAt)
		items[i] = archive.Child(b.Struct(
			archive.Uint(uint64(v.MapID)),
			archive.Uint(uint64(v.Version)),
			archive.Child(sum),
			sec,
			nsec,
		))
	}
	return b.List(items...), nil
}

type MapVersionsView struct{ l archive.List }

func bindMapVersions(n archive.Node) MapVersionsView { return MapVersionsView{l: n.List()} }

func (v MapVersionsView) Len() int { return v.l.Len() }

// At returns revision i; out of range yields a zero view.
func (v MapVersionsView) At(i int) MapVersionView { return MapVersionView{s: v.l.Struct(i)} }

func (v MapVersionsView) Deserialize() (MapVersions, error) {
	n := v.Len()
	if n == 0 {
		return nil, nil
	}
	out := make(MapVersions, n)
	for i := range out {
		mv, err := v.At(i).Deserialize()
		if err != nil {
			return nil, err
		}
		out[i] = mv
	}
	return out, nil
}

type MapVersionView struct{ s archive.Struct }

func (v MapVersionView) MapID() uint64    { return v.s.Uint(0) }
func (v MapVersionView) Version() uint64  { return v.s.Uint(1) }
func (v MapVersionView) Checksum() string { return v.s.String(2) }

func (v MapVersionView) CreatedAt() time.Time { return readTime(v.s, 3) }

func (v MapVersionView) Deserialize() (MapVersion, error) {
	id, ver := v.MapID(), v.Version()
	if id > math.MaxUint32 {
		return MapVersion{}, rangeErr("map id", id)
	}
	if ver > math.MaxUint32 {
		return MapVersion{}, rangeErr("version", ver)
	}
	return MapVersion{
		MapID:     uint32(id),
		Version:   uint32(ver),
		Checksum:  v.Checksum(),
		CreatedAt: v.CreatedAt(),
	}, nil
}
