package kinds

import (
	"math"

	"github.com/unkn0wn-root/archcache"
	"github.com/unkn0wn-root/archcache/archive"
	"github.com/unkn0wn-root/archcache/codec"
)

// ScoreSize controls how score embeds are shown in a guild.
type ScoreSize uint8

const (
	ScoreSizeInitialMaximized ScoreSize = iota
	ScoreSizeAlwaysMinimized
	ScoreSizeAlwaysMaximized
	numScoreSizes
)

// GuildConfig is a guild's bot configuration. Empty Prefixes and
// Authorities decode as nil.
type GuildConfig struct {
	GuildID     uint64
	Prefixes    []string
	ScoreSize   ScoreSize
	TrackLimit  *uint8   // nil => bot default
	Authorities []uint64 // role ids allowed to change the config
}

// guild id, prefixes, score size, track limit?, authorities
var guildConfigShape = archive.StructShape(
	archive.UintShape,
	archive.ListShape(archive.StringShape),
	archive.EnumShape(uint64(numScoreSizes)),
	archive.OptionalShape(archive.UintShape),
	archive.ListShape(archive.UintShape),
)

// GuildConfigs never expire; a config changes only when it is written again.
var GuildConfigs = archcache.Policy[GuildConfig, GuildConfigView]{
	Kind:  "guild_config",
	Codec: codec.Native[GuildConfig, GuildConfigView](guildConfigShape, bindGuildConfig),
}

func GuildKey(id uint64) archcache.Key { return archcache.ID("guild", id) }

func (g GuildConfig) MarshalArchive(b *archive.Builder) (archive.Ref, error) {
	prefixes := b.Slots(len(g.Prefixes))
	for i, p := range g.Prefixes {
		prefixes[i] = archive.Child(b.String(p))
	}
	pl := b.List(prefixes...)

	roles := b.Slots(len(g.Authorities))
	for i, r := range g.Authorities {
		roles[i] = archive.Uint(r)
	}
	rl := b.List(roles...)

	limit := archive.None()
	if g.TrackLimit != nil {
		limit = archive.Uint(uint64(*g.TrackLimit))
	}
	return b.Struct(
		archive.Uint(g.GuildID),
		archive.Child(pl),
		archive.Uint(uint64(g.ScoreSize)),
		limit,
		archive.Child(rl),
	), nil
}

type GuildConfigView struct{ s archive.Struct }

func bindGuildConfig(n archive.Node) GuildConfigView { return GuildConfigView{s: n.Struct()} }

func (v GuildConfigView) GuildID() uint64           { return v.s.Uint(0) }
func (v GuildConfigView) Prefixes() archive.List    { return v.s.List(1) }
func (v GuildConfigView) ScoreSize() ScoreSize      { return ScoreSize(v.s.Uint(2)) }
func (v GuildConfigView) Authorities() archive.List { return v.s.List(4) }

func (v GuildConfigView) TrackLimit() (uint64, bool) { return v.s.OptUint(3) }

// HasPrefix reports whether p is one of the guild's prefixes without
// materializing the config.
func (v GuildConfigView) HasPrefix(p string) bool {
	l := v.Prefixes()
	for i := 0; i < l.Len(); i++ {
		if l.String(i) == p {
			return true
		}
	}
	return false
}

func (v GuildConfigView) Deserialize() (GuildConfig, error) {
	size := v.s.Uint(2)
	if size >= uint64(numScoreSizes) {
		return GuildConfig{}, rangeErr("score size", size)
	}
	g := GuildConfig{GuildID: v.GuildID(), ScoreSize: ScoreSize(size)}
	if l := v.Prefixes(); l.Len() > 0 {
		g.Prefixes = make([]string, l.Len())
		for i := range g.Prefixes {
			g.Prefixes[i] = l.String(i)
		}
	}
	if l := v.Authorities(); l.Len() > 0 {
		g.Authorities = make([]uint64, l.Len())
		for i := range g.Authorities {
			g.Authorities[i] = l.Uint(i)
		}
	}
	if n, ok := v.TrackLimit(); ok {
		if n > math.MaxUint8 {
			return GuildConfig{}, rangeErr("track limit", n)
		}
		limit := uint8(n)
		g.TrackLimit = &limit
	}
	return g, nil
}
