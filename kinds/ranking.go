package kinds

import (
	"time"

	"github.com/unkn0wn-root/archcache"
	"github.com/unkn0wn-root/archcache/codec"
)

type RankingEntry struct {
	UserID   uint32  `msgpack:"u"`
	Username string  `msgpack:"n"`
	PP       float64 `msgpack:"p"`
}

// RankingPage is one page of a pp leaderboard. Pages are only ever shown
// whole, so they are cached as an opaque msgpack payload.
type RankingPage struct {
	Mode    GameMode       `msgpack:"m"`
	Country string         `msgpack:"c,omitempty"` // "" => global
	Page    uint32         `msgpack:"pg"`
	Entries []RankingEntry `msgpack:"e"`
}

var RankingPages = archcache.Policy[RankingPage, codec.Blob[RankingPage]]{
	Kind:  "ranking_page",
	TTL:   5 * time.Minute,
	Codec: codec.Msgpack[RankingPage](),
}

// RankingKey names a page, e.g. "osu:global:1" or "mania:DE:3".
func RankingKey(mode GameMode, country string, page uint32) archcache.Key {
	if country == "" {
		country = "global"
	}
	return archcache.Keyf("%s:%s:%d", mode, country, page)
}
