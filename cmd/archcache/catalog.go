package main

import (
	"context"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/unkn0wn-root/archcache"
	"github.com/unkn0wn-root/archcache/codec"
	"github.com/unkn0wn-root/archcache/kinds"
)

// kindEntry is what the CLI needs to read one declared kind without knowing
// its types.
type kindEntry struct {
	kind string
	ttl  time.Duration
	get  func(ctx context.Context, c *archcache.Cache, key archcache.Key) (any, bool, error)
}

func entry[T any, A codec.View[T]](p archcache.Policy[T, A], show func(T) any) kindEntry {
	return kindEntry{
		kind: p.Kind,
		ttl:  p.TTL,
		get: func(ctx context.Context, c *archcache.Cache, key archcache.Key) (any, bool, error) {
			a, lease, err := archcache.Fetch(ctx, c, p, key)
			defer lease.Release()
			if err != nil || a == nil {
				return nil, false, err
			}
			v, err := a.Deserialize()
			if err != nil {
				return nil, true, err
			}
			if show != nil {
				return show(v), true, nil
			}
			return v, true, nil
		},
	}
}

var catalog = []kindEntry{
	entry(kinds.UserProfiles, nil),
	entry(kinds.MapVersionsByID, nil),
	entry(kinds.GuildConfigs, nil),
	entry(kinds.OAuthTokens, maskToken),
	entry(kinds.RankingPages, nil),
}

func lookupKind(kind string) (kindEntry, bool) {
	for _, e := range catalog {
		if e.kind == kind {
			return e, true
		}
	}
	return kindEntry{}, false
}

func maskToken(t oauth2.Token) any {
	t.AccessToken = mask(t.AccessToken)
	t.RefreshToken = mask(t.RefreshToken)
	return t
}

func mask(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-4)
}
