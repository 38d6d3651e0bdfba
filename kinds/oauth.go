package kinds

import (
	"time"

	"golang.org/x/oauth2"

	"github.com/unkn0wn-root/archcache"
	"github.com/unkn0wn-root/archcache/archive"
	"github.com/unkn0wn-root/archcache/codec"
)

// access, type, refresh, expiry seconds?, expiry nanos, expires in
var oauthTokenShape = archive.StructShape(
	archive.StringShape,
	archive.StringShape,
	archive.StringShape,
	timeSecShape,
	timeNsecShape,
	archive.IntShape,
)

// oauthTokenAdapter lays out oauth2.Token, which lives in another module and
// cannot implement archive.Marshaler itself. Provider-specific extras
// (Token.Extra) are not cached.
var oauthTokenAdapter = codec.AdapterFunc[oauth2.Token](func(b *archive.Builder, t *oauth2.Token) (archive.Ref, error) {
	access := b.String(t.AccessToken)
	typ := b.String(t.TokenType)
	refresh := b.String(t.RefreshToken)
	sec, nsec := timeSlots(t.Expiry)
	return b.Struct(
		archive.Child(access),
		archive.Child(typ),
		archive.Child(refresh),
		sec,
		nsec,
		archive.Int(t.ExpiresIn),
	), nil
})

// OAuthTokens caches the osu! API client credentials token. Keep the TTL
// below the token lifetime so a cached token is never served expired.
var OAuthTokens = archcache.Policy[oauth2.Token, OAuthTokenView]{
	Kind:  "oauth_token",
	TTL:   5 * time.Minute,
	Codec: codec.Adapt[oauth2.Token, OAuthTokenView](oauthTokenShape, oauthTokenAdapter, bindOAuthToken),
}

type OAuthTokenView struct{ s archive.Struct }

func bindOAuthToken(n archive.Node) OAuthTokenView { return OAuthTokenView{s: n.Struct()} }

func (v OAuthTokenView) AccessToken() string  { return v.s.String(0) }
func (v OAuthTokenView) TokenType() string    { return v.s.String(1) }
func (v OAuthTokenView) RefreshToken() string { return v.s.String(2) }

// Expiry is the zero time for tokens that never expire.
func (v OAuthTokenView) Expiry() time.Time { return readTime(v.s, 3) }

func (v OAuthTokenView) Deserialize() (oauth2.Token, error) {
	return oauth2.Token{
		AccessToken:  v.AccessToken(),
		TokenType:    v.TokenType(),
		RefreshToken: v.RefreshToken(),
		Expiry:       v.Expiry(),
		ExpiresIn:    v.s.Int(5),
	}, nil
}
