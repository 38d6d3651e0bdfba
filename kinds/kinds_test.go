package kinds

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/unkn0wn-root/archcache"
	"github.com/unkn0wn-root/archcache/archive"
	"github.com/unkn0wn-root/archcache/codec"
)

// roundTrip checks both entry points: the untrusted path through Validated
// and the same-process path through Trusted.
func roundTrip[T any, A codec.View[T]](t *testing.T, p archcache.Policy[T, A], v T) (*archcache.Archived[T, A], T) {
	t.Helper()
	buf, err := p.Serialize(&v)
	if err != nil {
		t.Fatalf("%s: serialize: %v", p.Kind, err)
	}
	if !archive.IsAligned(buf) || len(buf)%8 != 0 {
		t.Fatalf("%s: archive not aligned", p.Kind)
	}
	a, err := archcache.Validated(p.Codec, buf)
	if err != nil {
		t.Fatalf("%s: validate: %v", p.Kind, err)
	}
	got, err := a.Deserialize()
	if err != nil {
		t.Fatalf("%s: deserialize: %v", p.Kind, err)
	}
	trusted, err := archcache.Trusted(p.Codec, buf).Deserialize()
	if err != nil {
		t.Fatalf("%s: trusted deserialize: %v", p.Kind, err)
	}
	if !reflect.DeepEqual(got, trusted) {
		t.Fatalf("%s: validated %+v != trusted %+v", p.Kind, got, trusted)
	}
	return a, got
}

func ptr[T any](v T) *T { return &v }

func TestUserProfileRoundTrip(t *testing.T) {
	cases := []UserProfile{
		{ID: 2, Username: "peppy", Accuracy: 99.5, PP: 0, Mode: ModeOsu},
		{ID: 124493, Username: "Cookiezi", Accuracy: 98.7, PP: 12345.6, GlobalRank: ptr[uint32](1), Country: ptr("KR"), Mode: ModeOsu},
		{ID: 7, Username: "", Accuracy: 0, PP: 1, GlobalRank: ptr[uint32](0), Mode: ModeMania},
		{ID: 8, Username: "ひらがな", Country: ptr(""), Mode: ModeCatch},
	}
	for _, want := range cases {
		a, got := roundTrip(t, UserProfiles, want)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("got %+v want %+v", got, want)
		}
		v := a.View()
		if v.ID() != uint64(want.ID) || v.Username() != want.Username || v.Mode() != want.Mode {
			t.Fatalf("view mismatch for %+v", want)
		}
		if _, ok := v.GlobalRank(); ok != (want.GlobalRank != nil) {
			t.Fatalf("rank presence mismatch for %+v", want)
		}
		if _, ok := v.Country(); ok != (want.Country != nil) {
			t.Fatalf("country presence mismatch for %+v", want)
		}
	}
}

func TestUserProfileBitFlipsRejected(t *testing.T) {
	u := UserProfile{ID: 2, Username: "peppy", Accuracy: 99.5, GlobalRank: ptr[uint32](42), Mode: ModeTaiko}
	buf, err := UserProfiles.Serialize(&u)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	for bit := 0; bit < len(buf)*8; bit++ {
		c := append([]byte(nil), buf...)
		c[bit/8] ^= 1 << (bit % 8)
		if _, err := archcache.Validated(UserProfiles.Codec, c); !errors.Is(err, archcache.ErrValidation) {
			t.Fatalf("bit %d: want validation error, got %v", bit, err)
		}
	}
}

func TestOutOfRangeEnumIsDeserializationError(t *testing.T) {
	u := UserProfile{ID: 1, Username: "x", Mode: GameMode(9)}
	buf, err := UserProfiles.Serialize(&u)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if _, err := archcache.Validated(UserProfiles.Codec, buf); !errors.Is(err, archive.ErrInvalid) {
		t.Fatalf("validator should reject the discriminant, got %v", err)
	}
	_, err = archcache.Trusted(UserProfiles.Codec, buf).Deserialize()
	if !errors.Is(err, archcache.ErrDeserialization) || !errors.Is(err, ErrRange) {
		t.Fatalf("want deserialization range error, got %v", err)
	}
}

func TestMapVersionsKeepOrder(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	want := MapVersions{
		{MapID: 75, Version: 3, Checksum: "c3", CreatedAt: base.Add(2 * time.Hour)},
		{MapID: 75, Version: 1, Checksum: "a1", CreatedAt: base},
		{MapID: 75, Version: 2, Checksum: "b2", CreatedAt: base.Add(time.Hour)},
	}
	a, got := roundTrip(t, MapVersionsByID, want)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
	v := a.View()
	if v.Len() != 3 {
		t.Fatalf("len = %d", v.Len())
	}
	for i, w := range want {
		mv := v.At(i)
		if mv.Version() != uint64(w.Version) || mv.Checksum() != w.Checksum || !mv.CreatedAt().Equal(w.CreatedAt) {
			t.Fatalf("element %d out of order: %d %q", i, mv.Version(), mv.Checksum())
		}
	}
	if v.At(3).Checksum() != "" {
		t.Fatalf("out of range element should read as zero")
	}

	_, empty := roundTrip(t, MapVersionsByID, nil)
	if empty != nil {
		t.Fatalf("empty list: %+v", empty)
	}
}

func TestMapVersionTimesRoundTrip(t *testing.T) {
	want := MapVersions{
		{MapID: 1, Version: 1, Checksum: "unknown"},
		{MapID: 1, Version: 2, CreatedAt: time.Date(1500, 6, 1, 0, 0, 0, 0, time.UTC)},
		{MapID: 1, Version: 3, CreatedAt: time.Date(3000, 1, 1, 12, 0, 0, 999999999, time.UTC)},
		{MapID: 1, Version: 4, CreatedAt: time.Unix(0, 0).UTC()},
	}
	a, got := roundTrip(t, MapVersionsByID, want)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
	if !got[0].CreatedAt.IsZero() || !a.View().At(0).CreatedAt().IsZero() {
		t.Fatalf("zero CreatedAt came back as %v", got[0].CreatedAt)
	}
	if got[3].CreatedAt.IsZero() {
		t.Fatalf("unix epoch must not decode as the zero time")
	}
}

func TestEmptySlicesDecodeAsNil(t *testing.T) {
	_, vs := roundTrip(t, MapVersionsByID, MapVersions{})
	if vs != nil {
		t.Fatalf("empty versions: %#v", vs)
	}
	_, g := roundTrip(t, GuildConfigs, GuildConfig{GuildID: 1, Prefixes: []string{}, Authorities: []uint64{}})
	if g.Prefixes != nil || g.Authorities != nil {
		t.Fatalf("empty lists: %#v", g)
	}
}

func TestGuildConfigRoundTrip(t *testing.T) {
	cases := []GuildConfig{
		{GuildID: 7, ScoreSize: ScoreSizeInitialMaximized},
		{
			GuildID:     297072529426612224,
			Prefixes:    []string{"<", "!!", "bathbot "},
			ScoreSize:   ScoreSizeAlwaysMinimized,
			TrackLimit:  ptr[uint8](50),
			Authorities: []uint64{1, 1 << 60},
		},
	}
	for _, want := range cases {
		a, got := roundTrip(t, GuildConfigs, want)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("got %+v want %+v", got, want)
		}
		for _, p := range want.Prefixes {
			if !a.View().HasPrefix(p) {
				t.Fatalf("prefix %q missing from view", p)
			}
		}
		if a.View().HasPrefix("?") {
			t.Fatalf("unexpected prefix")
		}
	}
	if GuildConfigs.TTL != 0 {
		t.Fatalf("guild configs must not expire")
	}
}

func TestOAuthTokenThroughAdapter(t *testing.T) {
	want := oauth2.Token{
		AccessToken:  "at",
		TokenType:    "Bearer",
		RefreshToken: "rt",
		Expiry:       time.Date(2025, 1, 2, 3, 4, 5, 6, time.UTC),
		ExpiresIn:    86400,
	}
	a, got := roundTrip(t, OAuthTokens, want)
	if got.AccessToken != want.AccessToken || got.TokenType != want.TokenType ||
		got.RefreshToken != want.RefreshToken || !got.Expiry.Equal(want.Expiry) || got.ExpiresIn != want.ExpiresIn {
		t.Fatalf("got %+v want %+v", got, want)
	}
	if a.View().AccessToken() != "at" {
		t.Fatalf("view: %q", a.View().AccessToken())
	}

	_, never := roundTrip(t, OAuthTokens, oauth2.Token{AccessToken: "x"})
	if !never.Expiry.IsZero() {
		t.Fatalf("zero expiry should stay zero, got %v", never.Expiry)
	}

	far := time.Date(2300, 1, 1, 0, 0, 0, 1, time.UTC)
	_, late := roundTrip(t, OAuthTokens, oauth2.Token{AccessToken: "x", Expiry: far})
	if !late.Expiry.Equal(far) {
		t.Fatalf("expiry past 2262: got %v want %v", late.Expiry, far)
	}
}

func TestRankingPageBlob(t *testing.T) {
	want := RankingPage{
		Mode:    ModeMania,
		Country: "DE",
		Page:    3,
		Entries: []RankingEntry{{UserID: 1, Username: "a", PP: 1.5}, {UserID: 2, Username: "b", PP: 1}},
	}
	a, got := roundTrip(t, RankingPages, want)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
	if a.View().Format() != "msgpack" || len(a.View().Payload()) == 0 {
		t.Fatalf("blob view: %q %d", a.View().Format(), len(a.View().Payload()))
	}
}

func TestKeysAreStable(t *testing.T) {
	if got := UserProfiles.StorageKey(UserKey(2)); got != "user_profile:user:2" {
		t.Fatalf("user key: %q", got)
	}
	if !UserKey(2).Equal(archcache.KeyString("user:2")) {
		t.Fatalf("UserKey(2) != \"user:2\"")
	}
	if got := GuildConfigs.StorageKey(GuildKey(7)); got != "guild_config:guild:7" {
		t.Fatalf("guild key: %q", got)
	}
	if got := RankingKey(ModeOsu, "", 1).String(); got != "osu:global:1" {
		t.Fatalf("ranking key: %q", got)
	}
	if got := RankingKey(ModeMania, "DE", 3).String(); got != "mania:DE:3" {
		t.Fatalf("ranking key: %q", got)
	}
	if MapKey(75).String() != MapKey(75).String() {
		t.Fatalf("map key unstable")
	}
}
