package kinds

import (
	"math"
	"time"

	"github.com/unkn0wn-root/archcache"
	"github.com/unkn0wn-root/archcache/archive"
	"github.com/unkn0wn-root/archcache/codec"
)

// UserProfile is the subset of an osu! user the bot shows in embeds.
type UserProfile struct {
	ID         uint32
	Username   string
	Accuracy   float64 // percent
	PP         float64
	GlobalRank *uint32 // nil for inactive users
	Country    *string // ISO code; nil when hidden
	Mode       GameMode
}

// id, username, accuracy, pp, global rank?, country?, mode
var userProfileShape = archive.StructShape(
	archive.UintShape,
	archive.StringShape,
	archive.FloatShape,
	archive.FloatShape,
	archive.OptionalShape(archive.UintShape),
	archive.OptionalShape(archive.StringShape),
	archive.EnumShape(uint64(numModes)),
)

// UserProfiles caches profiles for ten minutes under "user_profile:user:<id>".
var UserProfiles = archcache.Policy[UserProfile, UserProfileView]{
	Kind:  "user_profile",
	TTL:   600 * time.Second,
	Codec: codec.Native[UserProfile, UserProfileView](userProfileShape, bindUserProfile),
}

// UserKey is the key of a user's profile.
func UserKey(id uint32) archcache.Key { return archcache.ID("user", uint64(id)) }

func (u UserProfile) MarshalArchive(b *archive.Builder) (archive.Ref, error) {
	name := b.String(u.Username)
	rank := archive.None()
	if u.GlobalRank != nil {
		rank = archive.Uint(uint64(*u.GlobalRank))
	}
	country := archive.None()
	if u.Country != nil {
		country = archive.Child(b.String(*u.Country))
	}
	return b.Struct(
		archive.Uint(uint64(u.ID)),
		archive.Child(name),
		archive.Float(u.Accuracy),
		archive.Float(u.PP),
		rank,
		country,
		archive.Uint(uint64(u.Mode)),
	), nil
}

// UserProfileView reads an archived profile in place.
type UserProfileView struct{ s archive.Struct }

func bindUserProfile(n archive.Node) UserProfileView { return UserProfileView{s: n.Struct()} }

func (v UserProfileView) ID() uint64        { return v.s.Uint(0) }
func (v UserProfileView) Username() string  { return v.s.String(1) }
func (v UserProfileView) Accuracy() float64 { return v.s.Float(2) }
func (v UserProfileView) PP() float64       { return v.s.Float(3) }
func (v UserProfileView) Mode() GameMode    { return GameMode(v.s.Uint(6)) }

func (v UserProfileView) GlobalRank() (uint64, bool) { return v.s.OptUint(4) }
func (v UserProfileView) Country() (string, bool)    { return v.s.OptString(5) }

func (v UserProfileView) Deserialize() (UserProfile, error) {
	id := v.ID()
	if id > math.MaxUint32 {
		return UserProfile{}, rangeErr("id", id)
	}
	mode := v.s.Uint(6)
	if mode >= uint64(numModes) {
		return UserProfile{}, rangeErr("mode", mode)
	}
	u := UserProfile{
		ID:       uint32(id),
		Username: v.Username(),
		Accuracy: v.Accuracy(),
		PP:       v.PP(),
		Mode:     GameMode(mode),
	}
	if r, ok := v.GlobalRank(); ok {
		if r > math.MaxUint32 {
			return UserProfile{}, rangeErr("global rank", r)
		}
		rank := uint32(r)
		u.GlobalRank = &rank
	}
	if c, ok := v.Country(); ok {
		u.Country = &c
	}
	return u, nil
}
