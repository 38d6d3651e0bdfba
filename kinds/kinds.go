// Package kinds declares the values the bot caches. Each kind is a type, its
// archived view and one archcache.Policy; nothing registers them centrally.
package kinds

import (
	"errors"
	"fmt"
	"time"

	"github.com/unkn0wn-root/archcache/archive"
)

// ErrRange reports an archived number that does not fit its Go field.
var ErrRange = errors.New("kinds: archived value out of range")

func rangeErr(field string, v uint64) error {
	return fmt.Errorf("%w: %s = %d", ErrRange, field, v)
}

// Timestamps take two slots: optional unix seconds, then nanoseconds. The
// zero time is stored as none. Decoded times are in UTC.
var (
	timeSecShape  = archive.OptionalShape(archive.IntShape)
	timeNsecShape = archive.EnumShape(uint64(time.Second))
)

func timeSlots(t time.Time) (sec, nsec archive.Slot) {
	if t.IsZero() {
		return archive.None(), archive.Uint(0)
	}
	return archive.Int(t.Unix()), archive.Uint(uint64(t.Nanosecond()))
}

func readTime(s archive.Struct, i int) time.Time {
	sec, ok := s.OptInt(i)
	if !ok {
		return time.Time{}
	}
	return time.Unix(sec, int64(s.Uint(i+1))).UTC()
}

// GameMode is the osu! ruleset.
type GameMode uint8

const (
	ModeOsu GameMode = iota
	ModeTaiko
	ModeCatch
	ModeMania
	numModes
)

func (m GameMode) String() string {
	switch m {
	case ModeOsu:
		return "osu"
	case ModeTaiko:
		return "taiko"
	case ModeCatch:
		return "fruits"
	case ModeMania:
		return "mania"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}
