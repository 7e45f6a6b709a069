package entity

import (
	"errors"
	"math"
	"strings"
	"time"
)

// Instant is an absolute point in time in nanoseconds since the Unix epoch.
// Two timestamps naming the same moment in different offsets map to the same Instant.
type Instant int64

var (
	ErrEmptyTimestamp    = errors.New("empty timestamp")
	ErrBadTimestamp      = errors.New("bad timestamp")
	ErrInstantOutOfRange = errors.New("timestamp out of range")
)

// layouts with an explicit offset come first; the rest are read as UTC.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

var (
	minInstantTime = time.Unix(0, math.MinInt64).UTC()
	maxInstantTime = time.Unix(0, math.MaxInt64).UTC()
)

func ParseInstant(s string) (Instant, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrEmptyTimestamp
	}
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return InstantOf(t)
	}
	return 0, ErrBadTimestamp
}

func InstantOf(t time.Time) (Instant, error) {
	if t.Before(minInstantTime) || t.After(maxInstantTime) {
		return 0, ErrInstantOutOfRange
	}
	return Instant(t.UnixNano()), nil
}

func (i Instant) Time() time.Time { return time.Unix(0, int64(i)).UTC() }

// Format renders the instant in UTC with second precision and a Z suffix.
// Sub-second digits are dropped, not rounded.
func (i Instant) Format() string {
	return i.Time().Truncate(time.Second).Format("2006-01-02T15:04:05Z")
}

func (i Instant) String() string { return i.Format() }
