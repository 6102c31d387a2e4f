package freshness

import (
	"time"
	_ "time/tzdata"

	"github.com/morikuni/failure/v2"
)

const (
	// Unknown is the label used when no tier produced a timestamp
	Unknown = "unknown"

	// Layout is the display layout shared by freshness and fetch labels
	Layout = "2006-01-02 15:04"

	DefaultTimezone = "America/New_York"
	DefaultSuffix   = "ET"
)

// Display renders instants as wall-clock labels in one fixed location.
type Display struct {
	Location *time.Location
	Suffix   string
}

// LoadDisplay builds a Display for an IANA zone name such as "America/New_York".
func LoadDisplay(tz, suffix string) (Display, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Display{}, failure.New(ErrInvalidTimezone,
			failure.Message("Unknown display timezone"),
			failure.Context{"timezone": tz, "error": err.Error()},
		)
	}
	return Display{Location: loc, Suffix: suffix}, nil
}

// DefaultDisplay renders New York civil time with an "ET" suffix.
func DefaultDisplay() Display {
	d, err := LoadDisplay(DefaultTimezone, DefaultSuffix)
	if err != nil {
		// tzdata is embedded, so this only happens with a corrupted binary
		panic(err)
	}
	return d
}

// Format returns t as "YYYY-MM-DD HH:MM <suffix>".
func (d Display) Format(t time.Time) string {
	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}
	s := t.In(loc).Format(Layout)
	if d.Suffix != "" {
		s += " " + d.Suffix
	}
	return s
}
