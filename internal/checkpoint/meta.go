package checkpoint

import (
	"fmt"
	"strings"
	"time"
)

const (
	isoSecondsLayout = "2006-01-02T15:04:05"
	isoMicrosLayout  = "2006-01-02T15:04:05.000000"
)

// Meta identifies a checkpoint by its (root checksum, time, name) triple.
// Its textual encoding names checkpoint documents in storage.
type Meta struct {
	Checksum string
	Time     time.Time
	Name     string // "" when unnamed
}

// Encode renders the identifier as <checksum>_<time>[_<name>]. The time
// part always carries six fractional digits, padding a seconds-precision
// rendering with .000000, so identifiers compare and sort stably.
func (m Meta) Encode() string {
	iso := formatTime(m.Time)
	if len(iso) == len(isoSecondsLayout) {
		iso += ".000000"
	}
	if m.Name == "" {
		return m.Checksum + "_" + iso
	}
	return m.Checksum + "_" + iso + "_" + m.Name
}

// DecodeMeta parses an identifier produced by Encode. Only the first two
// underscores separate fields; checksums are hex and cannot contain one,
// so a name with underscores survives intact.
func DecodeMeta(s string) (Meta, error) {
	parts := strings.SplitN(s, "_", 3)
	if len(parts) < 2 {
		return Meta{}, &DecodingError{Reason: fmt.Sprintf("invalid checkpoint identifier %q", s)}
	}
	at, err := parseTime(parts[1])
	if err != nil {
		return Meta{}, &DecodingError{Reason: fmt.Sprintf("invalid time in identifier %q", s)}
	}
	m := Meta{Checksum: parts[0], Time: at}
	if len(parts) == 3 {
		m.Name = parts[2]
	}
	return m, nil
}

// formatTime renders t the way checkpoint documents carry it: seconds
// precision, with a fractional part only when it is nonzero.
func formatTime(t time.Time) string {
	if t.Nanosecond() == 0 {
		return t.Format(isoSecondsLayout)
	}
	return t.Format(isoMicrosLayout)
}

// parseTime accepts local ISO-8601 times with or without fractional
// seconds. The stdlib parser tolerates an optional fraction after the
// seconds field, so one layout covers both forms; the length guard keeps
// out trailing garbage and zone suffixes.
func parseTime(s string) (time.Time, error) {
	if len(s) < len(isoSecondsLayout) || len(s) > len(isoMicrosLayout) {
		return time.Time{}, fmt.Errorf("cannot parse time %q", s)
	}
	return time.ParseInLocation(isoSecondsLayout, s, time.Local)
}
