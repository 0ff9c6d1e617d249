package pkg

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	DateLayout,
}

// ParseISOTime parses an ISO-8601 date or datetime. Values without an explicit
// offset are taken as UTC. The result is always in UTC.
func ParseISOTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty time value")
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ISO-8601 time: %s", value)
}

// ParseZonedISOTime is like ParseISOTime but requires an offset or a trailing Z.
func ParseZonedISOTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("time must be ISO-8601 with a zone: %s", value)
	}
	return t, nil
}
