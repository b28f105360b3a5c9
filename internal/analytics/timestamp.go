package analytics

import (
	"strings"
	"time"
)

// timestampLayouts are the accepted textual formats, tried in order. The
// slash layouts come first because they are what the history sheet writes;
// the ISO layouts cover rows edited by hand or imported from elsewhere.
var timestampLayouts = []string{
	"1/2/2006 15:04:05",
	"1/2/2006",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// isoLayouts are the generic fallbacks tried after the primary list.
// RFC 3339 accepts a trailing "Z" as an explicit zero offset.
var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// ParseTimestamp parses a raw timestamp string against the accepted layouts
// in order and returns the first successful parse. The second return value
// is false when the input is blank or matches none of the layouts; callers
// must treat that as a data-quality signal, not a fatal error.
func ParseTimestamp(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
