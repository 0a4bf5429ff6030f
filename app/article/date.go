package article

import (
	"math"
	"strings"
	"time"
)

// Order matters: several layouts are prefixes or looser variants of others,
// so the stricter ones come first.
var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04:05 -0700",
	"Mon, 02 Jan 2006 15:04 -0700",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"January 2, 2006 | 3:04PM", // consumer.ftc.gov
	"January 2, 2006 | 3:04 PM",
	"January 2, 2006 3:04 PM",
	"January 2, 2006",
	"Jan 2, 2006",
}

// Go parses an unknown zone abbreviation as a zero offset that keeps the
// name. These are the ones feeds commonly use.
var zoneOffsets = map[string]int{
	"EST": -5 * 3600, "EDT": -4 * 3600,
	"CST": -6 * 3600, "CDT": -5 * 3600,
	"MST": -7 * 3600, "MDT": -6 * 3600,
	"PST": -8 * 3600, "PDT": -7 * 3600,
	"AKST": -9 * 3600, "AKDT": -8 * 3600,
	"HST": -10 * 3600,
	"BST": 1 * 3600, "CET": 1 * 3600, "CEST": 2 * 3600,
	"EET": 2 * 3600, "EEST": 3 * 3600,
	"JST": 9 * 3600, "AEST": 10 * 3600, "AEDT": 11 * 3600,
}

// ParseTimestamp converts a feed publication value to UTC. The fallback is
// consulted only when primary yields nothing. Zoneless values are read in loc.
// A nil result means no usable date, which is not an error.
func ParseTimestamp(primary, fallback PublishedValue, loc *time.Location) *time.Time {
	if loc == nil {
		loc = time.Local
	}

	if t := parsePublished(primary, loc); t != nil {
		return t
	}
	return parsePublished(fallback, loc)
}

func parsePublished(v PublishedValue, loc *time.Location) *time.Time {
	switch {
	case v.Time != nil:
		if v.Time.IsZero() {
			return nil
		}
		t := resolveZone(*v.Time).UTC()
		return &t
	case v.Parts != nil:
		p := v.Parts
		if p.Year == 0 {
			return nil
		}
		t := time.Date(p.Year, p.Month, p.Day, p.Hour, p.Minute, p.Second, 0, loc).UTC()
		return &t
	case v.Epoch != nil:
		if math.IsNaN(*v.Epoch) || math.IsInf(*v.Epoch, 0) {
			return nil
		}
		sec, frac := math.Modf(*v.Epoch)
		t := time.Unix(int64(sec), int64(frac*1e9)).UTC()
		return &t
	case v.Text != "":
		return parseDateText(v.Text, loc)
	}
	return nil
}

func parseDateText(text string, loc *time.Location) *time.Time {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, text, loc); err == nil {
			t = resolveZone(t).UTC()
			return &t
		}
	}
	return nil
}

// resolveZone fixes times whose zone abbreviation was not recognized and
// therefore read as UTC.
func resolveZone(t time.Time) time.Time {
	name, offset := t.Zone()
	if offset != 0 {
		return t
	}

	known, ok := zoneOffsets[strings.ToUpper(name)]
	if !ok {
		return t
	}

	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(),
		time.FixedZone(name, known))
}
