package csvnorm

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Number coerces a currency/percent-formatted cell to a float. "$1,234.50",
// "12.5%", and "1234.5" all parse; empty or non-numeric input coerces to 0.
// The second return reports whether a non-empty cell failed to parse, so
// callers can emit a diagnostic for silent zero-coercion.
func Number(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, true
	}
	s = strings.NewReplacer("$", "", ",", "", "%", "", " ", "").Replace(s)
	if s == "" {
		return 0, false
	}
	// Accounting-style negatives: (123.45)
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		v = -v
	}
	return v, true
}

// Count coerces a cell to a non-negative integer count. Fractional values
// truncate; negatives clamp to 0 (counts cannot be negative).
func Count(raw string) (int, bool) {
	v, ok := Number(raw)
	if v < 0 {
		v = 0
	}
	return int(v), ok
}

// usDateRe matches MM/DD/YYYY or MM/DD/YY with an optional HH:MM[:SS] suffix.
var usDateRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2,4})(?:[ T](\d{1,2}):(\d{2})(?::(\d{2}))?)?`)

// genericLayouts are tried in order after the US slash format. All are
// interpreted as UTC; none of the upstream exports carry zone info.
var genericLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"Jan 2, 2006 3:04 PM",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// Timestamp coerces a cell to a UTC time. US-style MM/DD/YYYY[ HH:MM[:SS]]
// is tried first (2-digit years pivot: <70 → 20xx, else 19xx), then the
// generic layouts. Returns nil when nothing matches — callers must treat a
// nil date as "exclude from time-based aggregation", not as a failure.
func Timestamp(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	if m := usDateRe.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if len(m[3]) <= 2 {
			if year < 70 {
				year += 2000
			} else {
				year += 1900
			}
		}
		hour, min, sec := 0, 0, 0
		if m[4] != "" {
			hour, _ = strconv.Atoi(m[4])
			min, _ = strconv.Atoi(m[5])
		}
		if m[6] != "" {
			sec, _ = strconv.Atoi(m[6])
		}
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 && hour < 24 && min < 60 && sec < 60 {
			t := time.Date(year, time.Month(month), day, hour, min, sec, 0, time.UTC)
			return &t
		}
	}

	for _, layout := range genericLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
