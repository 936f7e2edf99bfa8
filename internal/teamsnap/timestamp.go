package teamsnap

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// NormalizeTimestamp turns a TeamSnap date string and its companion
// time_zone_offset into a zoned instant.
//
// TeamSnap labels local times with a trailing "Z". The marker is dropped and
// offset appended, so "2024-01-10T10:00:00Z" with "-05:00" becomes
// 10:00 at UTC-5. Strings that already carry a numeric offset are parsed as
// they are.
func NormalizeTimestamp(raw, offset string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("empty date")
	}

	local := strings.TrimSuffix(raw, "Z")
	if local == raw {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t, nil
		}
	}

	off, err := normalizeOffset(offset)
	if err != nil {
		return time.Time{}, err
	}

	t, err := time.Parse(time.RFC3339, local+off)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", raw, err)
	}
	return t, nil
}

// normalizeOffset accepts ±HH:MM, ±HHMM and ±HH and returns ±HH:MM.
func normalizeOffset(offset string) (string, error) {
	offset = strings.TrimSpace(offset)
	if offset == "Z" {
		return "Z", nil
	}
	if len(offset) < 3 || (offset[0] != '+' && offset[0] != '-') {
		return "", fmt.Errorf("invalid time zone offset %q", offset)
	}

	sign, digits := offset[:1], strings.ReplaceAll(offset[1:], ":", "")
	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("invalid time zone offset %q", offset)
		}
	}
	switch len(digits) {
	case 2:
		digits += "00"
	case 4:
	default:
		return "", fmt.Errorf("invalid time zone offset %q", offset)
	}
	return sign + digits[:2] + ":" + digits[2:], nil
}
