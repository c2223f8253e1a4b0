package ffprobe

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseDuration converts a clock-format duration string (H:MM:SS.ffffff, as
// printed by ffprobe in sexagesimal mode) into seconds. The fractional
// seconds field is required since ffprobe always prints one. Durations of 24
// hours or longer are rejected, as is anything that deviates from the
// expected shape.
func ParseDuration(value string) (float64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, fmt.Errorf("parse duration: empty value")
	}

	parts := strings.Split(trimmed, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("parse duration %q: expected H:MM:SS.ffffff", trimmed)
	}

	hours, err := parseClockField(parts[0], 1, 2)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: hours: %w", trimmed, err)
	}
	if hours >= 24 {
		return 0, fmt.Errorf("parse duration %q: duration of 24 hours or longer", trimmed)
	}

	minutes, err := parseClockField(parts[1], 2, 2)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: minutes: %w", trimmed, err)
	}
	if minutes > 59 {
		return 0, fmt.Errorf("parse duration %q: minutes out of range", trimmed)
	}

	secondsField := parts[2]
	whole, fraction, hasFraction := strings.Cut(secondsField, ".")
	if !hasFraction {
		return 0, fmt.Errorf("parse duration %q: missing fractional seconds", trimmed)
	}
	seconds, err := parseClockField(whole, 2, 2)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: seconds: %w", trimmed, err)
	}
	if seconds > 59 {
		return 0, fmt.Errorf("parse duration %q: seconds out of range", trimmed)
	}

	if fraction == "" || len(fraction) > 9 {
		return 0, fmt.Errorf("parse duration %q: malformed fractional seconds", trimmed)
	}
	frac, err := strconv.ParseFloat("0."+fraction, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: malformed fractional seconds", trimmed)
	}
	return float64(hours*3600+minutes*60+seconds) + frac, nil
}

func parseClockField(field string, minDigits, maxDigits int) (int, error) {
	if len(field) < minDigits || len(field) > maxDigits {
		return 0, fmt.Errorf("field %q has unexpected width", field)
	}
	for _, r := range field {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("field %q is not numeric", field)
		}
	}
	parsed, err := strconv.Atoi(field)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}
