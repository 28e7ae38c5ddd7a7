package codec

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// maxDuration is 2^63 nanoseconds, one past the largest time.Duration.
const maxDuration = float64(1 << 63)

// FormatDuration renders d as an ISO 8601 duration using days, hours,
// minutes and seconds, e.g. P1DT2H30M or PT0.5S.
func FormatDuration(d time.Duration) string {
	if d == 0 {
		return "PT0S"
	}
	var sb strings.Builder
	// Unsigned magnitude so that math.MinInt64 has a positive counterpart.
	u := uint64(d)
	if d < 0 {
		sb.WriteByte('-')
		u = -u
	}
	sb.WriteByte('P')
	const (
		day    = uint64(24 * time.Hour)
		hour   = uint64(time.Hour)
		minute = uint64(time.Minute)
	)
	if days := u / day; days > 0 {
		fmt.Fprintf(&sb, "%dD", days)
		u -= days * day
	}
	if u == 0 {
		return sb.String()
	}
	sb.WriteByte('T')
	if h := u / hour; h > 0 {
		fmt.Fprintf(&sb, "%dH", h)
		u -= h * hour
	}
	if m := u / minute; m > 0 {
		fmt.Fprintf(&sb, "%dM", m)
		u -= m * minute
	}
	if u > 0 {
		sec, frac := u/uint64(time.Second), u%uint64(time.Second)
		sb.WriteString(strconv.FormatUint(sec, 10))
		if frac > 0 {
			sb.WriteString(strings.TrimRight(fmt.Sprintf(".%09d", frac), "0"))
		}
		sb.WriteByte('S')
	}
	return sb.String()
}

// ParseDuration parses an ISO 8601 duration. Weeks, days, hours, minutes and
// fractional seconds are supported; years and months have no fixed length
// and are rejected.
func ParseDuration(s string) (time.Duration, error) {
	orig := s
	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	if !strings.HasPrefix(s, "P") || len(s) < 2 {
		return 0, fmt.Errorf("invalid ISO 8601 duration %q", orig)
	}
	s = s[1:]

	var total float64
	inTime := false
	seen := false
	for len(s) > 0 {
		if s[0] == 'T' {
			if inTime || len(s) == 1 {
				return 0, fmt.Errorf("invalid ISO 8601 duration %q", orig)
			}
			inTime = true
			s = s[1:]
			continue
		}
		i := 0
		for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.' || s[i] == ',') {
			i++
		}
		if i == 0 || i == len(s) {
			return 0, fmt.Errorf("invalid ISO 8601 duration %q", orig)
		}
		n, err := strconv.ParseFloat(strings.ReplaceAll(s[:i], ",", "."), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid ISO 8601 duration %q: %w", orig, err)
		}
		unit, err := durationUnit(s[i], inTime)
		if err != nil {
			return 0, fmt.Errorf("invalid ISO 8601 duration %q: %w", orig, err)
		}
		total += n * float64(unit)
		seen = true
		s = s[i+1:]
	}
	if !seen {
		return 0, fmt.Errorf("invalid ISO 8601 duration %q", orig)
	}
	if total >= maxDuration {
		if neg && total == maxDuration {
			return math.MinInt64, nil
		}
		return 0, fmt.Errorf("ISO 8601 duration %q overflows", orig)
	}
	d := time.Duration(math.Round(total))
	if neg {
		d = -d
	}
	return d, nil
}

func durationUnit(c byte, inTime bool) (time.Duration, error) {
	if inTime {
		switch c {
		case 'H':
			return time.Hour, nil
		case 'M':
			return time.Minute, nil
		case 'S':
			return time.Second, nil
		}
		return 0, fmt.Errorf("unknown time designator %q", c)
	}
	switch c {
	case 'W':
		return 7 * 24 * time.Hour, nil
	case 'D':
		return 24 * time.Hour, nil
	case 'Y', 'M':
		return 0, fmt.Errorf("designator %q has no fixed length", c)
	}
	return 0, fmt.Errorf("unknown date designator %q", c)
}
