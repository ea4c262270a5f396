package auth

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrDurationAbsent means no lifetime expression was supplied.
	ErrDurationAbsent = errors.New("duration absent")
	// ErrMalformedDuration means the expression matches neither grammar form.
	ErrMalformedDuration = errors.New("malformed duration")
)

var unitSeconds = map[byte]int64{
	's': 1,
	'm': 60,
	'h': 60 * 60,
	'd': 60 * 60 * 24,
}

// ParseDuration converts a lifetime expression into seconds.
//
// The last character selects the unit (s, m, h, d) and the rest must be a
// base-10 integer in canonical form: no plus sign, no leading zeros. Without
// a recognized unit the whole string is read as seconds. Input is not trimmed
// and negative amounts are preserved.
func ParseDuration(spec string) (int64, error) {
	if spec == "" {
		return 0, fmt.Errorf("%w: empty", ErrMalformedDuration)
	}

	unit := strings.ToLower(spec[len(spec)-1:])[0]
	if factor, ok := unitSeconds[unit]; ok {
		amount, err := parseAmount(spec[:len(spec)-1])
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrMalformedDuration, spec)
		}
		if amount > math.MaxInt64/factor || amount < math.MinInt64/factor {
			return 0, fmt.Errorf("%w: %q overflows", ErrMalformedDuration, spec)
		}
		return amount * factor, nil
	}

	seconds, err := parseAmount(spec)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedDuration, spec)
	}
	return seconds, nil
}

// parseAmount accepts only integers that print back to the same text.
func parseAmount(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if strconv.FormatInt(n, 10) != s {
		return 0, fmt.Errorf("non-canonical integer %q", s)
	}
	return n, nil
}

// ParseDurationValue accepts the loosely typed forms a lifetime can arrive in:
// nil (absent), an integer count of seconds, or a string expression.
func ParseDurationValue(v any) (int64, error) {
	switch val := v.(type) {
	case nil:
		return 0, ErrDurationAbsent
	case int:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case int64:
		return val, nil
	case string:
		return ParseDuration(val)
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrMalformedDuration, v)
	}
}

// Seconds converts a parsed second count into a time.Duration.
func Seconds(n int64) time.Duration {
	return time.Duration(n) * time.Second
}
