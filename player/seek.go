// SPDX-License-Identifier: EPL-2.0

package player

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// seekUnits maps seek suffixes to their unit. A bare number is in
// microseconds.
var seekUnits = map[string]time.Duration{
	"":      time.Microsecond,
	"s":     time.Second,
	"sec":   time.Second,
	"secs":  time.Second,
	"m":     time.Minute,
	"min":   time.Minute,
	"mins":  time.Minute,
	"h":     time.Hour,
	"hour":  time.Hour,
	"hours": time.Hour,
}

// ParseSeekTime reads "<count><unit>", for example "90s", "3 mins" or
// "1500000". Anything else is tried as a Go duration such as "1m30s".
func ParseSeekTime(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	digits := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	if digits < 0 {
		digits = len(s)
	}

	if digits > 0 {
		unit, ok := seekUnits[strings.TrimSpace(s[digits:])]
		if ok {
			n, err := strconv.ParseInt(s[:digits], 10, 64)
			if err != nil || n > math.MaxInt64/int64(unit) {
				return 0, fmt.Errorf("%w: %q out of range", ErrBadSeekTime, s)
			}
			return time.Duration(n) * unit, nil
		}
	}

	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: %q", ErrBadSeekTime, s)
	}
	return d, nil
}
