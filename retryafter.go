package aresilient

import (
	"strconv"
	"time"
)

// parseRetryAfter parses a Retry-After header value per RFC 7231 §7.1.3:
// either a non-negative integer number of seconds, or an HTTP-date.
// Unparseable input (including a negative integer) yields (0, false) so the
// caller falls back to the strategy-computed delay. An HTTP-date in the
// past clamps to (0, true) rather than being rejected; a server asking for
// an already-elapsed retry time means "retry now", not "ignore me".
func parseRetryAfter(value string, now time.Time) (time.Duration, bool) {
	if value == "" {
		return 0, false
	}

	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}

	for _, layout := range []string{time.RFC1123, time.RFC1123Z, time.RFC850, time.ANSIC} {
		if t, err := time.Parse(layout, value); err == nil {
			delta := t.Sub(now)
			if delta < 0 {
				delta = 0
			}
			return delta, true
		}
	}

	return 0, false
}
