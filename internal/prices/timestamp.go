package prices

import (
	"strconv"
	"strings"
	"time"
)

// ParseUpstreamDate extracts a timezone-aware instant from the
// proprietary upstream date token, e.g. "/Date(1733180280000+1030)/":
// milliseconds since the Unix epoch followed by an optional ±HHMM UTC
// offset, wrapped in parentheses. Parsing fails softly: any malformed
// token yields (zero, false), never a panic or error. Records whose
// dates fail to parse are dropped from the normalized history.
func ParseUpstreamDate(token string) (time.Time, bool) {
	open := strings.IndexByte(token, '(')
	end := strings.LastIndexByte(token, ')')
	if open < 0 || end < 0 || end <= open+1 {
		return time.Time{}, false
	}
	inner := token[open+1 : end]

	digits := inner
	offset := ""
	if i := strings.IndexAny(inner[1:], "+-"); i >= 0 {
		digits = inner[:i+1]
		offset = inner[i+1:]
	}

	millis, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return time.Time{}, false
	}

	loc := time.UTC
	if offset != "" {
		seconds, ok := parseOffset(offset)
		if !ok {
			return time.Time{}, false
		}
		loc = time.FixedZone("UTC"+offset, seconds)
	}

	return time.UnixMilli(millis).In(loc), true
}

// parseOffset converts a ±HHMM token into seconds east of UTC.
func parseOffset(offset string) (int, bool) {
	if len(offset) != 5 {
		return 0, false
	}
	sign := 1
	switch offset[0] {
	case '+':
	case '-':
		sign = -1
	default:
		return 0, false
	}
	hours, err := strconv.Atoi(offset[1:3])
	if err != nil || hours > 23 {
		return 0, false
	}
	minutes, err := strconv.Atoi(offset[3:5])
	if err != nil || minutes > 59 {
		return 0, false
	}
	return sign * (hours*3600 + minutes*60), true
}
