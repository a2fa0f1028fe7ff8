package analysis

import (
	"regexp"
	"strconv"
	"strings"
)

var digitRun = regexp.MustCompile(`\d+`)

// ParseRating normalizes a free-text rating ("4/5", "4", "4 out of 5") to
// an integer. Only values in the closed range 1-5 are accepted; anything
// else, including the sentinel, reports no valid rating.
func ParseRating(raw string) (int, bool) {
	if raw == "" || raw == Sentinel {
		return 0, false
	}
	s := raw
	if i := strings.Index(s, "/"); i >= 0 {
		s = s[:i]
	}
	digits := digitRun.FindString(s)
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 || n > 5 {
		return 0, false
	}
	return n, true
}
