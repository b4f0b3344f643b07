package controllers

import (
	"strconv"
	"strings"
	"time"

	"github.com/standin-hq/standin/pkg/serrors"
)

var errBadDuration = serrors.NewError("BAD_DURATION", "duration must look like 3w, 4d or 5h", "")

// parseDuration reads the short duration form used by the delegation API:
// an integer followed by w (weeks), d (days) or h (hours).
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return 0, errBadDuration
	}

	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n < 0 {
		return 0, errBadDuration
	}

	switch s[len(s)-1] {
	case 'w':
		return time.Duration(n) * 7 * 24 * time.Hour, nil
	case 'd':
		return time.Duration(n) * 24 * time.Hour, nil
	case 'h':
		return time.Duration(n) * time.Hour, nil
	default:
		return 0, errBadDuration
	}
}
