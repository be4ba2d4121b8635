package feed

import (
	"fmt"
	"time"
)

var timeAgoIntervals = []struct {
	unit string
	secs int64
}{
	{"year", 31536000},
	{"month", 2592000},
	{"week", 604800},
	{"day", 86400},
	{"hour", 3600},
	{"minute", 60},
}

// TimeAgo renders the coarse relative timestamp the clients show next to
// comments ("3 hours ago"). A zero time renders empty.
func TimeAgo(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	secs := int64(now.Sub(t).Seconds())
	for _, iv := range timeAgoIntervals {
		if n := secs / iv.secs; n > 0 {
			if n > 1 {
				return fmt.Sprintf("%d %ss ago", n, iv.unit)
			}
			return fmt.Sprintf("1 %s ago", iv.unit)
		}
	}
	return "Just now"
}
