package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeAgo(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		ago  time.Duration
		want string
	}{
		{"seconds", 30 * time.Second, "Just now"},
		{"one minute", 90 * time.Second, "1 minute ago"},
		{"minutes", 5 * time.Minute, "5 minutes ago"},
		{"one hour", 61 * time.Minute, "1 hour ago"},
		{"hours", 2 * time.Hour, "2 hours ago"},
		{"one day", 25 * time.Hour, "1 day ago"},
		{"days", 3 * 24 * time.Hour, "3 days ago"},
		{"one week", 8 * 24 * time.Hour, "1 week ago"},
		{"weeks", 20 * 24 * time.Hour, "2 weeks ago"},
		{"one month", 31 * 24 * time.Hour, "1 month ago"},
		{"months", 90 * 24 * time.Hour, "3 months ago"},
		{"one year", 400 * 24 * time.Hour, "1 year ago"},
		{"years", 800 * 24 * time.Hour, "2 years ago"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TimeAgo(now.Add(-tc.ago), now))
		})
	}
}

func TestTimeAgoZeroTime(t *testing.T) {
	assert.Equal(t, "", TimeAgo(time.Time{}, time.Now()))
}
