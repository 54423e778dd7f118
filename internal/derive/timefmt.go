package derive

import (
	"fmt"
	"time"
)

const (
	dateLayout     = "January 2, 2006"
	dateTimeLayout = "January 2, 2006 15:04"
)

// FormatDate renders t as a long-form date
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// FormatDateTime renders t as a long-form date with time of day
func FormatDateTime(t time.Time) string {
	return t.Format(dateTimeLayout)
}

// RelativeTime describes t relative to now using the coarsest bucket that
// fits. Bucket limits are exclusive: exactly 60s is "1 minute ago".
func RelativeTime(t, now time.Time) string {
	secs := int64(now.Sub(t) / time.Second)

	switch {
	case secs < 60:
		return "just now"
	case secs < 3600:
		return plural(secs/60, "minute")
	case secs < 86400:
		return plural(secs/3600, "hour")
	case secs < 604800:
		return plural(secs/86400, "day")
	}
	return FormatDate(t)
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
