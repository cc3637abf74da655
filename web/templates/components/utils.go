package components

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mergestat/timediff"
)

// FormatRelativeTime formats a time.Time as a relative time string like "3 minutes ago".
// The zero time yields "never".
func FormatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return timediff.TimeDiff(t)
}

// FormatCount formats a row count with thousands separators.
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}

// NoticeClass maps a notice level to its banner css class.
func NoticeClass(level string) string {
	switch level {
	case "error":
		return "notice notice-error"
	case "warning":
		return "notice notice-warning"
	default:
		return "notice notice-info"
	}
}
