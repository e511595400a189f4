package utils

import (
	"strings"
	"time"
)

const (
	layoutDate  = "2006-01-02"
	layoutClock = "15:04"
)

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// ParseDate parses YYYY-MM-DD in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(layoutDate, strings.TrimSpace(s), time.UTC)
}

// ParseClock parses HH:MM.
func ParseClock(s string) (time.Time, error) {
	return time.Parse(layoutClock, strings.TrimSpace(s))
}

// FormatDate formats time to YYYY-MM-DD in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(layoutDate)
}

// Upload-date buckets accepted by recipe search.
const (
	UploadedToday     = "today"
	UploadedThisMonth = "this month"
	UploadedThisYear  = "this year"
)

// BucketStart returns the start of the bucket containing now. ok is false
// for unknown buckets. Matching is case-insensitive.
func BucketStart(bucket string, now time.Time) (time.Time, bool) {
	now = now.UTC()
	switch strings.ToLower(strings.TrimSpace(bucket)) {
	case UploadedToday:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), true
	case UploadedThisMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC), true
	case UploadedThisYear:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), true
	default:
		return time.Time{}, false
	}
}
