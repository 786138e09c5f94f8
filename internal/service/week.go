package service

import (
	"fmt"
	"time"
)

// weekKey returns the ISO 8601 year-week bucket for a timestamp, e.g.
// "2026-W35". Check-ins and feedback are unique per bucket.
func weekKey(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}
