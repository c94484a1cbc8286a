package utils

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// ParseDate parses a date-only string as a calendar date in loc. Date-only
// values must never go through default UTC parsing: shifting by timezone can
// move the value across a day boundary and corrupt overlap comparisons.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return t, nil
}

// Nights counts the nights in the half-open range [checkIn, checkOut).
// Calendar days, not elapsed duration: a DST transition inside the range
// must not change the count, so both endpoints are re-anchored to midnight
// on a fixed-offset clock before dividing.
func Nights(checkIn, checkOut time.Time) int {
	y1, m1, d1 := checkIn.Date()
	y2, m2, d2 := checkOut.Date()
	start := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	end := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start) / (24 * time.Hour))
}

// Today returns the current calendar date in loc, truncated to midnight.
func Today(loc *time.Location) time.Time {
	now := time.Now().In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
}
