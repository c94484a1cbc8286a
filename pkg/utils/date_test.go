package utils

import (
	"testing"
	"time"
)

func TestParseDateKeepsLocation(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	d, err := ParseDate("2025-10-07", loc)
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}

	if d.Location() != loc {
		t.Errorf("expected location %v, got %v", loc, d.Location())
	}
	if d.Hour() != 0 || d.Minute() != 0 {
		t.Errorf("expected midnight, got %v", d)
	}
	if d.Year() != 2025 || d.Month() != time.October || d.Day() != 7 {
		t.Errorf("wrong calendar date: %v", d)
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, value := range []string{"", "07-10-2025", "2025/10/07", "2025-13-01", "tomorrow"} {
		if _, err := ParseDate(value, time.UTC); err == nil {
			t.Errorf("ParseDate(%q) accepted invalid input", value)
		}
	}
}

func TestNights(t *testing.T) {
	cases := []struct {
		checkIn, checkOut string
		want              int
	}{
		{"2025-10-07", "2025-10-09", 2},
		{"2025-10-07", "2025-10-08", 1},
		{"2025-10-07", "2025-10-07", 0},
		{"2025-10-09", "2025-10-07", -2},
		{"2025-12-30", "2026-01-02", 3},
	}

	for _, tc := range cases {
		in, _ := ParseDate(tc.checkIn, time.UTC)
		out, _ := ParseDate(tc.checkOut, time.UTC)
		if got := Nights(in, out); got != tc.want {
			t.Errorf("Nights(%s, %s) = %d, want %d", tc.checkIn, tc.checkOut, got, tc.want)
		}
	}
}

func TestNightsAcrossDSTTransitions(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	cases := []struct {
		checkIn, checkOut string
		want              int
	}{
		{"2026-03-08", "2026-03-09", 1}, // spring forward, 23h elapsed
		{"2026-11-01", "2026-11-02", 1}, // fall back, 25h elapsed
		{"2026-03-06", "2026-03-10", 4},
	}

	for _, tc := range cases {
		in, _ := ParseDate(tc.checkIn, loc)
		out, _ := ParseDate(tc.checkOut, loc)
		if got := Nights(in, out); got != tc.want {
			t.Errorf("Nights(%s, %s) = %d, want %d", tc.checkIn, tc.checkOut, got, tc.want)
		}
	}
}

func TestTodayIsMidnight(t *testing.T) {
	today := Today(time.UTC)
	if today.Hour() != 0 || today.Minute() != 0 || today.Second() != 0 || today.Nanosecond() != 0 {
		t.Errorf("Today not truncated to midnight: %v", today)
	}
}
