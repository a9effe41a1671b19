package dates

import (
	"testing"
	"time"
)

func TestParseAndString_RoundTrip(t *testing.T) {
	d, err := Parse("2026-02-09")
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if d.Year != 2026 || d.Month != time.February || d.Day != 9 {
		t.Errorf("Parse() = %+v, want 2026-02-09", d)
	}
	if got := d.String(); got != "2026-02-09" {
		t.Errorf("String() = %q, want %q", got, "2026-02-09")
	}
}

func TestParse_Malformed(t *testing.T) {
	for _, s := range []string{"", "2026-2-9", "02/09/2026", "2026-13-01"} {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", s)
		}
	}
}

func TestAddDays_MonthBoundary(t *testing.T) {
	d := New(2026, time.January, 31)
	if got := d.AddDays(1).String(); got != "2026-02-01" {
		t.Errorf("AddDays(1) = %s, want 2026-02-01", got)
	}
	if got := d.AddDays(-31).String(); got != "2025-12-31" {
		t.Errorf("AddDays(-31) = %s, want 2025-12-31", got)
	}
}

func TestISOWeekday_MondayIsOne(t *testing.T) {
	// 2026-02-09 is a Monday, 2026-02-15 a Sunday.
	if got := New(2026, time.February, 9).ISOWeekday(); got != 1 {
		t.Errorf("ISOWeekday(Mon) = %d, want 1", got)
	}
	if got := New(2026, time.February, 15).ISOWeekday(); got != 7 {
		t.Errorf("ISOWeekday(Sun) = %d, want 7", got)
	}
}

func TestWeekStart(t *testing.T) {
	// Every day of the week containing 2026-02-09 maps to that Monday.
	monday := New(2026, time.February, 9)
	for i := 0; i < 7; i++ {
		d := monday.AddDays(i)
		if got := d.WeekStart(); got != monday {
			t.Errorf("WeekStart(%s) = %s, want %s", d, got, monday)
		}
	}
}

func TestDaysUntil(t *testing.T) {
	a := New(2026, time.February, 9)
	b := New(2026, time.February, 12)
	if got := a.DaysUntil(b); got != 3 {
		t.Errorf("DaysUntil = %d, want 3", got)
	}
	if got := b.DaysUntil(a); got != -3 {
		t.Errorf("DaysUntil reversed = %d, want -3", got)
	}
}

func TestLocalToday_ZoneDependent(t *testing.T) {
	// 2026-02-10 03:00 UTC is still Feb 9 in Los Angeles and already
	// Feb 10 in Tokyo.
	now := time.Date(2026, time.February, 10, 3, 0, 0, 0, time.UTC)

	la, err := LoadZone("America/Los_Angeles")
	if err != nil {
		t.Fatalf("LoadZone(LA) failed: %v", err)
	}
	if got := LocalToday(now, la).String(); got != "2026-02-09" {
		t.Errorf("LocalToday(LA) = %s, want 2026-02-09", got)
	}

	tokyo, err := LoadZone("Asia/Tokyo")
	if err != nil {
		t.Fatalf("LoadZone(Tokyo) failed: %v", err)
	}
	if got := LocalToday(now, tokyo).String(); got != "2026-02-10" {
		t.Errorf("LocalToday(Tokyo) = %s, want 2026-02-10", got)
	}
}

func TestLoadZone_Malformed(t *testing.T) {
	for _, tz := range []string{"", "Not/AZone", "PST8PDT_bogus"} {
		if _, err := LoadZone(tz); err == nil {
			t.Errorf("LoadZone(%q) succeeded, want error", tz)
		}
	}
}

func TestCheckExplicitDate_Window(t *testing.T) {
	today := New(2026, time.February, 10)
	cases := []struct {
		offset int
		ok     bool
	}{
		{-3, false},
		{-2, false},
		{-1, true},
		{0, true},
		{1, true},
		{2, false},
	}
	for _, tc := range cases {
		err := CheckExplicitDate(today.AddDays(tc.offset), today)
		if tc.ok && err != nil {
			t.Errorf("offset %+d: unexpected error: %v", tc.offset, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("offset %+d: expected error, got nil", tc.offset)
		}
	}
}
