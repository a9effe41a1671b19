package testutil

import (
	"testing"
	"time"
)

func TestFixedClock(t *testing.T) {
	start := time.Date(2026, time.February, 9, 12, 0, 0, 0, time.UTC)
	c := NewFixedClock(start)

	if got := c.Now(); !got.Equal(start) {
		t.Errorf("Now() = %v, want %v", got, start)
	}

	c.AdvanceDays(2)
	want := start.AddDate(0, 0, 2)
	if got := c.Now(); !got.Equal(want) {
		t.Errorf("after AdvanceDays(2): Now() = %v, want %v", got, want)
	}

	c.Set(start)
	if got := c.Now(); !got.Equal(start) {
		t.Errorf("after Set: Now() = %v, want %v", got, start)
	}
}
