package clock

import (
	"testing"
	"time"
)

func TestRealClockNow(t *testing.T) {
	c := &RealClock{}
	before := time.Now()
	got := c.Now()
	if got.Before(before) {
		t.Errorf("RealClock.Now went backwards: %v < %v", got, before)
	}
}

func TestMockClock(t *testing.T) {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := NewMockClock(base)

	if !c.Now().Equal(base) {
		t.Errorf("expected %v, got %v", base, c.Now())
	}

	c.Advance(90 * time.Second)
	if got := c.Since(base); got != 90*time.Second {
		t.Errorf("expected 90s since base, got %v", got)
	}

	later := base.Add(time.Hour)
	c.Set(later)
	if !c.Now().Equal(later) {
		t.Errorf("Set failed: expected %v, got %v", later, c.Now())
	}
}
