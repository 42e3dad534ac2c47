package streak

import (
	"testing"
	"time"
)

func TestTick(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	current := base
	now = func() time.Time { return current }
	defer func() { now = time.Now }()

	tr := Tracker{Interval: 300 * time.Millisecond}
	if n := tr.Tick(); n != 1 {
		t.Errorf("first tick = %d, want 1", n)
	}
	current = base.Add(200 * time.Millisecond)
	if n := tr.Tick(); n != 2 {
		t.Errorf("second tick within interval = %d, want 2", n)
	}
	current = current.Add(250 * time.Millisecond)
	if n := tr.Tick(); n != 3 {
		t.Errorf("third tick within interval = %d, want 3", n)
	}
	current = current.Add(time.Second)
	if n := tr.Tick(); n != 1 {
		t.Errorf("tick after a gap = %d, want 1", n)
	}
}

func TestReset(t *testing.T) {
	tr := Tracker{Interval: time.Hour}
	tr.Tick()
	tr.Tick()
	tr.Reset()
	if n := tr.Tick(); n != 1 {
		t.Errorf("tick after Reset = %d, want 1", n)
	}
}
