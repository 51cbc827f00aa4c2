package clock

import (
	"testing"
	"time"
)

func TestFakeAdvanceFiresInOrder(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	fc := NewFake(start)

	var got []string
	fc.AfterFunc(2*time.Second, func() { got = append(got, "b") })
	fc.AfterFunc(time.Second, func() { got = append(got, "a") })
	fc.AfterFunc(2*time.Second, func() { got = append(got, "c") })
	fc.AfterFunc(5*time.Second, func() { got = append(got, "late") })

	fc.Advance(2 * time.Second)

	if want := []string{"a", "b", "c"}; len(got) != len(want) || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("fired %v, want %v", got, want)
	}
	if !fc.Now().Equal(start.Add(2 * time.Second)) {
		t.Fatalf("now = %v", fc.Now())
	}
	if fc.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", fc.Pending())
	}
}

func TestFakeChainedTimers(t *testing.T) {
	fc := NewFake(time.Unix(0, 0))

	ticks := 0
	var tick func()
	tick = func() {
		ticks++
		if ticks < 5 {
			fc.AfterFunc(time.Second, tick)
		}
	}
	fc.AfterFunc(time.Second, tick)

	fc.Advance(3 * time.Second)
	if ticks != 3 {
		t.Fatalf("ticks after 3s = %d", ticks)
	}

	fc.Advance(time.Minute)
	if ticks != 5 {
		t.Fatalf("ticks after drain = %d", ticks)
	}
	if fc.Pending() != 0 {
		t.Fatalf("pending = %d", fc.Pending())
	}
}

func TestFakeStop(t *testing.T) {
	fc := NewFake(time.Unix(0, 0))

	fired := false
	tm := fc.AfterFunc(time.Second, func() { fired = true })

	if !tm.Stop() {
		t.Fatal("first Stop should report true")
	}
	if tm.Stop() {
		t.Fatal("second Stop should report false")
	}

	fc.Advance(time.Hour)
	if fired {
		t.Fatal("stopped timer fired")
	}
}
