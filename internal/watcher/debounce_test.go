package watcher

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestDebouncerFiresAfterDelay(t *testing.T) {
	rec := &callRecorder{}
	d := NewDebouncer(40*time.Millisecond, rec.record)

	d.Add("/music/inbox/Dool - She Goat.opus")

	if !waitFor(t, time.Second, func() bool { return rec.count() == 1 }) {
		t.Fatalf("callback fired %d times, want 1", rec.count())
	}
	if d.PendingCount() != 0 {
		t.Errorf("PendingCount() = %d after firing, want 0", d.PendingCount())
	}
}

func TestDebouncerCoalescesRapidEvents(t *testing.T) {
	rec := &callRecorder{}
	d := NewDebouncer(100*time.Millisecond, rec.record)

	// Events arriving faster than the delay keep resetting the timer.
	for i := 0; i < 5; i++ {
		d.Add("/music/inbox/growing.opus")
		time.Sleep(20 * time.Millisecond)
	}

	if !waitFor(t, time.Second, func() bool { return rec.count() >= 1 }) {
		t.Fatal("callback never fired")
	}
	time.Sleep(200 * time.Millisecond)
	if rec.count() != 1 {
		t.Errorf("callback fired %d times, want 1", rec.count())
	}
}

func TestDebouncerTracksFilesIndependently(t *testing.T) {
	rec := &callRecorder{}
	d := NewDebouncer(40*time.Millisecond, rec.record)

	d.Add("/music/inbox/a.opus")
	d.Add("/music/inbox/b.flac")
	d.Add("/music/inbox/c.mp3")

	if d.PendingCount() != 3 {
		t.Errorf("PendingCount() = %d, want 3", d.PendingCount())
	}
	if !waitFor(t, time.Second, func() bool { return rec.count() == 3 }) {
		t.Fatalf("callback fired %d times, want 3", rec.count())
	}
}

func TestDebouncerCancel(t *testing.T) {
	rec := &callRecorder{}
	d := NewDebouncer(40*time.Millisecond, rec.record)

	d.Add("/music/inbox/cancelled.opus")
	if !d.IsPending("/music/inbox/cancelled.opus") {
		t.Fatal("file should be pending after Add")
	}
	d.Cancel("/music/inbox/cancelled.opus")
	if d.IsPending("/music/inbox/cancelled.opus") {
		t.Error("file still pending after Cancel")
	}

	time.Sleep(100 * time.Millisecond)
	if rec.count() != 0 {
		t.Errorf("callback fired %d times after Cancel, want 0", rec.count())
	}

	// Cancelling an unknown path is a no-op.
	d.Cancel("/music/inbox/never-added.opus")
}

func TestDebouncerCancelAll(t *testing.T) {
	rec := &callRecorder{}
	d := NewDebouncer(40*time.Millisecond, rec.record)

	for i := 0; i < 4; i++ {
		d.Add(fmt.Sprintf("/music/inbox/track%d.opus", i))
	}
	d.CancelAll()

	if d.PendingCount() != 0 {
		t.Errorf("PendingCount() = %d after CancelAll, want 0", d.PendingCount())
	}
	time.Sleep(100 * time.Millisecond)
	if rec.count() != 0 {
		t.Errorf("callback fired %d times after CancelAll, want 0", rec.count())
	}
}

func TestDebouncerNilCallback(t *testing.T) {
	d := NewDebouncer(20*time.Millisecond, nil)
	d.Add("/music/inbox/track.opus")
	time.Sleep(60 * time.Millisecond)
	if d.PendingCount() != 0 {
		t.Errorf("PendingCount() = %d, want 0", d.PendingCount())
	}
}

func TestDebouncerConcurrentAdds(t *testing.T) {
	rec := &callRecorder{}
	d := NewDebouncer(30*time.Millisecond, rec.record)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				d.Add(fmt.Sprintf("/music/inbox/track%d.opus", n))
			}
		}(i)
	}
	wg.Wait()

	if !waitFor(t, time.Second, func() bool { return rec.count() == 10 }) {
		t.Errorf("callback fired %d times, want 10 (one per path)", rec.count())
	}
}

func TestDebouncerGetDelay(t *testing.T) {
	d := NewDebouncer(2*time.Second, nil)
	if d.GetDelay() != 2*time.Second {
		t.Errorf("GetDelay() = %v, want 2s", d.GetDelay())
	}
}
