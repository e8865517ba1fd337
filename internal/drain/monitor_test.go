package drain

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type fakeState struct{ active atomic.Bool }

func (f *fakeState) Active(context.Context) bool { return f.active.Load() }

func waitNotice(t *testing.T, ch chan Notice) Notice {
	t.Helper()
	select {
	case n := <-ch:
		return n
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for drain notice")
		return Notice{}
	}
}

func TestMonitor_NotifiesOnceUntilRearmed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctl := NewController(0, 0, &fakeSessions{}, testLogger())
	state := &fakeState{}
	m := NewMonitor(ctl, state, 5*time.Millisecond, time.Minute, testLogger())
	go m.Run(ctx)

	ch := ctl.Subscribe()
	defer ctl.Unsubscribe(ch)

	state.active.Store(true)
	n := waitNotice(t, ch)
	if n.Countdown != 60 {
		t.Fatalf("expected 60s countdown, got %d", n.Countdown)
	}

	// Still active: no duplicate notice.
	select {
	case <-ch:
		t.Fatal("duplicate notice while maintenance stayed on")
	case <-time.After(50 * time.Millisecond):
	}

	// Off then on again re-arms the notification.
	state.active.Store(false)
	time.Sleep(30 * time.Millisecond)
	state.active.Store(true)
	waitNotice(t, ch)
}

func TestMonitor_StopsWhenDraining(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctl := NewController(0, 0, &fakeSessions{}, testLogger())
	m := NewMonitor(ctl, &fakeState{}, 5*time.Millisecond, time.Minute, testLogger())

	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	ctl.Drain(context.Background())
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("monitor kept running after drain")
	}
}
