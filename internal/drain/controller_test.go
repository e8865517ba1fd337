package drain

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// fakeSessions is a minimal SessionStore for controller tests.
type fakeSessions struct {
	mu    sync.Mutex
	count int
}

func (f *fakeSessions) Count(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count, nil
}

func (f *fakeSessions) Clear(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.count
	f.count = 0
	return n, nil
}

func TestController_PhaseTransitions(t *testing.T) {
	ctl := NewController(0, 0, &fakeSessions{}, testLogger())
	if ctl.Phase() != Running || ctl.Draining() {
		t.Fatal("new controller must be running")
	}
	ctl.Drain(context.Background())
	if ctl.Phase() != Terminated {
		t.Fatalf("expected terminated, got %s", ctl.Phase())
	}
	if !ctl.Draining() {
		t.Fatal("a terminated controller still reports draining")
	}
}

func TestController_DrainIsIdempotent(t *testing.T) {
	ctl := NewController(0, 0, &fakeSessions{count: 3}, testLogger())
	ctl.Drain(context.Background())
	// A second signal has no further effect and must not block or panic.
	done := make(chan struct{})
	go func() {
		ctl.Drain(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second drain call blocked")
	}
	if ctl.Phase() != Terminated {
		t.Fatalf("expected terminated, got %s", ctl.Phase())
	}
}

func TestController_DrainNotifiesAndClearsSessions(t *testing.T) {
	sessions := &fakeSessions{count: 2}
	ctl := NewController(10*time.Millisecond, 0, sessions, testLogger())
	ch := ctl.Subscribe()
	defer ctl.Unsubscribe(ch)

	ctl.Drain(context.Background())

	select {
	case n := <-ch:
		if n.Message == "" || n.ForcedLogoutAt.IsZero() {
			t.Fatalf("malformed notice: %+v", n)
		}
	default:
		t.Fatal("expected a drain notice")
	}
	if n, _ := sessions.Count(context.Background()); n != 0 {
		t.Fatalf("expected sessions force-cleared, %d left", n)
	}
}

func TestController_SkipsGraceWhenNoSessions(t *testing.T) {
	ctl := NewController(2*time.Second, 0, &fakeSessions{}, testLogger())
	start := time.Now()
	ctl.Drain(context.Background())
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("drain of an idle pod took %s, grace period was not skipped", elapsed)
	}
	if ctl.Phase() != Terminated {
		t.Fatalf("expected terminated, got %s", ctl.Phase())
	}
}

func TestController_EndsGraceEarlyWhenSessionsClear(t *testing.T) {
	sessions := &fakeSessions{count: 2}
	ctl := NewController(5*time.Second, 0, sessions, testLogger())
	ctl.graceStep = 10 * time.Millisecond

	// Everyone logs out shortly after the drain notice goes out.
	time.AfterFunc(30*time.Millisecond, func() {
		sessions.mu.Lock()
		sessions.count = 0
		sessions.mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		ctl.Drain(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("drain waited out the full grace period after sessions cleared")
	}
}

func TestController_NotificationsCountedPerSession(t *testing.T) {
	sessions := &fakeSessions{count: 3}
	ctl := NewController(10*time.Millisecond, 0, sessions, testLogger())
	ch := ctl.Subscribe()
	defer ctl.Unsubscribe(ch)

	before := testutil.ToFloat64(drainNotificationsSent)
	ctl.Drain(context.Background())
	// One listener channel, three sessions warned.
	if got := testutil.ToFloat64(drainNotificationsSent) - before; got != 3 {
		t.Fatalf("expected 3 warnings counted, got %v", got)
	}
}

func TestController_BroadcastDoesNotBlockOnFullListener(t *testing.T) {
	ctl := NewController(0, 0, &fakeSessions{}, testLogger())
	ch := ctl.Subscribe()
	defer ctl.Unsubscribe(ch)

	// Fill the listener's buffer without draining it.
	for i := 0; i < cap(ch); i++ {
		ctl.Broadcast(Notice{Message: "fill"})
	}

	done := make(chan int)
	go func() { done <- ctl.Broadcast(Notice{Message: "overflow"}) }()
	select {
	case delivered := <-done:
		if delivered != 0 {
			t.Fatalf("expected the overflow notice to be dropped, delivered=%d", delivered)
		}
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a full listener")
	}
}

func TestController_UnsubscribedListenerIsSkipped(t *testing.T) {
	ctl := NewController(0, 0, &fakeSessions{}, testLogger())
	ch := ctl.Subscribe()
	ctl.Unsubscribe(ch)
	if delivered := ctl.Broadcast(Notice{Message: "gone"}); delivered != 0 {
		t.Fatalf("delivered to unsubscribed listener: %d", delivered)
	}
}
