// Package drain owns the shutdown state machine: Running -> Draining ->
// Terminated, monotonic. The admission gate reads the drain flag; only the
// controller writes it.
package drain

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Phase is the controller's lifecycle state. There is no transition back to
// Running.
type Phase int

const (
	Running Phase = iota
	Draining
	Terminated
)

func (p Phase) String() string {
	switch p {
	case Draining:
		return "draining"
	case Terminated:
		return "terminated"
	default:
		return "running"
	}
}

// Notice is the payload broadcast to drain listeners (the SSE endpoint relays
// these to connected clients).
type Notice struct {
	Message        string    `json:"message"`
	Countdown      int       `json:"countdown"`
	ForcedLogoutAt time.Time `json:"forced_logout_at"`
}

// SessionStore is the slice of the session store the controller needs.
type SessionStore interface {
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) (int, error)
}

var (
	drainNotificationsSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "draingate",
		Name:      "drain_notifications_sent_total",
		Help:      "Drain warnings sent, counted per active session at notification time",
	})
	forcedLogouts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "draingate",
		Name:      "forced_logouts_total",
		Help:      "Sessions force-closed after the drain grace period",
	})
)

// Controller orchestrates the drain sequence. All methods are safe for
// concurrent use; phase transitions happen under the mutex, the timed waits
// do not hold it.
type Controller struct {
	mu        sync.Mutex
	phase     Phase
	listeners map[chan Notice]struct{}

	grace       time.Duration
	graceStep   time.Duration
	propagation time.Duration
	sessions    SessionStore
	log         *slog.Logger
}

// NewController builds a controller in the Running phase.
func NewController(grace, propagation time.Duration, sessions SessionStore, log *slog.Logger) *Controller {
	return &Controller{
		phase:       Running,
		listeners:   make(map[chan Notice]struct{}),
		grace:       grace,
		graceStep:   10 * time.Second,
		propagation: propagation,
		sessions:    sessions,
		log:         log,
	}
}

// Phase returns the current lifecycle phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Draining reports whether the controller has left the Running phase.
func (c *Controller) Draining() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase != Running
}

// Subscribe registers a listener channel for drain notices. The channel is
// buffered; a listener that stops reading misses notices rather than blocking
// the broadcast.
func (c *Controller) Subscribe() chan Notice {
	ch := make(chan Notice, 4)
	c.mu.Lock()
	c.listeners[ch] = struct{}{}
	c.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener registered with Subscribe.
func (c *Controller) Unsubscribe(ch chan Notice) {
	c.mu.Lock()
	delete(c.listeners, ch)
	c.mu.Unlock()
}

// Broadcast delivers a notice to every listener without blocking. It returns
// the number of listeners that received it; full channels are skipped and
// counted as failures, which is logged and otherwise ignored.
func (c *Controller) Broadcast(n Notice) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	delivered := 0
	for ch := range c.listeners {
		select {
		case ch <- n:
			delivered++
		default:
			c.log.Warn("drain notice dropped, listener not keeping up")
		}
	}
	return delivered
}

// Notify broadcasts a notice and records one drain warning per active session:
// the metric tracks users warned, not listener channels written. Returns the
// number of sessions the warning was counted against.
func (c *Controller) Notify(ctx context.Context, n Notice) int {
	active, err := c.sessions.Count(ctx)
	if err != nil {
		c.log.Warn("could not count active sessions", "err", err)
		active = 0
	}
	c.log.Info("drain notice broadcast", "sessions", active, "delivered", c.Broadcast(n))
	if active > 0 {
		drainNotificationsSent.Add(float64(active))
	}
	return active
}

// beginDrain transitions Running->Draining. Returns false if the transition
// already happened, making Drain idempotent.
func (c *Controller) beginDrain() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != Running {
		return false
	}
	c.phase = Draining
	return true
}

// Drain runs the full shutdown sequence: flip the drain flag (readiness goes
// not-ready immediately), notify listeners, wait the grace period while
// in-flight work completes, force-clear whatever sessions remain, then wait
// out endpoint propagation. A second call returns once the first completes.
// Errors from the session store are logged and ignored; a stuck shutdown is
// worse than an incomplete notification.
func (c *Controller) Drain(ctx context.Context) {
	if !c.beginDrain() {
		c.log.Info("drain already in progress, ignoring second signal")
		return
	}

	active, err := c.sessions.Count(ctx)
	if err != nil {
		c.log.Warn("could not count active sessions", "err", err)
		active = 0
	}
	c.log.Info("drain started", "active_sessions", active, "grace", c.grace.String())

	// With nothing tracked there is nobody to warn and nothing to wait for,
	// so the sequence moves straight to propagation.
	if active > 0 {
		n := Notice{
			Message:        "Server shutting down. Please save your work and log out.",
			Countdown:      int(c.grace.Seconds()),
			ForcedLogoutAt: time.Now().Add(c.grace).UTC(),
		}
		c.log.Info("drain notice broadcast", "delivered", c.Broadcast(n))
		drainNotificationsSent.Add(float64(active))
		c.waitGrace(ctx)
	} else {
		c.log.Info("no active sessions, skipping grace period")
	}

	remaining, err := c.sessions.Clear(ctx)
	if err != nil {
		c.log.Warn("could not clear remaining sessions", "err", err)
	} else if remaining > 0 {
		forcedLogouts.Add(float64(remaining))
		c.log.Info("force-closed remaining sessions", "count", remaining)
	}

	if c.propagation > 0 {
		c.log.Info("waiting for endpoint removal to propagate", "delay", c.propagation.String())
		time.Sleep(c.propagation)
	}

	c.mu.Lock()
	c.phase = Terminated
	c.mu.Unlock()
	c.log.Info("drain complete")
}

// waitGrace sleeps through the grace period in steps, logging how many
// sessions are still around so operators can watch the drain progress. It
// returns as soon as every session is gone; idle pods should not sit out the
// rest of the clock.
func (c *Controller) waitGrace(ctx context.Context) {
	deadline := time.Now().Add(c.grace)
	for {
		left := time.Until(deadline)
		if left <= 0 {
			return
		}
		if left < c.graceStep {
			time.Sleep(left)
			return
		}
		time.Sleep(c.graceStep)
		n, err := c.sessions.Count(ctx)
		if err != nil {
			continue
		}
		if n == 0 {
			c.log.Info("all sessions closed, ending grace period early")
			return
		}
		c.log.Info("draining", "sessions_remaining", n, "grace_left", time.Until(deadline).Round(time.Second).String())
	}
}
