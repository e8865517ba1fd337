package drain

import (
	"context"
	"log/slog"
	"time"
)

// StateReader resolves the maintenance flag (the gate's resolver satisfies it).
type StateReader interface {
	Active(ctx context.Context) bool
}

// Monitor watches the maintenance flag and broadcasts a single drain notice to
// connected listeners when maintenance turns on, re-arming when it turns off.
// It runs on standard pods only; admin pods never push users out.
type Monitor struct {
	ctl      *Controller
	state    StateReader
	interval time.Duration
	warning  time.Duration
	log      *slog.Logger
}

// NewMonitor builds a monitor polling at the given interval. warning is the
// countdown advertised in the notice.
func NewMonitor(ctl *Controller, state StateReader, interval, warning time.Duration, log *slog.Logger) *Monitor {
	return &Monitor{ctl: ctl, state: state, interval: interval, warning: warning, log: log}
}

// Run polls until the context is cancelled or the controller leaves Running.
func (m *Monitor) Run(ctx context.Context) {
	m.log.Info("maintenance monitor started", "interval", m.interval.String())
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	notified := false
	for {
		select {
		case <-ctx.Done():
			m.log.Info("maintenance monitor stopped")
			return
		case <-ticker.C:
		}
		if m.ctl.Draining() {
			return
		}
		active := m.state.Active(ctx)
		switch {
		case active && !notified:
			n := Notice{
				Message:        "Maintenance mode activated. Please save your work and log out.",
				Countdown:      int(m.warning.Seconds()),
				ForcedLogoutAt: time.Now().Add(m.warning).UTC(),
			}
			m.log.Info("maintenance enabled", "users_warned", m.ctl.Notify(ctx, n))
			notified = true
		case !active && notified:
			m.log.Info("maintenance disabled")
			notified = false
		}
	}
}
