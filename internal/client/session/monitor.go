package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/fieldvisits/internal/client/models"
	"github.com/dmitrijs2005/fieldvisits/internal/logging"
	"github.com/google/uuid"
)

const (
	DefaultProbeInterval = 300 * time.Second
	DefaultProbeTimeout  = 10 * time.Second
)

// Probe outcomes reported to MonitorObserver.
const (
	ProbeOK      = "ok"
	ProbeInvalid = "invalid"
	ProbeError   = "error"
)

// Prober performs the backend session probe.
type Prober interface {
	Probe(ctx context.Context) (models.ProbeResult, error)
}

// Screen is the part of the UI a Monitor protects.
type Screen interface {
	Name() string
	// IsLogin reports whether this is the dedicated login screen.
	IsLogin() bool
	// PromptReauth opens the blocking re-login prompt for t. It is called
	// once per ticket, on the screen whose monitor created it, and must not
	// block.
	PromptReauth(t *Ticket)
	// RedirectToLogin navigates to the login screen.
	RedirectToLogin()
}

// MonitorObserver receives probe events. It is used for metrics.
type MonitorObserver interface {
	ProbeCompleted(outcome string)
	ProbeDiscarded()
	ProbeSkipped()
}

type MonitorConfig struct {
	Interval time.Duration
	Timeout  time.Duration
	Logger   logging.Logger
	Observer MonitorObserver
}

// Monitor keeps one screen's view of the session fresh. It probes once when
// started and then every Interval while authenticated. It never runs two
// probes at once, and it drops probe results that arrive after its context
// (the screen's lifetime) has ended.
type Monitor struct {
	id       uuid.UUID
	state    *State
	gate     *Gate
	prober   Prober
	screen   Screen
	interval time.Duration
	timeout  time.Duration
	logger   logging.Logger
	observer MonitorObserver

	pending atomic.Bool
	wg      sync.WaitGroup
}

func NewMonitor(state *State, gate *Gate, prober Prober, screen Screen, cfg MonitorConfig) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultProbeInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultProbeTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}

	id := uuid.New()
	return &Monitor{
		id:       id,
		state:    state,
		gate:     gate,
		prober:   prober,
		screen:   screen,
		interval: cfg.Interval,
		timeout:  cfg.Timeout,
		logger:   cfg.Logger.With("module", "session_monitor", "monitor_id", id.String(), "screen", screen.Name()),
		observer: cfg.Observer,
	}
}

// Run probes immediately and then on every tick until ctx is done. The
// caller cancels ctx when the screen is torn down.
func (m *Monitor) Run(ctx context.Context) {
	m.spawn(func() { m.ProbeNow(ctx) })

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if m.state.Phase() != models.PhaseAuthenticated {
				continue
			}
			m.spawn(func() { m.ProbeNow(ctx) })
		case <-ctx.Done():
			m.logger.Info(ctx, "monitor stopped")
			return
		}
	}
}

// ProbeNow runs a single probe and applies its effect. It returns false
// without probing when a probe from this monitor is still pending.
func (m *Monitor) ProbeNow(ctx context.Context) bool {
	if !m.pending.CompareAndSwap(false, true) {
		if m.observer != nil {
			m.observer.ProbeSkipped()
		}
		m.logger.Info(ctx, "probe skipped: previous probe still pending")
		return false
	}
	defer m.pending.Store(false)

	// The call itself is not cancelled with the screen, only its effect.
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.timeout)
	res, err := m.prober.Probe(callCtx)
	cancel()

	if ctx.Err() != nil {
		if m.observer != nil {
			m.observer.ProbeDiscarded()
		}
		m.logger.Info(ctx, "stale probe result discarded")
		return true
	}

	switch {
	case err != nil:
		m.report(ProbeError)
		m.logger.Warn(ctx, "session probe failed", "error", err)
		m.handleLoss(ctx)
	case !res.Success || res.User == nil:
		m.report(ProbeInvalid)
		m.logger.Info(ctx, "session is not valid")
		m.handleLoss(ctx)
	default:
		m.report(ProbeOK)
		m.logger.Debug(ctx, "session valid", "user_id", res.User.ID)
		m.state.setAuthenticated(*res.User)
		// A valid session makes any open re-login prompt moot.
		m.gate.Complete(true)
	}
	return true
}

// Wait blocks until background work started by this monitor has finished.
func (m *Monitor) Wait() {
	m.wg.Wait()
}

func (m *Monitor) handleLoss(ctx context.Context) {
	m.state.setUnauthenticated()

	if !m.state.EverAuthenticated() || m.screen.IsLogin() {
		m.screen.RedirectToLogin()
		return
	}

	t, created := m.gate.Begin()
	if created {
		m.logger.Info(ctx, "session lost, asking for re-login", "ticket", t.ID().String())
		m.screen.PromptReauth(t)
	} else {
		m.logger.Info(ctx, "session lost, joining re-login in progress", "ticket", t.ID().String())
	}

	m.spawn(func() { m.awaitReauth(ctx, t) })
}

func (m *Monitor) awaitReauth(ctx context.Context, t *Ticket) {
	ok, err := t.Wait(ctx)
	if err != nil {
		// Screen torn down while waiting.
		return
	}
	if !ok {
		m.logger.Info(ctx, "re-login failed, redirecting to login", "ticket", t.ID().String())
		m.screen.RedirectToLogin()
	}
}

func (m *Monitor) spawn(fn func()) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		fn()
	}()
}

func (m *Monitor) report(outcome string) {
	if m.observer != nil {
		m.observer.ProbeCompleted(outcome)
	}
}
