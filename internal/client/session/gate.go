package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Ticket is a single in-flight re-authentication flow. Its outcome is
// delivered exactly once; every caller that joined the flow observes the
// same value.
type Ticket struct {
	id   uuid.UUID
	done chan struct{}
	ok   bool
}

func newTicket() *Ticket {
	return &Ticket{id: uuid.New(), done: make(chan struct{})}
}

func (t *Ticket) ID() uuid.UUID { return t.id }

// Done is closed once the outcome is available.
func (t *Ticket) Done() <-chan struct{} { return t.done }

// Outcome returns the delivered result. It is only meaningful after Done
// has been closed.
func (t *Ticket) Outcome() bool {
	select {
	case <-t.done:
		return t.ok
	default:
		return false
	}
}

// Wait blocks until the outcome is delivered or ctx is done.
func (t *Ticket) Wait(ctx context.Context) (bool, error) {
	select {
	case <-t.done:
		return t.ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// GateObserver receives gate events. It is used for metrics.
type GateObserver interface {
	ReauthStarted()
	ReauthJoined()
	ReauthCompleted(ok bool)
}

type GateOption func(*Gate)

func WithGateObserver(o GateObserver) GateOption {
	return func(g *Gate) { g.observer = o }
}

// Gate is a single-flight coordinator: concurrent session-loss detections
// collapse into one Ticket, so only one re-login prompt is ever shown.
//
// Begin and Complete are serialized by one mutex, so a Begin that races a
// Complete either joins the old ticket before it is resolved or creates a
// fresh one after it is cleared.
type Gate struct {
	mu       sync.Mutex
	current  *Ticket
	observer GateObserver
}

func NewGate(opts ...GateOption) *Gate {
	g := &Gate{}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// InProgress reports whether a ticket currently exists.
func (g *Gate) InProgress() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current != nil
}

// Begin returns the live ticket, creating it if none exists. created is true
// only for the caller that created it; that caller is responsible for
// presenting the prompt.
func (g *Gate) Begin() (t *Ticket, created bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.current != nil {
		if g.observer != nil {
			g.observer.ReauthJoined()
		}
		return g.current, false
	}

	g.current = newTicket()
	if g.observer != nil {
		g.observer.ReauthStarted()
	}
	return g.current, true
}

// Complete delivers ok to every waiter of the live ticket and clears it.
// Without a live ticket it does nothing.
func (g *Gate) Complete(ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	t := g.current
	if t == nil {
		return
	}
	g.current = nil

	t.ok = ok
	close(t.done)

	if g.observer != nil {
		g.observer.ReauthCompleted(ok)
	}
}
