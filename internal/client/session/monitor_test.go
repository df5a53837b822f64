package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/fieldvisits/internal/client/client"
	"github.com/dmitrijs2005/fieldvisits/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alice = models.Identity{ID: "u1", Username: "alice", Role: models.RoleFieldRep, Language: "en"}

func newTestMonitor(state *State, gate *Gate, p Prober, screen Screen, obs MonitorObserver) *Monitor {
	return NewMonitor(state, gate, p, screen, MonitorConfig{
		Interval: 10 * time.Millisecond,
		Timeout:  time.Second,
		Observer: obs,
	})
}

func TestMonitor_ProbeSuccessAuthenticates(t *testing.T) {
	state, gate := NewState(), NewGate()
	screen := &fakeScreen{name: "main"}
	obs := newFakeObserver()
	m := newTestMonitor(state, gate, validSession(alice), screen, obs)

	require.True(t, m.ProbeNow(context.Background()))

	id, ok := state.Identity()
	require.True(t, ok)
	assert.Equal(t, alice, id)
	assert.Equal(t, models.PhaseAuthenticated, state.Phase())
	assert.True(t, state.EverAuthenticated())
	assert.Equal(t, 1, obs.probes[ProbeOK])
	assert.Zero(t, screen.redirectCount())
}

func TestMonitor_FirstFailureRedirects(t *testing.T) {
	tests := []struct {
		name    string
		prober  proberFunc
		outcome string
	}{
		{"session invalid", invalidSession(), ProbeInvalid},
		{"network failure", func(context.Context) (models.ProbeResult, error) {
			return models.ProbeResult{}, client.ErrUnavailable
		}, ProbeError},
		{"success without user", func(context.Context) (models.ProbeResult, error) {
			return models.ProbeResult{Success: true}, nil
		}, ProbeInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, gate := NewState(), NewGate()
			screen := &fakeScreen{name: "main"}
			obs := newFakeObserver()
			m := newTestMonitor(state, gate, tt.prober, screen, obs)

			m.ProbeNow(context.Background())
			m.Wait()

			assert.Equal(t, models.PhaseUnauthenticated, state.Phase())
			assert.Equal(t, 1, screen.redirectCount())
			assert.Zero(t, screen.promptCount())
			assert.False(t, gate.InProgress())
			assert.Equal(t, 1, obs.probes[tt.outcome])
		})
	}
}

func TestMonitor_LossAfterAuthPromptsOnce(t *testing.T) {
	state, gate := NewState(), NewGate()
	state.setAuthenticated(alice)

	screen := &fakeScreen{name: "main"}
	m := newTestMonitor(state, gate, invalidSession(), screen, nil)

	m.ProbeNow(context.Background())

	assert.Equal(t, models.PhaseUnauthenticated, state.Phase())
	_, ok := state.Identity()
	assert.False(t, ok)
	require.Equal(t, 1, screen.promptCount())
	assert.True(t, gate.InProgress())
	assert.Zero(t, screen.redirectCount())

	gate.Complete(true)
	m.Wait()
	assert.Zero(t, screen.redirectCount(), "successful re-login keeps the screen")
}

func TestMonitor_ReauthFailureRedirectsAllJoinedScreens(t *testing.T) {
	state, gate := NewState(), NewGate()
	state.setAuthenticated(alice)

	screens := []*fakeScreen{{name: "clients"}, {name: "visit"}, {name: "today"}}
	monitors := make([]*Monitor, len(screens))
	for i, s := range screens {
		monitors[i] = newTestMonitor(state, gate, invalidSession(), s, nil)
	}

	var wg sync.WaitGroup
	for _, m := range monitors {
		wg.Add(1)
		go func(m *Monitor) {
			defer wg.Done()
			m.ProbeNow(context.Background())
		}(m)
	}
	wg.Wait()

	prompts := 0
	for _, s := range screens {
		prompts += s.promptCount()
	}
	assert.Equal(t, 1, prompts, "exactly one prompt across all screens")

	gate.Complete(false)
	for _, m := range monitors {
		m.Wait()
	}

	for _, s := range screens {
		assert.Equal(t, 1, s.redirectCount(), s.name)
	}
}

func TestMonitor_LoginScreenRedirectsEvenAfterAuth(t *testing.T) {
	state, gate := NewState(), NewGate()
	state.setAuthenticated(alice)

	screen := &fakeScreen{name: "login", login: true}
	m := newTestMonitor(state, gate, invalidSession(), screen, nil)

	m.ProbeNow(context.Background())
	m.Wait()

	assert.Equal(t, 1, screen.redirectCount())
	assert.Zero(t, screen.promptCount())
	assert.False(t, gate.InProgress())
}

func TestMonitor_StaleResultIsDiscarded(t *testing.T) {
	state, gate := NewState(), NewGate()
	screen := &fakeScreen{name: "main"}
	obs := newFakeObserver()

	started := make(chan struct{})
	release := make(chan struct{})
	var sawCancel atomic.Bool
	p := proberFunc(func(ctx context.Context) (models.ProbeResult, error) {
		close(started)
		<-release
		sawCancel.Store(ctx.Err() != nil)
		return models.ProbeResult{Success: false}, nil
	})
	m := newTestMonitor(state, gate, p, screen, obs)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.ProbeNow(ctx)
	}()

	<-started
	cancel()
	close(release)
	<-done
	m.Wait()

	assert.False(t, sawCancel.Load(), "the call itself is not cancelled")
	assert.Equal(t, models.PhaseChecking, state.Phase())
	assert.Zero(t, screen.redirectCount())
	assert.Zero(t, screen.promptCount())
	assert.Equal(t, 1, obs.discarded)
	assert.Empty(t, obs.probes)
}

func TestMonitor_NoOverlappingProbes(t *testing.T) {
	state, gate := NewState(), NewGate()
	screen := &fakeScreen{name: "main"}
	obs := newFakeObserver()

	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	p := proberFunc(func(ctx context.Context) (models.ProbeResult, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return models.ProbeResult{Success: true, User: &alice}, nil
	})
	m := newTestMonitor(state, gate, p, screen, obs)

	done := make(chan bool)
	go func() { done <- m.ProbeNow(context.Background()) }()
	<-started

	assert.False(t, m.ProbeNow(context.Background()))
	assert.Equal(t, 1, obs.skipped)

	close(release)
	assert.True(t, <-done)
	assert.EqualValues(t, 1, calls.Load())

	assert.True(t, m.ProbeNow(context.Background()))
	assert.EqualValues(t, 2, calls.Load())
}

func TestMonitor_SuccessResolvesOpenTicket(t *testing.T) {
	state, gate := NewState(), NewGate()
	tk, _ := gate.Begin()

	m := newTestMonitor(state, gate, validSession(alice), &fakeScreen{name: "main"}, nil)
	m.ProbeNow(context.Background())

	assert.False(t, gate.InProgress())
	assert.True(t, tk.Outcome())
}

func TestMonitor_WaiterTornDownDoesNotRedirect(t *testing.T) {
	state, gate := NewState(), NewGate()
	state.setAuthenticated(alice)
	screen := &fakeScreen{name: "main"}
	m := newTestMonitor(state, gate, invalidSession(), screen, nil)

	ctx, cancel := context.WithCancel(context.Background())
	m.ProbeNow(ctx)
	cancel()
	m.Wait()

	gate.Complete(false)
	assert.Zero(t, screen.redirectCount())
}

func TestMonitor_RunPollsOnlyWhileAuthenticated(t *testing.T) {
	t.Run("authenticated keeps polling", func(t *testing.T) {
		state, gate := NewState(), NewGate()
		var calls atomic.Int32
		p := proberFunc(func(ctx context.Context) (models.ProbeResult, error) {
			calls.Add(1)
			return models.ProbeResult{Success: true, User: &alice}, nil
		})
		m := newTestMonitor(state, gate, p, &fakeScreen{name: "main"}, nil)

		ctx, cancel := context.WithCancel(context.Background())
		stopped := make(chan struct{})
		go func() {
			defer close(stopped)
			m.Run(ctx)
		}()

		require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
		cancel()
		<-stopped
		m.Wait()
	})

	t.Run("unauthenticated stops polling", func(t *testing.T) {
		state, gate := NewState(), NewGate()
		screen := &fakeScreen{name: "main"}
		var calls atomic.Int32
		p := proberFunc(func(ctx context.Context) (models.ProbeResult, error) {
			calls.Add(1)
			return models.ProbeResult{}, errors.New("boom")
		})
		m := newTestMonitor(state, gate, p, screen, nil)

		ctx, cancel := context.WithCancel(context.Background())
		stopped := make(chan struct{})
		go func() {
			defer close(stopped)
			m.Run(ctx)
		}()

		require.Eventually(t, func() bool { return screen.redirectCount() == 1 }, time.Second, 5*time.Millisecond)
		time.Sleep(50 * time.Millisecond)
		cancel()
		<-stopped
		m.Wait()

		assert.EqualValues(t, 1, calls.Load())
	})
}
