package session

import (
	"sync"

	"github.com/dmitrijs2005/fieldvisits/internal/client/models"
)

// Snapshot is a consistent copy of the authentication state.
type Snapshot struct {
	Phase    models.Phase
	Identity *models.Identity
}

// State is the process-wide authentication state. It starts in
// PhaseChecking. Only the Monitor and the Authenticator in this package
// write to it; everything else reads snapshots.
type State struct {
	mu                sync.RWMutex
	phase             models.Phase
	identity          *models.Identity
	everAuthenticated bool
}

func NewState() *State {
	return &State{phase: models.PhaseChecking}
}

func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{Phase: s.phase}
	if s.identity != nil {
		id := *s.identity
		snap.Identity = &id
	}
	return snap
}

func (s *State) Phase() models.Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// Identity returns the current identity, if authenticated.
func (s *State) Identity() (models.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return models.Identity{}, false
	}
	return *s.identity, true
}

// EverAuthenticated reports whether a session was held at any point since
// start-up or the last explicit logout.
func (s *State) EverAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.everAuthenticated
}

func (s *State) setAuthenticated(id models.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = &id
	s.phase = models.PhaseAuthenticated
	s.everAuthenticated = true
}

func (s *State) setUnauthenticated() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = nil
	s.phase = models.PhaseUnauthenticated
}

// reset is the explicit-logout transition: identity and the
// ever-authenticated flag are both dropped.
func (s *State) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = nil
	s.phase = models.PhaseUnauthenticated
	s.everAuthenticated = false
}
