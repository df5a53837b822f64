package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/fieldvisits/internal/client/models"
)

type proberFunc func(ctx context.Context) (models.ProbeResult, error)

func (f proberFunc) Probe(ctx context.Context) (models.ProbeResult, error) { return f(ctx) }

func validSession(id models.Identity) proberFunc {
	return func(context.Context) (models.ProbeResult, error) {
		return models.ProbeResult{Success: true, User: &id}, nil
	}
}

func invalidSession() proberFunc {
	return func(context.Context) (models.ProbeResult, error) {
		return models.ProbeResult{Success: false}, nil
	}
}

type fakeScreen struct {
	mu        sync.Mutex
	name      string
	login     bool
	prompts   []*Ticket
	redirects int
}

func (s *fakeScreen) Name() string  { return s.name }
func (s *fakeScreen) IsLogin() bool { return s.login }

func (s *fakeScreen) PromptReauth(t *Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, t)
}

func (s *fakeScreen) RedirectToLogin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.redirects++
}

func (s *fakeScreen) promptCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

func (s *fakeScreen) redirectCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.redirects
}

type fakeObserver struct {
	mu        sync.Mutex
	started   int
	joined    int
	completed []bool
	probes    map[string]int
	discarded int
	skipped   int
}

func newFakeObserver() *fakeObserver {
	return &fakeObserver{probes: map[string]int{}}
}

func (o *fakeObserver) ReauthStarted() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started++
}

func (o *fakeObserver) ReauthJoined() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.joined++
}

func (o *fakeObserver) ReauthCompleted(ok bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.completed = append(o.completed, ok)
}

func (o *fakeObserver) ProbeCompleted(outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.probes[outcome]++
}

func (o *fakeObserver) ProbeDiscarded() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.discarded++
}

func (o *fakeObserver) ProbeSkipped() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.skipped++
}

type fakeBackend struct {
	proberFunc
	loginFn  func(ctx context.Context, username, password string) (bool, error)
	logoutFn func(ctx context.Context) error

	lastUsername string
	logoutCalls  int
}

func (b *fakeBackend) Login(ctx context.Context, username, password string) (bool, error) {
	b.lastUsername = username
	return b.loginFn(ctx, username, password)
}

func (b *fakeBackend) Logout(ctx context.Context) error {
	b.logoutCalls++
	if b.logoutFn == nil {
		return nil
	}
	return b.logoutFn(ctx)
}
