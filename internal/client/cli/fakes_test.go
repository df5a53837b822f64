package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/fieldvisits/internal/client/models"
	"github.com/dmitrijs2005/fieldvisits/internal/client/services"
	"github.com/dmitrijs2005/fieldvisits/internal/client/session"
	"github.com/dmitrijs2005/fieldvisits/internal/logging"
)

type fakeAuth struct {
	mu sync.Mutex

	loginID   models.Identity
	loginErr  error
	loginUser string
	loginPass []byte

	reloginErr   error
	reloginUser  string
	reloginCalls int
	cancelCalls  int
	logoutCalls  int

	status     services.Status
	requireErr error
	closed     bool
}

func (f *fakeAuth) Login(_ context.Context, user string, pass []byte) (models.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginUser, f.loginPass = user, append([]byte(nil), pass...)
	if f.loginErr != nil {
		return models.Identity{}, f.loginErr
	}
	f.status = services.Status{Phase: models.PhaseAuthenticated, Identity: &f.loginID}
	return f.loginID, nil
}

func (f *fakeAuth) Relogin(_ context.Context, user string, _ []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reloginCalls++
	f.reloginUser = user
	if f.reloginErr == nil {
		f.requireErr = nil
	}
	return f.reloginErr
}

func (f *fakeAuth) CancelRelogin() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelCalls++
}

func (f *fakeAuth) Logout(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutCalls++
	f.status = services.Status{Phase: models.PhaseUnauthenticated}
}

func (f *fakeAuth) Status() services.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *fakeAuth) RequireSession() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requireErr
}

func (f *fakeAuth) Close(context.Context) error {
	f.closed = true
	return nil
}

type fakeVisits struct {
	rollups     []models.ClientRollup
	gotCriteria models.FilterCriteria
	client      *models.Client
	bucket      []models.BucketEntry
	gotMine     bool
	entry       models.BucketEntry
	editable    bool
	link        string
	clients     int
	visits      int
	err         error

	editApplied models.Visit
	editCalls   int
}

func (f *fakeVisits) Clients(_ context.Context, c models.FilterCriteria) ([]models.ClientRollup, error) {
	f.gotCriteria = c
	return f.rollups, f.err
}

func (f *fakeVisits) Client(context.Context, string) (*models.Client, error) {
	return f.client, f.err
}

func (f *fakeVisits) Today(_ context.Context, onlyMine bool) ([]models.BucketEntry, error) {
	f.gotMine = onlyMine
	return f.bucket, f.err
}

func (f *fakeVisits) Week(_ context.Context, onlyMine bool) ([]models.BucketEntry, error) {
	f.gotMine = onlyMine
	return f.bucket, f.err
}

func (f *fakeVisits) Visit(context.Context, string) (models.BucketEntry, bool, error) {
	return f.entry, f.editable, f.err
}

func (f *fakeVisits) Edit(_ context.Context, _ string, apply func(*models.Visit) error) (models.Visit, error) {
	f.editCalls++
	v := f.entry.Visit
	if err := apply(&v); err != nil {
		return models.Visit{}, err
	}
	f.editApplied = v
	return v, nil
}

func (f *fakeVisits) AttachmentLink(context.Context, string) (string, error) {
	return f.link, f.err
}

func (f *fakeVisits) Count(context.Context) (int, int, error) {
	return f.clients, f.visits, f.err
}

type fakeMonitor struct {
	screen  session.Screen
	runs    atomic.Int32
	probes  atomic.Int32
	probeFn func() bool
	waited  atomic.Bool
}

func (m *fakeMonitor) Run(ctx context.Context) {
	m.runs.Add(1)
	<-ctx.Done()
}

func (m *fakeMonitor) ProbeNow(context.Context) bool {
	m.probes.Add(1)
	if m.probeFn != nil {
		return m.probeFn()
	}
	return true
}

func (m *fakeMonitor) Wait() { m.waited.Store(true) }

type monitorSet struct {
	mu       sync.Mutex
	monitors []*fakeMonitor
}

func (s *monitorSet) factory(sc session.Screen) screenMonitor {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := &fakeMonitor{screen: sc}
	s.monitors = append(s.monitors, m)
	return m
}

func (s *monitorSet) all() []*fakeMonitor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*fakeMonitor(nil), s.monitors...)
}

func newTestApp(auth *fakeAuth, vs *fakeVisits, input string) (*App, *bytes.Buffer) {
	out := &bytes.Buffer{}
	a := &App{
		authService: auth,
		visits:      vs,
		logger:      logging.Nop(),
		reader:      bufio.NewReader(strings.NewReader(input)),
		out:         out,
	}
	a.initScreens()
	return a, out
}

// capturePrintln redirects printlnFn into a buffer for the test.
func capturePrintln(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		return buf.WriteString(fmt.Sprintln(a...))
	}
	t.Cleanup(func() { printlnFn = orig })
	return &buf
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(_ io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = orig })
}
