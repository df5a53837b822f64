package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/fieldvisits/internal/client/attachments"
	"github.com/dmitrijs2005/fieldvisits/internal/client/client"
	"github.com/dmitrijs2005/fieldvisits/internal/client/config"
	"github.com/dmitrijs2005/fieldvisits/internal/client/metrics"
	"github.com/dmitrijs2005/fieldvisits/internal/client/services"
	"github.com/dmitrijs2005/fieldvisits/internal/client/session"
	"github.com/dmitrijs2005/fieldvisits/internal/clock"
	"github.com/dmitrijs2005/fieldvisits/internal/logging"
	"google.golang.org/grpc"
)

// screenMonitor is the part of session.Monitor a screen drives.
type screenMonitor interface {
	Run(ctx context.Context)
	ProbeNow(ctx context.Context) bool
	Wait()
}

type App struct {
	config      *config.Config
	authService services.AuthService
	visits      services.VisitService
	newMonitor  func(session.Screen) screenMonitor
	logger      logging.Logger
	reader      *bufio.Reader
	out         io.Writer

	loginScreen *screen
	mainScreen  *screen

	mu           sync.Mutex
	current      *screen
	monitor      screenMonitor
	screenCtx    context.Context
	cancelScreen context.CancelFunc
	reauth       *session.Ticket
	redirect     bool
	lastUser     string
	retired      []screenMonitor
}

// NewApp builds the backend client, session tracking and services from c.
// Probe and RPC metrics are recorded into m.
func NewApp(c *config.Config, logger logging.Logger, m *metrics.Metrics) (*App, error) {
	apiClient, err := client.NewFieldVisitsClient(c.ServerEndpointAddr,
		grpc.WithChainUnaryInterceptor(m.UnaryClientInterceptor()))
	if err != nil {
		return nil, err
	}

	state := session.NewState()
	gate := session.NewGate(session.WithGateObserver(m))
	authn := session.NewAuthenticator(state, gate, apiClient, c.RequestTimeout, logger)

	linker := attachments.NewLinker(attachments.Config{
		Bucket:    c.Attachments.Bucket,
		Region:    c.Attachments.Region,
		Endpoint:  c.Attachments.Endpoint,
		AccessKey: c.Attachments.AccessKey,
		SecretKey: c.Attachments.SecretKey,
		TTL:       c.Attachments.LinkTTL,
	})

	monitorCfg := session.MonitorConfig{
		Interval: c.SessionProbeInterval,
		Timeout:  c.RequestTimeout,
		Logger:   logger,
		Observer: m,
	}

	a := &App{
		config:      c,
		authService: services.NewAuthService(apiClient, authn),
		visits:      services.NewVisitService(apiClient, state, clock.NewRealClock(), linker),
		newMonitor: func(s session.Screen) screenMonitor {
			return session.NewMonitor(state, gate, apiClient, s, monitorCfg)
		},
		logger: logger.With("module", "cli"),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
	a.initScreens()
	return a, nil
}

func (a *App) initScreens() {
	a.loginScreen = &screen{name: "login", login: true, app: a}
	a.mainScreen = &screen{name: "main", app: a}
}

// Run shows the login screen and serves commands until the user exits or
// input ends.
func (a *App) Run(ctx context.Context) {
	defer a.authService.Close(ctx)

	printlnFn("Field visits CLI (type 'help' for commands)")

	a.enter(ctx, a.loginScreen)
	defer a.shutdown()

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isLoggedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current == a.mainScreen
}

// requestTimeout bounds one command's backend work.
func (a *App) requestTimeout() time.Duration {
	if a.config == nil || a.config.RequestTimeout <= 0 {
		return session.DefaultProbeTimeout
	}
	return a.config.RequestTimeout
}
