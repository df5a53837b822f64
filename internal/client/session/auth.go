package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fieldvisits/internal/client/client"
	"github.com/dmitrijs2005/fieldvisits/internal/client/models"
	"github.com/dmitrijs2005/fieldvisits/internal/logging"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrReauthInProgress   = errors.New("re-login in progress")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

// Backend is the remote side of the login flow.
type Backend interface {
	Prober
	// Login reports whether the backend accepted the credentials.
	Login(ctx context.Context, username, password string) (bool, error)
	Logout(ctx context.Context) error
}

// Authenticator owns the login, re-login and logout transitions of State.
type Authenticator struct {
	state   *State
	gate    *Gate
	backend Backend
	timeout time.Duration
	logger  logging.Logger
}

func NewAuthenticator(state *State, gate *Gate, backend Backend, timeout time.Duration, logger logging.Logger) *Authenticator {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Authenticator{
		state:   state,
		gate:    gate,
		backend: backend,
		timeout: timeout,
		logger:  logger.With("module", "session_auth"),
	}
}

func (a *Authenticator) State() *State { return a.state }

func (a *Authenticator) Gate() *Gate { return a.gate }

// Login signs in and loads the identity through a fresh session probe. A
// successful login also resolves any open re-login ticket.
func (a *Authenticator) Login(ctx context.Context, username, password string) (models.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	ok, err := a.backend.Login(ctx, username, password)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return models.Identity{}, ErrInvalidCredentials
		}
		return models.Identity{}, fmt.Errorf("login: %w", err)
	}
	if !ok {
		return models.Identity{}, ErrInvalidCredentials
	}

	res, err := a.backend.Probe(ctx)
	if err != nil {
		return models.Identity{}, fmt.Errorf("load session: %w", err)
	}
	if !res.Success || res.User == nil {
		return models.Identity{}, ErrInvalidCredentials
	}

	a.state.setAuthenticated(*res.User)
	a.gate.Complete(true)

	a.logger.Info(ctx, "logged in", "user_id", res.User.ID, "role", string(res.User.Role))
	return *res.User, nil
}

// Relogin is the login performed from the blocking re-login prompt. Any
// failure resolves the open ticket with false, so every waiting screen falls
// back to the login screen.
func (a *Authenticator) Relogin(ctx context.Context, username, password string) error {
	if _, err := a.Login(ctx, username, password); err != nil {
		a.logger.Warn(ctx, "re-login failed", "error", err)
		a.gate.Complete(false)
		return err
	}
	return nil
}

// CancelRelogin abandons the open re-login prompt.
func (a *Authenticator) CancelRelogin() {
	a.gate.Complete(false)
}

// Logout always ends the local session, whatever the backend answers.
func (a *Authenticator) Logout(ctx context.Context) {
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if err := a.backend.Logout(callCtx); err != nil {
		a.logger.Warn(ctx, "backend logout failed", "error", err)
	}

	a.state.reset()
	a.gate.Complete(false)
	a.logger.Info(ctx, "logged out")
}

// RequireSession returns nil when protected operations may run.
func (a *Authenticator) RequireSession() error {
	if a.gate.InProgress() {
		return ErrReauthInProgress
	}
	if a.state.Phase() != models.PhaseAuthenticated {
		return ErrNotAuthenticated
	}
	return nil
}
