// Package services contains application services for the field-visits CLI.
// This file defines the authentication service: login, in-place re-login,
// logout and session status.
package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/fieldvisits/internal/client/client"
	"github.com/dmitrijs2005/fieldvisits/internal/client/models"
	"github.com/dmitrijs2005/fieldvisits/internal/client/session"
)

// Status is a point-in-time view of the session for display.
type Status struct {
	Phase         models.Phase
	Identity      *models.Identity
	ReauthPending bool
	// TokenExpiry is zero when unknown.
	TokenExpiry time.Time
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: authenticate and load the identity.
//   - Relogin: login from the blocking re-login prompt; failure resolves
//     the prompt for every waiting screen.
//   - CancelRelogin: give up on the re-login prompt.
//   - Logout: end the session locally, whatever the backend answers.
//   - Status: current phase, identity and token expiry.
//   - RequireSession: nil when protected commands may run.
//   - Close: release underlying client resources.
type AuthService interface {
	Login(ctx context.Context, username string, password []byte) (models.Identity, error)
	Relogin(ctx context.Context, username string, password []byte) error
	CancelRelogin()
	Logout(ctx context.Context)
	Status() Status
	RequireSession() error
	Close(ctx context.Context) error
}

type authService struct {
	client client.Client
	auth   *session.Authenticator
}

// NewAuthService constructs an AuthService bound to the given API client and
// session authenticator.
func NewAuthService(client client.Client, auth *session.Authenticator) AuthService {
	return &authService{client: client, auth: auth}
}

func (a *authService) Login(ctx context.Context, username string, password []byte) (models.Identity, error) {
	if err := validateCredentials(username, password); err != nil {
		return models.Identity{}, err
	}
	return a.auth.Login(ctx, username, string(password))
}

func (a *authService) Relogin(ctx context.Context, username string, password []byte) error {
	if err := validateCredentials(username, password); err != nil {
		a.auth.CancelRelogin()
		return err
	}
	return a.auth.Relogin(ctx, username, string(password))
}

func (a *authService) CancelRelogin() {
	a.auth.CancelRelogin()
}

func (a *authService) Logout(ctx context.Context) {
	a.auth.Logout(ctx)
}

func (a *authService) Status() Status {
	snap := a.auth.State().Snapshot()
	st := Status{
		Phase:         snap.Phase,
		Identity:      snap.Identity,
		ReauthPending: a.auth.Gate().InProgress(),
	}
	if exp, ok := a.client.TokenExpiry(); ok {
		st.TokenExpiry = exp
	}
	return st
}

func (a *authService) RequireSession() error {
	return a.auth.RequireSession()
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
