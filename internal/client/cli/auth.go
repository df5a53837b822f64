package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fieldvisits/internal/client/session"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
)

var errReloginCancelled = errors.New("re-login cancelled")

// Login prompts for credentials, authenticates and moves to the main screen.
// The password is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	id, err := a.authService.Login(ctx, userName, password)
	if err != nil {
		a.logger.Warn(ctx, "login failed", "error", err)
		return err
	}

	a.mu.Lock()
	a.lastUser = id.Username
	a.mu.Unlock()

	color.New(color.FgGreen).Fprintf(a.out, "Welcome, %s (%s)\n", id.Username, id.Role)
	a.enter(ctx, a.mainScreen)
	return nil
}

// Reauth runs the blocking re-login prompt for ticket t. An empty username
// reuses the last one; "-" cancels. Any failure, cancel included, resolves
// the ticket negatively and returns to the login screen.
func (a *App) Reauth(ctx context.Context, t *session.Ticket) error {
	a.mu.Lock()
	last := a.lastUser
	a.mu.Unlock()

	color.New(color.FgYellow).Fprintln(a.out, "Your session has expired. Log in again to continue.")
	a.logger.Info(ctx, "re-login prompt shown", "ticket", t.ID().String())

	prompt := "Username ('-' to cancel)"
	if last != "" {
		prompt = fmt.Sprintf("Username [%s] ('-' to cancel)", last)
	}
	userName, err := getSimpleText(a.reader, prompt, a.out)
	if err == nil && userName == "-" {
		err = errReloginCancelled
	}
	if err != nil {
		a.authService.CancelRelogin()
		a.toLogin(ctx)
		return err
	}
	if userName == "" {
		userName = last
	}

	password, err := getPassword(a.out)
	if err != nil {
		a.authService.CancelRelogin()
		a.toLogin(ctx)
		return err
	}
	defer wipe(password)

	if err := a.authService.Relogin(ctx, userName, password); err != nil {
		a.toLogin(ctx)
		return err
	}

	a.mu.Lock()
	a.reauth = nil
	a.lastUser = userName
	a.mu.Unlock()

	color.New(color.FgGreen).Fprintln(a.out, "Welcome back")
	return nil
}

// Logout ends the session and returns to the login screen. The local
// session ends even when the backend cannot be reached.
func (a *App) Logout(ctx context.Context) error {
	a.authService.Logout(ctx)
	printlnFn("Logged out")
	a.toLogin(ctx)
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	st := a.authService.Status()
	if st.Identity == nil {
		return session.ErrNotAuthenticated
	}

	table := uitable.New()
	table.AddRow("User:", st.Identity.Username)
	table.AddRow("ID:", st.Identity.ID)
	table.AddRow("Role:", st.Identity.Role)
	table.AddRow("Language:", st.Identity.Language)
	fmt.Fprintln(a.out, table)
	return nil
}

func (a *App) Status(ctx context.Context) error {
	st := a.authService.Status()

	user := "-"
	if st.Identity != nil {
		user = st.Identity.Username
	}
	expiry := "unknown"
	if !st.TokenExpiry.IsZero() {
		expiry = st.TokenExpiry.Local().Format(time.DateTime)
	}

	a.mu.Lock()
	screenName := "-"
	if a.current != nil {
		screenName = a.current.name
	}
	a.mu.Unlock()

	table := uitable.New()
	table.AddRow("Session:", st.Phase)
	table.AddRow("User:", user)
	table.AddRow("Screen:", screenName)
	table.AddRow("Re-login pending:", yesNo(st.ReauthPending))
	table.AddRow("Token expires:", expiry)
	fmt.Fprintln(a.out, table)
	return nil
}

// guard lets a protected command run. A re-login that is waiting for the
// user is run first.
func (a *App) guard(ctx context.Context) error {
	err := a.authService.RequireSession()
	if !errors.Is(err, session.ErrReauthInProgress) {
		return err
	}
	t := a.pendingReauth()
	if t == nil {
		return err
	}
	if err := a.Reauth(ctx, t); err != nil {
		return err
	}
	return a.authService.RequireSession()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
