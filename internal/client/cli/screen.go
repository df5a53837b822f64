package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/fieldvisits/internal/client/session"
	"github.com/fatih/color"
)

// screen is one REPL screen as seen by its session monitor. Monitor
// callbacks arrive on background goroutines; they only queue work that the
// REPL picks up before the next command.
type screen struct {
	name  string
	login bool
	app   *App
}

var _ session.Screen = (*screen)(nil)

func (s *screen) Name() string { return s.name }

func (s *screen) IsLogin() bool { return s.login }

func (s *screen) PromptReauth(t *session.Ticket) {
	s.app.queueReauth(s, t)
}

func (s *screen) RedirectToLogin() {
	s.app.queueRedirect(s)
}

// enter shows s and starts its monitor. The previous screen's monitor is
// torn down first.
func (a *App) enter(ctx context.Context, s *screen) {
	a.leave()

	sctx, cancel := context.WithCancel(ctx)

	a.mu.Lock()
	a.current = s
	a.screenCtx, a.cancelScreen = sctx, cancel
	a.redirect = false
	a.monitor = nil
	if a.newMonitor != nil {
		a.monitor = a.newMonitor(s)
	}
	m := a.monitor
	a.mu.Unlock()

	a.logger.Info(ctx, "screen entered", "screen", s.name)
	if m != nil {
		go m.Run(sctx)
	}
}

// leave cancels the current screen's monitor without waiting for it; a
// probe still in flight finishes in the background and its result is
// discarded.
func (a *App) leave() {
	a.mu.Lock()
	cancel, m := a.cancelScreen, a.monitor
	a.cancelScreen, a.monitor, a.current = nil, nil, nil
	a.screenCtx = nil
	if m != nil {
		a.retired = append(a.retired, m)
	}
	a.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// shutdown leaves the current screen and waits for every monitor started
// so far.
func (a *App) shutdown() {
	a.leave()

	a.mu.Lock()
	retired := a.retired
	a.retired = nil
	a.mu.Unlock()

	for _, m := range retired {
		m.Wait()
	}
}

func (a *App) queueReauth(s *screen, t *session.Ticket) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current != s {
		return
	}
	a.reauth = t
	color.New(color.FgYellow).Fprintln(a.out, "\nSession expired. Press Enter to log in again.")
}

func (a *App) queueRedirect(s *screen) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current != s || s.login {
		return
	}
	a.redirect = true
	color.New(color.FgYellow).Fprintln(a.out, "\nSession ended. Press Enter to continue to the login screen.")
}

// pendingReauth returns the open re-login ticket queued for the current
// screen, dropping it once resolved.
func (a *App) pendingReauth() *session.Ticket {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.reauth == nil {
		return nil
	}
	select {
	case <-a.reauth.Done():
		a.reauth = nil
		return nil
	default:
		return a.reauth
	}
}

func (a *App) takeRedirect() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	r := a.redirect
	a.redirect = false
	return r
}

// reconcile applies what the monitors queued since the last command: an
// open re-login prompt first, then a pending redirect.
func (a *App) reconcile(ctx context.Context) {
	if t := a.pendingReauth(); t != nil {
		if err := a.Reauth(ctx, t); err != nil && !errors.Is(err, errReloginCancelled) && !errors.Is(err, io.EOF) {
			report(err)
		}
	}
	if a.takeRedirect() {
		a.toLogin(ctx)
	}
}

func (a *App) toLogin(ctx context.Context) {
	a.mu.Lock()
	a.reauth = nil
	a.mu.Unlock()
	a.enter(ctx, a.loginScreen)
}

func (a *App) getStatus() string {
	st := a.authService.Status()
	s := st.Phase.String()
	if st.Identity != nil {
		s = st.Identity.Username + " " + s
	}
	if st.ReauthPending {
		s += " re-login"
	}
	return fmt.Sprintf("(%s)", s)
}
