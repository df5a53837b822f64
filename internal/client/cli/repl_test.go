package cli

import (
	"bufio"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn   bool
	reconciles int

	calls []string
	args  map[string][]string
	err   error
}

func (f *fakeExec) record(name string, args []string) error {
	f.calls = append(f.calls, name)
	if f.args == nil {
		f.args = map[string][]string{}
	}
	f.args[name] = args
	return f.err
}

func (f *fakeExec) isLoggedIn() bool              { return f.loggedIn }
func (f *fakeExec) reconcile(context.Context)     { f.reconciles++ }
func (f *fakeExec) WhoAmI(context.Context) error  { return f.record("whoami", nil) }
func (f *fakeExec) Status(context.Context) error  { return f.record("status", nil) }
func (f *fakeExec) Refresh(context.Context) error { return f.record("refresh", nil) }
func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.record("login", nil)
}
func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.record("logout", nil)
}
func (f *fakeExec) Clients(_ context.Context, a []string) error { return f.record("clients", a) }
func (f *fakeExec) Visits(_ context.Context, a []string) error  { return f.record("visits", a) }
func (f *fakeExec) Today(_ context.Context, a []string) error   { return f.record("today", a) }
func (f *fakeExec) Week(_ context.Context, a []string) error    { return f.record("week", a) }
func (f *fakeExec) Show(_ context.Context, a []string) error    { return f.record("show", a) }
func (f *fakeExec) Edit(_ context.Context, a []string) error    { return f.record("edit", a) }
func (f *fakeExec) Link(_ context.Context, a []string) error    { return f.record("link", a) }

func lines(s ...string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(strings.Join(s, "\n")))
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	capturePrintln(t)

	exec := &fakeExec{}
	in := lines(
		"help",
		"clients",
		"login",
		"help",
		"clients -q acme -mine",
		"visits 7",
		"today mine",
		"week",
		"show 11",
		"edit 11",
		"link 11",
		"refresh",
		"whoami",
		"status",
		"logout",
		"exit",
	)

	runREPL(context.Background(), exec, func() string { return "status" }, in)

	assert.Equal(t, []string{"login", "clients", "visits", "today", "week", "show", "edit", "link",
		"refresh", "whoami", "status", "logout"}, exec.calls)
	assert.Equal(t, []string{"-q", "acme", "-mine"}, exec.args["clients"])
	assert.Equal(t, []string{"mine"}, exec.args["today"])
	assert.Equal(t, []string{"11"}, exec.args["edit"])
}

func TestRunREPL_ReconcilesAroundEveryRead(t *testing.T) {
	capturePrintln(t)

	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "" }, lines("", "whoami", "quit"))

	// Two per line read, the last line exits before the next prompt.
	assert.Equal(t, 6, exec.reconciles)
}

func TestRunREPL_ProtectedCommandsNeedLogin(t *testing.T) {
	out := capturePrintln(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "s" }, lines("clients", "logout", "quit"))

	assert.Empty(t, exec.calls)
	assert.Contains(t, out.String(), "log in first")
	assert.Contains(t, out.String(), "Bye!")
}

func TestRunREPL_ReportsErrorsAndContinues(t *testing.T) {
	out := capturePrintln(t)

	exec := &fakeExec{loggedIn: true, err: errors.New("backend down")}
	runREPL(context.Background(), exec, func() string { return "s" }, lines("today", "week", "foobar"))

	assert.Equal(t, []string{"today", "week"}, exec.calls)
	assert.Equal(t, 2, strings.Count(out.String(), "Error: backend down"))
	assert.Contains(t, out.String(), "unknown command: foobar")
}

func TestRunREPL_EOFWithoutNewline(t *testing.T) {
	capturePrintln(t)

	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "s" }, lines("whoami"))

	assert.Equal(t, []string{"whoami"}, exec.calls)
}
