package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	reconcile(ctx context.Context)
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Status(ctx context.Context) error
	Clients(ctx context.Context, args []string) error
	Visits(ctx context.Context, args []string) error
	Today(ctx context.Context, args []string) error
	Week(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	Link(ctx context.Context, args []string) error
	Refresh(ctx context.Context) error
}

var errUnknownCommand = errors.New("unknown command")

// runREPL reads commands line by line from r and dispatches them to a. The
// loop exits on EOF or when the user types "exit" or "quit".
//
// Before each prompt and again before running each command, a.reconcile
// gets a chance to run a queued re-login prompt or screen change, so a
// session lost while the user was typing is dealt with before the command.
//
// Prompt & Commands
//
//	Login screen:
//	  - help                    show available commands
//	  - login                   authenticate
//	  - exit | quit             leave the program
//
//	Main screen:
//	  - clients [flags]         clients with their latest visit
//	  - visits <client_id>      all visits of one client
//	  - today [mine]            visits dated today
//	  - week [mine]             visits dated this week
//	  - show <visit_id>         visit details
//	  - edit <visit_id>         edit a visit
//	  - link <visit_id>         download link for the attachment
//	  - refresh                 re-check the session and reload counts
//	  - whoami | status         identity and session state
//	  - logout                  log out
//
// Command errors are reported to the user and never stop the loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, r *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		a.reconcile(ctx)

		printlnFn(fmt.Sprintf("fv %s > ", statusFn()))
		line, err := r.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		a.reconcile(ctx)

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		if dispatch(ctx, a, parts[0], parts[1:]) {
			return
		}
	}
}

// dispatch runs one command and reports whether the REPL should exit.
func dispatch(ctx context.Context, a execIface, cmd string, args []string) bool {
	if cmd == "exit" || cmd == "quit" {
		printlnFn("Bye!")
		return true
	}
	if cmd == "help" {
		if a.isLoggedIn() {
			printlnFn("Available commands: clients, visits, today, week, show, edit, link, refresh, whoami, status, logout, exit")
		} else {
			printlnFn("Available commands: login, status, exit")
		}
		return false
	}

	var err error
	if !a.isLoggedIn() {
		switch cmd {
		case "login":
			err = a.Login(ctx)
		case "status":
			err = a.Status(ctx)
		default:
			err = fmt.Errorf("%w: %s (log in first)", errUnknownCommand, cmd)
		}
		report(err)
		return false
	}

	switch cmd {
	case "login":
		printlnFn("Already logged in")
	case "logout":
		err = a.Logout(ctx)
	case "whoami":
		err = a.WhoAmI(ctx)
	case "status":
		err = a.Status(ctx)
	case "clients", "c":
		err = a.Clients(ctx, args)
	case "visits", "v":
		err = a.Visits(ctx, args)
	case "today":
		err = a.Today(ctx, args)
	case "week":
		err = a.Week(ctx, args)
	case "show":
		err = a.Show(ctx, args)
	case "edit":
		err = a.Edit(ctx, args)
	case "link":
		err = a.Link(ctx, args)
	case "refresh":
		err = a.Refresh(ctx)
	default:
		err = fmt.Errorf("%w: %s", errUnknownCommand, cmd)
	}
	report(err)
	return false
}

func report(err error) {
	if err == nil {
		return
	}
	printlnFn("Error:", err)
}
