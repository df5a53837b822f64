// Package cli provides the interactive field visits command-line client.
//
// It wires configuration, the backend client, session tracking and the
// visit services into a REPL with two screens: a login screen and the main
// screen that holds every protected command. Each screen owns a session
// monitor for as long as it is shown.
//
// When the session is lost on the main screen the REPL interrupts the next
// command with a re-login prompt. Failing or cancelling it sends the user
// back to the login screen.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See runREPL for the command set.
package cli
