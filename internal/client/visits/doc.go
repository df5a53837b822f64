// Package visits derives the client and visit views shown by the CLI.
//
// Everything here is a pure function of raw backend data, the acting user
// and a single "now" instant captured by the caller. Nothing is cached:
// every call rebuilds its result from the dataset it is given.
package visits
