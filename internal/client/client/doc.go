// Package client is the transport to the field-visits backend.
//
// # Overview
//
// Client describes the backend calls the rest of the application needs:
// the session probe, Login/Logout, ListClients and UpdateVisit. GRPCClient
// implements it over a single gRPC connection to the
// fieldvisits.v1.FieldVisits service. Messages are google.protobuf.Struct
// and google.protobuf.Empty, decoded into models through protojson.
//
// The session token returned by Login is attached to every call as
// authorization metadata by a unary interceptor.
//
// # Error Handling
//
// gRPC status codes are mapped to sentinel errors that callers match with
// errors.Is: ErrUnauthorized (Unauthenticated, PermissionDenied) and
// ErrUnavailable (Unavailable, DeadlineExceeded). ErrRejected means the
// backend answered success=false; ErrBadResponse means the payload could not
// be decoded.
//
// Timestamps in payloads may be RFC 3339 strings, plain dates, SQL-style
// date-times or epoch milliseconds; they are normalized on decoding and
// malformed values become the zero time.
package client
