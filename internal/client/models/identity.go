// Package models defines the client-side data model: the authenticated
// identity, companies ("clients") with their field visits, and the derived
// views built from them.
package models

// Role is the actor's role as reported by the session probe.
type Role string

const (
	// RoleFieldRep is the restricted role; its edits are time-limited.
	RoleFieldRep Role = "field_rep"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// Identity is the authenticated user. It is replaced wholesale on
// login/logout and never mutated in place.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Language string `json:"language"`
}

// IsRestricted reports whether the identity carries the restricted role.
func (i Identity) IsRestricted() bool {
	return i.Role == RoleFieldRep
}

// Phase is the authentication phase of the process.
type Phase int

const (
	PhaseChecking Phase = iota
	PhaseAuthenticated
	PhaseUnauthenticated
)

func (p Phase) String() string {
	switch p {
	case PhaseChecking:
		return "checking"
	case PhaseAuthenticated:
		return "authenticated"
	case PhaseUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// ProbeResult is the answer of the backend session probe. The session is
// valid iff Success is true.
type ProbeResult struct {
	Success bool
	User    *Identity
}
