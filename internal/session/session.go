package session

import "marketplace_backend/internal/domain"

// Status is the resolved state of the session.
type Status int

const (
	StatusLoading Status = iota
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	}
	return "unknown"
}

// Session is a snapshot of who is logged in. Snapshots are values; User points
// to a copy owned by the snapshot.
type Session struct {
	User    *domain.Account
	Token   string
	Loading bool
	Error   string
	Status  Status
	// Epoch increments whenever User changes. Work started under one epoch is
	// stale once the epoch moves on.
	Epoch uint64
}

// Authenticated reports whether a valid account is signed in.
func (s Session) Authenticated() bool {
	return s.Status == StatusAuthenticated && s.User != nil && s.User.Role.Valid()
}

// Resolved reports whether the session has left the loading state and no
// action is in flight.
func (s Session) Resolved() bool {
	return s.Status != StatusLoading && !s.Loading
}

func (s Session) clone() Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

func sameAccount(a, b *domain.Account) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID && a.Role == b.Role
}
