package session

import "marketplace_backend/internal/domain"

// event is one entry of the manager's queue. Only the Run goroutine handles events.
type event interface{}

type envelope struct {
	ev    event
	reply chan error
}

// authChanged is a provider notification; user is nil when signed out.
type authChanged struct {
	user *ProviderUser
}

// derived carries the result of a passive derivation started for seq.
type derived struct {
	seq     uint64
	uid     string
	account *domain.Account
	token   string
	err     error
}

type actionStarted struct {
	registering bool
}

type loginDone struct {
	uid     string
	account *domain.Account
	token   string
	err     error
}

type registerDone struct {
	err error
}

type loggedOut struct{}

type errorReported struct {
	err error
}

type errorCleared struct{}
