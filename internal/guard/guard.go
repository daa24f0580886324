// Package guard gates views on the session: it shows a view only while an
// account with an allowed role is signed in.
package guard

import (
	"context"

	"marketplace_backend/internal/domain"
	"marketplace_backend/internal/session"
)

// Decision is the outcome of evaluating a session against a Guard.
type Decision int

const (
	// Pending means the session is still resolving; show a placeholder.
	Pending Decision = iota
	// Redirect means the view must not be shown; go to the login page.
	Redirect
	// Allow means the view may be shown.
	Allow
)

func (d Decision) String() string {
	switch d {
	case Pending:
		return "pending"
	case Redirect:
		return "redirect"
	case Allow:
		return "allow"
	}
	return "unknown"
}

// Source publishes session snapshots. *session.Manager implements it.
type Source interface {
	Subscribe() (<-chan session.Session, func())
}

// View is a guarded screen. Show receives a context that is cancelled when
// the view is hidden.
type View interface {
	Placeholder()
	Show(ctx context.Context, s session.Session)
	// Update delivers a newer snapshot of the same account while shown.
	Update(s session.Session)
	Hide()
}

// Guard allows a set of roles. An empty Allowed admits every valid role.
type Guard struct {
	Allowed []domain.Role
}

// Evaluate decides what to render for s.
func (g Guard) Evaluate(s session.Session) Decision {
	if s.Status == session.StatusLoading || s.Loading {
		return Pending
	}
	if !s.Authenticated() {
		return Redirect
	}
	if len(g.Allowed) == 0 {
		return Allow
	}
	for _, r := range g.Allowed {
		if r == s.User.Role {
			return Allow
		}
	}
	return Redirect
}

// Mount drives view from the session updates of src until ctx is done or src
// stops publishing. A different account or role remounts the view; losing
// access hides it and navigates to the login page.
func (g Guard) Mount(ctx context.Context, src Source, view View, nav session.Navigator) error {
	updates, unsubscribe := src.Subscribe()
	defer unsubscribe()

	m := mount{guard: g, view: view, nav: nav, parent: ctx, last: -1}
	defer m.hide()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s, ok := <-updates:
			if !ok {
				return nil
			}
			m.apply(s)
		}
	}
}

type mount struct {
	guard  Guard
	view   View
	nav    session.Navigator
	parent context.Context

	last   Decision
	shown  *domain.Account
	cancel context.CancelFunc
}

func (m *mount) apply(s session.Session) {
	d := m.guard.Evaluate(s)
	defer func() { m.last = d }()

	switch d {
	case Pending:
		m.hide()
		if m.last != Pending {
			m.view.Placeholder()
		}
	case Redirect:
		m.hide()
		if m.last != Redirect {
			m.nav.Navigate(domain.LoginPath)
		}
	case Allow:
		if m.shown != nil && m.shown.ID == s.User.ID && m.shown.Role == s.User.Role {
			m.view.Update(s)
			return
		}
		m.hide()
		ctx, cancel := context.WithCancel(m.parent)
		acc := *s.User
		m.shown, m.cancel = &acc, cancel
		m.view.Show(ctx, s)
	}
}

func (m *mount) hide() {
	if m.shown == nil {
		return
	}
	m.cancel()
	m.shown, m.cancel = nil, nil
	m.view.Hide()
}
