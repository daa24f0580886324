package main

import (
	"fmt"
	"io"
	"sync"

	"marketplace_backend/internal/domain"
	"marketplace_backend/internal/session"
)

// terminal prints notifications and records navigation for the CLI.
type terminal struct {
	out, errOut io.Writer

	mu        sync.Mutex
	path      string
	redirects chan struct{}
}

func newTerminal(out, errOut io.Writer) *terminal {
	return &terminal{out: out, errOut: errOut, redirects: make(chan struct{}, 1)}
}

func (t *terminal) Notify(kind session.NoticeKind, message string) {
	if kind == session.NoticeError {
		fmt.Fprintf(t.errOut, "error: %s\n", message)
		return
	}
	fmt.Fprintln(t.out, message)
}

// Navigate records the route. Navigation to the login page also signals
// redirects, which commands watch to stop waiting for a view.
func (t *terminal) Navigate(path string) {
	t.mu.Lock()
	t.path = path
	t.mu.Unlock()
	if path == domain.LoginPath {
		select {
		case t.redirects <- struct{}{}:
		default:
		}
	}
}

func (t *terminal) currentPath() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.path
}
