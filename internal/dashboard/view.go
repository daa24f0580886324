// Package dashboard implements the role dashboards shown behind the route guard.
package dashboard

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"
	"unicode"

	"marketplace_backend/internal/apiclient"
	"marketplace_backend/internal/catalog"
	"marketplace_backend/internal/domain"
	"marketplace_backend/internal/product"
	"marketplace_backend/internal/session"

	"go.uber.org/zap"
)

var (
	// ErrHidden is returned by actions on a view that is not shown.
	ErrHidden = errors.New("dashboard is not shown")
	// ErrStale is returned when the session changed or the view was hidden
	// while a call was in flight. The response is dropped.
	ErrStale = errors.New("response belongs to a previous session")
)

const accessDeniedMessage = "Access denied. Please log in again."

// ProductAPI is the vendor product transport. *apiclient.Client implements it.
type ProductAPI interface {
	CreateProduct(ctx context.Context, token string, req product.CreateProductRequest) (*domain.Product, error)
	ListProducts(ctx context.Context, token string) ([]product.ProductSummary, error)
}

// CatalogAPI is the buyer catalog transport. *apiclient.Client implements it.
type CatalogAPI interface {
	SearchCatalog(ctx context.Context, token, query string, page, pageSize int) (*catalog.SearchResponse, error)
}

// TokenSource mints a fresh ID token when the API reports an expired session.
type TokenSource interface {
	IDToken(ctx context.Context, forceRefresh bool) (string, error)
}

// SessionActions ends the session when the API denies the account.
type SessionActions interface {
	Logout(ctx context.Context) error
}

// Deps are shared by every dashboard view.
type Deps struct {
	Products ProductAPI
	Catalog  CatalogAPI
	Tokens   TokenSource
	Session  SessionActions
	Notifier session.Notifier
	Out      io.Writer
	Logger   *zap.Logger
	Now      func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

// screen tracks whether a view is shown and for which session.
type screen struct {
	mu    sync.Mutex
	ctx   context.Context
	sess  session.Session
	shown chan struct{}
}

func (s *screen) show(ctx context.Context, sess session.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shown == nil || s.ctx != nil {
		s.shown = make(chan struct{})
	}
	s.ctx, s.sess = ctx, sess
	close(s.shown)
}

func (s *screen) update(sess session.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx != nil && s.sess.Epoch == sess.Epoch {
		s.sess = sess
	}
}

func (s *screen) hide() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx, s.sess = nil, session.Session{}
	s.shown = make(chan struct{})
}

// WaitShown blocks until the view is shown or ctx is done.
func (s *screen) WaitShown(ctx context.Context) error {
	s.mu.Lock()
	if s.shown == nil {
		s.shown = make(chan struct{})
	}
	ch := s.shown
	s.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *screen) active() (context.Context, session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx == nil || s.ctx.Err() != nil {
		return nil, session.Session{}, ErrHidden
	}
	return s.ctx, s.sess, nil
}

// call runs fn with the session token, bound to both ctx and the view's
// lifetime. An expired session is retried once with a refreshed token.
// apply runs under the view lock only if the view still shows the same epoch.
func (s *screen) call(ctx context.Context, tokens TokenSource, fn func(ctx context.Context, token string) error, apply func()) error {
	viewCtx, sess, err := s.active()
	if err != nil {
		return err
	}
	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(viewCtx, cancel)
	defer stop()

	err = fn(callCtx, sess.Token)
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) && apiErr.IsSessionExpired() && tokens != nil {
		token, tokenErr := tokens.IDToken(callCtx, true)
		if tokenErr != nil {
			err = tokenErr
		} else {
			err = fn(callCtx, token)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx != viewCtx || viewCtx.Err() != nil || s.sess.Epoch != sess.Epoch {
		return ErrStale
	}
	if err != nil {
		return err
	}
	if apply != nil {
		apply()
	}
	return nil
}

// report surfaces err to the user. Denied accounts are logged out.
func report(ctx context.Context, d Deps, err error) {
	if err == nil || errors.Is(err, ErrStale) || errors.Is(err, ErrHidden) {
		return
	}
	if isAccessDenied(err) {
		d.Notifier.Notify(session.NoticeError, accessDeniedMessage)
		if d.Session != nil {
			if logoutErr := d.Session.Logout(context.WithoutCancel(ctx)); logoutErr != nil {
				d.Logger.Warn("Logout after access denial failed", zap.Error(logoutErr))
			}
		}
		return
	}
	d.Notifier.Notify(session.NoticeError, session.ErrorMessage(err))
}

func isAccessDenied(err error) bool {
	return errors.Is(err, apiclient.ErrProfileNotFound) ||
		errors.Is(err, apiclient.ErrInvalidProfile) ||
		errors.Is(err, apiclient.ErrTokenRevoked)
}

// greeting returns the time-of-day salutation shown under the title.
func greeting(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "Good morning"
	case h < 18:
		return "Good afternoon"
	}
	return "Good evening"
}

// displayName is the capitalized first word of the account name, or the email.
func displayName(acc *domain.Account) string {
	if acc == nil {
		return ""
	}
	fields := strings.Fields(acc.Name)
	if len(fields) == 0 {
		return acc.Email
	}
	first := []rune(strings.ToLower(fields[0]))
	first[0] = unicode.ToUpper(first[0])
	return string(first)
}
