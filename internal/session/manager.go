package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"marketplace_backend/internal/domain"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ErrStopped is returned by actions submitted after Run has returned.
var ErrStopped = errors.New("session manager stopped")

const (
	DefaultMinPasswordLength = 6
	DefaultTimeout           = 15 * time.Second
	eventQueueSize           = 32
)

// Options tunes a Manager. Zero values select the defaults.
type Options struct {
	MinPasswordLength int
	// Timeout bounds each passive derivation and background sign-out.
	Timeout time.Duration
}

// Manager owns the client session. All state changes happen on the Run
// goroutine, which consumes explicit actions and provider notifications from
// one queue. Network calls never run on that goroutine; their results come
// back as events.
type Manager struct {
	provider Provider
	profiles ProfileStore
	tokens   TokenStore
	notifier Notifier
	nav      Navigator
	logger   *zap.Logger
	opts     Options
	validate *validator.Validate

	events      chan envelope
	done        chan struct{}
	running     atomic.Bool
	unsubscribe func()

	// Owned by the Run goroutine.
	loopCtx      context.Context
	state        Session
	seq          uint64
	providerUID  string
	cancelDerive context.CancelFunc
	busy         int
	registering  int
	// deferred holds an integrity failure seen while an action was in flight.
	deferred *derived

	mu      sync.RWMutex
	current Session
	subs    map[int]chan Session
	nextSub int
}

// NewManager creates a Manager and subscribes it to provider notifications.
// The persisted token, if any, seeds Session.Token; the account is always
// re-derived from the provider.
func NewManager(provider Provider, profiles ProfileStore, tokens TokenStore, notifier Notifier, nav Navigator, logger *zap.Logger, opts Options) *Manager {
	if opts.MinPasswordLength <= 0 {
		opts.MinPasswordLength = DefaultMinPasswordLength
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	m := &Manager{
		provider: provider,
		profiles: profiles,
		tokens:   tokens,
		notifier: notifier,
		nav:      nav,
		logger:   logger.Named("session"),
		opts:     opts,
		validate: validator.New(),
		events:   make(chan envelope, eventQueueSize),
		done:     make(chan struct{}),
		subs:     make(map[int]chan Session),
	}

	token, err := tokens.Load()
	if err != nil {
		m.logger.Warn("Failed to load persisted token", zap.Error(err))
	}
	m.state = Session{Token: token, Status: StatusLoading, Loading: true}
	m.current = m.state.clone()

	m.unsubscribe = provider.OnAuthStateChanged(func(u *ProviderUser) {
		var cp *ProviderUser
		if u != nil {
			v := *u
			cp = &v
		}
		m.post(authChanged{user: cp})
	})
	return m
}

// Run processes events until ctx is done. It must be called exactly once.
func (m *Manager) Run(ctx context.Context) error {
	if !m.running.CompareAndSwap(false, true) {
		return errors.New("session manager already running")
	}
	m.loopCtx = ctx
	defer func() {
		m.unsubscribe()
		if m.cancelDerive != nil {
			m.cancelDerive()
		}
		close(m.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env := <-m.events:
			err := m.handle(env.ev)
			if env.reply != nil {
				env.reply <- err
			}
		}
	}
}

// Snapshot returns the current session.
func (m *Manager) Snapshot() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.clone()
}

// Subscribe returns a channel holding the latest session. Intermediate updates
// may be coalesced; the newest one is always delivered. The current session is
// available immediately.
func (m *Manager) Subscribe() (<-chan Session, func()) {
	ch := make(chan Session, 1)
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch
	ch <- m.current.clone()
	m.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			close(ch)
			m.mu.Unlock()
		})
	}
}

// Await blocks until cond holds for the session or ctx is done.
func (m *Manager) Await(ctx context.Context, cond func(Session) bool) (Session, error) {
	updates, cancel := m.Subscribe()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return m.Snapshot(), ctx.Err()
		case s := <-updates:
			if cond(s) {
				return s, nil
			}
		}
	}
}

// WaitResolved blocks until the session is no longer loading.
func (m *Manager) WaitResolved(ctx context.Context) (Session, error) {
	return m.Await(ctx, Session.Resolved)
}

// Login signs in, validates the account's profile and, on success, marks the
// session authenticated and navigates to the role dashboard.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if err := m.submit(ctx, actionStarted{}); err != nil {
		return err
	}

	user, err := m.provider.SignIn(ctx, email, password)
	if err != nil {
		return m.finish(ctx, loginDone{err: err}, err)
	}

	token, acc, err := m.resolve(ctx, user)
	if err != nil {
		if isIntegrityError(err) {
			m.logger.Warn("Signed-in account has no valid profile", zap.String("uid", user.UID), zap.Error(err))
			m.signOut(ctx)
		}
		return m.finish(ctx, loginDone{uid: user.UID, err: err}, err)
	}

	if err := m.submit(context.WithoutCancel(ctx), loginDone{uid: user.UID, account: acc, token: token}); err != nil {
		return err
	}
	displayEmail := acc.Email
	if displayEmail == "" {
		displayEmail = user.Email
	}
	m.notifier.Notify(NoticeSuccess, fmt.Sprintf("Welcome back, %s!", displayEmail))
	m.nav.Navigate(domain.DashboardPathFor(acc.Role))
	return nil
}

// Register validates the input, creates the provider account and its profile,
// then signs out again. The user logs in explicitly afterwards.
func (m *Manager) Register(ctx context.Context, email, password, role, name string) error {
	email = strings.TrimSpace(email)
	r, err := m.validateRegistration(email, password, role)
	if err != nil {
		_ = m.submit(ctx, errorReported{err: err})
		m.notifier.Notify(NoticeError, ErrorMessage(err))
		return err
	}

	if err := m.submit(ctx, actionStarted{registering: true}); err != nil {
		return err
	}

	if _, err := m.provider.SignUp(ctx, email, password); err != nil {
		return m.finish(ctx, registerDone{err: err}, err)
	}

	token, err := m.provider.IDToken(ctx, false)
	if err == nil {
		_, err = m.profiles.CreateProfile(ctx, token, r, strings.TrimSpace(name))
	}
	if err != nil {
		m.logger.Warn("Profile write failed; deleting the new account", zap.Error(err))
		if delErr := m.provider.DeleteAccount(context.WithoutCancel(ctx)); delErr != nil {
			m.logger.Error("Failed to delete account after profile write failure", zap.Error(delErr))
			m.signOut(ctx)
		}
		return m.finish(ctx, registerDone{err: err}, err)
	}

	m.signOut(ctx)
	if err := m.submit(context.WithoutCancel(ctx), registerDone{}); err != nil {
		return err
	}
	m.notifier.Notify(NoticeSuccess, "Registration successful! Please login.")
	m.nav.Navigate(domain.LoginPath)
	return nil
}

// Logout ends the server session (best effort), signs out of the provider and
// clears the session. The session is cleared even when a network call fails.
func (m *Manager) Logout(ctx context.Context) error {
	token := m.Snapshot().Token
	if err := m.submit(ctx, actionStarted{}); err != nil {
		return err
	}

	if r, ok := m.profiles.(Revoker); ok && token != "" {
		if err := r.Logout(ctx, token); err != nil {
			m.logger.Warn("Server logout failed", zap.Error(err))
		}
	}
	if err := m.provider.SignOut(ctx); err != nil {
		m.logger.Warn("Provider sign-out failed", zap.Error(err))
	}

	if err := m.submit(context.WithoutCancel(ctx), loggedOut{}); err != nil {
		return err
	}
	m.notifier.Notify(NoticeSuccess, "Logged out successfully")
	m.nav.Navigate(domain.LoginPath)
	return nil
}

// ClearError removes the current error message.
func (m *Manager) ClearError() {
	_ = m.submit(context.Background(), errorCleared{})
}

func (m *Manager) validateRegistration(email, password, role string) (domain.Role, error) {
	if email == "" {
		return 0, &ValidationError{Field: "email", Message: "Please enter your email address."}
	}
	if err := m.validate.Var(email, "email"); err != nil {
		return 0, &ValidationError{Field: "email", Message: "Please enter a valid email address."}
	}
	if password == "" {
		return 0, &ValidationError{Field: "password", Message: "Please enter your password."}
	}
	if len(password) < m.opts.MinPasswordLength {
		return 0, &ValidationError{Field: "password", Message: fmt.Sprintf("Password should be at least %d characters.", m.opts.MinPasswordLength)}
	}
	r, err := domain.ParseRole(role)
	if err != nil {
		return 0, &ValidationError{Field: "role", Message: "Please choose a role: buyer, vendor or rider."}
	}
	return r, nil
}

// resolve refreshes the ID token and loads the account's profile.
func (m *Manager) resolve(ctx context.Context, user ProviderUser) (string, *domain.Account, error) {
	token, err := m.provider.IDToken(ctx, true)
	if err != nil {
		return "", nil, err
	}
	acc, err := m.profiles.GetProfile(ctx, token)
	if err != nil {
		return token, nil, err
	}
	if acc == nil || !acc.Role.Valid() || acc.ID != user.UID {
		return token, nil, ErrIntegrity
	}
	return token, acc, nil
}

// finish applies a failed action's completion event and surfaces the error.
func (m *Manager) finish(ctx context.Context, ev event, err error) error {
	if subErr := m.submit(context.WithoutCancel(ctx), ev); subErr != nil {
		return subErr
	}
	m.notifier.Notify(NoticeError, ErrorMessage(err))
	return err
}

func (m *Manager) signOut(ctx context.Context) {
	if err := m.provider.SignOut(context.WithoutCancel(ctx)); err != nil {
		m.logger.Warn("Provider sign-out failed", zap.Error(err))
	}
}

// submit enqueues ev and waits until the Run goroutine has applied it.
func (m *Manager) submit(ctx context.Context, ev event) error {
	reply := make(chan error, 1)
	select {
	case m.events <- envelope{ev: ev, reply: reply}:
	case <-m.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-m.done:
		select {
		case err := <-reply:
			return err
		default:
			return ErrStopped
		}
	}
}

// post enqueues ev without waiting for it to be applied.
func (m *Manager) post(ev event) {
	select {
	case m.events <- envelope{ev: ev}:
	case <-m.done:
	}
}

func (m *Manager) handle(ev event) error {
	switch e := ev.(type) {
	case authChanged:
		m.onAuthChanged(e)
	case derived:
		m.onDerived(e)
	case actionStarted:
		m.busy++
		if e.registering {
			m.registering++
		}
		m.state.Error = ""
	case loginDone:
		return m.onLoginDone(e)
	case registerDone:
		m.busy--
		m.registering--
		m.state.Error = ErrorMessage(e.err)
		if m.providerUID == "" {
			m.state.Status = StatusUnauthenticated
		}
		m.settleDeferred()
	case loggedOut:
		m.busy--
		m.stopDerive()
		m.seq++
		m.setUser(nil, "")
		m.state.Status = StatusUnauthenticated
		m.state.Error = ""
	case errorReported:
		m.state.Error = ErrorMessage(e.err)
	case errorCleared:
		m.state.Error = ""
	default:
		return fmt.Errorf("unknown session event %T", ev)
	}
	m.publish()
	return nil
}

func (m *Manager) onAuthChanged(e authChanged) {
	m.seq++
	m.stopDerive()
	m.deferred = nil

	if e.user == nil {
		m.providerUID = ""
		m.setUser(nil, "")
		m.state.Status = StatusUnauthenticated
		return
	}

	m.providerUID = e.user.UID
	m.state.Status = StatusLoading
	if m.registering > 0 {
		// Registration signs out right after writing the profile.
		return
	}

	ctx, cancel := context.WithTimeout(m.loopCtx, m.opts.Timeout)
	m.cancelDerive = cancel
	go func(seq uint64, user ProviderUser) {
		token, acc, err := m.resolve(ctx, user)
		m.post(derived{seq: seq, uid: user.UID, account: acc, token: token, err: err})
	}(m.seq, *e.user)
}

func (m *Manager) onDerived(e derived) {
	if e.seq != m.seq {
		m.logger.Debug("Discarding stale derivation", zap.Uint64("seq", e.seq), zap.Uint64("latest", m.seq))
		return
	}
	m.stopDerive()

	switch {
	case e.err == nil:
		m.setUser(e.account, e.token)
		m.state.Status = StatusAuthenticated
		m.state.Error = ""
	case isIntegrityError(e.err):
		if m.busy > 0 {
			// The in-flight login or registration decides the outcome; if it
			// leaves the session loading, the reset is applied when it ends.
			m.deferred = &e
			return
		}
		m.resetForIntegrity(e.uid, e.err)
	case isExpiredCredential(e.err):
		m.setUser(nil, "")
		m.state.Status = StatusUnauthenticated
		m.state.Error = ErrorMessage(e.err)
		m.notifier.Notify(NoticeError, m.state.Error)
	default:
		m.logger.Warn("Session derivation failed", zap.String("uid", e.uid), zap.Error(e.err))
		m.state.Error = ErrorMessage(e.err)
		if m.state.User != nil && m.state.User.ID == e.uid {
			m.state.Status = StatusAuthenticated
		} else {
			m.state.Status = StatusUnauthenticated
		}
		m.notifier.Notify(NoticeError, m.state.Error)
	}
}

func (m *Manager) onLoginDone(e loginDone) error {
	m.busy--
	defer m.publish()

	if e.err != nil {
		m.state.Error = ErrorMessage(e.err)
		if isIntegrityError(e.err) {
			m.setUser(nil, "")
			m.state.Status = StatusUnauthenticated
		} else if m.providerUID == "" {
			m.state.Status = StatusUnauthenticated
		}
		m.settleDeferred()
		return nil
	}
	m.deferred = nil

	// Only the account the provider last reported may become the session user.
	if m.providerUID != e.uid {
		m.logger.Debug("Discarding login result for a replaced account", zap.String("uid", e.uid))
		return ErrSessionChanged
	}
	m.setUser(e.account, e.token)
	m.state.Status = StatusAuthenticated
	m.state.Error = ""
	return nil
}

// settleDeferred applies a held integrity failure once no action is in flight
// and the session is still waiting on that account.
func (m *Manager) settleDeferred() {
	d := m.deferred
	if d == nil || m.busy > 0 {
		return
	}
	m.deferred = nil
	if d.seq != m.seq || d.uid != m.providerUID || m.state.Status != StatusLoading {
		return
	}
	m.resetForIntegrity(d.uid, d.err)
}

func (m *Manager) resetForIntegrity(uid string, err error) {
	m.logger.Warn("Signed-in account has no valid profile; resetting session", zap.String("uid", uid), zap.Error(err))
	m.setUser(nil, "")
	m.state.Status = StatusUnauthenticated
	m.state.Error = ErrorMessage(err)
	m.notifier.Notify(NoticeError, m.state.Error)
	go m.backgroundSignOut()
}

func (m *Manager) backgroundSignOut() {
	ctx, cancel := context.WithTimeout(context.Background(), m.opts.Timeout)
	defer cancel()
	if err := m.provider.SignOut(ctx); err != nil {
		m.logger.Warn("Provider sign-out after integrity failure failed", zap.Error(err))
	}
}

func (m *Manager) stopDerive() {
	if m.cancelDerive != nil {
		m.cancelDerive()
		m.cancelDerive = nil
	}
}

// setUser replaces the session user and token, persisting the token and moving
// the epoch when the account changes.
func (m *Manager) setUser(acc *domain.Account, token string) {
	changed := !sameAccount(m.state.User, acc)
	if acc != nil {
		cp := *acc
		acc = &cp
	}
	m.state.User = acc

	if changed || token != m.state.Token {
		var err error
		if token == "" {
			err = m.tokens.Clear()
		} else {
			err = m.tokens.Save(token)
		}
		if err != nil {
			m.logger.Warn("Failed to persist token", zap.Error(err))
		}
	}
	m.state.Token = token
	if changed {
		m.state.Epoch++
	}
}

func (m *Manager) publish() {
	m.state.Loading = m.state.Status == StatusLoading || m.busy > 0
	snap := m.state.clone()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = snap
	for _, ch := range m.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap.clone()
	}
}
