package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"marketplace_backend/internal/domain"
)

type codedErr string

func (e codedErr) Error() string { return "provider: " + string(e) }
func (e codedErr) Code() string  { return string(e) }

type fakeAccount struct {
	uid      string
	password string
}

// fakeProvider mimics the identity provider: listeners run synchronously
// before the mutating call returns.
type fakeProvider struct {
	mu        sync.Mutex
	accounts  map[string]fakeAccount
	current   *ProviderUser
	listeners map[int]func(*ProviderUser)
	next      int

	signUps  int
	signOuts int
	deletes  int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{accounts: map[string]fakeAccount{}, listeners: map[int]func(*ProviderUser){}}
}

func (p *fakeProvider) addAccount(email, uid, password string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.accounts[email] = fakeAccount{uid: uid, password: password}
}

func (p *fakeProvider) setCurrent(u *ProviderUser) {
	p.mu.Lock()
	p.current = u
	p.mu.Unlock()
}

// emit notifies listeners with the current user, like a provider start-up.
func (p *fakeProvider) emit() {
	p.mu.Lock()
	u := p.current
	fns := make([]func(*ProviderUser), 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	p.mu.Unlock()
	for _, fn := range fns {
		fn(u)
	}
}

func (p *fakeProvider) SignUp(_ context.Context, email, password string) (ProviderUser, error) {
	p.mu.Lock()
	p.signUps++
	if _, exists := p.accounts[email]; exists {
		p.mu.Unlock()
		return ProviderUser{}, codedErr("auth/email-already-in-use")
	}
	uid := "uid-" + strings.Split(email, "@")[0]
	p.accounts[email] = fakeAccount{uid: uid, password: password}
	p.current = &ProviderUser{UID: uid, Email: email}
	u := *p.current
	p.mu.Unlock()
	p.emit()
	return u, nil
}

func (p *fakeProvider) SignIn(_ context.Context, email, password string) (ProviderUser, error) {
	p.mu.Lock()
	acc, ok := p.accounts[email]
	if !ok {
		p.mu.Unlock()
		return ProviderUser{}, codedErr("auth/user-not-found")
	}
	if acc.password != password {
		p.mu.Unlock()
		return ProviderUser{}, codedErr("auth/wrong-password")
	}
	p.current = &ProviderUser{UID: acc.uid, Email: email}
	u := *p.current
	p.mu.Unlock()
	p.emit()
	return u, nil
}

func (p *fakeProvider) SignOut(context.Context) error {
	p.mu.Lock()
	p.signOuts++
	p.current = nil
	p.mu.Unlock()
	p.emit()
	return nil
}

func (p *fakeProvider) DeleteAccount(context.Context) error {
	p.mu.Lock()
	p.deletes++
	if p.current != nil {
		delete(p.accounts, p.current.Email)
	}
	p.current = nil
	p.mu.Unlock()
	p.emit()
	return nil
}

func (p *fakeProvider) IDToken(context.Context, bool) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return "", codedErr("auth/user-token-expired")
	}
	return "token-" + p.current.UID, nil
}

func (p *fakeProvider) OnAuthStateChanged(fn func(*ProviderUser)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.next
	p.next++
	p.listeners[id] = fn
	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

func (p *fakeProvider) counts() (signUps, signOuts, deletes int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.signUps, p.signOuts, p.deletes
}

// fakeProfiles stores accounts by uid; tokens are "token-<uid>".
type fakeProfiles struct {
	mu        sync.Mutex
	accounts  map[string]domain.Account
	createErr error
	created   int
	logouts   []string
	// gate, when set for a uid, blocks GetProfile until closed.
	gate map[string]chan struct{}
	// hook, when set, runs after the gate; a non-nil result is returned as the lookup error.
	hook func(ctx context.Context, uid string) error
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{accounts: map[string]domain.Account{}, gate: map[string]chan struct{}{}}
}

func (s *fakeProfiles) put(acc domain.Account) {
	s.mu.Lock()
	s.accounts[acc.ID] = acc
	s.mu.Unlock()
}

func (s *fakeProfiles) GetProfile(ctx context.Context, token string) (*domain.Account, error) {
	uid := strings.TrimPrefix(token, "token-")
	s.mu.Lock()
	gate := s.gate[uid]
	s.mu.Unlock()
	if gate != nil {
		<-gate
	}
	s.mu.Lock()
	hook := s.hook
	s.mu.Unlock()
	if hook != nil {
		if err := hook(ctx, uid); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[uid]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return &acc, nil
}

func (s *fakeProfiles) CreateProfile(_ context.Context, token string, role domain.Role, name string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created++
	uid := strings.TrimPrefix(token, "token-")
	acc := domain.Account{ID: uid, Role: role, Name: name}
	s.accounts[uid] = acc
	return &acc, nil
}

func (s *fakeProfiles) Logout(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logouts = append(s.logouts, token)
	return errors.New("server unreachable")
}

type memTokens struct {
	mu    sync.Mutex
	token string
}

func (t *memTokens) Load() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.token, nil
}

func (t *memTokens) Save(token string) error {
	t.mu.Lock()
	t.token = token
	t.mu.Unlock()
	return nil
}

func (t *memTokens) Clear() error { return t.Save("") }

func (t *memTokens) get() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.token
}

type notice struct {
	kind NoticeKind
	msg  string
}

type recorder struct {
	mu      sync.Mutex
	notices []notice
	paths   []string
}

func (r *recorder) Notify(kind NoticeKind, msg string) {
	r.mu.Lock()
	r.notices = append(r.notices, notice{kind, msg})
	r.mu.Unlock()
}

func (r *recorder) Navigate(path string) {
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()
}

func (r *recorder) lastNotice() notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return notice{}
	}
	return r.notices[len(r.notices)-1]
}

func (r *recorder) lastPath() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.paths) == 0 {
		return ""
	}
	return r.paths[len(r.paths)-1]
}
