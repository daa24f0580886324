package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"marketplace_backend/internal/session"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

const (
	defaultSecureTokenURL = "https://securetoken.googleapis.com/v1/token"
	// ID tokens are refreshed this long before they expire.
	refreshWindow = 5 * time.Minute
)

// Config configures the identity client.
type Config struct {
	APIKey string
	// StateDir holds the persisted credential. Empty keeps it in memory only.
	StateDir string
	// Endpoint overrides the Identity Toolkit base URL (emulator, tests).
	Endpoint string
	// TokenEndpoint overrides the secure token URL.
	TokenEndpoint string
	// HTTPClient replaces the default transport. The API key is then not
	// attached to Identity Toolkit calls by the client library.
	HTTPClient *http.Client
}

// Client implements session.Provider on the Firebase Identity Toolkit REST API.
type Client struct {
	svc    *identitytoolkit.Service
	cfg    Config
	store  *credentialStore
	logger *zap.Logger
	now    func() time.Time

	mu        sync.Mutex
	cred      *credential
	listeners map[int]func(*session.ProviderUser)
	nextID    int
}

var _ session.Provider = (*Client)(nil)

// New creates a Client. Call Start to restore a persisted sign-in.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	svc, err := identitytoolkit.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create identity toolkit service: %w", err)
	}
	return &Client{
		svc:       svc,
		cfg:       cfg,
		store:     newCredentialStore(cfg.StateDir),
		logger:    logger.Named("identity"),
		now:       time.Now,
		listeners: make(map[int]func(*session.ProviderUser)),
	}, nil
}

// Start restores the persisted credential, if any, and notifies listeners of
// the resulting sign-in state.
func (c *Client) Start(ctx context.Context) error {
	cred, err := c.store.load()
	if err != nil {
		c.logger.Warn("Ignoring unreadable credential file", zap.Error(err))
		cred = nil
	}
	c.mu.Lock()
	c.cred = cred
	c.mu.Unlock()

	if cred != nil {
		c.logger.Debug("Restored credential", zap.String("uid", cred.UID))
	}
	c.notify()
	return ctx.Err()
}

// CurrentUser returns the signed-in account, or nil.
func (c *Client) CurrentUser() *session.ProviderUser {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentLocked()
}

func (c *Client) currentLocked() *session.ProviderUser {
	if c.cred == nil {
		return nil
	}
	return &session.ProviderUser{UID: c.cred.UID, Email: c.cred.Email}
}

// SignUp creates an email/password account and signs it in.
func (c *Client) SignUp(ctx context.Context, email, password string) (session.ProviderUser, error) {
	resp, err := c.svc.Relyingparty.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:    email,
		Password: password,
	}).Context(ctx).Do()
	if err != nil {
		return session.ProviderUser{}, classify(err)
	}
	cred := &credential{
		UID:          resp.LocalId,
		Email:        resp.Email,
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
		Expiry:       c.now().Add(time.Duration(resp.ExpiresIn) * time.Second),
	}
	if cred.Email == "" {
		cred.Email = email
	}
	c.signIn(cred)
	return session.ProviderUser{UID: cred.UID, Email: cred.Email}, nil
}

// SignIn verifies an email/password pair and signs the account in.
func (c *Client) SignIn(ctx context.Context, email, password string) (session.ProviderUser, error) {
	resp, err := c.svc.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return session.ProviderUser{}, classify(err)
	}
	cred := &credential{
		UID:          resp.LocalId,
		Email:        resp.Email,
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
		Expiry:       c.now().Add(time.Duration(resp.ExpiresIn) * time.Second),
	}
	if cred.Email == "" {
		cred.Email = email
	}
	c.signIn(cred)
	return session.ProviderUser{UID: cred.UID, Email: cred.Email}, nil
}

// SignOut forgets the local credential. The provider keeps no client state,
// so this never fails on the network.
func (c *Client) SignOut(context.Context) error {
	c.mu.Lock()
	c.cred = nil
	c.mu.Unlock()

	err := c.store.remove()
	c.notify()
	return err
}

// DeleteAccount deletes the signed-in account at the provider and signs out.
func (c *Client) DeleteAccount(ctx context.Context) error {
	c.mu.Lock()
	cred := c.cred
	c.mu.Unlock()
	if cred == nil {
		return ErrNoCurrentUser
	}

	token, err := c.IDToken(ctx, false)
	if err != nil {
		return err
	}
	_, err = c.svc.Relyingparty.DeleteAccount(&identitytoolkit.IdentitytoolkitRelyingpartyDeleteAccountRequest{
		IdToken: token,
		LocalId: cred.UID,
	}).Context(ctx).Do()
	if err != nil {
		return classify(err)
	}
	c.logger.Info("Deleted account", zap.String("uid", cred.UID))
	return c.SignOut(ctx)
}

// IDToken returns a valid ID token, refreshing it when forced or when it is
// within five minutes of expiry. A revoked refresh token signs the account out.
func (c *Client) IDToken(ctx context.Context, forceRefresh bool) (string, error) {
	c.mu.Lock()
	cred := c.cred
	c.mu.Unlock()
	if cred == nil {
		return "", ErrNoCurrentUser
	}
	if !forceRefresh && cred.IDToken != "" && c.now().Before(cred.Expiry.Add(-refreshWindow)) {
		return cred.IDToken, nil
	}

	refreshed, err := c.refresh(ctx, cred)
	if err != nil {
		var ierr *Error
		if errors.As(err, &ierr) && isRevokedCode(ierr.Code()) {
			c.logger.Info("Refresh token rejected; signing out", zap.String("uid", cred.UID), zap.String("code", ierr.Code()))
			_ = c.SignOut(ctx)
		}
		return "", err
	}

	c.mu.Lock()
	current := c.cred != nil && c.cred.UID == cred.UID
	if current {
		c.cred = refreshed
	}
	c.mu.Unlock()
	if current {
		if err := c.store.save(refreshed); err != nil {
			c.logger.Warn("Failed to persist refreshed credential", zap.Error(err))
		}
	}
	return refreshed.IDToken, nil
}

// OnAuthStateChanged registers fn for sign-in and sign-out notifications.
// Listeners run on the goroutine that changed the state, before that call returns.
func (c *Client) OnAuthStateChanged(fn func(user *session.ProviderUser)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Client) signIn(cred *credential) {
	c.mu.Lock()
	c.cred = cred
	c.mu.Unlock()
	if err := c.store.save(cred); err != nil {
		c.logger.Warn("Failed to persist credential", zap.Error(err))
	}
	c.notify()
}

func (c *Client) notify() {
	c.mu.Lock()
	user := c.currentLocked()
	fns := make([]func(*session.ProviderUser), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(user)
	}
}

// refresh exchanges the refresh token at the secure token service.
func (c *Client) refresh(ctx context.Context, cred *credential) (*credential, error) {
	conf := &oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.tokenURL(),
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	if c.cfg.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.cfg.HTTPClient)
	}

	tok, err := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: cred.RefreshToken}).Token()
	if err != nil {
		return nil, classifyRefresh(err)
	}
	idToken, _ := tok.Extra("id_token").(string)
	if idToken == "" {
		return nil, &Error{code: "auth/internal-error", message: "token response without id_token"}
	}

	refreshed := *cred
	refreshed.IDToken = idToken
	if tok.RefreshToken != "" {
		refreshed.RefreshToken = tok.RefreshToken
	}
	refreshed.Expiry = tok.Expiry
	if refreshed.Expiry.IsZero() {
		refreshed.Expiry = c.now().Add(time.Hour)
	}
	return &refreshed, nil
}

func (c *Client) tokenURL() string {
	base := c.cfg.TokenEndpoint
	if base == "" {
		base = defaultSecureTokenURL
	}
	return base + "?key=" + url.QueryEscape(c.cfg.APIKey)
}

// classifyRefresh reads the secure token service's error body:
// {"error":{"message":"TOKEN_EXPIRED"}}.
func classifyRefresh(err error) error {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return classify(err)
	}
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if jsonErr := json.Unmarshal(re.Body, &body); jsonErr == nil && body.Error.Message != "" {
		return &Error{code: codeForMessage(body.Error.Message), message: body.Error.Message, err: err}
	}
	return &Error{code: "auth/internal-error", message: string(re.Body), err: err}
}
