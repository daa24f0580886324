package main

import (
	"context"
	"net/http"
	"os"

	"marketplace_backend/internal/apiclient"
	"marketplace_backend/internal/config"
	"marketplace_backend/internal/dashboard"
	"marketplace_backend/internal/identity"
	"marketplace_backend/internal/platform/logger"
	"marketplace_backend/internal/session"

	"go.uber.org/zap"
)

// cli bundles everything a command needs.
type cli struct {
	Config   *config.ClientConfig
	Logger   *zap.Logger
	Identity *identity.Client
	Session  *session.Manager
	Term     *terminal
	Vendor   *dashboard.VendorView
	Buyer    *dashboard.BuyerView
	Rider    *dashboard.RiderView
	Router   *dashboard.Router
}

func provideLogger(cfg *config.ClientConfig) (*zap.Logger, func(), error) {
	l, err := logger.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return l, func() { _ = l.Sync() }, nil
}

func provideIdentity(cfg *config.ClientConfig, logger *zap.Logger) (*identity.Client, error) {
	return identity.New(context.Background(), identity.Config{
		APIKey:        cfg.FirebaseWebAPIKey,
		StateDir:      cfg.StateDir,
		Endpoint:      cfg.IdentityEndpoint,
		TokenEndpoint: cfg.SecureTokenEndpoint,
		HTTPClient:    &http.Client{Timeout: cfg.RequestTimeout},
	}, logger)
}

func provideAPIClient(cfg *config.ClientConfig, logger *zap.Logger) *apiclient.Client {
	return apiclient.New(cfg.APIBaseURL, &http.Client{Timeout: cfg.RequestTimeout}, logger)
}

func provideTokenStore(cfg *config.ClientConfig) (*session.FileTokenStore, error) {
	return session.NewFileTokenStore(cfg.StateDir)
}

func provideSessionOptions(cfg *config.ClientConfig) session.Options {
	return session.Options{MinPasswordLength: cfg.MinPasswordLength, Timeout: cfg.RequestTimeout}
}

func provideTerminal() *terminal {
	return newTerminal(os.Stdout, os.Stderr)
}

func provideDashboardDeps(api *apiclient.Client, idp *identity.Client, mgr *session.Manager, term *terminal, logger *zap.Logger) dashboard.Deps {
	return dashboard.Deps{
		Products: api,
		Catalog:  api,
		Tokens:   idp,
		Session:  mgr,
		Notifier: term,
		Out:      term.out,
		Logger:   logger,
	}
}
