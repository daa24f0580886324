//go:build wireinject
// +build wireinject

package main

import (
	"marketplace_backend/internal/apiclient"
	"marketplace_backend/internal/config"
	"marketplace_backend/internal/dashboard"
	"marketplace_backend/internal/guard"
	"marketplace_backend/internal/identity"
	"marketplace_backend/internal/session"

	"github.com/google/wire"
)

// initializeCLI wires the session client.
func initializeCLI(cfg *config.ClientConfig) (*cli, func(), error) {
	wire.Build(
		provideLogger,
		provideTerminal,
		wire.Bind(new(session.Notifier), new(*terminal)),
		wire.Bind(new(session.Navigator), new(*terminal)),

		// Session
		provideIdentity,
		wire.Bind(new(session.Provider), new(*identity.Client)),
		provideAPIClient,
		apiclient.NewProfileStore,
		wire.Bind(new(session.ProfileStore), new(*apiclient.ProfileStore)),
		provideTokenStore,
		wire.Bind(new(session.TokenStore), new(*session.FileTokenStore)),
		provideSessionOptions,
		session.NewManager,

		// Dashboards
		provideDashboardDeps,
		dashboard.NewVendorView,
		dashboard.NewBuyerView,
		dashboard.NewRiderView,
		wire.Bind(new(guard.Source), new(*session.Manager)),
		dashboard.NewRouter,

		wire.Struct(new(cli), "*"),
	)
	return nil, nil, nil
}
