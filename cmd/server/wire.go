// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"marketplace_backend/internal/app"
	"marketplace_backend/internal/auth"
	"marketplace_backend/internal/catalog"
	"marketplace_backend/internal/config"
	"marketplace_backend/internal/delivery"
	"marketplace_backend/internal/firebase"
	"marketplace_backend/internal/jobs"
	"marketplace_backend/internal/metrics"
	"marketplace_backend/internal/middleware"
	platformElasticsearch "marketplace_backend/internal/platform/elasticsearch"
	"marketplace_backend/internal/product"
	"marketplace_backend/internal/user"

	"github.com/google/wire"
)

var storeSet = wire.NewSet(
	provideLogger,
	provideFirebase,
	provideStores,
	provideUserRepository,
	provideProductRepository,
	platformElasticsearch.NewClient,
	catalog.NewIndexer,
	jobs.NewCatalogSyncJob,
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		storeSet,
		metrics.New,

		// Accounts
		user.NewService,
		wire.Bind(new(user.Service), new(*user.ServiceImplementation)),
		wire.Bind(new(middleware.AccountLoader), new(*user.ServiceImplementation)),
		user.NewHandler,

		// Auth
		provideBlocklist,
		wire.Bind(new(auth.TokenBlocklistService), new(*auth.InMemoryBlocklistService)),
		wire.Bind(new(middleware.TokenBlocklist), new(*auth.InMemoryBlocklistService)),
		wire.Bind(new(middleware.TokenVerifier), new(*firebase.FirebaseService)),
		wire.Bind(new(auth.RefreshTokenRevoker), new(*firebase.FirebaseService)),
		middleware.NewAuthenticator,
		provideRateLimiter,
		auth.NewHandler,

		// Products and catalog
		provideProductIndexer,
		product.NewService,
		product.NewHandler,
		catalog.NewService,
		catalog.NewHandler,
		delivery.NewHandler,

		// Application Layer
		wire.Struct(new(app.Handlers), "*"),
		app.NewServer,
	)
	return nil, nil, nil
}

// initializeCatalogSync wires the one-shot catalog re-index command.
func initializeCatalogSync(cfg *config.Config) (*catalogSync, func(), error) {
	wire.Build(
		storeSet,
		wire.Struct(new(catalogSync), "*"),
	)
	return nil, nil, nil
}
