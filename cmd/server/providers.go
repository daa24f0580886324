// File: cmd/server/providers.go
package main

import (
	"fmt"
	"log"
	"time"

	"marketplace_backend/internal/auth"
	"marketplace_backend/internal/catalog"
	"marketplace_backend/internal/config"
	"marketplace_backend/internal/firebase"
	"marketplace_backend/internal/jobs"
	"marketplace_backend/internal/middleware"
	"marketplace_backend/internal/platform/database"
	platformElasticsearch "marketplace_backend/internal/platform/elasticsearch"
	"marketplace_backend/internal/platform/logger"
	"marketplace_backend/internal/product"
	"marketplace_backend/internal/user"

	"go.uber.org/zap"
)

// stores holds the repositories of the configured document store.
type stores struct {
	Users    user.Repository
	Products product.Repository
}

// catalogSync bundles what the sync-catalog command needs.
type catalogSync struct {
	Logger *zap.Logger
	ES     *platformElasticsearch.ESClientWrapper
	Job    *jobs.CatalogSyncJob
}

// Firebase ID tokens live for one hour; blocklist entries never need to outlast that.
const defaultTokenLifetime = time.Hour

// provideLogger builds the zap logger and flushes it on cleanup.
func provideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	l, err := logger.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		l.Info("Executing cleanup tasks...")
		if err := l.Sync(); err != nil {
			log.Printf("ERROR: Failed to sync logger during cleanup: %v", err)
		}
		log.Println("Cleanup finished.")
	}
	return l, cleanup, nil
}

// provideFirebase initializes the Admin SDK and closes Firestore on cleanup.
func provideFirebase(cfg *config.Config, logger *zap.Logger) (*firebase.FirebaseService, func(), error) {
	svc, err := firebase.NewFirebaseService(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := svc.Close(); err != nil {
			logger.Error("Failed to close Firestore client", zap.Error(err))
		}
	}
	return svc, cleanup, nil
}

// provideStores selects the repositories for DOCUMENT_STORE. SQL stores are
// migrated on startup.
func provideStores(cfg *config.Config, fb *firebase.FirebaseService, logger *zap.Logger) (stores, func(), error) {
	if cfg.DocumentStore == config.StoreFirestore {
		client := fb.Firestore()
		if client == nil {
			return stores{}, nil, fmt.Errorf("firestore client is not initialized")
		}
		return stores{
			Users:    user.NewFirestoreRepository(client),
			Products: product.NewFirestoreRepository(client),
		}, func() {}, nil
	}

	db, err := database.NewGORM(cfg, logger)
	if err != nil {
		return stores{}, nil, err
	}
	if err := db.AutoMigrate(&user.Profile{}, &product.Product{}); err != nil {
		database.CloseGORMDB(db, logger)
		return stores{}, nil, fmt.Errorf("auto-migrate: %w", err)
	}
	logger.Info("Database schema migrated.")
	return stores{
		Users:    user.NewGORMRepository(db),
		Products: product.NewGORMRepository(db),
	}, func() { database.CloseGORMDB(db, logger) }, nil
}

func provideUserRepository(s stores) user.Repository       { return s.Users }
func provideProductRepository(s stores) product.Repository { return s.Products }

// provideProductIndexer feeds new products into the catalog index.
func provideProductIndexer(i catalog.Indexer) product.Indexer { return i }

func provideBlocklist(cfg *config.Config) *auth.InMemoryBlocklistService {
	return auth.NewInMemoryBlocklistService(auth.InMemoryBlocklistConfig{
		DefaultExpiration: defaultTokenLifetime,
		CleanupInterval:   cfg.BlocklistCleanupEvery,
	})
}

func provideRateLimiter(cfg *config.Config, logger *zap.Logger) *middleware.RateLimiter {
	return middleware.NewRateLimiter(middleware.RateLimiterConfig{
		PerMinute: cfg.RateLimitPerMinute,
		Burst:     cfg.RateLimitBurst,
	}, logger)
}
