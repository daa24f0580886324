// File: cmd/server/main.go
package main

import (
	"context"
	"flag"
	"log" // Standard log for critical startup/shutdown messages before/after zap is active
	"os"
	"os/signal"
	"syscall"

	"marketplace_backend/internal/config"
	"marketplace_backend/internal/jobs"
	platformElasticsearch "marketplace_backend/internal/platform/elasticsearch"

	"go.uber.org/zap"
)

func main() {
	syncCatalogCmd := flag.NewFlagSet("sync-catalog", flag.ExitOnError)
	batchSize := syncCatalogCmd.Int("batch-size", jobs.DefaultBatchSize, "Number of products indexed per bulk request")

	if len(os.Args) > 1 && os.Args[1] == "sync-catalog" {
		if err := syncCatalogCmd.Parse(os.Args[2:]); err != nil {
			log.Fatalf("FATAL: %v", err)
		}
		os.Exit(runCatalogSync(*batchSize))
	}

	startServer()
}

func runCatalogSync(batchSize int) int {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("FATAL: Failed to load configuration for sync: %v", err)
		return 1
	}

	cs, cleanup, err := initializeCatalogSync(cfg)
	if err != nil {
		log.Printf("FATAL: Failed to initialize catalog sync: %v", err)
		return 1
	}
	defer cleanup()

	if cs.ES == nil {
		cs.Logger.Error("ELASTICSEARCH_URL must be set to sync the catalog")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := platformElasticsearch.CreateProductsIndexIfNotExists(ctx, cs.ES, cs.Logger); err != nil {
		cs.Logger.Error("Failed to create/verify Elasticsearch index before sync", zap.Error(err))
		return 1
	}

	res, err := cs.Job.Run(ctx, batchSize)
	if err != nil {
		cs.Logger.Error("Catalog synchronization failed", zap.Error(err))
		return 1
	}
	cs.Logger.Info("Catalog synchronization completed.",
		zap.Int("batches", res.Batches),
		zap.Int("indexed", res.Indexed),
		zap.Int("failed", res.Failed),
	)
	if res.Failed > 0 {
		return 1
	}
	return 0
}

func startServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	server, cleanup, err := initializeServer(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize server: %v", err)
	}
	defer cleanup()

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("FATAL: Server failed to start or crashed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("INFO: Received signal '%s'. Shutting down server...", sig)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ServerTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Server forced to shutdown due to error: %v", err)
	} else {
		log.Println("INFO: Server shutdown complete.")
	}
	log.Println("INFO: Application exiting.")
}
