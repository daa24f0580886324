// File: internal/jobs/catalog_sync.go
package jobs

import (
	"context"
	"fmt"
	"time"

	"marketplace_backend/internal/catalog"
	"marketplace_backend/internal/config"
	"marketplace_backend/internal/domain"
	"marketplace_backend/internal/product"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultBatchSize is the number of products read and indexed per batch.
const DefaultBatchSize = 100

// SyncResult summarizes one catalog sync run.
type SyncResult struct {
	Batches int
	Indexed int
	Failed  int
}

// CatalogSyncJob re-indexes every stored product into the catalog index.
type CatalogSyncJob struct {
	repo          product.Repository
	indexer       catalog.Indexer
	logger        *zap.Logger
	schedule      string
	batchSize     int
	cronScheduler *cron.Cron
}

// NewCatalogSyncJob creates a new CatalogSyncJob.
func NewCatalogSyncJob(repo product.Repository, indexer catalog.Indexer, cfg *config.Config, logger *zap.Logger) *CatalogSyncJob {
	scheduler := cron.New(
		cron.WithLogger(NewCronLogger(logger.Named("cron"))),
		cron.WithChain(cron.SkipIfStillRunning(NewCronLogger(logger.Named("cron")))),
	)
	return &CatalogSyncJob{
		repo:          repo,
		indexer:       indexer,
		logger:        logger.Named("CatalogSyncJob"),
		schedule:      cfg.CatalogSyncSchedule,
		batchSize:     DefaultBatchSize,
		cronScheduler: scheduler,
	}
}

// SetupAndStart schedules and starts the cron job. An empty schedule or a no-op
// indexer leaves the job disabled.
func (j *CatalogSyncJob) SetupAndStart() error {
	if j.schedule == "" {
		j.logger.Warn("Catalog sync schedule not defined (CATALOG_SYNC_SCHEDULE). Job will not run.")
		return nil
	}
	if _, noop := j.indexer.(catalog.NoopIndexer); noop {
		j.logger.Info("Catalog index disabled; sync job not scheduled.")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(j.schedule, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule catalog sync job", zap.String("schedule", j.schedule), zap.Error(err))
		return err
	}

	j.logger.Info("Catalog sync job scheduled", zap.String("schedule", j.schedule), zap.Any("jobID", jobID))
	j.cronScheduler.Start()
	return nil
}

func (j *CatalogSyncJob) runJob() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	res, err := j.Run(ctx, j.batchSize)
	if err != nil {
		j.logger.Error("Catalog sync job run failed", zap.Error(err))
		return
	}
	j.logger.Info("Catalog sync job run completed",
		zap.Int("batches", res.Batches),
		zap.Int("indexed", res.Indexed),
		zap.Int("failed", res.Failed),
	)
}

// Run pages through the document store and bulk-indexes each batch. A batch
// that fails to index is counted and skipped; a store read failure aborts.
func (j *CatalogSyncJob) Run(ctx context.Context, batchSize int) (SyncResult, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	var res SyncResult
	for offset := 0; ; offset += batchSize {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		stored, err := j.repo.ListAll(ctx, offset, batchSize)
		if err != nil {
			return res, fmt.Errorf("fetch batch at offset %d: %w", offset, err)
		}
		if len(stored) == 0 {
			return res, nil
		}
		res.Batches++

		batch := make([]domain.Product, 0, len(stored))
		for i := range stored {
			batch = append(batch, stored[i].ToDomain())
		}
		indexed, failed, err := j.indexer.BulkIndex(ctx, batch)
		if err != nil {
			j.logger.Error("Bulk index failed", zap.Error(err), zap.Int("offset", offset))
		}
		res.Indexed += indexed
		res.Failed += failed

		if len(stored) < batchSize {
			return res, nil
		}
	}
}

// Stop gracefully stops the cron scheduler.
func (j *CatalogSyncJob) Stop() {
	stopCtx := j.cronScheduler.Stop()
	select {
	case <-stopCtx.Done():
		j.logger.Info("Catalog sync job scheduler stopped gracefully.")
	case <-time.After(10 * time.Second):
		j.logger.Warn("Catalog sync job scheduler stop timed out.")
	}
}
