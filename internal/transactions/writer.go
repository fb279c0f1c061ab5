package transactions

import (
	"context"
	"errors"
	"time"

	"github.com/profitlens/profitlens-backend/pkg/db/models"
	"github.com/profitlens/profitlens-backend/pkg/logger"
)

const (
	defaultBatchSize      = 500
	defaultMaxAttempts    = 3
	defaultInitialBackoff = 250 * time.Millisecond
	defaultMaximumBackoff = 2 * time.Second
)

// WriterConfig controls batching and retry behavior for report ingestion.
type WriterConfig struct {
	BatchSize   int
	RetryPolicy RetryPolicy
}

// RetryPolicy controls how many times a failed batch insert is retried.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaximumBackoff time.Duration
}

type rowInserter interface {
	InsertTransactions(ctx context.Context, rows []models.MarketplaceTransaction) (int, error)
}

// Writer inserts settlement rows in batches with retries. Inserts
// deduplicate on event id, so retrying a partially applied batch is safe.
type Writer struct {
	repo      rowInserter
	log       *logger.Logger
	batchSize int
	retry     RetryPolicy
}

func NewWriter(repo rowInserter, log *logger.Logger, cfg WriterConfig) (*Writer, error) {
	if repo == nil {
		return nil, errors.New("transactions repository required")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.RetryPolicy.MaxAttempts <= 0 {
		cfg.RetryPolicy.MaxAttempts = defaultMaxAttempts
	}
	if cfg.RetryPolicy.InitialBackoff <= 0 {
		cfg.RetryPolicy.InitialBackoff = defaultInitialBackoff
	}
	if cfg.RetryPolicy.MaximumBackoff < cfg.RetryPolicy.InitialBackoff {
		cfg.RetryPolicy.MaximumBackoff = defaultMaximumBackoff
	}
	return &Writer{
		repo:      repo,
		log:       log,
		batchSize: cfg.BatchSize,
		retry:     cfg.RetryPolicy,
	}, nil
}

// Write inserts the rows in batches and returns the number of newly stored
// rows. Rows already seen (same event id) count as written but not stored.
func (w *Writer) Write(ctx context.Context, rows []models.MarketplaceTransaction) (int, error) {
	stored := 0
	for start := 0; start < len(rows); start += w.batchSize {
		end := start + w.batchSize
		if end > len(rows) {
			end = len(rows)
		}
		n, err := w.insertWithRetry(ctx, rows[start:end])
		if err != nil {
			return stored, err
		}
		stored += n
	}
	return stored, nil
}

func (w *Writer) insertWithRetry(ctx context.Context, batch []models.MarketplaceTransaction) (int, error) {
	backoff := w.retry.InitialBackoff
	var lastErr error
	for attempt := 1; attempt <= w.retry.MaxAttempts; attempt++ {
		n, err := w.repo.InsertTransactions(ctx, batch)
		if err == nil {
			return n, nil
		}
		lastErr = err
		if attempt == w.retry.MaxAttempts {
			break
		}
		w.log.Warn(
			w.log.WithFields(ctx, map[string]any{"attempt": attempt, "batch_size": len(batch)}),
			"batch insert failed, retrying",
		)
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > w.retry.MaximumBackoff {
			backoff = w.retry.MaximumBackoff
		}
	}
	return 0, lastErr
}
