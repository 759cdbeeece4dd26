package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"

	"github.com/capperdesk/grader/internal/domain/ledger"
	"github.com/capperdesk/grader/internal/platform/logging"
)

// LedgerRecorder accepts settlement entries for durable, idempotent
// recording. Implementations must dedup by the entry's DedupKey.
type LedgerRecorder interface {
	Record(ctx context.Context, entry ledger.Entry) error
}

// LedgerOutboxService dispatches ledger appends on a bounded worker pool
// so the grading loop never blocks on ledger IO. Appends are best-effort
// relative to the pick's own persistence: a failed append is logged and
// retried a few times, never surfaced back into grading.
type LedgerOutboxService struct {
	repo      ledger.Repository
	pool      *ants.Pool
	logger    *logging.Logger
	wg        sync.WaitGroup
	retries   int
	retryWait time.Duration
}

func NewLedgerOutboxService(repo ledger.Repository, workers int, logger *logging.Logger) (*LedgerOutboxService, error) {
	if repo == nil {
		return nil, errors.New("ledger repository is required")
	}
	if workers < 1 {
		workers = 4
	}
	if logger == nil {
		logger = logging.Default()
	}

	pool, err := ants.NewPool(workers, ants.WithNonblocking(false))
	if err != nil {
		return nil, errors.Wrap(err, "create ledger outbox pool")
	}

	return &LedgerOutboxService{
		repo:      repo,
		pool:      pool,
		logger:    logger,
		retries:   3,
		retryWait: 200 * time.Millisecond,
	}, nil
}

// Record enqueues the entry for asynchronous append. If the pool cannot
// accept work the append runs inline; the entry must still land.
func (s *LedgerOutboxService) Record(ctx context.Context, entry ledger.Entry) error {
	if entry.DedupKey == "" {
		return errors.Wrap(ErrInvalidInput, "ledger entry missing dedup key")
	}

	s.wg.Add(1)
	err := s.pool.Submit(func() {
		defer s.wg.Done()
		s.append(entry)
	})
	if err != nil {
		s.wg.Done()
		s.append(entry)
	}
	return nil
}

func (s *LedgerOutboxService) append(entry ledger.Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt <= s.retries; attempt++ {
		if attempt > 0 {
			time.Sleep(s.retryWait * time.Duration(attempt))
		}
		if lastErr = s.repo.Append(ctx, entry); lastErr == nil {
			return
		}
	}

	s.logger.Error("ledger append failed after retries",
		"dedupKey", entry.DedupKey,
		"pickId", entry.PickID,
		"error", lastErr,
	)
}

// Flush waits until every enqueued append has finished.
func (s *LedgerOutboxService) Flush() {
	s.wg.Wait()
}

func (s *LedgerOutboxService) Close() {
	s.wg.Wait()
	s.pool.Release()
}
