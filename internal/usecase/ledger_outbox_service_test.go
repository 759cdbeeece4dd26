package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/capperdesk/grader/internal/domain/ledger"
	"github.com/capperdesk/grader/internal/infrastructure/repository/memory"
	"github.com/capperdesk/grader/internal/platform/logging"
)

func TestLedgerOutbox_DedupsRepeatedEntries(t *testing.T) {
	t.Parallel()

	repo := memory.NewLedgerRepository()
	outbox, err := NewLedgerOutboxService(repo, 2, logging.NewNop())
	if err != nil {
		t.Fatalf("NewLedgerOutboxService: %v", err)
	}
	defer outbox.Close()

	entry := ledger.NewGradedEntry("pick-1", "game-1", "win", decimal.NewFromFloat(1.82), 182, time.Now().UTC())
	for i := 0; i < 3; i++ {
		if err := outbox.Record(context.Background(), entry); err != nil {
			t.Fatalf("Record attempt %d: %v", i, err)
		}
	}
	outbox.Flush()

	if got := len(repo.Entries()); got != 1 {
		t.Fatalf("expected 1 ledger row after duplicate submits, got %d", got)
	}
}

func TestLedgerOutbox_RejectsMissingDedupKey(t *testing.T) {
	t.Parallel()

	repo := memory.NewLedgerRepository()
	outbox, err := NewLedgerOutboxService(repo, 1, logging.NewNop())
	if err != nil {
		t.Fatalf("NewLedgerOutboxService: %v", err)
	}
	defer outbox.Close()

	err = outbox.Record(context.Background(), ledger.Entry{PickID: "pick-1"})
	if err == nil {
		t.Fatal("expected an error for an entry without a dedup key")
	}
}
