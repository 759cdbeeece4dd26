package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/capperdesk/grader/internal/domain/ledger"
	qb "github.com/capperdesk/grader/internal/platform/querybuilder"
)

type LedgerRepository struct {
	db *sqlx.DB
}

func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Append inserts one settlement row. The dedup key carries a unique
// constraint, so a replayed append collapses onto the original row.
func (r *LedgerRepository) Append(ctx context.Context, entry ledger.Entry) error {
	query, args, err := qb.InsertInto("ledger_entries").
		Columns(
			"pick_public_id",
			"game_public_id",
			"action",
			"result",
			"profit_units",
			"profit_amount",
			"dedup_key",
			"recorded_at",
		).
		Values(
			entry.PickID,
			entry.GameID,
			entry.Action,
			entry.Result,
			entry.ProfitUnits,
			entry.ProfitAmount,
			entry.DedupKey,
			entry.RecordedAt,
		).
		Suffix("ON CONFLICT (dedup_key) DO NOTHING").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build append ledger entry query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}
