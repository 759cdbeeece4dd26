package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/capperdesk/grader/internal/domain/pick"
	qb "github.com/capperdesk/grader/internal/platform/querybuilder"
)

var gradableStatuses = []any{string(pick.StatusPending), string(pick.StatusLocked)}

type PickRepository struct {
	db *sqlx.DB
}

func NewPickRepository(db *sqlx.DB) *PickRepository {
	return &PickRepository{db: db}
}

func (r *PickRepository) ListGradableByGame(ctx context.Context, gameID string) ([]pick.Pick, error) {
	query, args, err := qb.Select("*").From("picks").
		Where(
			qb.Eq("game_public_id", gameID),
			qb.In("status", gradableStatuses),
			qb.IsNull("deleted_at"),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list gradable picks query: %w", err)
	}

	var rows []pickTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list gradable picks: %w", err)
	}

	out := make([]pick.Pick, 0, len(rows))
	for _, row := range rows {
		item, err := pickFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// UpdateGraded writes the graded state conditionally: the row must still
// be pending or locked, so an overlapping run that lost the race simply
// affects zero rows.
func (r *PickRepository) UpdateGraded(ctx context.Context, item pick.Pick) (bool, error) {
	legs, err := encodeParlayLegs(item.ParlayLegs)
	if err != nil {
		return false, err
	}

	query, args, err := qb.Update("picks").
		Set("status", string(item.Status)).
		Set("result", string(item.Result)).
		Set("profit_units", item.ProfitUnits).
		Set("profit_amount", item.ProfitAmount).
		Set("result_reason", item.ResultReason).
		Set("resolved_at", nullTime(item.ResolvedAt)).
		Set("is_verified", item.IsVerified).
		Set("verification_source", item.VerificationSource).
		Set("verification_evidence", item.VerificationEvidence).
		Set("closing_odds", nullInt(item.ClosingOdds)).
		Set("clv_score", nullFloat(item.CLVScore)).
		Set("parlay_legs", legs).
		Set("updated_at", item.UpdatedAt).
		Where(
			qb.Eq("public_id", item.ID),
			qb.In("status", gradableStatuses),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build update graded pick query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update graded pick: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update graded pick rows affected: %w", err)
	}
	return affected > 0, nil
}
