package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/capperdesk/grader/internal/domain/game"
	qb "github.com/capperdesk/grader/internal/platform/querybuilder"
)

type GameRepository struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) GetByID(ctx context.Context, gameID string) (game.Game, bool, error) {
	query, args, err := qb.Select("*").From("games").
		Where(
			qb.Eq("public_id", gameID),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return game.Game{}, false, fmt.Errorf("build get game query: %w", err)
	}

	var row gameTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return game.Game{}, false, nil
		}
		return game.Game{}, false, fmt.Errorf("get game: %w", err)
	}

	item, err := gameFromRow(row)
	if err != nil {
		return game.Game{}, false, err
	}
	return item, true, nil
}

func (r *GameRepository) ListFinalBetween(ctx context.Context, start, end time.Time) ([]game.Game, error) {
	query, args, err := qb.Select("*").From("games").
		Where(
			qb.Eq("status", game.StatusFinal),
			qb.Gte("finalized_at", start),
			qb.Lt("finalized_at", end),
			qb.IsNull("deleted_at"),
		).
		OrderBy("finalized_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list final games query: %w", err)
	}

	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list final games: %w", err)
	}

	out := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		item, err := gameFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *GameRepository) MarkFinal(ctx context.Context, gameID string, score game.Score, finalizedAt time.Time) error {
	query, args, err := qb.Update("games").
		Set("home_score", score.Home).
		Set("away_score", score.Away).
		Set("status", game.StatusFinal).
		Set("finalized_at", finalizedAt).
		Set("updated_at", finalizedAt).
		Where(
			qb.Eq("public_id", gameID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark game final query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark game final: %w", err)
	}
	return nil
}

func (r *GameRepository) SaveClosingLines(ctx context.Context, gameID string, lines game.ClosingLines) error {
	encoded, err := sonic.Marshal(lines)
	if err != nil {
		return fmt.Errorf("encode closing lines: %w", err)
	}

	query, args, err := qb.Update("games").
		Set("closing_lines", encoded).
		Set("updated_at", time.Now().UTC()).
		Where(
			qb.Eq("public_id", gameID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build save closing lines query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save closing lines: %w", err)
	}
	return nil
}
