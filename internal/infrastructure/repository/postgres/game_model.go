package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/capperdesk/grader/internal/domain/game"
)

type gameTableModel struct {
	ID           int64          `db:"id"`
	PublicID     string         `db:"public_id"`
	HomeTeam     string         `db:"home_team"`
	AwayTeam     string         `db:"away_team"`
	HomeTeamID   sql.NullString `db:"home_team_public_id"`
	AwayTeamID   sql.NullString `db:"away_team_public_id"`
	ScheduledAt  time.Time      `db:"scheduled_at"`
	HomeScore    int            `db:"home_score"`
	AwayScore    int            `db:"away_score"`
	Status       string         `db:"status"`
	Source       string         `db:"source"`
	ClosingLines []byte         `db:"closing_lines"`
	FinalizedAt  sql.NullTime   `db:"finalized_at"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	DeletedAt    *time.Time     `db:"deleted_at"`
}

func gameFromRow(row gameTableModel) (game.Game, error) {
	var lines *game.ClosingLines
	if len(row.ClosingLines) > 0 {
		lines = &game.ClosingLines{}
		if err := sonic.Unmarshal(row.ClosingLines, lines); err != nil {
			return game.Game{}, fmt.Errorf("decode closing lines for game %s: %w", row.PublicID, err)
		}
	}

	return game.Game{
		ID:           row.PublicID,
		HomeTeam:     row.HomeTeam,
		AwayTeam:     row.AwayTeam,
		HomeTeamID:   row.HomeTeamID.String,
		AwayTeamID:   row.AwayTeamID.String,
		ScheduledAt:  row.ScheduledAt,
		Score:        game.Score{Home: row.HomeScore, Away: row.AwayScore},
		Status:       game.NormalizeStatus(row.Status),
		Source:       row.Source,
		ClosingLines: lines,
		FinalizedAt:  nullTimePtr(row.FinalizedAt),
	}, nil
}
