package game

import (
	"context"
	"time"
)

// Repository exposes game reads plus the two write-backs grading owns:
// marking a stale game final and caching fetched closing lines.
type Repository interface {
	GetByID(ctx context.Context, gameID string) (Game, bool, error)
	ListFinalBetween(ctx context.Context, start, end time.Time) ([]Game, error)
	MarkFinal(ctx context.Context, gameID string, score Score, finalizedAt time.Time) error
	SaveClosingLines(ctx context.Context, gameID string, lines ClosingLines) error
}
