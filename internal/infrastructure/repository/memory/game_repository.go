package memory

import (
	"context"
	"sync"
	"time"

	"github.com/capperdesk/grader/internal/domain/game"
)

type GameRepository struct {
	mu    sync.RWMutex
	games map[string]game.Game
}

func NewGameRepository(games []game.Game) *GameRepository {
	byID := make(map[string]game.Game, len(games))
	for _, item := range games {
		byID[item.ID] = item
	}

	return &GameRepository{games: byID}
}

func (r *GameRepository) GetByID(_ context.Context, gameID string) (game.Game, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.games[gameID]
	return item, ok, nil
}

func (r *GameRepository) ListFinalBetween(_ context.Context, start, end time.Time) ([]game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]game.Game, 0)
	for _, item := range r.games {
		if !game.IsFinalStatus(item.Status) {
			continue
		}
		at := item.ScheduledAt
		if item.FinalizedAt != nil {
			at = *item.FinalizedAt
		}
		if at.Before(start) || !at.Before(end) {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *GameRepository) MarkFinal(_ context.Context, gameID string, score game.Score, finalizedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.games[gameID]
	if !ok {
		item = game.Game{ID: gameID}
	}
	item.Score = score
	item.Status = game.StatusFinal
	item.FinalizedAt = &finalizedAt
	r.games[gameID] = item
	return nil
}

func (r *GameRepository) SaveClosingLines(_ context.Context, gameID string, lines game.ClosingLines) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.games[gameID]
	if !ok {
		return nil
	}
	item.ClosingLines = &lines
	r.games[gameID] = item
	return nil
}
