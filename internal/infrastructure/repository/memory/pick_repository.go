package memory

import (
	"context"
	"sync"

	"github.com/capperdesk/grader/internal/domain/pick"
)

type PickRepository struct {
	mu    sync.RWMutex
	picks map[string]pick.Pick
}

func NewPickRepository(picks []pick.Pick) *PickRepository {
	byID := make(map[string]pick.Pick, len(picks))
	for _, item := range picks {
		byID[item.ID] = item
	}

	return &PickRepository{picks: byID}
}

func (r *PickRepository) ListGradableByGame(_ context.Context, gameID string) ([]pick.Pick, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pick.Pick, 0)
	for _, item := range r.picks {
		if item.GameID == gameID && pick.IsGradable(item.Status) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *PickRepository) UpdateGraded(_ context.Context, item pick.Pick) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.picks[item.ID]
	if !ok || !pick.IsGradable(stored.Status) {
		return false, nil
	}

	r.picks[item.ID] = item
	return true, nil
}

func (r *PickRepository) GetByID(_ context.Context, pickID string) (pick.Pick, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.picks[pickID]
	return item, ok, nil
}
