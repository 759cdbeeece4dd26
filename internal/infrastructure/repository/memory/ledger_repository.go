package memory

import (
	"context"
	"sync"

	"github.com/capperdesk/grader/internal/domain/ledger"
)

type LedgerRepository struct {
	mu      sync.RWMutex
	byDedup map[string]ledger.Entry
	order   []string
}

func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{byDedup: make(map[string]ledger.Entry)}
}

func (r *LedgerRepository) Append(_ context.Context, entry ledger.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byDedup[entry.DedupKey]; ok {
		return nil
	}
	r.byDedup[entry.DedupKey] = entry
	r.order = append(r.order, entry.DedupKey)
	return nil
}

func (r *LedgerRepository) Entries() []ledger.Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ledger.Entry, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.byDedup[key])
	}
	return out
}
