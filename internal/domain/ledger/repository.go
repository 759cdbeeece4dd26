package ledger

import "context"

// Repository is the append-only settlement ledger. Append must be
// idempotent by Entry.DedupKey: replaying a graded pick never produces a
// second row.
type Repository interface {
	Append(ctx context.Context, entry Entry) error
}
