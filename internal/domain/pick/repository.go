package pick

import "context"

// Repository exposes the pick reads and the single write the grading
// job performs.
type Repository interface {
	ListGradableByGame(ctx context.Context, gameID string) ([]Pick, error)

	// UpdateGraded persists a graded pick conditionally: the write only
	// lands if the stored status is still pending or locked, so two
	// overlapping grading runs can never grade the same pick twice.
	// It reports whether the row was actually transitioned.
	UpdateGraded(ctx context.Context, item Pick) (bool, error)
}
