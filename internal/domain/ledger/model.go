package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

const ActionPickGraded = "pick_graded"

// Entry is one append-only settlement record. DedupKey makes retried
// appends collapse onto the original row.
type Entry struct {
	PickID       string
	GameID       string
	Action       string
	Result       string
	ProfitUnits  decimal.Decimal
	ProfitAmount int64
	DedupKey     string
	RecordedAt   time.Time
}

// NewGradedEntry builds the settlement entry for a freshly graded pick.
func NewGradedEntry(pickID, gameID, result string, profitUnits decimal.Decimal, profitAmount int64, recordedAt time.Time) Entry {
	return Entry{
		PickID:       pickID,
		GameID:       gameID,
		Action:       ActionPickGraded,
		Result:       result,
		ProfitUnits:  profitUnits,
		ProfitAmount: profitAmount,
		DedupKey:     pickID + ":" + ActionPickGraded,
		RecordedAt:   recordedAt,
	}
}
