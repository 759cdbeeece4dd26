package pick

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type BetType string

const (
	BetTypeMoneyline BetType = "moneyline"
	BetTypeSpread    BetType = "spread"
	BetTypeTotal     BetType = "total"
	BetTypeProp      BetType = "prop"
	BetTypeOther     BetType = "other"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusLocked   Status = "locked"
	StatusGraded   Status = "graded"
	StatusDisputed Status = "disputed"
)

type Result string

const (
	ResultPending Result = "pending"
	ResultWin     Result = "win"
	ResultLoss    Result = "loss"
	ResultPush    Result = "push"
	ResultVoid    Result = "void"
)

// Pick is a single posted wager recommendation.
//
// Result, ProfitUnits and ProfitAmount are written exactly once by the
// grading path; UnitValueAtPost is snapshotted at creation and never
// recomputed, so historical picks survive later unit-value changes.
type Pick struct {
	ID     string
	GameID string

	BetType      BetType
	Selection    string
	OddsAmerican int
	OddsDecimal  float64

	UnitsRisked     decimal.Decimal
	AmountRisked    int64
	UnitValueAtPost int64

	IsParlay   bool
	ParlayLegs []ParlayLeg

	Status       Status
	Result       Result
	ProfitUnits  decimal.Decimal
	ProfitAmount int64
	ResultReason string
	ResolvedAt   *time.Time

	IsVerified           bool
	VerificationSource   string
	VerificationEvidence string

	ClosingOdds *int
	CLVScore    *float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ParlayLeg is one constituent wager of a parlay pick.
type ParlayLeg struct {
	BetType      BetType `json:"bet_type"`
	Selection    string  `json:"selection"`
	OddsAmerican int     `json:"odds_american"`
	OddsDecimal  float64 `json:"odds_decimal,omitempty"`
	Result       Result  `json:"result,omitempty"`
	Reason       string  `json:"reason,omitempty"`
}

func NormalizeBetType(value string) BetType {
	switch BetType(strings.ToLower(strings.TrimSpace(value))) {
	case BetTypeMoneyline:
		return BetTypeMoneyline
	case BetTypeSpread:
		return BetTypeSpread
	case BetTypeTotal:
		return BetTypeTotal
	case BetTypeProp:
		return BetTypeProp
	default:
		return BetTypeOther
	}
}

func NormalizeStatus(value string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(value))) {
	case StatusLocked:
		return StatusLocked
	case StatusGraded:
		return StatusGraded
	case StatusDisputed:
		return StatusDisputed
	default:
		return StatusPending
	}
}

// IsGradable reports whether the grading job may pick this status up.
// Graded picks are excluded forever; disputed picks wait for an admin.
func IsGradable(status Status) bool {
	return status == StatusPending || status == StatusLocked
}
