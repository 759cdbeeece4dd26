package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"

	"github.com/capperdesk/grader/internal/domain/pick"
)

type pickTableModel struct {
	ID                   int64           `db:"id"`
	PublicID             string          `db:"public_id"`
	GameID               string          `db:"game_public_id"`
	BetType              string          `db:"bet_type"`
	Selection            string          `db:"selection"`
	OddsAmerican         int             `db:"odds_american"`
	OddsDecimal          float64         `db:"odds_decimal"`
	UnitsRisked          decimal.Decimal `db:"units_risked"`
	AmountRisked         int64           `db:"amount_risked"`
	UnitValueAtPost      int64           `db:"unit_value_at_post"`
	IsParlay             bool            `db:"is_parlay"`
	ParlayLegs           []byte          `db:"parlay_legs"`
	Status               string          `db:"status"`
	Result               string          `db:"result"`
	ProfitUnits          decimal.Decimal `db:"profit_units"`
	ProfitAmount         int64           `db:"profit_amount"`
	ResultReason         string          `db:"result_reason"`
	ResolvedAt           sql.NullTime    `db:"resolved_at"`
	IsVerified           bool            `db:"is_verified"`
	VerificationSource   string          `db:"verification_source"`
	VerificationEvidence string          `db:"verification_evidence"`
	ClosingOdds          sql.NullInt64   `db:"closing_odds"`
	CLVScore             sql.NullFloat64 `db:"clv_score"`
	CreatedAt            time.Time       `db:"created_at"`
	UpdatedAt            time.Time       `db:"updated_at"`
	DeletedAt            *time.Time      `db:"deleted_at"`
}

func pickFromRow(row pickTableModel) (pick.Pick, error) {
	var legs []pick.ParlayLeg
	if len(row.ParlayLegs) > 0 {
		if err := sonic.Unmarshal(row.ParlayLegs, &legs); err != nil {
			return pick.Pick{}, fmt.Errorf("decode parlay legs for pick %s: %w", row.PublicID, err)
		}
	}

	return pick.Pick{
		ID:                   row.PublicID,
		GameID:               row.GameID,
		BetType:              pick.NormalizeBetType(row.BetType),
		Selection:            row.Selection,
		OddsAmerican:         row.OddsAmerican,
		OddsDecimal:          row.OddsDecimal,
		UnitsRisked:          row.UnitsRisked,
		AmountRisked:         row.AmountRisked,
		UnitValueAtPost:      row.UnitValueAtPost,
		IsParlay:             row.IsParlay,
		ParlayLegs:           legs,
		Status:               pick.NormalizeStatus(row.Status),
		Result:               pick.Result(row.Result),
		ProfitUnits:          row.ProfitUnits,
		ProfitAmount:         row.ProfitAmount,
		ResultReason:         row.ResultReason,
		ResolvedAt:           nullTimePtr(row.ResolvedAt),
		IsVerified:           row.IsVerified,
		VerificationSource:   row.VerificationSource,
		VerificationEvidence: row.VerificationEvidence,
		ClosingOdds:          nullIntPtr(row.ClosingOdds),
		CLVScore:             nullFloatPtr(row.CLVScore),
		CreatedAt:            row.CreatedAt,
		UpdatedAt:            row.UpdatedAt,
	}, nil
}

func encodeParlayLegs(legs []pick.ParlayLeg) ([]byte, error) {
	if len(legs) == 0 {
		return nil, nil
	}
	data, err := sonic.Marshal(legs)
	if err != nil {
		return nil, fmt.Errorf("encode parlay legs: %w", err)
	}
	return data, nil
}
