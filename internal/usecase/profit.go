package usecase

import (
	"github.com/shopspring/decimal"

	"github.com/capperdesk/grader/internal/domain/pick"
)

// computeProfit returns signed profit in units (2 decimal places) and in
// currency cents for a decided outcome. Push, void and pending outcomes
// return the stake, so both profits are exactly zero.
func computeProfit(result pick.Result, unitsRisked decimal.Decimal, amountRisked int64, oddsDecimal float64) (decimal.Decimal, int64) {
	switch result {
	case pick.ResultWin:
		multiplier := decimal.NewFromFloat(oddsDecimal).Sub(decimal.NewFromInt(1))
		profitUnits := unitsRisked.Mul(multiplier).Round(2)
		profitAmount := decimal.NewFromInt(amountRisked).Mul(multiplier).Round(0).IntPart()
		return profitUnits, profitAmount
	case pick.ResultLoss:
		return unitsRisked.Neg().Round(2), -amountRisked
	default:
		return decimal.Zero, 0
	}
}
