package usecase

import (
	"math"

	"github.com/capperdesk/grader/internal/domain/game"
	"github.com/capperdesk/grader/internal/domain/odds"
	"github.com/capperdesk/grader/internal/domain/pick"
)

// computeCLV scores the posted price against the closing price for the
// same market. Only totals have a working comparison today; every other
// bet type returns nil, meaning "not computable" rather than zero edge.
func computeCLV(p pick.Pick, lines *game.ClosingLines) (clvScore *float64, closingOdds *int) {
	if lines == nil || lines.Total == nil {
		return nil, nil
	}
	if p.BetType != pick.BetTypeTotal {
		return nil, nil
	}

	sel, err := pick.ParseSelection(pick.BetTypeTotal, p.Selection)
	if err != nil {
		return nil, nil
	}

	closingPrice := lines.Total.OverPrice
	if sel.Side == pick.SideUnder {
		closingPrice = lines.Total.UnderPrice
	}
	closingDecimal, err := odds.AmericanToDecimal(closingPrice)
	if err != nil {
		return nil, nil
	}

	postedDecimal := p.OddsDecimal
	if postedDecimal <= 1 {
		postedDecimal, err = odds.AmericanToDecimal(p.OddsAmerican)
		if err != nil {
			return nil, nil
		}
	}

	score := math.Round((postedDecimal-closingDecimal)*10000) / 10000
	return &score, &closingPrice
}
