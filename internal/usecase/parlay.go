package usecase

import (
	"github.com/cockroachdb/errors"

	"github.com/capperdesk/grader/internal/domain/odds"
	"github.com/capperdesk/grader/internal/domain/pick"
)

// combinedParlayOdds multiplies every leg's decimal odds. Legs posted in
// American format are converted first. A leg with no usable odds fails
// the whole parlay for this run; the pick stays ungraded and retries on
// the next invocation.
func combinedParlayOdds(legs []pick.ParlayLeg) (float64, error) {
	if len(legs) == 0 {
		return 0, errors.Wrap(ErrInvalidLeg, "parlay has no legs")
	}

	decimals := make([]float64, 0, len(legs))
	for i, leg := range legs {
		dec := leg.OddsDecimal
		if dec == 0 {
			converted, err := odds.AmericanToDecimal(leg.OddsAmerican)
			if err != nil {
				return 0, errors.Wrapf(ErrInvalidLeg, "leg %d: %v", i, err)
			}
			dec = converted
		}
		if dec <= 1 {
			return 0, errors.Wrapf(ErrInvalidLeg, "leg %d: decimal odds %.4f", i, dec)
		}
		decimals = append(decimals, dec)
	}

	combined, err := odds.Parlay(decimals...)
	if err != nil {
		return 0, errors.Wrap(ErrInvalidLeg, err.Error())
	}
	return combined, nil
}

// aggregateParlayResult folds per-leg results into the parlay outcome.
//
// Priority: void > loss > push > pending > win. A mix of pushes and wins
// collapses the whole parlay to a push rather than repricing the live
// legs; product treats that as the current policy.
func aggregateParlayResult(legs []pick.ParlayLeg) pick.Result {
	if len(legs) == 0 {
		return pick.ResultLoss
	}

	var hasVoid, hasLoss, hasPush, hasPending bool
	wins := 0
	for _, leg := range legs {
		switch leg.Result {
		case pick.ResultVoid:
			hasVoid = true
		case pick.ResultLoss:
			hasLoss = true
		case pick.ResultPush:
			hasPush = true
		case pick.ResultPending:
			hasPending = true
		case pick.ResultWin:
			wins++
		default:
			hasLoss = true
		}
	}

	switch {
	case hasVoid:
		return pick.ResultVoid
	case hasLoss:
		return pick.ResultLoss
	case hasPush:
		return pick.ResultPush
	case hasPending:
		return pick.ResultPending
	case wins == len(legs):
		return pick.ResultWin
	default:
		return pick.ResultLoss
	}
}
