package usecase

import (
	"fmt"

	"github.com/capperdesk/grader/internal/domain/game"
	"github.com/capperdesk/grader/internal/domain/pick"
)

// legOutcome is the decided result of one wager against a final score,
// with a human-readable reason for anything other than a clean win/loss.
type legOutcome struct {
	result pick.Result
	reason string
}

func voidOutcome(format string, args ...any) legOutcome {
	return legOutcome{result: pick.ResultVoid, reason: fmt.Sprintf(format, args...)}
}

// determineResult grades a single non-parlay wager. Parse failures and
// unsupported bet types degrade to void so the rest of the batch keeps
// grading; this function never returns an error.
func determineResult(betType pick.BetType, selectionText string, g game.Game) legOutcome {
	if !game.IsFinalStatus(g.Status) {
		return legOutcome{result: pick.ResultPending, reason: "game is not final"}
	}

	sel, err := pick.ParseSelection(betType, selectionText)
	if err != nil {
		return voidOutcome("unparseable selection: %v", err)
	}

	switch sel.Kind {
	case pick.BetTypeMoneyline:
		return determineMoneyline(sel, g)
	case pick.BetTypeSpread:
		return determineSpread(sel, g)
	case pick.BetTypeTotal:
		return determineTotal(sel, g)
	default:
		return voidOutcome("bet type %q is not gradable", betType)
	}
}

func determineMoneyline(sel pick.Selection, g game.Game) legOutcome {
	if g.Score.Home == g.Score.Away {
		return legOutcome{result: pick.ResultPush, reason: "game ended tied"}
	}

	side := pick.MatchTeamSide(sel.Raw, g.HomeTeam, g.AwayTeam)
	if side == pick.SideNone {
		return voidOutcome("selection %q names neither %s nor %s", sel.Raw, g.HomeTeam, g.AwayTeam)
	}

	winner := pick.SideHome
	if g.Score.Away > g.Score.Home {
		winner = pick.SideAway
	}
	if side == winner {
		return legOutcome{result: pick.ResultWin}
	}
	return legOutcome{result: pick.ResultLoss}
}

// determineSpread grades against the adjusted score: the picked side's
// margin plus its signed line. "Home -5" with a home margin of exactly 5
// lands on zero and pushes.
func determineSpread(sel pick.Selection, g game.Game) legOutcome {
	side := pick.MatchTeamSide(sel.Raw, g.HomeTeam, g.AwayTeam)
	if side == pick.SideNone {
		return voidOutcome("spread selection %q names neither %s nor %s", sel.Raw, g.HomeTeam, g.AwayTeam)
	}

	margin := float64(g.Score.Home - g.Score.Away)
	if side == pick.SideAway {
		margin = -margin
	}

	cover := margin + sel.Line
	switch {
	case cover > 0:
		return legOutcome{result: pick.ResultWin}
	case cover < 0:
		return legOutcome{result: pick.ResultLoss}
	default:
		return legOutcome{result: pick.ResultPush, reason: "landed exactly on the line"}
	}
}

func determineTotal(sel pick.Selection, g game.Game) legOutcome {
	combined := float64(g.Score.Home + g.Score.Away)

	if combined == sel.Line {
		return legOutcome{result: pick.ResultPush, reason: "combined score landed on the total"}
	}

	overWon := combined > sel.Line
	if (sel.Side == pick.SideOver) == overWon {
		return legOutcome{result: pick.ResultWin}
	}
	return legOutcome{result: pick.ResultLoss}
}
