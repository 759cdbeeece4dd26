package usecase

import (
	"testing"
	"time"

	"github.com/capperdesk/grader/internal/domain/game"
	"github.com/capperdesk/grader/internal/domain/pick"
)

func finalGame(home, away int) game.Game {
	return game.Game{
		ID:          "g1",
		HomeTeam:    "Los Angeles Lakers",
		AwayTeam:    "Boston Celtics",
		ScheduledAt: time.Date(2026, 3, 1, 19, 30, 0, 0, time.UTC),
		Score:       game.Score{Home: home, Away: away},
		Status:      game.StatusFinal,
	}
}

func TestDetermineResult_SpreadExactPush(t *testing.T) {
	t.Parallel()

	got := determineResult(pick.BetTypeSpread, "Lakers -5", finalGame(100, 95))
	if got.result != pick.ResultPush {
		t.Fatalf("expected push on exact cover, got %s (%s)", got.result, got.reason)
	}
}

func TestDetermineResult_SpreadCoverAndMiss(t *testing.T) {
	t.Parallel()

	if got := determineResult(pick.BetTypeSpread, "Lakers -5.5", finalGame(101, 95)); got.result != pick.ResultWin {
		t.Fatalf("expected favorite cover win, got %s", got.result)
	}
	if got := determineResult(pick.BetTypeSpread, "Lakers -5.5", finalGame(100, 95)); got.result != pick.ResultLoss {
		t.Fatalf("expected failed cover loss, got %s", got.result)
	}
	if got := determineResult(pick.BetTypeSpread, "Celtics +5.5", finalGame(100, 95)); got.result != pick.ResultWin {
		t.Fatalf("expected underdog cover win, got %s", got.result)
	}
}

func TestDetermineResult_TotalOverUnder(t *testing.T) {
	t.Parallel()

	if got := determineResult(pick.BetTypeTotal, "Over 220.5", finalGame(110, 115)); got.result != pick.ResultWin {
		t.Fatalf("expected over win at 225 combined, got %s", got.result)
	}
	if got := determineResult(pick.BetTypeTotal, "Over 220.5", finalGame(100, 100)); got.result != pick.ResultLoss {
		t.Fatalf("expected over loss at 200 combined, got %s", got.result)
	}
	if got := determineResult(pick.BetTypeTotal, "under 200", finalGame(100, 100)); got.result != pick.ResultPush {
		t.Fatalf("expected total push on the number, got %s", got.result)
	}
	if got := determineResult(pick.BetTypeTotal, "Under 220.5", finalGame(100, 100)); got.result != pick.ResultWin {
		t.Fatalf("expected under win at 200 combined, got %s", got.result)
	}
}

func TestDetermineResult_MoneylineTiePushes(t *testing.T) {
	t.Parallel()

	got := determineResult(pick.BetTypeMoneyline, "Lakers ML", finalGame(100, 100))
	if got.result != pick.ResultPush {
		t.Fatalf("expected push on tie, got %s", got.result)
	}
}

func TestDetermineResult_MoneylineSides(t *testing.T) {
	t.Parallel()

	if got := determineResult(pick.BetTypeMoneyline, "Celtics ML", finalGame(100, 108)); got.result != pick.ResultWin {
		t.Fatalf("expected away winner, got %s", got.result)
	}
	if got := determineResult(pick.BetTypeMoneyline, "Lakers ML", finalGame(100, 108)); got.result != pick.ResultLoss {
		t.Fatalf("expected home loser, got %s", got.result)
	}
}

func TestDetermineResult_VoidPaths(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		betType pick.BetType
		text    string
	}{
		{"garbage total", pick.BetTypeTotal, "garbage text"},
		{"spread without line", pick.BetTypeSpread, "Lakers cover"},
		{"moneyline unknown team", pick.BetTypeMoneyline, "Warriors ML"},
		{"prop unsupported", pick.BetTypeProp, "LeBron over 27.5 points"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := determineResult(tc.betType, tc.text, finalGame(100, 95))
			if got.result != pick.ResultVoid {
				t.Fatalf("expected void, got %s", got.result)
			}
			if got.reason == "" {
				t.Fatal("void result must carry a reason")
			}
		})
	}
}

func TestDetermineResult_GameNotFinal(t *testing.T) {
	t.Parallel()

	g := finalGame(50, 48)
	g.Status = game.StatusInProgress
	got := determineResult(pick.BetTypeTotal, "Over 100", g)
	if got.result != pick.ResultPending {
		t.Fatalf("expected pending while game is live, got %s", got.result)
	}
}
