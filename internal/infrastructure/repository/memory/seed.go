package memory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/capperdesk/grader/internal/domain/game"
	"github.com/capperdesk/grader/internal/domain/pick"
)

const (
	GameIDLakersCeltics = "nba-2026-03-01-lal-bos"
	GameIDKnicksHeat    = "nba-2026-03-01-nyk-mia"
)

// Seed data backs the memory storage driver used in local development,
// shaped like one finished slate night.
func SeedGames() []game.Game {
	finalAt := time.Date(2026, 3, 1, 22, 30, 0, 0, time.UTC)
	knicksFinalAt := time.Date(2026, 3, 1, 23, 5, 0, 0, time.UTC)

	return []game.Game{
		{
			ID:          GameIDLakersCeltics,
			HomeTeam:    "Los Angeles Lakers",
			AwayTeam:    "Boston Celtics",
			HomeTeamID:  "nba-lal",
			AwayTeamID:  "nba-bos",
			ScheduledAt: time.Date(2026, 3, 1, 19, 30, 0, 0, time.UTC),
			Score:       game.Score{Home: 112, Away: 104},
			Status:      game.StatusFinal,
			Source:      "oddsfeed",
			FinalizedAt: &finalAt,
			ClosingLines: &game.ClosingLines{
				Total:      &game.TotalLine{Line: 219.5, OverPrice: -108, UnderPrice: -112},
				Spread:     &game.SpreadLine{HomeLine: -4.5, HomePrice: -110, AwayPrice: -110},
				Moneyline:  &game.MoneylineLine{HomePrice: -180, AwayPrice: +155},
				CapturedAt: time.Date(2026, 3, 1, 19, 25, 0, 0, time.UTC),
			},
		},
		{
			ID:          GameIDKnicksHeat,
			HomeTeam:    "New York Knicks",
			AwayTeam:    "Miami Heat",
			HomeTeamID:  "nba-nyk",
			AwayTeamID:  "nba-mia",
			ScheduledAt: time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC),
			Score:       game.Score{Home: 98, Away: 101},
			Status:      game.StatusFinal,
			Source:      "oddsfeed",
			FinalizedAt: &knicksFinalAt,
		},
	}
}

func SeedPicks() []pick.Pick {
	postedAt := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)

	return []pick.Pick{
		{
			ID:              "pick-0001",
			GameID:          GameIDLakersCeltics,
			BetType:         pick.BetTypeTotal,
			Selection:       "Over 218.5",
			OddsAmerican:    -110,
			UnitsRisked:     decimal.NewFromInt(1),
			AmountRisked:    10000,
			UnitValueAtPost: 10000,
			Status:          pick.StatusPending,
			Result:          pick.ResultPending,
			CreatedAt:       postedAt,
			UpdatedAt:       postedAt,
		},
		{
			ID:              "pick-0002",
			GameID:          GameIDLakersCeltics,
			BetType:         pick.BetTypeSpread,
			Selection:       "Lakers -4.5",
			OddsAmerican:    -105,
			UnitsRisked:     decimal.NewFromInt(2),
			AmountRisked:    20000,
			UnitValueAtPost: 10000,
			Status:          pick.StatusLocked,
			Result:          pick.ResultPending,
			CreatedAt:       postedAt,
			UpdatedAt:       postedAt,
		},
		{
			ID:              "pick-0003",
			GameID:          GameIDKnicksHeat,
			BetType:         pick.BetTypeMoneyline,
			Selection:       "Heat ML",
			OddsAmerican:    +140,
			UnitsRisked:     decimal.NewFromInt(1),
			AmountRisked:    10000,
			UnitValueAtPost: 10000,
			Status:          pick.StatusPending,
			Result:          pick.ResultPending,
			CreatedAt:       postedAt,
			UpdatedAt:       postedAt,
		},
		{
			ID:           "pick-0004",
			GameID:       GameIDKnicksHeat,
			BetType:      pick.BetTypeOther,
			IsParlay:     true,
			OddsAmerican: +264,
			ParlayLegs: []pick.ParlayLeg{
				{BetType: pick.BetTypeMoneyline, Selection: "Heat ML", OddsAmerican: +140},
				{BetType: pick.BetTypeTotal, Selection: "Under 205.5", OddsAmerican: -110},
			},
			UnitsRisked:     decimal.NewFromInt(1),
			AmountRisked:    10000,
			UnitValueAtPost: 10000,
			Status:          pick.StatusPending,
			Result:          pick.ResultPending,
			CreatedAt:       postedAt,
			UpdatedAt:       postedAt,
		},
	}
}
