package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"

	"github.com/capperdesk/grader/internal/domain/game"
	"github.com/capperdesk/grader/internal/domain/ledger"
	"github.com/capperdesk/grader/internal/domain/pick"
	"github.com/capperdesk/grader/internal/infrastructure/repository/memory"
	"github.com/capperdesk/grader/internal/platform/logging"
)

type stubLinesFeed struct {
	finished    []game.Game
	finishedErr error
	lines       map[string]*game.ClosingLines
	linesErr    error
	linesCalls  int
}

func (s *stubLinesFeed) FinishedGames(context.Context, time.Time, time.Time) ([]game.Game, error) {
	return s.finished, s.finishedErr
}

func (s *stubLinesFeed) ClosingLines(_ context.Context, gameID string) (*game.ClosingLines, error) {
	s.linesCalls++
	if s.linesErr != nil {
		return nil, s.linesErr
	}
	return s.lines[gameID], nil
}

var (
	tipoff  = time.Date(2026, 3, 1, 19, 30, 0, 0, time.UTC)
	finalAt = time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC)
	runEnd  = time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)
)

func lakersCeltics(home, away int) game.Game {
	at := finalAt
	return game.Game{
		ID:          "g1",
		HomeTeam:    "Los Angeles Lakers",
		AwayTeam:    "Boston Celtics",
		ScheduledAt: tipoff,
		Score:       game.Score{Home: home, Away: away},
		Status:      game.StatusFinal,
		Source:      "oddsfeed",
		FinalizedAt: &at,
	}
}

func newTestService(games []game.Game, picks []pick.Pick, feed LinesFeed) (*GradingService, *memory.PickRepository, *memory.LedgerRepository) {
	pickRepo := memory.NewPickRepository(picks)
	gameRepo := memory.NewGameRepository(games)
	ledgerRepo := memory.NewLedgerRepository()

	svc := NewGradingService(pickRepo, gameRepo, feed, nil, directLedgerRecorder{ledgerRepo}, GradingConfig{}, logging.NewNop())
	svc.now = func() time.Time { return runEnd }
	return svc, pickRepo, ledgerRepo
}

type directLedgerRecorder struct {
	repo *memory.LedgerRepository
}

func (r directLedgerRecorder) Record(ctx context.Context, entry ledger.Entry) error {
	return r.repo.Append(ctx, entry)
}

func TestGradeWindow_GradesMixedSlate(t *testing.T) {
	t.Parallel()

	picks := []pick.Pick{
		{
			ID: "p-total", GameID: "g1", BetType: pick.BetTypeTotal, Selection: "Over 215.5",
			OddsAmerican: -110, UnitsRisked: decimal.NewFromInt(1), AmountRisked: 10000,
			Status: pick.StatusPending, Result: pick.ResultPending, CreatedAt: tipoff.Add(-2 * time.Hour),
		},
		{
			ID: "p-spread", GameID: "g1", BetType: pick.BetTypeSpread, Selection: "Celtics +3.5",
			OddsAmerican: -105, UnitsRisked: decimal.NewFromInt(1), AmountRisked: 10000,
			Status: pick.StatusLocked, Result: pick.ResultPending, CreatedAt: tipoff.Add(-time.Hour),
		},
		{
			ID: "p-void", GameID: "g1", BetType: pick.BetTypeTotal, Selection: "garbage text",
			OddsAmerican: -110, UnitsRisked: decimal.NewFromInt(1), AmountRisked: 10000,
			Status: pick.StatusPending, Result: pick.ResultPending, CreatedAt: tipoff.Add(-time.Hour),
		},
	}

	feed := &stubLinesFeed{lines: map[string]*game.ClosingLines{
		"g1": {Total: &game.TotalLine{Line: 216.5, OverPrice: -110, UnderPrice: -110}},
	}}

	svc, pickRepo, ledgerRepo := newTestService([]game.Game{lakersCeltics(112, 104)}, picks, feed)

	summary, err := svc.GradeWindow(context.Background(), tipoff.Add(-time.Hour), runEnd)
	if err != nil {
		t.Fatalf("grade window: %v", err)
	}

	if summary.GamesProcessed != 1 {
		t.Fatalf("unexpected games processed: got=%d want=1", summary.GamesProcessed)
	}
	if summary.PicksGraded != 3 {
		t.Fatalf("unexpected picks graded: got=%d want=3", summary.PicksGraded)
	}
	if summary.Wins != 1 || summary.Losses != 1 || summary.Voids != 1 {
		t.Fatalf("unexpected tallies: wins=%d losses=%d voids=%d", summary.Wins, summary.Losses, summary.Voids)
	}
	if summary.Errors != 0 {
		t.Fatalf("unexpected errors: %v", summary.ErrorDetails)
	}

	// Over 215.5 won at 216 combined and carries a CLV score against the
	// 216.5 closing total.
	graded, _, _ := pickRepo.GetByID(context.Background(), "p-total")
	if graded.Result != pick.ResultWin || graded.Status != pick.StatusGraded {
		t.Fatalf("unexpected total pick state: result=%s status=%s", graded.Result, graded.Status)
	}
	if graded.CLVScore == nil {
		t.Fatal("expected CLV score on graded total")
	}
	if !graded.IsVerified {
		t.Fatal("pre-tipoff pick must be verified")
	}
	if graded.VerificationEvidence == "" {
		t.Fatal("verified pick must carry a score snapshot")
	}
	if graded.ResolvedAt == nil || !graded.ResolvedAt.Equal(runEnd) {
		t.Fatalf("unexpected resolvedAt: %v", graded.ResolvedAt)
	}

	voided, _, _ := pickRepo.GetByID(context.Background(), "p-void")
	if voided.Result != pick.ResultVoid {
		t.Fatalf("expected void result, got %s", voided.Result)
	}
	if !voided.ProfitUnits.IsZero() || voided.ProfitAmount != 0 {
		t.Fatalf("void must return the stake, got units=%s amount=%d", voided.ProfitUnits, voided.ProfitAmount)
	}

	entries := ledgerRepo.Entries()
	if len(entries) != 3 {
		t.Fatalf("unexpected ledger entry count: got=%d want=3", len(entries))
	}
}

func TestGradeWindow_SecondRunGradesNothing(t *testing.T) {
	t.Parallel()

	picks := []pick.Pick{{
		ID: "p1", GameID: "g1", BetType: pick.BetTypeMoneyline, Selection: "Lakers ML",
		OddsAmerican: -150, UnitsRisked: decimal.NewFromInt(1), AmountRisked: 10000,
		Status: pick.StatusPending, Result: pick.ResultPending, CreatedAt: tipoff.Add(-time.Hour),
	}}

	svc, _, ledgerRepo := newTestService([]game.Game{lakersCeltics(112, 104)}, picks, &stubLinesFeed{})

	first, err := svc.GradeWindow(context.Background(), tipoff.Add(-time.Hour), runEnd)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.PicksGraded != 1 {
		t.Fatalf("first run graded %d picks, want 1", first.PicksGraded)
	}

	second, err := svc.GradeWindow(context.Background(), tipoff.Add(-time.Hour), runEnd)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.PicksGraded != 0 {
		t.Fatalf("second run graded %d picks, want 0", second.PicksGraded)
	}
	if got := len(ledgerRepo.Entries()); got != 1 {
		t.Fatalf("ledger must hold one entry, got %d", got)
	}
}

func TestGradeWindow_FeedReportsStaleGameFinal(t *testing.T) {
	t.Parallel()

	stale := lakersCeltics(0, 0)
	stale.Status = game.StatusInProgress
	stale.FinalizedAt = nil

	reported := lakersCeltics(112, 104)
	feed := &stubLinesFeed{finished: []game.Game{reported}}

	picks := []pick.Pick{{
		ID: "p1", GameID: "g1", BetType: pick.BetTypeTotal, Selection: "Over 210.5",
		OddsAmerican: -110, UnitsRisked: decimal.NewFromInt(1), AmountRisked: 10000,
		Status: pick.StatusPending, Result: pick.ResultPending, CreatedAt: tipoff.Add(-time.Hour),
	}}

	svc, pickRepo, _ := newTestService([]game.Game{stale}, picks, feed)

	summary, err := svc.GradeWindow(context.Background(), tipoff.Add(-time.Hour), runEnd)
	if err != nil {
		t.Fatalf("grade window: %v", err)
	}
	if summary.PicksGraded != 1 {
		t.Fatalf("expected feed-reported game to grade its pick, got %d", summary.PicksGraded)
	}

	graded, _, _ := pickRepo.GetByID(context.Background(), "p1")
	if graded.Result != pick.ResultWin {
		t.Fatalf("expected over win at 216 combined, got %s", graded.Result)
	}
}

func TestGradeWindow_MissingLinesOnlyCostsCLV(t *testing.T) {
	t.Parallel()

	feed := &stubLinesFeed{linesErr: context.DeadlineExceeded}
	picks := []pick.Pick{{
		ID: "p1", GameID: "g1", BetType: pick.BetTypeTotal, Selection: "Over 210.5",
		OddsAmerican: -110, UnitsRisked: decimal.NewFromInt(1), AmountRisked: 10000,
		Status: pick.StatusPending, Result: pick.ResultPending, CreatedAt: tipoff.Add(-time.Hour),
	}}

	svc, pickRepo, _ := newTestService([]game.Game{lakersCeltics(112, 104)}, picks, feed)

	summary, err := svc.GradeWindow(context.Background(), tipoff.Add(-time.Hour), runEnd)
	if err != nil {
		t.Fatalf("grade window: %v", err)
	}
	if summary.PicksGraded != 1 || summary.Errors != 0 {
		t.Fatalf("lines failure must not block grading: graded=%d errors=%d", summary.PicksGraded, summary.Errors)
	}

	graded, _, _ := pickRepo.GetByID(context.Background(), "p1")
	if graded.CLVScore != nil {
		t.Fatalf("expected nil CLV without lines, got %v", *graded.CLVScore)
	}
}

func TestGradeWindow_InvalidParlayLegIsRetryableError(t *testing.T) {
	t.Parallel()

	picks := []pick.Pick{{
		ID: "p1", GameID: "g1", IsParlay: true,
		ParlayLegs: []pick.ParlayLeg{
			{BetType: pick.BetTypeMoneyline, Selection: "Lakers ML", OddsAmerican: -150},
			{BetType: pick.BetTypeTotal, Selection: "Over 210.5", OddsAmerican: 0},
		},
		UnitsRisked: decimal.NewFromInt(1), AmountRisked: 10000,
		Status: pick.StatusPending, Result: pick.ResultPending, CreatedAt: tipoff.Add(-time.Hour),
	}}

	svc, pickRepo, _ := newTestService([]game.Game{lakersCeltics(112, 104)}, picks, &stubLinesFeed{})

	summary, err := svc.GradeWindow(context.Background(), tipoff.Add(-time.Hour), runEnd)
	if err != nil {
		t.Fatalf("grade window: %v", err)
	}
	if summary.Errors != 1 || summary.PicksGraded != 0 {
		t.Fatalf("expected one error and zero graded, got errors=%d graded=%d", summary.Errors, summary.PicksGraded)
	}

	stored, _, _ := pickRepo.GetByID(context.Background(), "p1")
	if stored.Status != pick.StatusPending {
		t.Fatalf("failed parlay must stay gradable for the next run, got %s", stored.Status)
	}
}

func TestGradeWindow_ParlayAllWin(t *testing.T) {
	t.Parallel()

	picks := []pick.Pick{{
		ID: "p1", GameID: "g1", IsParlay: true,
		ParlayLegs: []pick.ParlayLeg{
			{BetType: pick.BetTypeMoneyline, Selection: "Lakers ML", OddsDecimal: 1.91},
			{BetType: pick.BetTypeTotal, Selection: "Over 210.5", OddsDecimal: 2.00},
		},
		UnitsRisked: decimal.NewFromInt(1), AmountRisked: 10000,
		Status: pick.StatusPending, Result: pick.ResultPending, CreatedAt: tipoff.Add(-time.Hour),
	}}

	svc, pickRepo, _ := newTestService([]game.Game{lakersCeltics(112, 104)}, picks, &stubLinesFeed{})

	if _, err := svc.GradeWindow(context.Background(), tipoff.Add(-time.Hour), runEnd); err != nil {
		t.Fatalf("grade window: %v", err)
	}

	graded, _, _ := pickRepo.GetByID(context.Background(), "p1")
	if graded.Result != pick.ResultWin {
		t.Fatalf("expected parlay win, got %s (%s)", graded.Result, graded.ResultReason)
	}
	if want := decimal.NewFromFloat(2.82); !graded.ProfitUnits.Equal(want) {
		t.Fatalf("unexpected parlay profit units: got=%s want=%s", graded.ProfitUnits, want)
	}
	for _, leg := range graded.ParlayLegs {
		if leg.Result != pick.ResultWin {
			t.Fatalf("expected every leg graded win, got %s", leg.Result)
		}
	}
}

func TestGradeWindow_LateSubmittedPickNotVerified(t *testing.T) {
	t.Parallel()

	picks := []pick.Pick{{
		ID: "p1", GameID: "g1", BetType: pick.BetTypeTotal, Selection: "Over 210.5",
		OddsAmerican: -110, UnitsRisked: decimal.NewFromInt(1), AmountRisked: 10000,
		Status: pick.StatusPending, Result: pick.ResultPending,
		CreatedAt: tipoff.Add(30 * time.Minute),
	}}

	svc, pickRepo, _ := newTestService([]game.Game{lakersCeltics(112, 104)}, picks, &stubLinesFeed{})

	if _, err := svc.GradeWindow(context.Background(), tipoff.Add(-time.Hour), runEnd); err != nil {
		t.Fatalf("grade window: %v", err)
	}

	graded, _, _ := pickRepo.GetByID(context.Background(), "p1")
	if graded.Status != pick.StatusGraded {
		t.Fatalf("late pick must still grade, got %s", graded.Status)
	}
	if graded.IsVerified {
		t.Fatal("late-submitted pick must never be verified")
	}
}

func TestGradeWindow_EvidenceUsesServiceClock(t *testing.T) {
	t.Parallel()

	picks := []pick.Pick{{
		ID: "p1", GameID: "g1", BetType: pick.BetTypeTotal, Selection: "Over 210.5",
		OddsAmerican: -110, UnitsRisked: decimal.NewFromInt(1), AmountRisked: 10000,
		Status: pick.StatusPending, Result: pick.ResultPending,
		CreatedAt: tipoff.Add(-time.Hour),
	}}

	svc, pickRepo, _ := newTestService([]game.Game{lakersCeltics(112, 104)}, picks, &stubLinesFeed{})

	if _, err := svc.GradeWindow(context.Background(), tipoff.Add(-time.Hour), runEnd); err != nil {
		t.Fatalf("grade window: %v", err)
	}

	graded, _, _ := pickRepo.GetByID(context.Background(), "p1")
	if !graded.IsVerified {
		t.Fatal("pick created before tipoff must be verified")
	}

	var snapshot struct {
		CapturedAt time.Time `json:"captured_at"`
	}
	if err := sonic.Unmarshal([]byte(graded.VerificationEvidence), &snapshot); err != nil {
		t.Fatalf("decode evidence: %v", err)
	}
	if !snapshot.CapturedAt.Equal(runEnd) {
		t.Fatalf("evidence captured_at must come from the service clock: got=%s want=%s", snapshot.CapturedAt, runEnd)
	}
}
