package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/capperdesk/grader/internal/domain/game"
	"github.com/capperdesk/grader/internal/domain/ledger"
	"github.com/capperdesk/grader/internal/domain/odds"
	"github.com/capperdesk/grader/internal/domain/pick"
	"github.com/capperdesk/grader/internal/platform/logging"
)

// LinesFeed is the ingestion collaborator's read API: finished games in
// a window, and closing lines per game. Both calls may fail; failures
// are non-fatal to a grading run.
type LinesFeed interface {
	FinishedGames(ctx context.Context, start, end time.Time) ([]game.Game, error)
	ClosingLines(ctx context.Context, gameID string) (*game.ClosingLines, error)
}

// LinesCache is an optional shared cache for closing lines, consulted
// before the feed and written through after a successful fetch.
type LinesCache interface {
	Get(ctx context.Context, gameID string) (*game.ClosingLines, bool)
	Set(ctx context.Context, gameID string, lines *game.ClosingLines)
}

type noopLedgerRecorder struct{}

func (noopLedgerRecorder) Record(context.Context, ledger.Entry) error { return nil }

func NewNoopLedgerRecorder() LedgerRecorder { return noopLedgerRecorder{} }

type GradingConfig struct {
	DefaultWindow   time.Duration
	PrefetchWorkers int
}

// GradingSummary is the run report returned by one grading invocation.
type GradingSummary struct {
	RunID          string    `json:"run_id"`
	WindowStart    time.Time `json:"window_start"`
	WindowEnd      time.Time `json:"window_end"`
	GamesProcessed int       `json:"games_processed"`
	PicksGraded    int       `json:"picks_graded"`
	Wins           int       `json:"wins"`
	Losses         int       `json:"losses"`
	Pushes         int       `json:"pushes"`
	Voids          int       `json:"voids"`
	Errors         int       `json:"errors"`
	ErrorDetails   []string  `json:"error_details,omitempty"`
}

// GradingService is the job entry point: it discovers finished games in
// a window, selects their ungraded picks, decides each one, persists the
// outcome with a conditional write, and records a ledger entry.
//
// The job is stateless and rerunnable. Overlapping invocations are safe
// because the graded transition is a compare-and-set keyed on the pick
// still being pending or locked.
type GradingService struct {
	pickRepo pick.Repository
	gameRepo game.Repository
	feed     LinesFeed
	lines    LinesCache
	ledger   LedgerRecorder
	cfg      GradingConfig
	logger   *logging.Logger
	now      func() time.Time
}

func NewGradingService(
	pickRepo pick.Repository,
	gameRepo game.Repository,
	feed LinesFeed,
	lines LinesCache,
	ledgerRec LedgerRecorder,
	cfg GradingConfig,
	logger *logging.Logger,
) *GradingService {
	if ledgerRec == nil {
		ledgerRec = NewNoopLedgerRecorder()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.DefaultWindow <= 0 {
		cfg.DefaultWindow = 24 * time.Hour
	}
	if cfg.PrefetchWorkers <= 0 {
		cfg.PrefetchWorkers = 4
	}

	return &GradingService{
		pickRepo: pickRepo,
		gameRepo: gameRepo,
		feed:     feed,
		lines:    lines,
		ledger:   ledgerRec,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// GradeWindow grades every gradable pick attached to games that went
// final inside [start, end). Zero bounds default to the trailing
// configured window. Per-pick failures are isolated and counted; only
// infrastructure failures propagate.
func (s *GradingService) GradeWindow(ctx context.Context, start, end time.Time) (GradingSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "GradingService.GradeWindow")
	defer span.End()

	if end.IsZero() {
		end = s.now()
	}
	if start.IsZero() {
		start = end.Add(-s.cfg.DefaultWindow)
	}
	if !start.Before(end) {
		return GradingSummary{}, errors.Wrapf(ErrInvalidInput, "window start %s is not before end %s", start, end)
	}

	summary := GradingSummary{
		RunID:       uuid.NewString(),
		WindowStart: start,
		WindowEnd:   end,
	}

	candidates, err := s.collectFinishedGames(ctx, start, end)
	if err != nil {
		return summary, err
	}

	lines := s.prefetchClosingLines(ctx, candidates)

	for _, g := range candidates {
		summary.GamesProcessed++

		picks, err := s.pickRepo.ListGradableByGame(ctx, g.ID)
		if err != nil {
			summary.Errors++
			summary.ErrorDetails = append(summary.ErrorDetails, fmt.Sprintf("game %s: list picks: %v", g.ID, err))
			s.logger.ErrorContext(ctx, "listing gradable picks failed", "gameId", g.ID, "error", err)
			continue
		}

		for _, p := range picks {
			s.gradeOne(ctx, p, g, lines[g.ID], &summary)
		}
	}

	s.logger.InfoContext(ctx, "grading run finished",
		"runId", summary.RunID,
		"gamesProcessed", summary.GamesProcessed,
		"picksGraded", summary.PicksGraded,
		"wins", summary.Wins,
		"losses", summary.Losses,
		"pushes", summary.Pushes,
		"voids", summary.Voids,
		"errors", summary.Errors,
	)
	return summary, nil
}

// collectFinishedGames unions storage's final games in the window with
// whatever the feed newly reports as finished, writing the final status
// back when storage is stale. Feed failures degrade to storage-only.
func (s *GradingService) collectFinishedGames(ctx context.Context, start, end time.Time) ([]game.Game, error) {
	stored, err := s.gameRepo.ListFinalBetween(ctx, start, end)
	if err != nil {
		return nil, errors.Wrap(err, "list final games")
	}

	byID := make(map[string]game.Game, len(stored))
	order := make([]string, 0, len(stored))
	for _, g := range stored {
		byID[g.ID] = g
		order = append(order, g.ID)
	}

	if s.feed != nil {
		reported, err := s.feed.FinishedGames(ctx, start, end)
		if err != nil {
			s.logger.WarnContext(ctx, "finished-games feed unavailable, grading from storage only", "error", err)
		} else {
			for _, g := range reported {
				if _, ok := byID[g.ID]; ok {
					continue
				}
				if existing, found, getErr := s.gameRepo.GetByID(ctx, g.ID); getErr == nil && found && !game.IsFinalStatus(existing.Status) {
					finalizedAt := s.now()
					if markErr := s.gameRepo.MarkFinal(ctx, g.ID, g.Score, finalizedAt); markErr != nil {
						s.logger.WarnContext(ctx, "marking game final failed", "gameId", g.ID, "error", markErr)
					}
				}
				g.Status = game.StatusFinal
				byID[g.ID] = g
				order = append(order, g.ID)
			}
		}
	}

	games := make([]game.Game, 0, len(order))
	for _, id := range order {
		games = append(games, byID[id])
	}
	return games, nil
}

// prefetchClosingLines resolves closing lines for every candidate game
// before the sequential grading loop starts, bounded by a worker pool.
// Missing lines only cost CLV, never the grade itself.
func (s *GradingService) prefetchClosingLines(ctx context.Context, games []game.Game) map[string]*game.ClosingLines {
	result := make(map[string]*game.ClosingLines, len(games))
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(s.cfg.PrefetchWorkers)
	for _, g := range games {
		g := g
		p.Go(func() {
			lines := s.resolveClosingLines(ctx, g)
			if lines == nil {
				return
			}
			mu.Lock()
			result[g.ID] = lines
			mu.Unlock()
		})
	}
	p.Wait()

	return result
}

func (s *GradingService) resolveClosingLines(ctx context.Context, g game.Game) *game.ClosingLines {
	if g.ClosingLines != nil {
		return g.ClosingLines
	}

	if s.lines != nil {
		if cached, ok := s.lines.Get(ctx, g.ID); ok {
			return cached
		}
	}

	if s.feed == nil {
		return nil
	}
	lines, err := s.feed.ClosingLines(ctx, g.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "closing lines unavailable", "gameId", g.ID, "error", err)
		return nil
	}
	if lines == nil {
		return nil
	}

	if err := s.gameRepo.SaveClosingLines(ctx, g.ID, *lines); err != nil {
		s.logger.WarnContext(ctx, "caching closing lines on game failed", "gameId", g.ID, "error", err)
	}
	if s.lines != nil {
		s.lines.Set(ctx, g.ID, lines)
	}
	return lines
}

// gradeOne decides, persists and records a single pick. Panics and
// errors are confined to this pick; the summary absorbs them.
func (s *GradingService) gradeOne(ctx context.Context, p pick.Pick, g game.Game, lines *game.ClosingLines, summary *GradingSummary) {
	defer func() {
		if r := recover(); r != nil {
			summary.Errors++
			summary.ErrorDetails = append(summary.ErrorDetails, fmt.Sprintf("pick %s: panic: %v", p.ID, r))
			s.logger.ErrorContext(ctx, "panic while grading pick", "pickId", p.ID, "panic", r)
		}
	}()

	graded, err := s.decide(p, g, lines)
	if err != nil {
		summary.Errors++
		summary.ErrorDetails = append(summary.ErrorDetails, fmt.Sprintf("pick %s: %v", p.ID, err))
		s.logger.WarnContext(ctx, "pick failed grading, will retry next run", "pickId", p.ID, "error", err)
		return
	}
	if graded.Result == pick.ResultPending {
		return
	}

	updated, err := s.pickRepo.UpdateGraded(ctx, graded)
	if err != nil {
		summary.Errors++
		summary.ErrorDetails = append(summary.ErrorDetails, fmt.Sprintf("pick %s: persist: %v", p.ID, err))
		s.logger.ErrorContext(ctx, "persisting graded pick failed", "pickId", p.ID, "error", err)
		return
	}
	if !updated {
		// Another invocation already graded it.
		return
	}

	summary.PicksGraded++
	switch graded.Result {
	case pick.ResultWin:
		summary.Wins++
	case pick.ResultLoss:
		summary.Losses++
	case pick.ResultPush:
		summary.Pushes++
	case pick.ResultVoid:
		summary.Voids++
	}

	entry := ledger.NewGradedEntry(graded.ID, graded.GameID, string(graded.Result), graded.ProfitUnits, graded.ProfitAmount, s.now())
	if err := s.ledger.Record(ctx, entry); err != nil {
		s.logger.WarnContext(ctx, "ledger record failed, grading stands", "pickId", p.ID, "error", err)
	}
}

// decide computes the full graded pick without touching storage.
func (s *GradingService) decide(p pick.Pick, g game.Game, lines *game.ClosingLines) (pick.Pick, error) {
	var outcome legOutcome
	payoutOdds := p.OddsDecimal

	if p.IsParlay {
		legs := make([]pick.ParlayLeg, len(p.ParlayLegs))
		copy(legs, p.ParlayLegs)
		for i := range legs {
			legOut := determineResult(legs[i].BetType, legs[i].Selection, g)
			legs[i].Result = legOut.result
			legs[i].Reason = legOut.reason
		}

		combined, err := combinedParlayOdds(legs)
		if err != nil {
			return pick.Pick{}, err
		}
		payoutOdds = combined
		p.ParlayLegs = legs
		outcome = legOutcome{result: aggregateParlayResult(legs), reason: firstLegReason(legs)}
	} else {
		outcome = determineResult(p.BetType, p.Selection, g)
		if payoutOdds <= 1 {
			converted, err := odds.AmericanToDecimal(p.OddsAmerican)
			if err != nil {
				if outcome.result == pick.ResultWin {
					return pick.Pick{}, errors.Wrapf(ErrInvalidInput, "pick has no usable odds: %v", err)
				}
			} else {
				payoutOdds = converted
			}
		}
	}

	p.Result = outcome.result
	p.ResultReason = outcome.reason
	if outcome.result == pick.ResultPending {
		return p, nil
	}

	p.ProfitUnits, p.ProfitAmount = computeProfit(outcome.result, p.UnitsRisked, p.AmountRisked, payoutOdds)
	if !p.IsParlay {
		p.CLVScore, p.ClosingOdds = computeCLV(p, lines)
	}

	now := s.now()
	p.Status = pick.StatusGraded
	p.ResolvedAt = &now
	p.UpdatedAt = now

	if p.CreatedAt.Before(g.ScheduledAt) {
		p.IsVerified = true
		p.VerificationSource = verificationSource(g)
		p.VerificationEvidence = scoreEvidence(g, now)
	}

	return p, nil
}

func firstLegReason(legs []pick.ParlayLeg) string {
	for _, leg := range legs {
		if leg.Reason != "" {
			return leg.Reason
		}
	}
	return ""
}

func verificationSource(g game.Game) string {
	if g.Source != "" {
		return g.Source
	}
	return "oddsfeed"
}

// scoreEvidence snapshots the score the grade was based on, kept on the
// pick for later dispute review.
func scoreEvidence(g game.Game, capturedAt time.Time) string {
	snapshot := struct {
		GameID   string     `json:"game_id"`
		HomeTeam string     `json:"home_team"`
		AwayTeam string     `json:"away_team"`
		Score    game.Score `json:"score"`
		Status   string     `json:"status"`
		Capture  time.Time  `json:"captured_at"`
	}{
		GameID:   g.ID,
		HomeTeam: g.HomeTeam,
		AwayTeam: g.AwayTeam,
		Score:    g.Score,
		Status:   g.Status,
		Capture:  capturedAt.UTC(),
	}

	data, err := sonic.Marshal(snapshot)
	if err != nil {
		return ""
	}
	return string(data)
}
