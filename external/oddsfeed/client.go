package oddsfeed

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/capperdesk/grader/internal/domain/game"
	"github.com/capperdesk/grader/internal/platform/logging"
	"github.com/capperdesk/grader/internal/platform/resilience"
	"github.com/capperdesk/grader/internal/usecase"
)

const defaultBaseURL = "https://feed.capperdesk.com/v1"

var apiKeyParamRegex = regexp.MustCompile(`api_key=[^&\s"']+`)
var errOddsFeedTransient = crerr.New("oddsfeed transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads the ingestion collaborator's feed: finished games in a
// window and closing lines per game. It satisfies the grading service's
// LinesFeed dependency.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		maxRetries:     max(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

type feedGamePayload struct {
	ID          string   `json:"id"`
	HomeTeam    string   `json:"home_team"`
	AwayTeam    string   `json:"away_team"`
	HomeTeamID  string   `json:"home_team_id"`
	AwayTeamID  string   `json:"away_team_id"`
	ScheduledAt string   `json:"scheduled_at"`
	Status      string   `json:"status"`
	Score       *struct {
		Home int `json:"home"`
		Away int `json:"away"`
	} `json:"score"`
	FinalizedAt string `json:"finalized_at"`
}

type finishedGamesEnvelope struct {
	Data []feedGamePayload `json:"data"`
}

type closingLinesEnvelope struct {
	Data *game.ClosingLines `json:"data"`
}

// FinishedGames returns games the feed reports as final inside the
// window.
func (c *Client) FinishedGames(ctx context.Context, start, end time.Time) ([]game.Game, error) {
	if !start.Before(end) {
		return nil, fmt.Errorf("window start must precede end")
	}

	var envelope finishedGamesEnvelope
	err := c.doJSON(ctx, "/games", map[string]string{
		"status": game.StatusFinal,
		"start":  start.UTC().Format(time.RFC3339),
		"end":    end.UTC().Format(time.RFC3339),
	}, &envelope)
	if err != nil {
		return nil, fmt.Errorf("fetch finished games: %w", err)
	}

	out := make([]game.Game, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		mapped, ok := mapFeedGame(item)
		if !ok {
			c.logger.WarnContext(ctx, "skipping malformed feed game", "gameId", item.ID)
			continue
		}
		out = append(out, mapped)
	}
	return out, nil
}

// ClosingLines returns the closing lines for a game, or nil when the
// feed never captured that market.
func (c *Client) ClosingLines(ctx context.Context, gameID string) (*game.ClosingLines, error) {
	if strings.TrimSpace(gameID) == "" {
		return nil, fmt.Errorf("game id is required")
	}

	var envelope closingLinesEnvelope
	err := c.doJSON(ctx, "/games/"+url.PathEscape(gameID)+"/closing-lines", nil, &envelope)
	if err != nil {
		return nil, fmt.Errorf("fetch closing lines game_id=%s: %w", gameID, err)
	}
	return envelope.Data, nil
}

func mapFeedGame(item feedGamePayload) (game.Game, bool) {
	if item.ID == "" || item.Score == nil {
		return game.Game{}, false
	}

	scheduledAt, err := time.Parse(time.RFC3339, item.ScheduledAt)
	if err != nil {
		return game.Game{}, false
	}

	mapped := game.Game{
		ID:          item.ID,
		HomeTeam:    item.HomeTeam,
		AwayTeam:    item.AwayTeam,
		HomeTeamID:  item.HomeTeamID,
		AwayTeamID:  item.AwayTeamID,
		ScheduledAt: scheduledAt,
		Score:       game.Score{Home: item.Score.Home, Away: item.Score.Away},
		Status:      game.NormalizeStatus(item.Status),
		Source:      "oddsfeed",
	}
	if finalizedAt, err := time.Parse(time.RFC3339, item.FinalizedAt); err == nil {
		mapped.FinalizedAt = &finalizedAt
	}
	return mapped, true
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "oddsfeed circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: odds feed is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	values.Set("api_key", c.apiKey)

	fullURL := c.baseURL + path + "?" + values.Encode()

	out, err, _ := c.flight.Do(path+"?"+values.Encode(), func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && stderrors.Is(reqErr, errOddsFeedTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode feed payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errOddsFeedTransient, redactAPIKey(err.Error()))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errOddsFeedTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: feed status=%d body=%s", errOddsFeedTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("feed status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * time.Second)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("feed request failed")
	}
	c.logger.WarnContext(ctx, "oddsfeed request failed", "url", redactAPIKey(fullURL), "error", lastErr)
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func redactAPIKey(text string) string {
	return apiKeyParamRegex.ReplaceAllString(text, "api_key=***")
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	body := strings.TrimSpace(string(raw))
	if len(body) > limit {
		return body[:limit] + "..."
	}
	return body
}
