package game

import (
	"strings"
	"time"
)

const (
	StatusScheduled  = "scheduled"
	StatusInProgress = "in_progress"
	StatusFinal      = "final"
)

// Game is a sporting-event snapshot owned by the ingestion feed. Grading
// treats it as read-mostly and only writes back status and closing lines.
type Game struct {
	ID           string
	HomeTeam     string
	AwayTeam     string
	HomeTeamID   string
	AwayTeamID   string
	ScheduledAt  time.Time
	Score        Score
	Status       string
	Source       string
	ClosingLines *ClosingLines
	FinalizedAt  *time.Time
}

type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// ClosingLines carries the market's final prices per bet market.
// Any pointer may be nil when the feed never captured that market.
type ClosingLines struct {
	Total      *TotalLine     `json:"total,omitempty"`
	Spread     *SpreadLine    `json:"spread,omitempty"`
	Moneyline  *MoneylineLine `json:"moneyline,omitempty"`
	CapturedAt time.Time      `json:"captured_at"`
}

type TotalLine struct {
	Line       float64 `json:"line"`
	OverPrice  int     `json:"over_price"`
	UnderPrice int     `json:"under_price"`
}

type SpreadLine struct {
	HomeLine  float64 `json:"home_line"`
	HomePrice int     `json:"home_price"`
	AwayPrice int     `json:"away_price"`
}

type MoneylineLine struct {
	HomePrice int `json:"home_price"`
	AwayPrice int `json:"away_price"`
}

func NormalizeStatus(value string) string {
	status := strings.ToLower(strings.TrimSpace(value))
	if status == "" {
		return StatusScheduled
	}
	return status
}

func IsFinalStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusFinal, "finished", "completed", "complete":
		return true
	default:
		return false
	}
}

func IsInProgressStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusInProgress, "live":
		return true
	default:
		return false
	}
}
