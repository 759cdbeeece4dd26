package pick

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type Side string

const (
	SideHome  Side = "home"
	SideAway  Side = "away"
	SideOver  Side = "over"
	SideUnder Side = "under"
	SideNone  Side = ""
)

// Selection is the typed form of the free-text selection grammar. Parsing
// happens once at the grading boundary so the result determiner never
// rescans strings.
type Selection struct {
	Kind    BetType
	Side    Side
	Line    float64
	HasLine bool
	Raw     string
}

var (
	totalRegex = regexp.MustCompile(`(?i)\b(over|under)\s+(-?\d+(?:\.\d+)?)`)
	lineRegex  = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
)

// ParseSelection normalizes selection text for the declared bet type.
// Errors here mean "unparseable grammar": callers grade the wager void
// with the error text as the reason, they never fail the batch.
func ParseSelection(betType BetType, text string) (Selection, error) {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return Selection{}, fmt.Errorf("empty selection text")
	}

	switch betType {
	case BetTypeMoneyline:
		return Selection{Kind: BetTypeMoneyline, Raw: raw}, nil

	case BetTypeSpread:
		match := lineRegex.FindString(raw)
		if match == "" {
			return Selection{}, fmt.Errorf("spread selection %q has no numeric line", raw)
		}
		line, err := strconv.ParseFloat(match, 64)
		if err != nil {
			return Selection{}, fmt.Errorf("spread selection %q has unparseable line %q", raw, match)
		}
		return Selection{Kind: BetTypeSpread, Line: line, HasLine: true, Raw: raw}, nil

	case BetTypeTotal:
		match := totalRegex.FindStringSubmatch(raw)
		if match == nil {
			return Selection{}, fmt.Errorf("total selection %q does not match over/under grammar", raw)
		}
		line, err := strconv.ParseFloat(match[2], 64)
		if err != nil {
			return Selection{}, fmt.Errorf("total selection %q has unparseable line %q", raw, match[2])
		}
		side := SideOver
		if strings.EqualFold(match[1], "under") {
			side = SideUnder
		}
		return Selection{Kind: BetTypeTotal, Side: side, Line: line, HasLine: true, Raw: raw}, nil

	default:
		return Selection{}, fmt.Errorf("bet type %q is not gradable from selection text", betType)
	}
}

// MatchTeamSide finds which side of the game the selection text names,
// by best-effort substring matching. Naming both sides (or neither) yields
// SideNone so the wager grades void instead of guessing.
func MatchTeamSide(text, homeTeam, awayTeam string) Side {
	lowered := strings.ToLower(text)
	home := containsTeamToken(lowered, homeTeam)
	away := containsTeamToken(lowered, awayTeam)

	switch {
	case home && !away:
		return SideHome
	case away && !home:
		return SideAway
	default:
		return SideNone
	}
}

func containsTeamToken(loweredText, team string) bool {
	team = strings.ToLower(strings.TrimSpace(team))
	if team == "" {
		return false
	}
	if strings.Contains(loweredText, team) {
		return true
	}

	// City-only or nickname-only selections still match on any
	// sufficiently distinctive word of the full team name.
	for _, word := range strings.Fields(team) {
		if len(word) < 3 {
			continue
		}
		if strings.Contains(loweredText, word) {
			return true
		}
	}
	return false
}
