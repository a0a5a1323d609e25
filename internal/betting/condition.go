package betting

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// BetType names a prediction category. The set is closed: MatchScore and MatchWinner.
type BetType string

const (
	MatchScore  BetType = "match_score"
	MatchWinner BetType = "match_winner"
)

// BetTypes lists every supported bet type.
var BetTypes = []BetType{MatchScore, MatchWinner}

var (
	ErrUnknownBetType   = errors.New("unknown bet type")
	ErrInvalidCondition = errors.New("invalid bet condition")
)

func ParseBetType(s string) (BetType, error) {
	switch BetType(s) {
	case MatchScore, MatchWinner:
		return BetType(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBetType, s)
}

func (t BetType) Label() string {
	switch t {
	case MatchScore:
		return "Correct score"
	case MatchWinner:
		return "Match winner"
	}
	return string(t)
}

// MaxScore caps predicted and actual goals so blowouts compare as 10+.
const MaxScore = 10

func clampScore(goals int) int {
	if goals > MaxScore {
		return MaxScore
	}
	return goals
}

// Outcome is the match_winner code: 0 home win, 1 draw, 2 away win.
type Outcome int

const (
	HomeWin Outcome = 0
	Draw    Outcome = 1
	AwayWin Outcome = 2
)

// OutcomeOf derives the outcome code from a final score.
func OutcomeOf(home, away int) Outcome {
	switch {
	case home > away:
		return HomeWin
	case home < away:
		return AwayWin
	default:
		return Draw
	}
}

func (o Outcome) Valid() bool {
	return o >= HomeWin && o <= AwayWin
}

// Prediction is a parsed bet condition. Implementations live in this package
// only; adding a bet type means adding a Prediction and a case to decodeCondition.
type Prediction interface {
	Type() BetType
	MatchID() int
	// Condition serialises the prediction into the stored condition string.
	Condition() string
	// Correct compares the prediction to a final score.
	Correct(home, away int) bool
	// Describe renders the prediction with team names.
	Describe(homeTeam, awayTeam string) string
}

// ScorePrediction predicts the exact final score.
type ScorePrediction struct {
	Match int
	Home  int
	Away  int
}

// NewScorePrediction clamps both scores to MaxScore.
func NewScorePrediction(match, home, away int) ScorePrediction {
	return ScorePrediction{Match: match, Home: clampScore(home), Away: clampScore(away)}
}

func (p ScorePrediction) Type() BetType { return MatchScore }
func (p ScorePrediction) MatchID() int  { return p.Match }

func (p ScorePrediction) Condition() string {
	return fmt.Sprintf("%d,%d,%d", p.Match, p.Home, p.Away)
}

func (p ScorePrediction) Correct(home, away int) bool {
	return clampScore(home) == p.Home && clampScore(away) == p.Away
}

func (p ScorePrediction) Describe(homeTeam, awayTeam string) string {
	return fmt.Sprintf("%s %d - %d %s", homeTeam, p.Home, p.Away, awayTeam)
}

// WinnerPrediction predicts home win, draw or away win.
type WinnerPrediction struct {
	Match   int
	Outcome Outcome
}

func (p WinnerPrediction) Type() BetType { return MatchWinner }
func (p WinnerPrediction) MatchID() int  { return p.Match }

func (p WinnerPrediction) Condition() string {
	return fmt.Sprintf("%d,%d", p.Match, p.Outcome)
}

func (p WinnerPrediction) Correct(home, away int) bool {
	return OutcomeOf(home, away) == p.Outcome
}

func (p WinnerPrediction) Describe(homeTeam, awayTeam string) string {
	switch p.Outcome {
	case HomeWin:
		return fmt.Sprintf("%s to beat %s", homeTeam, awayTeam)
	case AwayWin:
		return fmt.Sprintf("%s to beat %s", awayTeam, homeTeam)
	default:
		return fmt.Sprintf("%s and %s to draw", homeTeam, awayTeam)
	}
}

// ParseCondition parses a condition string for placement. On top of the
// shape checks of decodeCondition it rejects negative scores and outcome
// codes other than 0, 1 and 2.
//
//	match_score:  "<match_id>,<home_score>,<away_score>"
//	match_winner: "<match_id>,<outcome>"
func ParseCondition(betType BetType, condition string) (Prediction, error) {
	prediction, err := decodeCondition(betType, condition)
	if err != nil {
		return nil, err
	}

	switch p := prediction.(type) {
	case ScorePrediction:
		if p.Home < 0 || p.Away < 0 {
			return nil, fmt.Errorf("%w: negative score in %q", ErrInvalidCondition, condition)
		}
	case WinnerPrediction:
		if !p.Outcome.Valid() {
			return nil, fmt.Errorf("%w: outcome must be 0, 1 or 2 in %q", ErrInvalidCondition, condition)
		}
	}
	return prediction, nil
}

// decodeCondition only checks the field count and that every field is an
// integer. A stored prediction that no match can satisfy still decodes, so
// it resolves Incorrect instead of staying open.
func decodeCondition(betType BetType, condition string) (Prediction, error) {
	var want int
	switch betType {
	case MatchScore:
		want = 3
	case MatchWinner:
		want = 2
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBetType, betType)
	}

	fields, err := splitInts(condition, want)
	if err != nil {
		return nil, err
	}

	if betType == MatchScore {
		return NewScorePrediction(fields[0], fields[1], fields[2]), nil
	}
	return WinnerPrediction{Match: fields[0], Outcome: Outcome(fields[1])}, nil
}

func splitInts(condition string, want int) ([]int, error) {
	parts := strings.Split(condition, ",")
	if len(parts) != want {
		return nil, fmt.Errorf("%w: expected %d fields in %q", ErrInvalidCondition, want, condition)
	}

	fields := make([]int, want)
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidCondition, part)
		}
		fields[i] = n
	}
	return fields, nil
}
