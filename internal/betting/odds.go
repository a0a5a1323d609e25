package betting

import (
	"context"
	"fmt"
	"math"

	"fplbot/internal/database"
)

// MinOdds is the lowest rounded multiplier ever offered.
const MinOdds = 2

// BetHistory gives access to settled bets. *database.Store satisfies it.
type BetHistory interface {
	ListFinishedBets(ctx context.Context, betType string) ([]database.Bet, error)
}

// OddsEngine prices a bet type from how often past bets of that type won.
// Nothing is cached: every call reads the current history.
type OddsEngine struct {
	history BetHistory
}

func NewOddsEngine(history BetHistory) *OddsEngine {
	return &OddsEngine{history: history}
}

// Odds returns settled/correct for the bet type, or 0 when there is no
// settled history or no winner in it. With round set the value is rounded
// half-to-even and never below MinOdds.
func (o *OddsEngine) Odds(ctx context.Context, betType BetType, round bool) (float64, error) {
	bets, err := o.history.ListFinishedBets(ctx, string(betType))
	if err != nil {
		return 0, fmt.Errorf("odds for %s: %w", betType, err)
	}

	correct := 0
	for _, b := range bets {
		if b.Won() {
			correct++
		}
	}
	return Multiplier(len(bets), correct, round), nil
}

// Multiplier is the inverse win rate total/correct with the engine's rounding
// policy applied. It returns 0 when correct is 0.
func Multiplier(total, correct int, round bool) float64 {
	if total == 0 || correct == 0 {
		return 0
	}

	odd := float64(total) / float64(correct)
	if !round {
		return odd
	}

	odd = math.RoundToEven(odd)
	if odd < MinOdds {
		odd = MinOdds
	}
	return odd
}
