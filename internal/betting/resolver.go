package betting

import "fplbot/internal/fpl"

// Result of checking a bet against real match data.
type Result int

const (
	Undeterminable Result = iota
	Correct
	Incorrect
)

func (r Result) String() string {
	switch r {
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	default:
		return "undeterminable"
	}
}

// MatchSource looks fixtures up by id. *fpl.Cache satisfies it.
type MatchSource interface {
	Match(id int) (fpl.Fixture, bool)
}

// Resolver decides whether a bet's prediction came true. It never mutates state.
type Resolver struct {
	matches MatchSource
}

func NewResolver(matches MatchSource) *Resolver {
	return &Resolver{matches: matches}
}

// Resolve parses the condition and checks it. Malformed conditions, unknown
// matches and unfinished matches are Undeterminable. A well-formed prediction
// no score can match, such as outcome 5, is Incorrect once the match ends.
func (r *Resolver) Resolve(betType BetType, condition string) Result {
	prediction, err := decodeCondition(betType, condition)
	if err != nil {
		return Undeterminable
	}
	return r.ResolvePrediction(prediction)
}

func (r *Resolver) ResolvePrediction(p Prediction) Result {
	fixture, ok := r.matches.Match(p.MatchID())
	if !ok {
		return Undeterminable
	}

	home, away, finished := fixture.Score()
	if !finished {
		return Undeterminable
	}

	if p.Correct(home, away) {
		return Correct
	}
	return Incorrect
}
