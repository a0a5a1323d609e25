package betting

import "fmt"

// TeamNamer resolves team ids to display names. *fpl.Cache satisfies it.
type TeamNamer interface {
	TeamName(id int) string
}

// Describe renders a stored bet condition as a sentence such as
// "Arsenal 2 - 1 Chelsea". Unparseable conditions are returned as-is and
// unknown matches fall back to the match id.
func Describe(betType BetType, condition string, matches MatchSource, names TeamNamer) string {
	prediction, err := ParseCondition(betType, condition)
	if err != nil {
		return condition
	}

	fixture, ok := matches.Match(prediction.MatchID())
	if !ok {
		return fmt.Sprintf("match %d: %s", prediction.MatchID(), prediction.Describe("home", "away"))
	}
	return prediction.Describe(names.TeamName(fixture.TeamH), names.TeamName(fixture.TeamA))
}
