package commands

import (
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"fplbot/internal/betting"
	"fplbot/internal/database"
	"fplbot/internal/fpl"
)

type teamNames map[int]string

func (n teamNames) TeamName(id int) string {
	if name, ok := n[id]; ok {
		return name
	}
	return fmt.Sprintf("Team %d", id)
}

type fixtureSet map[int]fpl.Fixture

func (s fixtureSet) Match(id int) (fpl.Fixture, bool) {
	f, ok := s[id]
	return f, ok
}

var names = teamNames{1: "Arsenal", 2: "Chelsea"}

func intPtr(v int) *int { return &v }

func TestTransferArrow(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{in: 1200, want: "⬆ 1200"},
		{in: -35, want: "⬇ 35"},
		{in: 0, want: "0"},
	}
	for _, tt := range tests {
		if got := transferArrow(tt.in); got != tt.want {
			t.Errorf("transferArrow(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPrice(t *testing.T) {
	if got := price(105); got != "£10.5m" {
		t.Errorf("price(105) = %q", got)
	}
	if got := price(40); got != "£4.0m" {
		t.Errorf("price(40) = %q", got)
	}
}

func TestPlayerSelectMenuCapsOptions(t *testing.T) {
	players := make([]fpl.Player, 30)
	for i := range players {
		players[i] = fpl.Player{ID: i + 1, WebName: fmt.Sprintf("P%d", i+1)}
	}

	row := PlayerSelectMenu(players)
	menu, ok := row.Components[0].(discordgo.SelectMenu)
	if !ok {
		t.Fatalf("component is %T, want SelectMenu", row.Components[0])
	}
	if menu.CustomID != playerSelectID {
		t.Errorf("CustomID = %q", menu.CustomID)
	}
	if len(menu.Options) != maxSelectOptions {
		t.Fatalf("got %d options, want %d", len(menu.Options), maxSelectOptions)
	}
	if menu.Options[0].Value != "1" || !menu.Options[0].Default {
		t.Errorf("first option = %+v, want default with value 1", menu.Options[0])
	}
	if menu.Options[1].Default {
		t.Error("only the first option should be the default")
	}
}

func TestPlayerProfileEmbedGameweek(t *testing.T) {
	p := fpl.Player{ID: 10, WebName: "Saka", FirstName: "Bukayo", SecondName: "Saka", NowCost: 101, TransfersInEvent: 50, TransfersOutEvent: 80}
	team := fpl.Team{ID: 1, Name: "Arsenal"}

	embed := PlayerProfileEmbed(p, team, "Midfielder", nil)
	if embed.Title != "Bukayo Saka's profile" {
		t.Errorf("Title = %q", embed.Title)
	}
	if embed.Image == nil || !strings.Contains(embed.Image.URL, "/photos/players/") {
		t.Errorf("Image = %+v, want player photo", embed.Image)
	}
	if !strings.Contains(embed.Fields[0].Value, "£10.1m") || !strings.Contains(embed.Fields[0].Value, "Midfielder") {
		t.Errorf("basic info = %q", embed.Fields[0].Value)
	}
	before := len(embed.Fields)

	gw := &PlayerGameweek{
		Gameweek: 7,
		Match:    fpl.PlayerMatch{TeamHScore: intPtr(2), TeamAScore: intPtr(1), TotalPoints: 9, YellowCards: 1},
		Home:     "Arsenal",
		Away:     "Chelsea",
		Points:   []fpl.LiveStat{{Identifier: "goals_scored", Value: 1, Points: 5}},
	}
	embed = PlayerProfileEmbed(p, team, "Midfielder", gw)
	if len(embed.Fields) != before+2 {
		t.Fatalf("got %d fields, want %d", len(embed.Fields), before+2)
	}
	perf := embed.Fields[before].Value
	for _, want := range []string{"Arsenal 2 - 1 Chelsea", "1 goals scored: 5 points", "1 yellow card", "Total points: 9"} {
		if !strings.Contains(perf, want) {
			t.Errorf("gameweek field missing %q:\n%s", want, perf)
		}
	}
}

func TestFixturesEmbed(t *testing.T) {
	kickoff := time.Date(2026, 8, 15, 15, 0, 0, 0, time.UTC)
	fixtures := []fpl.Fixture{
		{ID: 3, TeamH: 1, TeamA: 2, KickoffTime: &kickoff},
		{ID: 4, TeamH: 2, TeamA: 1},
	}

	embed := FixturesEmbed(fixtures, names)
	lines := strings.Split(embed.Description, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if want := fmt.Sprintf("`#3` Arsenal vs Chelsea, <t:%d:f>", kickoff.Unix()); lines[0] != want {
		t.Errorf("line 0 = %q, want %q", lines[0], want)
	}
	if !strings.HasSuffix(lines[1], "TBC") {
		t.Errorf("line 1 = %q, want TBC kickoff", lines[1])
	}

	if embed := FixturesEmbed(nil, names); embed.Description != "No upcoming fixtures." {
		t.Errorf("empty Description = %q", embed.Description)
	}
}

func TestTeamEmbed(t *testing.T) {
	team := fpl.Team{ID: 1, Code: 3, Name: "Arsenal", Position: 2, Played: 10, Win: 7, Draw: 2, Loss: 1, Points: 23}
	squad := []fpl.Player{{WebName: "Saka", Form: "7.5", TotalPoints: 70}}
	results := []fpl.Fixture{
		{ID: 1, TeamH: 1, TeamA: 2, Finished: true, TeamHScore: intPtr(1), TeamAScore: intPtr(0)},
	}

	embed := TeamEmbed(team, fpl.TeamScore{TotalForm: 30, TotalPoints: 400, Score: 35}, squad, results, nil, names)
	if embed.Thumbnail == nil || embed.Thumbnail.URL != fpl.TeamBadgeURL(3) {
		t.Errorf("Thumbnail = %+v", embed.Thumbnail)
	}
	if embed.Image == nil || !strings.Contains(embed.Image.URL, "shirt_3-220") {
		t.Errorf("Image = %+v, want outfield shirt", embed.Image)
	}

	var fieldNames []string
	for _, f := range embed.Fields {
		fieldNames = append(fieldNames, f.Name)
	}
	if got := strings.Join(fieldNames, ","); got != "Season,FPL squad,In form,Recent results" {
		t.Errorf("fields = %s", got)
	}
}

func TestFixtureLineFinished(t *testing.T) {
	f := fpl.Fixture{ID: 9, TeamH: 1, TeamA: 2, Finished: true, TeamHScore: intPtr(3), TeamAScore: intPtr(3)}
	if got := fixtureLine(f, names); got != "`#9` Arsenal 3 - 3 Chelsea" {
		t.Errorf("fixtureLine = %q", got)
	}
}

func TestBetsEmbed(t *testing.T) {
	matches := fixtureSet{5: {ID: 5, TeamH: 1, TeamA: 2}}
	bets := []database.Bet{
		{ID: 1, CoinsBet: 10, PotentialCoins: 30, Condition: "5,2,1", Type: string(betting.MatchScore)},
		{ID: 2, CoinsBet: 5, PotentialCoins: 10, Condition: "5,0", Type: string(betting.MatchWinner), Finished: true, WasCorrect: sql.NullBool{Bool: true, Valid: true}},
		{ID: 3, CoinsBet: 5, PotentialCoins: 10, Condition: "6,1", Type: string(betting.MatchWinner), Finished: true, WasCorrect: sql.NullBool{Bool: false, Valid: true}},
	}

	embed := BetsEmbed("alice", bets, matches, names)
	lines := strings.Split(strings.TrimSpace(embed.Description), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), embed.Description)
	}

	tests := []struct {
		line int
		want []string
	}{
		{line: 0, want: []string{"Arsenal 2 - 1 Chelsea", "open"}},
		{line: 1, want: []string{"Arsenal to beat Chelsea", "won"}},
		{line: 2, want: []string{"match 6: home and away to draw", "lost"}},
	}
	for _, tt := range tests {
		for _, want := range tt.want {
			if !strings.Contains(lines[tt.line], want) {
				t.Errorf("line %d = %q, missing %q", tt.line, lines[tt.line], want)
			}
		}
	}

	if embed := BetsEmbed("bob", nil, matches, names); !strings.Contains(embed.Description, "No bets yet") {
		t.Errorf("empty Description = %q", embed.Description)
	}
}

func TestOddsEmbed(t *testing.T) {
	embed := OddsEmbed([]OddsLine{
		{Type: betting.MatchScore, Odds: 0, Multiplier: 2},
		{Type: betting.MatchWinner, Odds: 2.5, Multiplier: 2},
	})
	if len(embed.Fields) != 2 {
		t.Fatalf("got %d fields", len(embed.Fields))
	}
	if embed.Fields[0].Name != "Correct score" || !strings.Contains(embed.Fields[0].Value, "default multiplier") {
		t.Errorf("field 0 = %+v", embed.Fields[0])
	}
	if !strings.Contains(embed.Fields[1].Value, "Historical odds: 2.50") {
		t.Errorf("field 1 = %+v", embed.Fields[1])
	}
}

func TestSettlementEmbed(t *testing.T) {
	won := SettlementEmbed("Arsenal to beat Chelsea", database.Settlement{Correct: true, Payout: 30, NewBalance: 120})
	if !strings.Contains(won.Title, "won") || !strings.Contains(won.Description, "30") {
		t.Errorf("won embed = %+v", won)
	}
	lost := SettlementEmbed("Arsenal to beat Chelsea", database.Settlement{NewBalance: 90})
	if !strings.Contains(lost.Title, "lost") || !strings.Contains(lost.Description, "did not happen") {
		t.Errorf("lost embed = %+v", lost)
	}
}

func TestManagerEmbedWithoutHistory(t *testing.T) {
	m := &fpl.Manager{ID: 42, Name: "Gegenpressing FC", CurrentEvent: 7}
	embed := ManagerEmbed(m, nil)
	if embed.URL != "https://fantasy.premierleague.com/entry/42/history" {
		t.Errorf("URL = %q", embed.URL)
	}
	if len(embed.Fields) != 2 {
		t.Errorf("got %d fields, want 2", len(embed.Fields))
	}
}
