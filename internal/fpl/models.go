package fpl

import (
	"strconv"
	"time"
)

// GameweekCount is the number of gameweeks in a Premier League season.
const GameweekCount = 38

// Bootstrap is the /bootstrap-static/ payload.
type Bootstrap struct {
	Events       []Event       `json:"events"`
	Teams        []Team        `json:"teams"`
	Elements     []Player      `json:"elements"`
	ElementTypes []ElementType `json:"element_types"`
}

type Event struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	DeadlineTime      string `json:"deadline_time"`
	Finished          bool   `json:"finished"`
	IsCurrent         bool   `json:"is_current"`
	IsPrevious        bool   `json:"is_previous"`
	IsNext            bool   `json:"is_next"`
	AverageEntryScore int    `json:"average_entry_score"`
	HighestScore      int    `json:"highest_score"`
}

type Team struct {
	ID        int    `json:"id"`
	Code      int    `json:"code"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	Strength  int    `json:"strength"`
	Played    int    `json:"played"`
	Win       int    `json:"win"`
	Draw      int    `json:"draw"`
	Loss      int    `json:"loss"`
	Points    int    `json:"points"`
	Position  int    `json:"position"`

	StrengthOverallHome int `json:"strength_overall_home"`
	StrengthOverallAway int `json:"strength_overall_away"`
	StrengthAttackHome  int `json:"strength_attack_home"`
	StrengthAttackAway  int `json:"strength_attack_away"`
	StrengthDefenceHome int `json:"strength_defence_home"`
	StrengthDefenceAway int `json:"strength_defence_away"`
}

// Player is an entry of bootstrap "elements". Several numeric stats arrive as strings.
type Player struct {
	ID                int    `json:"id"`
	WebName           string `json:"web_name"`
	FirstName         string `json:"first_name"`
	SecondName        string `json:"second_name"`
	Team              int    `json:"team"`
	ElementType       int    `json:"element_type"`
	NowCost           int    `json:"now_cost"`
	Form              string `json:"form"`
	TotalPoints       int    `json:"total_points"`
	PointsPerGame     string `json:"points_per_game"`
	SelectedByPercent string `json:"selected_by_percent"`
	ValueForm         string `json:"value_form"`
	ValueSeason       string `json:"value_season"`
	News              string `json:"news"`
	Status            string `json:"status"`
	Photo             string `json:"photo"`
	TransfersInEvent  int    `json:"transfers_in_event"`
	TransfersOutEvent int    `json:"transfers_out_event"`
}

func (p Player) FullName() string {
	return p.FirstName + " " + p.SecondName
}

// FormValue parses Form, returning 0 for malformed values.
func (p Player) FormValue() float64 {
	return parseFloat(p.Form)
}

// Cost is the price in millions.
func (p Player) Cost() float64 {
	return float64(p.NowCost) / 10
}

type ElementType struct {
	ID                int    `json:"id"`
	SingularName      string `json:"singular_name"`
	SingularNameShort string `json:"singular_name_short"`
	PluralName        string `json:"plural_name"`
}

// Fixture is an entry of /fixtures/. Scores are null until the match starts.
type Fixture struct {
	ID          int        `json:"id"`
	Code        int        `json:"code"`
	Event       *int       `json:"event"`
	KickoffTime *time.Time `json:"kickoff_time"`
	TeamH       int        `json:"team_h"`
	TeamA       int        `json:"team_a"`
	TeamHScore  *int       `json:"team_h_score"`
	TeamAScore  *int       `json:"team_a_score"`
	Started     *bool      `json:"started"`
	Finished    bool       `json:"finished"`
	Minutes     int        `json:"minutes"`

	FinishedProvisional bool `json:"finished_provisional"`
	TeamHDifficulty     int  `json:"team_h_difficulty"`
	TeamADifficulty     int  `json:"team_a_difficulty"`
}

// HasStarted treats a missing "started" flag as not started.
func (f Fixture) HasStarted() bool {
	return f.Started != nil && *f.Started
}

// Score returns the final score; ok is false until the fixture is finished and both scores are known.
func (f Fixture) Score() (home, away int, ok bool) {
	if !f.Finished || f.TeamHScore == nil || f.TeamAScore == nil {
		return 0, 0, false
	}
	return *f.TeamHScore, *f.TeamAScore, true
}

// Manager is the /entry/{id}/ payload.
type Manager struct {
	ID                   int    `json:"id"`
	Name                 string `json:"name"`
	PlayerFirstName      string `json:"player_first_name"`
	PlayerLastName       string `json:"player_last_name"`
	PlayerRegionName     string `json:"player_region_name"`
	SummaryOverallPoints int    `json:"summary_overall_points"`
	SummaryOverallRank   int    `json:"summary_overall_rank"`
	SummaryEventPoints   int    `json:"summary_event_points"`
	SummaryEventRank     int    `json:"summary_event_rank"`
	CurrentEvent         int    `json:"current_event"`
	LastDeadlineBank     int    `json:"last_deadline_bank"`
	LastDeadlineValue    int    `json:"last_deadline_value"`
}

// ManagerHistory is the /entry/{id}/history/ payload.
type ManagerHistory struct {
	Current []GameweekHistory `json:"current"`
	Past    []SeasonHistory   `json:"past"`
	Chips   []ChipUse         `json:"chips"`
}

type GameweekHistory struct {
	Event              int `json:"event"`
	Points             int `json:"points"`
	TotalPoints        int `json:"total_points"`
	Rank               int `json:"rank"`
	OverallRank        int `json:"overall_rank"`
	Bank               int `json:"bank"`
	Value              int `json:"value"`
	EventTransfers     int `json:"event_transfers"`
	EventTransfersCost int `json:"event_transfers_cost"`
	PointsOnBench      int `json:"points_on_bench"`
}

type SeasonHistory struct {
	SeasonName  string `json:"season_name"`
	TotalPoints int    `json:"total_points"`
	Rank        int    `json:"rank"`
}

type ChipUse struct {
	Name  string `json:"name"`
	Time  string `json:"time"`
	Event int    `json:"event"`
}

// Picks is the /entry/{id}/event/{gw}/picks/ payload.
type Picks struct {
	ActiveChip   string          `json:"active_chip"`
	EntryHistory GameweekHistory `json:"entry_history"`
	Picks        []Pick          `json:"picks"`
}

type Pick struct {
	Element       int  `json:"element"`
	Position      int  `json:"position"`
	Multiplier    int  `json:"multiplier"`
	IsCaptain     bool `json:"is_captain"`
	IsViceCaptain bool `json:"is_vice_captain"`
}

type Transfer struct {
	ElementIn      int    `json:"element_in"`
	ElementInCost  int    `json:"element_in_cost"`
	ElementOut     int    `json:"element_out"`
	ElementOutCost int    `json:"element_out_cost"`
	Entry          int    `json:"entry"`
	Event          int    `json:"event"`
	Time           string `json:"time"`
}

// PlayerSummary is the /element-summary/{id}/ payload.
type PlayerSummary struct {
	History []PlayerMatch `json:"history"`
}

type PlayerMatch struct {
	Element          int    `json:"element"`
	Fixture          int    `json:"fixture"`
	OpponentTeam     int    `json:"opponent_team"`
	TotalPoints      int    `json:"total_points"`
	WasHome          bool   `json:"was_home"`
	KickoffTime      string `json:"kickoff_time"`
	TeamHScore       *int   `json:"team_h_score"`
	TeamAScore       *int   `json:"team_a_score"`
	Round            int    `json:"round"`
	Minutes          int    `json:"minutes"`
	GoalsScored      int    `json:"goals_scored"`
	Assists          int    `json:"assists"`
	YellowCards      int    `json:"yellow_cards"`
	RedCards         int    `json:"red_cards"`
	Bonus            int    `json:"bonus"`
	Bps              int    `json:"bps"`
	Value            int    `json:"value"`
	TransfersBalance int    `json:"transfers_balance"`
	Selected         int    `json:"selected"`
	TransfersIn      int    `json:"transfers_in"`
	TransfersOut     int    `json:"transfers_out"`
}

// LiveGameweek is the /event/{gw}/live/ payload.
type LiveGameweek struct {
	Elements []LiveElement `json:"elements"`
}

type LiveElement struct {
	ID      int           `json:"id"`
	Explain []LiveExplain `json:"explain"`
}

type LiveExplain struct {
	Fixture int        `json:"fixture"`
	Stats   []LiveStat `json:"stats"`
}

type LiveStat struct {
	Identifier string `json:"identifier"`
	Points     int    `json:"points"`
	Value      int    `json:"value"`
}

// League is the /leagues-classic/{id}/standings/ payload.
type League struct {
	League struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"league"`
	Standings struct {
		Results []LeagueEntry `json:"results"`
	} `json:"standings"`
}

type LeagueEntry struct {
	Entry      int    `json:"entry"`
	EntryName  string `json:"entry_name"`
	PlayerName string `json:"player_name"`
	Rank       int    `json:"rank"`
	Total      int    `json:"total"`
	EventTotal int    `json:"event_total"`
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
