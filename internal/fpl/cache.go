package fpl

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gosimple/slug"
)

var ErrNotLoaded = errors.New("fpl data not loaded yet")

// Source is the subset of Client the cache refreshes from.
type Source interface {
	Bootstrap(ctx context.Context) (*Bootstrap, error)
	Fixtures(ctx context.Context) ([]Fixture, error)
}

// Cache holds the latest snapshot of FPL bootstrap data and fixtures. It is
// created empty, filled by Refresh and read concurrently by commands and the
// bet resolver. A failed refresh keeps the previous snapshot.
type Cache struct {
	source Source

	mu          sync.RWMutex
	bootstrap   *Bootstrap
	fixtures    map[int]Fixture
	fixtureList []Fixture
	gameweek    int
	refreshedAt time.Time
}

func NewCache(source Source) *Cache {
	return &Cache{source: source, fixtures: map[int]Fixture{}}
}

// Refresh fetches bootstrap and fixtures and swaps them in together.
func (c *Cache) Refresh(ctx context.Context) error {
	bootstrap, err := c.source.Bootstrap(ctx)
	if err != nil {
		return err
	}
	fixtures, err := c.source.Fixtures(ctx)
	if err != nil {
		return err
	}

	byID := make(map[int]Fixture, len(fixtures))
	for _, f := range fixtures {
		byID[f.ID] = f
	}

	c.mu.Lock()
	c.bootstrap = bootstrap
	c.fixtures = byID
	c.fixtureList = fixtures
	c.gameweek = currentGameweek(bootstrap.Events)
	c.refreshedAt = time.Now()
	c.mu.Unlock()
	return nil
}

// Loaded reports whether at least one refresh succeeded.
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bootstrap != nil
}

func (c *Cache) RefreshedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refreshedAt
}

// currentGameweek picks the current event, then the previous one, else the last gameweek.
func currentGameweek(events []Event) int {
	for _, e := range events {
		if e.IsCurrent {
			return e.ID
		}
	}
	for _, e := range events {
		if e.IsPrevious {
			return e.ID
		}
	}
	return GameweekCount
}

func (c *Cache) Gameweek() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gameweek
}

// Match looks a fixture up by id in the current snapshot.
func (c *Cache) Match(id int) (Fixture, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.fixtures[id]
	return f, ok
}

// UpcomingFixtures returns up to n fixtures that have not kicked off, soonest first.
func (c *Cache) UpcomingFixtures(n int) []Fixture {
	c.mu.RLock()
	var upcoming []Fixture
	for _, f := range c.fixtureList {
		if !f.HasStarted() && !f.Finished && f.KickoffTime != nil {
			upcoming = append(upcoming, f)
		}
	}
	c.mu.RUnlock()

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].KickoffTime.Before(*upcoming[j].KickoffTime)
	})
	if n > 0 && len(upcoming) > n {
		upcoming = upcoming[:n]
	}
	return upcoming
}

// TeamFixtures splits a team's fixtures into started (results) and upcoming.
func (c *Cache) TeamFixtures(teamID int) (results, upcoming []Fixture) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, f := range c.fixtureList {
		if f.TeamH != teamID && f.TeamA != teamID {
			continue
		}
		if f.HasStarted() || f.Finished {
			results = append(results, f)
		} else {
			upcoming = append(upcoming, f)
		}
	}
	return results, upcoming
}

func (c *Cache) Teams() []Team {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.bootstrap == nil {
		return nil
	}
	return append([]Team(nil), c.bootstrap.Teams...)
}

func (c *Cache) TeamNames() []string {
	teams := c.Teams()
	names := make([]string, len(teams))
	for i, t := range teams {
		names[i] = t.Name
	}
	return names
}

// Team looks a team up by its FPL id (1-based).
func (c *Cache) Team(id int) (Team, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.bootstrap == nil {
		return Team{}, false
	}
	for _, t := range c.bootstrap.Teams {
		if t.ID == id {
			return t, true
		}
	}
	return Team{}, false
}

// TeamName returns the team's name, or a placeholder when unknown.
func (c *Cache) TeamName(id int) string {
	if t, ok := c.Team(id); ok {
		return t.Name
	}
	return "Unknown team"
}

// TeamByName matches full or short names ignoring case, accents and punctuation.
func (c *Cache) TeamByName(name string) (Team, bool) {
	want := slug.Make(name)
	if want == "" {
		return Team{}, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.bootstrap == nil {
		return Team{}, false
	}
	for _, t := range c.bootstrap.Teams {
		if slug.Make(t.Name) == want || slug.Make(t.ShortName) == want {
			return t, true
		}
	}
	return Team{}, false
}

func (c *Cache) Player(id int) (Player, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.bootstrap == nil {
		return Player{}, false
	}
	for _, p := range c.bootstrap.Elements {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// Position returns the singular position name ("Midfielder") of a player.
func (c *Cache) Position(p Player) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.bootstrap == nil {
		return ""
	}
	for _, et := range c.bootstrap.ElementTypes {
		if et.ID == p.ElementType {
			return et.SingularName
		}
	}
	return ""
}

// SearchPlayers ranks players by how well their web or full name matches the
// query: exact web name, then prefix, then substring of web name, then
// substring of full name. Ties go to the player with more points.
func (c *Cache) SearchPlayers(query string, limit int) []Player {
	q := slug.Make(query)
	if q == "" {
		return nil
	}

	type hit struct {
		player Player
		rank   int
	}

	c.mu.RLock()
	var hits []hit
	if c.bootstrap != nil {
		for _, p := range c.bootstrap.Elements {
			web := slug.Make(p.WebName)
			switch {
			case web == q:
				hits = append(hits, hit{p, 0})
			case strings.HasPrefix(web, q):
				hits = append(hits, hit{p, 1})
			case strings.Contains(web, q):
				hits = append(hits, hit{p, 2})
			case strings.Contains(slug.Make(p.FullName()), q):
				hits = append(hits, hit{p, 3})
			}
		}
	}
	c.mu.RUnlock()

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].rank != hits[j].rank {
			return hits[i].rank < hits[j].rank
		}
		return hits[i].player.TotalPoints > hits[j].player.TotalPoints
	})

	if len(hits) == 0 {
		return nil
	}
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	players := make([]Player, len(hits))
	for i, h := range hits {
		players[i] = h.player
	}
	return players
}

// TeamPlayers returns a team's squad sorted by form, best first.
func (c *Cache) TeamPlayers(teamID int) []Player {
	c.mu.RLock()
	var squad []Player
	if c.bootstrap != nil {
		for _, p := range c.bootstrap.Elements {
			if p.Team == teamID {
				squad = append(squad, p)
			}
		}
	}
	c.mu.RUnlock()

	sort.SliceStable(squad, func(i, j int) bool {
		return squad[i].FormValue() > squad[j].FormValue()
	})
	return squad
}

// TeamScore summarises a squad: total form, total points and the geometric
// mean of season points and points-if-every-gameweek-matched-current-form.
type TeamScore struct {
	TotalForm   float64
	TotalPoints int
	Score       float64
}

func (c *Cache) TeamScore(teamID int) TeamScore {
	var ts TeamScore
	for _, p := range c.TeamPlayers(teamID) {
		ts.TotalForm += p.FormValue()
		ts.TotalPoints += p.TotalPoints
	}
	ts.Score = math.Sqrt(float64(ts.TotalPoints) * ts.TotalForm * float64(c.Gameweek()))
	return ts
}
