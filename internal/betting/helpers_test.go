package betting

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"go.uber.org/zap"

	"fplbot/internal/database"
	"fplbot/internal/fpl"
)

type fakeMatches struct {
	mu       sync.Mutex
	fixtures map[int]fpl.Fixture
}

func newFakeMatches(fixtures ...fpl.Fixture) *fakeMatches {
	m := &fakeMatches{fixtures: map[int]fpl.Fixture{}}
	for _, f := range fixtures {
		m.fixtures[f.ID] = f
	}
	return m
}

func (m *fakeMatches) Match(id int) (fpl.Fixture, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.fixtures[id]
	return f, ok
}

func (m *fakeMatches) set(f fpl.Fixture) {
	m.mu.Lock()
	m.fixtures[f.ID] = f
	m.mu.Unlock()
}

func upcoming(id int) fpl.Fixture {
	started := false
	return fpl.Fixture{ID: id, TeamH: 1, TeamA: 2, Started: &started}
}

func finished(id, home, away int) fpl.Fixture {
	started := true
	return fpl.Fixture{ID: id, TeamH: 1, TeamA: 2, Started: &started, Finished: true, TeamHScore: &home, TeamAScore: &away}
}

func inPlay(id int) fpl.Fixture {
	started := true
	home, away := 1, 0
	return fpl.Fixture{ID: id, TeamH: 1, TeamA: 2, Started: &started, TeamHScore: &home, TeamAScore: &away}
}

func newTestStore(t *testing.T) *database.Store {
	t.Helper()
	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "bets.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	store := database.NewStore(db, database.DefaultStartingBalance)
	t.Cleanup(func() { store.Close() })
	return store
}

// seedHistory records settled bets of one type: total bets, of which correct won.
func seedHistory(t *testing.T, store *database.Store, betType BetType, total, correct int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < total; i++ {
		id, err := store.RecordBet(ctx, "history", 1, 2, "999,0", string(betType))
		if err != nil {
			t.Fatalf("seed bet: %v", err)
		}
		if err := store.MarkBetSettled(ctx, id, i < correct); err != nil {
			t.Fatalf("seed settle: %v", err)
		}
	}
}
