package betting

import (
	"context"
	"errors"
	"sync"
	"testing"

	"fplbot/internal/database"
)

type recordingNotifier struct {
	mu          sync.Mutex
	settlements []database.Settlement
}

func (n *recordingNotifier) BetSettled(_ context.Context, _ database.Bet, s database.Settlement) {
	n.mu.Lock()
	n.settlements = append(n.settlements, s)
	n.mu.Unlock()
}

func newTestService(t *testing.T, matches *fakeMatches) (*Service, *database.Store, *recordingNotifier) {
	t.Helper()
	store := newTestStore(t)
	notifier := &recordingNotifier{}
	svc := NewService(store, matches, nil, Options{FallbackMultiplier: 2, MinStake: 1, Notifier: notifier})
	return svc, store, notifier
}

func TestPlaceBet(t *testing.T) {
	svc, store, _ := newTestService(t, newFakeMatches(upcoming(1)))
	ctx := context.Background()

	p, err := svc.PlaceBet(ctx, "u1", MatchScore, "1,2,1", 10)
	if err != nil {
		t.Fatalf("place bet: %v", err)
	}
	if p.Multiplier != 2 || p.Potential != 20 || p.Balance != 90 {
		t.Errorf("unexpected placement %+v", p)
	}

	balance, _ := store.GetBalance(ctx, "u1")
	if balance != 90 {
		t.Errorf("balance = %d, want 90", balance)
	}

	bet, err := store.GetBet(ctx, p.BetID)
	if err != nil {
		t.Fatalf("get bet: %v", err)
	}
	if bet.Finished || bet.CoinsBet != 10 || bet.PotentialCoins != 20 || bet.Condition != "1,2,1" || bet.Type != "match_score" {
		t.Errorf("unexpected stored bet %+v", bet)
	}
}

func TestPlaceBetUsesHistoricalOdds(t *testing.T) {
	svc, store, _ := newTestService(t, newFakeMatches(upcoming(1)))
	seedHistory(t, store, MatchScore, 10, 1)

	p, err := svc.PlaceBet(context.Background(), "u1", MatchScore, "1,0,0", 5)
	if err != nil {
		t.Fatalf("place bet: %v", err)
	}
	if p.Multiplier != 10 || p.Potential != 50 {
		t.Errorf("expected 10x for 50, got %+v", p)
	}
}

func TestPlaceBetRejections(t *testing.T) {
	svc, store, _ := newTestService(t, newFakeMatches(upcoming(1), inPlay(2), finished(3, 1, 0)))
	ctx := context.Background()

	tests := []struct {
		name    string
		betType BetType
		cond    string
		stake   int
		wantErr error
	}{
		{"zero stake", MatchWinner, "1,0", 0, ErrInvalidStake},
		{"negative stake", MatchWinner, "1,0", -5, ErrInvalidStake},
		{"malformed condition", MatchScore, "1,a,0", 5, ErrInvalidCondition},
		{"outcome out of range", MatchWinner, "1,5", 5, ErrInvalidCondition},
		{"negative score", MatchScore, "1,-1,0", 5, ErrInvalidCondition},
		{"unknown bet type", "corners", "1,0", 5, ErrUnknownBetType},
		{"unknown match", MatchWinner, "99,0", 5, ErrUnknownMatch},
		{"match in play", MatchWinner, "2,0", 5, ErrMatchStarted},
		{"match finished", MatchWinner, "3,0", 5, ErrMatchStarted},
		{"stake over balance", MatchWinner, "1,0", 101, ErrInsufficientFunds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.PlaceBet(ctx, "u1", tt.betType, tt.cond, tt.stake)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	balance, _ := store.GetBalance(ctx, "u1")
	if balance != database.DefaultStartingBalance {
		t.Errorf("rejected bets changed balance to %d", balance)
	}
	bets, _ := store.ListBetsByUser(ctx, "u1", 0)
	if len(bets) != 0 {
		t.Errorf("rejected bets were stored: %+v", bets)
	}
}

func TestPlaceBetWholeBalance(t *testing.T) {
	svc, _, _ := newTestService(t, newFakeMatches(upcoming(1)))

	p, err := svc.PlaceBet(context.Background(), "u1", MatchWinner, "1,1", 100)
	if err != nil {
		t.Fatalf("stake equal to balance should be accepted: %v", err)
	}
	if p.Balance != 0 {
		t.Errorf("balance = %d, want 0", p.Balance)
	}
}

func TestConcurrentPlacementsNeverOverdraw(t *testing.T) {
	svc, store, _ := newTestService(t, newFakeMatches(upcoming(1)))
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.PlaceBet(ctx, "u1", MatchWinner, "1,0", 10); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			} else if !errors.Is(err, ErrInsufficientFunds) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if accepted != 10 {
		t.Errorf("accepted %d bets of 10 coins on a 100 balance", accepted)
	}
	balance, _ := store.GetBalance(ctx, "u1")
	if balance != 0 {
		t.Errorf("balance = %d, want 0", balance)
	}
}

func TestSettleDueBets(t *testing.T) {
	matches := newFakeMatches(upcoming(1), upcoming(2), upcoming(3))
	svc, store, notifier := newTestService(t, matches)
	ctx := context.Background()

	win, err := svc.PlaceBet(ctx, "winner", MatchScore, "1,2,1", 10)
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	lose, err := svc.PlaceBet(ctx, "loser", MatchWinner, "2,2", 10)
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	pending, err := svc.PlaceBet(ctx, "waiting", MatchWinner, "3,1", 10)
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	matches.set(finished(1, 2, 1))
	matches.set(finished(2, 3, 0))
	matches.set(inPlay(3))

	report, err := svc.SettleDueBets(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if report.ID == "" {
		t.Error("sweep has no id")
	}
	if report.Checked != 3 || report.Won != 1 || report.Lost != 1 || report.Pending != 1 || report.PaidOut != 20 {
		t.Errorf("unexpected report %+v", report)
	}

	assertBalance(t, store, "winner", 110)
	assertBalance(t, store, "loser", 90)
	assertBalance(t, store, "waiting", 90)

	if b, _ := store.GetBet(ctx, win.BetID); !b.Won() {
		t.Errorf("winning bet stored as %+v", b)
	}
	if b, _ := store.GetBet(ctx, lose.BetID); !b.Finished || b.Won() {
		t.Errorf("losing bet stored as %+v", b)
	}
	if b, _ := store.GetBet(ctx, pending.BetID); b.Finished {
		t.Errorf("pending bet was settled: %+v", b)
	}

	if len(notifier.settlements) != 2 {
		t.Fatalf("notified %d settlements, want 2", len(notifier.settlements))
	}

	// a second sweep pays nothing twice
	again, err := svc.SettleDueBets(ctx)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if again.Checked != 1 || again.Settled() != 0 {
		t.Errorf("unexpected second report %+v", again)
	}
	assertBalance(t, store, "winner", 110)

	// the pending bet settles once its match ends
	matches.set(finished(3, 1, 1))
	if _, err := svc.SettleDueBets(ctx); err != nil {
		t.Fatalf("third sweep: %v", err)
	}
	assertBalance(t, store, "waiting", 110)
}

func TestSettleDueBetsClosesImpossiblePredictions(t *testing.T) {
	svc, store, _ := newTestService(t, newFakeMatches(finished(1, 3, 1)))
	ctx := context.Background()

	// written before placement validated ranges
	winnerID, err := store.RecordBet(ctx, "u1", 10, 20, "1,5", string(MatchWinner))
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	scoreID, err := store.RecordBet(ctx, "u1", 10, 20, "1,-1,0", string(MatchScore))
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	report, err := svc.SettleDueBets(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if report.Lost != 2 || report.Pending != 0 {
		t.Errorf("unexpected report %+v", report)
	}
	for _, id := range []int64{winnerID, scoreID} {
		if b, _ := store.GetBet(ctx, id); !b.Finished || b.Won() {
			t.Errorf("bet %d stored as %+v, want settled lost", id, b)
		}
	}
	assertBalance(t, store, "u1", 80)
}

func TestBetRoundTrip(t *testing.T) {
	matches := newFakeMatches(upcoming(101))
	svc, store, notifier := newTestService(t, matches)
	ctx := context.Background()

	if _, err := store.AdjustBalance(ctx, "u1", -90); err != nil {
		t.Fatalf("adjust: %v", err)
	}
	seedHistory(t, store, MatchWinner, 3, 1)

	p, err := svc.PlaceBet(ctx, "u1", MatchWinner, "101,0", 10)
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if p.Multiplier != 3 || p.Potential != 30 || p.Balance != 0 {
		t.Fatalf("unexpected placement %+v", p)
	}
	if _, err := svc.PlaceBet(ctx, "u1", MatchWinner, "101,0", 1); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("bet on empty balance: got %v", err)
	}

	matches.set(finished(101, 2, 1))
	report, err := svc.SettleDueBets(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if report.Won != 1 || report.PaidOut != 30 {
		t.Errorf("unexpected report %+v", report)
	}
	assertBalance(t, store, "u1", 30)

	if len(notifier.settlements) != 1 || notifier.settlements[0].NewBalance != 30 {
		t.Errorf("unexpected notifications %+v", notifier.settlements)
	}
}

func TestConcurrentSweepsNeverDoubleCredit(t *testing.T) {
	matches := newFakeMatches(upcoming(1))
	svc, store, _ := newTestService(t, matches)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := svc.PlaceBet(ctx, "u1", MatchWinner, "1,0", 10); err != nil {
			t.Fatalf("place: %v", err)
		}
	}
	matches.set(finished(1, 1, 0))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.SettleDueBets(ctx); err != nil && !errors.Is(err, ErrSweepInProgress) {
				t.Errorf("sweep: %v", err)
			}
		}()
	}
	wg.Wait()
	if _, err := svc.SettleDueBets(ctx); err != nil {
		t.Fatalf("final sweep: %v", err)
	}

	// 50 staked, 5 bets at 2x pay 100
	assertBalance(t, store, "u1", 150)
}

func TestSettlementFeedsOdds(t *testing.T) {
	matches := newFakeMatches(upcoming(1))
	svc, _, _ := newTestService(t, matches)
	ctx := context.Background()

	for _, cond := range []string{"1,0", "1,1", "1,2"} {
		if _, err := svc.PlaceBet(ctx, "u1", MatchWinner, cond, 1); err != nil {
			t.Fatalf("place %s: %v", cond, err)
		}
	}
	matches.set(finished(1, 0, 0))
	if _, err := svc.SettleDueBets(ctx); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	odds, err := svc.Odds(ctx, MatchWinner, false)
	if err != nil {
		t.Fatalf("odds: %v", err)
	}
	if odds != 3 {
		t.Errorf("odds = %v, want 3", odds)
	}
	if m, _ := svc.OfferedMultiplier(ctx, MatchScore); m != 2 {
		t.Errorf("match_score with no history offered %d, want fallback 2", m)
	}
}

func TestSettleDueBetsSingleFlight(t *testing.T) {
	svc, _, _ := newTestService(t, newFakeMatches())

	svc.sweepMu.Lock()
	_, err := svc.SettleDueBets(context.Background())
	svc.sweepMu.Unlock()

	if !errors.Is(err, ErrSweepInProgress) {
		t.Fatalf("expected ErrSweepInProgress, got %v", err)
	}
	if _, err := svc.SettleDueBets(context.Background()); err != nil {
		t.Fatalf("sweep after release: %v", err)
	}
}

func assertBalance(t *testing.T, store *database.Store, userID string, want int) {
	t.Helper()
	got, err := store.GetBalance(context.Background(), userID)
	if err != nil {
		t.Fatalf("balance %s: %v", userID, err)
	}
	if got != want {
		t.Errorf("balance of %s = %d, want %d", userID, got, want)
	}
}

func TestNotifiersFanOut(t *testing.T) {
	first, second := &recordingNotifier{}, &recordingNotifier{}
	n := Notifiers{first, second}

	n.BetSettled(context.Background(), database.Bet{ID: 1}, database.Settlement{BetID: 1, Payout: 20})

	for i, rec := range []*recordingNotifier{first, second} {
		if len(rec.settlements) != 1 || rec.settlements[0].Payout != 20 {
			t.Errorf("notifier %d got %+v", i, rec.settlements)
		}
	}
}
