package betting

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fplbot/internal/database"
	"fplbot/internal/metrics"
)

var (
	ErrInvalidStake      = errors.New("stake must be a positive whole number")
	ErrInsufficientFunds = database.ErrInsufficientFunds
	ErrUnknownMatch      = errors.New("unknown match")
	ErrMatchStarted      = errors.New("match has already started")
	ErrSweepInProgress   = errors.New("settlement sweep already running")
)

// DefaultFallbackMultiplier is offered while a bet type has no winning history.
const DefaultFallbackMultiplier = 2

// Ledger is the durable state the service needs. *database.Store satisfies it.
type Ledger interface {
	BetHistory
	GetBalance(ctx context.Context, userID string) (int, error)
	RecordBet(ctx context.Context, userID string, coinsBet, potentialCoins int, condition, betType string) (int64, error)
	SettleBet(ctx context.Context, betID int64, wasCorrect bool) (database.Settlement, error)
	ListUnfinishedBets(ctx context.Context) ([]database.Bet, error)
}

// Notifier is told about every settled bet. Implementations must not block.
type Notifier interface {
	BetSettled(ctx context.Context, bet database.Bet, settlement database.Settlement)
}

// Notifiers fans each settlement out to every notifier in order.
type Notifiers []Notifier

func (n Notifiers) BetSettled(ctx context.Context, bet database.Bet, settlement database.Settlement) {
	for _, notifier := range n {
		notifier.BetSettled(ctx, bet, settlement)
	}
}

type Options struct {
	// FallbackMultiplier replaces a zero odds value at placement.
	FallbackMultiplier int
	// MinStake is the smallest accepted stake.
	MinStake int
	Notifier Notifier
}

// Service places and settles bets on top of the ledger, the resolver and the odds engine.
type Service struct {
	ledger   Ledger
	matches  MatchSource
	resolver *Resolver
	odds     *OddsEngine
	log      *zap.Logger
	opts     Options

	sweepMu sync.Mutex
}

func NewService(ledger Ledger, matches MatchSource, log *zap.Logger, opts Options) *Service {
	if opts.FallbackMultiplier < MinOdds {
		opts.FallbackMultiplier = DefaultFallbackMultiplier
	}
	if opts.MinStake < 1 {
		opts.MinStake = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		ledger:   ledger,
		matches:  matches,
		resolver: NewResolver(matches),
		odds:     NewOddsEngine(ledger),
		log:      log,
		opts:     opts,
	}
}

// Balance returns the user's balance, opening the account on first use.
func (s *Service) Balance(ctx context.Context, userID string) (int, error) {
	return s.ledger.GetBalance(ctx, userID)
}

// Odds exposes the raw odds engine value, 0 meaning no usable history.
func (s *Service) Odds(ctx context.Context, betType BetType, round bool) (float64, error) {
	return s.odds.Odds(ctx, betType, round)
}

// OfferedMultiplier is the integer multiplier a new bet of this type would get.
func (s *Service) OfferedMultiplier(ctx context.Context, betType BetType) (int, error) {
	odd, err := s.odds.Odds(ctx, betType, true)
	if err != nil {
		return 0, err
	}
	if odd == 0 {
		return s.opts.FallbackMultiplier, nil
	}
	return int(math.Round(odd)), nil
}

// Placement is what the user gets back for an accepted bet.
type Placement struct {
	BetID      int64
	Prediction Prediction
	Stake      int
	Multiplier int
	Potential  int
	Balance    int
}

// PlaceBet validates a bet, prices it and records it with the stake debited.
// Bets on unknown matches or matches that have kicked off are refused.
func (s *Service) PlaceBet(ctx context.Context, userID string, betType BetType, condition string, stake int) (Placement, error) {
	p, err := s.placeBet(ctx, userID, betType, condition, stake)
	if err != nil {
		metrics.BetsRejected.WithLabelValues(rejectReason(err)).Inc()
		return Placement{}, err
	}

	metrics.BetsPlaced.WithLabelValues(string(betType)).Inc()
	metrics.CoinsWagered.Add(float64(stake))
	s.log.Info("bet placed",
		zap.Int64("bet_id", p.BetID),
		zap.String("user_id", userID),
		zap.String("bet_type", string(betType)),
		zap.String("condition", p.Prediction.Condition()),
		zap.Int("stake", stake),
		zap.Int("potential", p.Potential),
	)
	return p, nil
}

func (s *Service) placeBet(ctx context.Context, userID string, betType BetType, condition string, stake int) (Placement, error) {
	if stake < s.opts.MinStake || stake <= 0 {
		return Placement{}, fmt.Errorf("%w: minimum is %d", ErrInvalidStake, s.opts.MinStake)
	}

	prediction, err := ParseCondition(betType, condition)
	if err != nil {
		return Placement{}, err
	}

	fixture, ok := s.matches.Match(prediction.MatchID())
	if !ok {
		return Placement{}, fmt.Errorf("%w: %d", ErrUnknownMatch, prediction.MatchID())
	}
	if fixture.HasStarted() || fixture.Finished {
		return Placement{}, fmt.Errorf("%w: %d", ErrMatchStarted, prediction.MatchID())
	}

	balance, err := s.ledger.GetBalance(ctx, userID)
	if err != nil {
		return Placement{}, err
	}
	if stake > balance {
		return Placement{}, fmt.Errorf("%w: balance is %d", ErrInsufficientFunds, balance)
	}

	multiplier, err := s.OfferedMultiplier(ctx, betType)
	if err != nil {
		return Placement{}, err
	}
	potential := stake * multiplier

	betID, err := s.ledger.RecordBet(ctx, userID, stake, potential, prediction.Condition(), string(betType))
	if err != nil {
		return Placement{}, err
	}

	return Placement{
		BetID:      betID,
		Prediction: prediction,
		Stake:      stake,
		Multiplier: multiplier,
		Potential:  potential,
		Balance:    balance - stake,
	}, nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidStake):
		return "stake"
	case errors.Is(err, ErrInvalidCondition), errors.Is(err, ErrUnknownBetType):
		return "condition"
	case errors.Is(err, ErrUnknownMatch):
		return "unknown_match"
	case errors.Is(err, ErrMatchStarted):
		return "started"
	case errors.Is(err, ErrInsufficientFunds):
		return "funds"
	default:
		return "error"
	}
}

// SweepReport summarises one SettleDueBets run.
type SweepReport struct {
	ID       string
	Checked  int
	Won      int
	Lost     int
	Pending  int
	Failed   int
	PaidOut  int
	Duration time.Duration
}

func (r SweepReport) Settled() int { return r.Won + r.Lost }

// SettleDueBets resolves every unfinished bet and settles those whose match
// has a final score. Only one sweep runs at a time; an overlapping call
// returns ErrSweepInProgress. A bet that fails to settle is logged and left
// for the next sweep.
func (s *Service) SettleDueBets(ctx context.Context) (SweepReport, error) {
	if !s.sweepMu.TryLock() {
		return SweepReport{}, ErrSweepInProgress
	}
	defer s.sweepMu.Unlock()

	report := SweepReport{ID: uuid.NewString()}
	start := time.Now()
	log := s.log.With(zap.String("sweep_id", report.ID))

	bets, err := s.ledger.ListUnfinishedBets(ctx)
	if err != nil {
		return report, fmt.Errorf("list unfinished bets: %w", err)
	}
	report.Checked = len(bets)

	for _, bet := range bets {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		result := s.resolver.Resolve(BetType(bet.Type), bet.Condition)
		if result == Undeterminable {
			report.Pending++
			continue
		}

		settlement, err := s.ledger.SettleBet(ctx, bet.ID, result == Correct)
		if errors.Is(err, database.ErrBetAlreadySettled) {
			continue
		}
		if err != nil {
			report.Failed++
			log.Error("failed to settle bet", zap.Int64("bet_id", bet.ID), zap.Error(err))
			continue
		}

		metrics.BetsSettled.WithLabelValues(bet.Type, result.String()).Inc()
		if settlement.Correct {
			report.Won++
			report.PaidOut += settlement.Payout
			metrics.CoinsPaidOut.Add(float64(settlement.Payout))
		} else {
			report.Lost++
		}

		log.Info("bet settled",
			zap.Int64("bet_id", bet.ID),
			zap.String("user_id", bet.UserID),
			zap.String("result", result.String()),
			zap.Int("payout", settlement.Payout),
		)

		if s.opts.Notifier != nil {
			s.opts.Notifier.BetSettled(ctx, bet, settlement)
		}
	}

	report.Duration = time.Since(start)
	metrics.SweepDuration.Observe(report.Duration.Seconds())
	metrics.OpenBets.Set(float64(report.Pending + report.Failed))

	if report.Settled() > 0 || report.Failed > 0 {
		log.Info("sweep finished",
			zap.Int("checked", report.Checked),
			zap.Int("won", report.Won),
			zap.Int("lost", report.Lost),
			zap.Int("pending", report.Pending),
			zap.Int("failed", report.Failed),
			zap.Int("paid_out", report.PaidOut),
			zap.Duration("duration", report.Duration),
		)
	}
	return report, nil
}
