package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const betColumns = "bet_id, user_id, coins_bet, potential_coins, condition, bet_type, finished, was_correct"

// RecordBet debits the stake and stores a new unfinished bet in one transaction.
// Unlike AdjustBalance it does not clamp: a stake above the balance read inside
// the transaction returns ErrInsufficientFunds and records nothing, so a bet is
// never stored for coins the user did not have.
func (s *Store) RecordBet(ctx context.Context, userID string, coinsBet, potentialCoins int, condition, betType string) (int64, error) {
	if coinsBet <= 0 {
		return 0, ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var betID int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		balance, err := s.ensureAccount(ctx, tx, userID)
		if err != nil {
			return err
		}
		if balance < coinsBet {
			return fmt.Errorf("%w: balance is %d", ErrInsufficientFunds, balance)
		}
		if _, err := s.applyDelta(ctx, tx, userID, -coinsBet); err != nil {
			return err
		}

		err = tx.QueryRowContext(ctx, s.q(`INSERT INTO bets
			(user_id, coins_bet, potential_coins, condition, bet_type, finished)
			VALUES (?, ?, ?, ?, ?, 0) RETURNING bet_id`),
			userID, coinsBet, potentialCoins, condition, betType).Scan(&betID)
		if err != nil {
			return fmt.Errorf("insert bet: %w", err)
		}
		return nil
	})
	return betID, err
}

// MarkBetSettled flags a bet as finished with its correctness. It does not
// touch balances; SettleBet is the path that also pays out.
func (s *Store) MarkBetSettled(ctx context.Context, betID int64, wasCorrect bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(ctx,
		s.q("UPDATE bets SET finished = 1, was_correct = ? WHERE bet_id = ?"),
		boolToInt(wasCorrect), betID)
	if err != nil {
		return fmt.Errorf("mark bet %d: %w", betID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrBetNotFound
	}
	return nil
}

// SettleBet finishes an open bet and, when correct, credits its potential
// payout in the same transaction. Settling an already finished bet returns
// ErrBetAlreadySettled and changes nothing.
func (s *Store) SettleBet(ctx context.Context, betID int64, wasCorrect bool) (Settlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := Settlement{BetID: betID, Correct: wasCorrect}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var finished bool
		var potential int
		err := tx.QueryRowContext(ctx,
			s.q("SELECT user_id, potential_coins, finished FROM bets WHERE bet_id = ?"+s.db.ForUpdate()),
			betID).Scan(&result.UserID, &potential, &finished)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrBetNotFound
		}
		if err != nil {
			return fmt.Errorf("read bet %d: %w", betID, err)
		}
		if finished {
			return ErrBetAlreadySettled
		}

		res, err := tx.ExecContext(ctx,
			s.q("UPDATE bets SET finished = 1, was_correct = ? WHERE bet_id = ? AND finished = 0"),
			boolToInt(wasCorrect), betID)
		if err != nil {
			return fmt.Errorf("settle bet %d: %w", betID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrBetAlreadySettled
		}

		if !wasCorrect {
			result.NewBalance, err = s.ensureAccount(ctx, tx, result.UserID)
			return err
		}

		result.Payout = potential
		result.NewBalance, err = s.applyDelta(ctx, tx, result.UserID, potential)
		return err
	})
	if err != nil {
		return Settlement{}, err
	}
	return result, nil
}

// GetBet returns a single bet by id.
func (s *Store) GetBet(ctx context.Context, betID int64) (Bet, error) {
	row := s.db.QueryRow(ctx, s.q("SELECT "+betColumns+" FROM bets WHERE bet_id = ?"), betID)

	var b Bet
	err := row.Scan(&b.ID, &b.UserID, &b.CoinsBet, &b.PotentialCoins, &b.Condition, &b.Type, &b.Finished, &b.WasCorrect)
	if errors.Is(err, sql.ErrNoRows) {
		return Bet{}, ErrBetNotFound
	}
	if err != nil {
		return Bet{}, fmt.Errorf("get bet %d: %w", betID, err)
	}
	return b, nil
}

// ListUnfinishedBets returns every open bet, oldest first.
func (s *Store) ListUnfinishedBets(ctx context.Context) ([]Bet, error) {
	return s.listBets(ctx, "SELECT "+betColumns+" FROM bets WHERE finished = 0 ORDER BY bet_id")
}

// ListFinishedBets returns the settled bets of one type.
func (s *Store) ListFinishedBets(ctx context.Context, betType string) ([]Bet, error) {
	return s.listBets(ctx, "SELECT "+betColumns+" FROM bets WHERE finished = 1 AND bet_type = ? ORDER BY bet_id", betType)
}

// ListBetsByUser returns a user's most recent bets, newest first.
func (s *Store) ListBetsByUser(ctx context.Context, userID string, limit int) ([]Bet, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.listBets(ctx, "SELECT "+betColumns+" FROM bets WHERE user_id = ? ORDER BY bet_id DESC LIMIT ?", userID, limit)
}

func (s *Store) listBets(ctx context.Context, query string, args ...interface{}) ([]Bet, error) {
	rows, err := s.db.Query(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list bets: %w", err)
	}
	defer rows.Close()

	var bets []Bet
	for rows.Next() {
		var b Bet
		if err := rows.Scan(&b.ID, &b.UserID, &b.CoinsBet, &b.PotentialCoins, &b.Condition, &b.Type, &b.Finished, &b.WasCorrect); err != nil {
			return nil, fmt.Errorf("scan bet: %w", err)
		}
		bets = append(bets, b)
	}
	return bets, rows.Err()
}
