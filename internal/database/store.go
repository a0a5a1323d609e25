package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

const DefaultStartingBalance = 100

// Store owns all durable bot state: balances, manager links and bets.
//
// Every balance-mutating operation takes mu and runs in a single SQL
// transaction, so a lazily created account, a stake debit and its bet row, or
// a settlement and its payout are never observed half applied.
type Store struct {
	db              Database
	startingBalance int

	mu sync.Mutex
}

func NewStore(db Database, startingBalance int) *Store {
	if startingBalance < 0 {
		startingBalance = 0
	}
	return &Store{db: db, startingBalance: startingBalance}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.GetDB().PingContext(ctx)
}

// StartingBalance is the balance given to accounts created on first lookup.
func (s *Store) StartingBalance() int {
	return s.startingBalance
}

func (s *Store) q(query string) string {
	return s.db.Rebind(query)
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// ensureAccount creates the account with the starting balance if needed and
// returns its locked current balance.
func (s *Store) ensureAccount(ctx context.Context, tx *sql.Tx, userID string) (int, error) {
	_, err := tx.ExecContext(ctx,
		s.q("INSERT INTO accounts (user_id, balance) VALUES (?, ?) ON CONFLICT(user_id) DO NOTHING"),
		userID, s.startingBalance)
	if err != nil {
		return 0, fmt.Errorf("create account %s: %w", userID, err)
	}

	var balance int
	err = tx.QueryRowContext(ctx,
		s.q("SELECT balance FROM accounts WHERE user_id = ?"+s.db.ForUpdate()), userID).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("read balance %s: %w", userID, err)
	}
	return balance, nil
}

// applyDelta adds delta to the account, flooring the result at zero.
func (s *Store) applyDelta(ctx context.Context, tx *sql.Tx, userID string, delta int) (int, error) {
	balance, err := s.ensureAccount(ctx, tx, userID)
	if err != nil {
		return 0, err
	}

	newBalance := balance + delta
	if newBalance < 0 {
		newBalance = 0
	}
	if newBalance == balance {
		return balance, nil
	}

	if _, err := tx.ExecContext(ctx,
		s.q("UPDATE accounts SET balance = ? WHERE user_id = ?"), newBalance, userID); err != nil {
		return 0, fmt.Errorf("update balance %s: %w", userID, err)
	}
	return newBalance, nil
}

// GetBalance returns the user's balance, opening the account on first use.
func (s *Store) GetBalance(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var balance int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		balance, err = s.ensureAccount(ctx, tx, userID)
		return err
	})
	return balance, err
}

// AdjustBalance applies a signed delta and returns the new balance. Debits
// larger than the balance leave it at zero.
func (s *Store) AdjustBalance(ctx context.Context, userID string, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var balance int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		balance, err = s.applyDelta(ctx, tx, userID, delta)
		return err
	})
	return balance, err
}
