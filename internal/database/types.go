package database

import (
	"context"
	"database/sql"
	"errors"
)

// Database abstracts the SQL engine behind the ledger (SQLite or PostgreSQL).
type Database interface {
	// Connection
	Open() error
	Close() error
	Ping() error
	GetDB() *sql.DB
	CreateTables() error

	Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row
	Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	Begin(ctx context.Context) (*sql.Tx, error)

	// Placeholder returns the driver placeholder (? for SQLite, $N for PostgreSQL)
	Placeholder(index int) string

	// Rebind rewrites a query written with ? placeholders for the driver
	Rebind(query string) string

	// ForUpdate is the row lock suffix for SELECTs inside a transaction ("" when the
	// engine locks the whole database on write)
	ForUpdate() string

	// UpsertSyntax returns the driver's upsert statement and its arguments
	UpsertSyntax(table string, conflictCols []string, updateCols []string, values []interface{}) (string, []interface{})
}

// Account is a user's play-money wallet.
type Account struct {
	UserID  string
	Balance int
}

// ManagerLink maps a Discord user to their FPL manager (entry) id.
type ManagerLink struct {
	UserID    string
	ManagerID int
}

// Bet is one row of the bets table. WasCorrect is only meaningful once Finished is set.
type Bet struct {
	ID             int64
	UserID         string
	CoinsBet       int
	PotentialCoins int
	Condition      string
	Type           string
	Finished       bool
	WasCorrect     sql.NullBool
}

// Won reports whether the bet has settled as correct.
func (b Bet) Won() bool {
	return b.Finished && b.WasCorrect.Valid && b.WasCorrect.Bool
}

// Settlement is the outcome of settling a single bet.
type Settlement struct {
	BetID      int64
	UserID     string
	Correct    bool
	Payout     int
	NewBalance int
}

var (
	ErrBetNotFound       = errors.New("bet not found")
	ErrBetAlreadySettled = errors.New("bet already settled")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient funds")
)
