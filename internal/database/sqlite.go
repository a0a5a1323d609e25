package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteDatabase implements Database for SQLite
type SQLiteDatabase struct {
	connString string
	db         *sql.DB
	log        *zap.Logger
}

func NewSQLiteDatabase(connString string, log *zap.Logger) *SQLiteDatabase {
	return &SQLiteDatabase{
		connString: connString,
		log:        log,
	}
}

var sqliteDefaults = []struct{ key, value string }{
	{"_busy_timeout", "5000"},
	{"_txlock", "immediate"},
}

// sqliteDSN appends the busy timeout and immediate transaction lock unless
// the connection string already sets them.
func sqliteDSN(connString string) string {
	path, query, _ := strings.Cut(connString, "?")
	params := []string{}
	if query != "" {
		params = strings.Split(query, "&")
	}

	for _, d := range sqliteDefaults {
		set := false
		for _, p := range params {
			if k, _, _ := strings.Cut(p, "="); k == d.key {
				set = true
				break
			}
		}
		if !set {
			params = append(params, d.key+"="+d.value)
		}
	}
	return path + "?" + strings.Join(params, "&")
}

func (s *SQLiteDatabase) Open() error {
	dsn := sqliteDSN(s.connString)
	s.log.Info("opening SQLite database", zap.String("path", s.connString))

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return err
	}

	// SQLite has a single writer; one connection keeps transactions from
	// tripping over each other with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	s.db = db
	return nil
}

func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteDatabase) Ping() error {
	if s.db == nil {
		return fmt.Errorf("database not connected")
	}
	return s.db.Ping()
}

func (s *SQLiteDatabase) GetDB() *sql.DB {
	return s.db
}

func (s *SQLiteDatabase) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, query, args...)
}

func (s *SQLiteDatabase) QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return s.db.QueryRowContext(ctx, query, args...)
}

func (s *SQLiteDatabase) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return s.db.ExecContext(ctx, query, args...)
}

func (s *SQLiteDatabase) Begin(ctx context.Context) (*sql.Tx, error) {
	return s.db.BeginTx(ctx, nil)
}

// Placeholder returns ? for SQLite (no index)
func (s *SQLiteDatabase) Placeholder(index int) string {
	return "?"
}

func (s *SQLiteDatabase) Rebind(query string) string {
	return query
}

// ForUpdate is empty: an immediate transaction already holds the write lock.
func (s *SQLiteDatabase) ForUpdate() string {
	return ""
}

// UpsertSyntax returns INSERT ... ON CONFLICT DO UPDATE for SQLite
func (s *SQLiteDatabase) UpsertSyntax(table string, conflictCols []string, updateCols []string, values []interface{}) (string, []interface{}) {
	allCols := append(append([]string{}, conflictCols...), updateCols...)
	placeholders := make([]string, len(allCols))
	for i := range allCols {
		placeholders[i] = "?"
	}

	updates := make([]string, len(updateCols))
	for i, col := range updateCols {
		updates[i] = fmt.Sprintf("%s = ?", col)
		values = append(values, values[len(conflictCols)+i])
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(%s) DO UPDATE SET %s",
		table, strings.Join(allCols, ", "), strings.Join(placeholders, ", "),
		strings.Join(conflictCols, ", "), strings.Join(updates, ", "))

	return query, values
}

// CreateTables creates the ledger tables for SQLite
func (s *SQLiteDatabase) CreateTables() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			"user_id" TEXT NOT NULL PRIMARY KEY,
			"balance" INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS manager_links (
			"user_id" TEXT NOT NULL PRIMARY KEY,
			"manager_id" INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS bets (
			"bet_id" INTEGER PRIMARY KEY AUTOINCREMENT,
			"user_id" TEXT NOT NULL,
			"coins_bet" INTEGER NOT NULL,
			"potential_coins" INTEGER NOT NULL,
			"condition" TEXT NOT NULL,
			"bet_type" TEXT NOT NULL,
			"finished" INTEGER NOT NULL DEFAULT 0,
			"was_correct" INTEGER
		);`,
		`CREATE INDEX IF NOT EXISTS idx_bets_finished_type ON bets (finished, bet_type);`,
		`CREATE INDEX IF NOT EXISTS idx_bets_user ON bets (user_id);`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
