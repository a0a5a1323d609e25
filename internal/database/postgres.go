package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

// PostgresDatabase implements Database for PostgreSQL through the pgx stdlib driver
type PostgresDatabase struct {
	connString string
	db         *sql.DB
	log        *zap.Logger
}

func NewPostgresDatabase(connString string, log *zap.Logger) *PostgresDatabase {
	return &PostgresDatabase{
		connString: connString,
		log:        log,
	}
}

func (p *PostgresDatabase) Open() error {
	p.log.Info("connecting to PostgreSQL", zap.String("dsn", maskPassword(p.connString)))

	db, err := sql.Open("pgx", p.connString)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(0)

	p.db = db
	return nil
}

// maskPassword hides the password of a URL style connection string for logs
func maskPassword(connString string) string {
	start := strings.Index(connString, "://")
	if start < 0 {
		return connString
	}
	start += 3
	at := strings.Index(connString[start:], "@")
	if at < 0 {
		return connString
	}
	userPass := connString[start : start+at]
	colon := strings.Index(userPass, ":")
	if colon < 0 {
		return connString
	}
	return connString[:start] + userPass[:colon] + ":****@" + connString[start+at+1:]
}

func (p *PostgresDatabase) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

func (p *PostgresDatabase) Ping() error {
	if p.db == nil {
		return fmt.Errorf("database not connected")
	}
	return p.db.Ping()
}

func (p *PostgresDatabase) GetDB() *sql.DB {
	return p.db
}

func (p *PostgresDatabase) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return p.db.QueryContext(ctx, query, args...)
}

func (p *PostgresDatabase) QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return p.db.QueryRowContext(ctx, query, args...)
}

func (p *PostgresDatabase) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return p.db.ExecContext(ctx, query, args...)
}

func (p *PostgresDatabase) Begin(ctx context.Context) (*sql.Tx, error) {
	return p.db.BeginTx(ctx, nil)
}

// Placeholder returns $N for PostgreSQL (1-indexed)
func (p *PostgresDatabase) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index)
}

// Rebind converts ? placeholders to $1, $2, ...
func (p *PostgresDatabase) Rebind(query string) string {
	return convertPlaceholders(query)
}

func (p *PostgresDatabase) ForUpdate() string {
	return " FOR UPDATE"
}

// UpsertSyntax returns INSERT ... ON CONFLICT DO UPDATE for PostgreSQL
func (p *PostgresDatabase) UpsertSyntax(table string, conflictCols []string, updateCols []string, values []interface{}) (string, []interface{}) {
	allCols := append(append([]string{}, conflictCols...), updateCols...)
	placeholders := make([]string, len(allCols))
	for i := range allCols {
		placeholders[i] = p.Placeholder(i + 1)
	}

	updates := make([]string, len(updateCols))
	for i, col := range updateCols {
		updates[i] = fmt.Sprintf("%s = EXCLUDED.%s", col, col)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(%s) DO UPDATE SET %s",
		table, strings.Join(allCols, ", "), strings.Join(placeholders, ", "),
		strings.Join(conflictCols, ", "), strings.Join(updates, ", "))

	return query, values
}

// CreateTables creates the ledger tables for PostgreSQL
func (p *PostgresDatabase) CreateTables() error {
	if ShouldSkipTableCreation() {
		p.log.Info("skipping table creation", zap.String("env", "DB_SKIP_TABLE_CREATION"))
		return nil
	}

	p.log.Debug("creating PostgreSQL tables if missing")

	statements := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			user_id TEXT PRIMARY KEY,
			balance INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS manager_links (
			user_id TEXT PRIMARY KEY,
			manager_id INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS bets (
			bet_id BIGSERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			coins_bet INTEGER NOT NULL,
			potential_coins INTEGER NOT NULL,
			condition TEXT NOT NULL,
			bet_type TEXT NOT NULL,
			finished INTEGER NOT NULL DEFAULT 0,
			was_correct INTEGER
		);`,
		`CREATE INDEX IF NOT EXISTS idx_bets_finished_type ON bets (finished, bet_type);`,
		`CREATE INDEX IF NOT EXISTS idx_bets_user ON bets (user_id);`,
	}

	for _, stmt := range statements {
		if _, err := p.db.Exec(stmt); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	return nil
}

func ShouldSkipTableCreation() bool {
	return os.Getenv("DB_SKIP_TABLE_CREATION") == "true"
}
