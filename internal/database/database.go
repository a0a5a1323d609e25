package database

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Open connects to the configured engine and makes sure the schema exists.
// A nil logger discards engine messages.
func Open(dbType, connString string, log *zap.Logger) (Database, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var db Database
	switch dbType {
	case "postgres":
		db = NewPostgresDatabase(connString, log)
	case "sqlite":
		fallthrough
	default:
		db = NewSQLiteDatabase(connString, log)
	}

	if err := db.Open(); err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", dbType, err)
	}
	if err := db.CreateTables(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// convertPlaceholders turns ? placeholders into $N (PostgreSQL)
func convertPlaceholders(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)

	index := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			fmt.Fprintf(&b, "$%d", index)
			index++
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
