package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SetManagerID links a Discord user to an FPL manager, replacing any previous link.
func (s *Store) SetManagerID(ctx context.Context, userID string, managerID int) error {
	query, args := s.db.UpsertSyntax("manager_links",
		[]string{"user_id"}, []string{"manager_id"},
		[]interface{}{userID, managerID})

	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("link manager for %s: %w", userID, err)
	}
	return nil
}

// GetManagerID returns the linked FPL manager id; ok is false when the user never linked one.
func (s *Store) GetManagerID(ctx context.Context, userID string) (managerID int, ok bool, err error) {
	err = s.db.QueryRow(ctx, s.q("SELECT manager_id FROM manager_links WHERE user_id = ?"), userID).Scan(&managerID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("find manager for %s: %w", userID, err)
	}
	return managerID, true, nil
}
