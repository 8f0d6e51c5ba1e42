package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jask/opsconsole/internal/database"
)

// MaintenanceService houses destructive ops actions surfaced through the TUI.
type MaintenanceService struct {
	DB *sql.DB
}

// ClearJournal wipes the activity journal. It keeps the schema intact so the
// console can continue recording.
func (s *MaintenanceService) ClearJournal(ctx context.Context) (int64, error) {
	if s.DB == nil {
		return 0, fmt.Errorf("maintenance: db not configured")
	}
	var removed int64
	err := database.WithTx(s.DB, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM activity")
		if err != nil {
			return fmt.Errorf("clear activity: %w", err)
		}
		removed, err = res.RowsAffected()
		if err != nil {
			return err
		}
		// restart the sequence so seq stays small for a long session
		_, err = tx.ExecContext(ctx, "DELETE FROM sqlite_sequence WHERE name = 'activity'")
		return err
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
