package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/nadira/healthdash/internal/model"
	"github.com/nadira/healthdash/internal/repository"
)

// compile-time check that *DB implements repository.AuditRepository
var _ repository.AuditRepository = (*DB)(nil)

// Record appends one entry to the history log. Write-only: there is no read
// path in the application, the table exists for offline inspection.
func (db *DB) Record(ctx context.Context, entry *model.AuditEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO history (username, action, timestamp, metadata)
		 VALUES (?, ?, ?, ?)`,
		entry.Username,
		entry.Action,
		entry.Timestamp,
		entry.Metadata,
	)
	if err != nil {
		return fmt.Errorf("sqlite: recording audit entry %q for %q: %w", entry.Action, entry.Username, err)
	}

	return nil
}
