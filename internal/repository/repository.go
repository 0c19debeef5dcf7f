// Package repository defines the storage interfaces the service layer
// depends on. The sqlite subpackage provides the concrete implementation;
// tests substitute in-memory mocks.
package repository

import (
	"context"
	"time"

	"github.com/nadira/healthdash/internal/model"
)

// UserRepository is the credential store. Users are write-once: there is no
// update or delete.
type UserRepository interface {
	// Create inserts a new user. Returns apperror.ErrDuplicateUser if the
	// username is taken.
	Create(ctx context.Context, user *model.User) error

	// GetByUsername returns the user or apperror.ErrNotFound.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

// HealthRecordRepository persists biometric submissions. Records are
// append-only; the only destructive operation is the per-user bulk delete.
type HealthRecordRepository interface {
	// Append inserts one record, stamping its ID and timestamp. No
	// validation happens here; that is the caller's responsibility.
	Append(ctx context.Context, record *model.HealthRecord) error

	// ListByUser returns all of a user's records in ascending timestamp
	// order. An empty slice (not an error) when there are none.
	ListByUser(ctx context.Context, username string) ([]model.HealthRecord, error)

	// ListByUserBetween is ListByUser restricted to [from, to] inclusive.
	// Zero times mean "unbounded" on that side.
	ListByUserBetween(ctx context.Context, username string, from, to time.Time) ([]model.HealthRecord, error)

	// LatestByUser returns the most recent record, or apperror.ErrNotFound
	// if the user has no history.
	LatestByUser(ctx context.Context, username string) (*model.HealthRecord, error)

	// DeleteAllForUser removes every record for the user. Idempotent:
	// deleting with none present is a no-op, not an error.
	DeleteAllForUser(ctx context.Context, username string) error
}

// AuditRepository is the write-only history log. Nothing in the application
// reads it back.
type AuditRepository interface {
	Record(ctx context.Context, entry *model.AuditEntry) error
}
