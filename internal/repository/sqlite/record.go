package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/nadira/healthdash/internal/apperror"
	"github.com/nadira/healthdash/internal/model"
	"github.com/nadira/healthdash/internal/repository"
)

// compile-time check that *DB implements repository.HealthRecordRepository
var _ repository.HealthRecordRepository = (*DB)(nil)

const recordColumns = `id, username, timestamp, age, sex, height, weight,
	gamma_GTP, smoking_prediction, drinking_prediction, SBP, DBP, BLDS`

// Append inserts one health record.
//
// ID and timestamp are stamped here, not by the caller: xids embed the
// creation instant and sort chronologically, so two submissions in the same
// millisecond still get distinct, ordered keys. The record is modified
// in place so the caller sees the stamped values.
func (db *DB) Append(ctx context.Context, record *model.HealthRecord) error {
	record.ID = xid.New().String()
	record.Timestamp = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO health_data (`+recordColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Username,
		record.Timestamp,
		record.Age,
		record.Sex,
		record.HeightCm,
		record.WeightKg,
		record.GammaGTP,
		record.SmokingPrediction,
		record.DrinkingPrediction,
		record.SBP,
		record.DBP,
		record.BLDS,
	)
	if err != nil {
		return fmt.Errorf("sqlite: appending health record for %q: %w", record.Username, err)
	}

	return nil
}

// ListByUser returns every record for the user, oldest first.
func (db *DB) ListByUser(ctx context.Context, username string) ([]model.HealthRecord, error) {
	return db.ListByUserBetween(ctx, username, time.Time{}, time.Time{})
}

// ListByUserBetween returns the user's records within [from, to] inclusive,
// oldest first. A zero from or to leaves that side unbounded.
func (db *DB) ListByUserBetween(ctx context.Context, username string, from, to time.Time) ([]model.HealthRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM health_data WHERE username = ?`
	args := []any{username}

	if !from.IsZero() {
		query += ` AND timestamp >= ?`
		args = append(args, from)
	}
	if !to.IsZero() {
		query += ` AND timestamp <= ?`
		args = append(args, to)
	}
	query += ` ORDER BY timestamp ASC, id ASC`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing health records for %q: %w", username, err)
	}
	defer rows.Close()

	records := []model.HealthRecord{}
	for rows.Next() {
		var r model.HealthRecord
		if err := scanRecord(rows, &r); err != nil {
			return nil, fmt.Errorf("sqlite: scanning health record row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating health records: %w", err)
	}

	return records, nil
}

// LatestByUser returns the most recent record for the user.
func (db *DB) LatestByUser(ctx context.Context, username string) (*model.HealthRecord, error) {
	var r model.HealthRecord

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM health_data
		 WHERE username = ?
		 ORDER BY timestamp DESC, id DESC
		 LIMIT 1`,
		username,
	)
	if err := scanRecord(row, &r); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("health record", username)
		}
		return nil, fmt.Errorf("sqlite: getting latest health record for %q: %w", username, err)
	}

	return &r, nil
}

// DeleteAllForUser removes every record for the user. Zero rows affected is
// fine; the operation is idempotent.
func (db *DB) DeleteAllForUser(ctx context.Context, username string) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM health_data WHERE username = ?`,
		username,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting health records for %q: %w", username, err)
	}
	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner, r *model.HealthRecord) error {
	return s.Scan(
		&r.ID,
		&r.Username,
		&r.Timestamp,
		&r.Age,
		&r.Sex,
		&r.HeightCm,
		&r.WeightKg,
		&r.GammaGTP,
		&r.SmokingPrediction,
		&r.DrinkingPrediction,
		&r.SBP,
		&r.DBP,
		&r.BLDS,
	)
}
