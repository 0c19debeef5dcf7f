package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/nadira/healthdash/internal/apperror"
	"github.com/nadira/healthdash/internal/model"
	"github.com/nadira/healthdash/internal/predictor"
)

// =========================================================================
// SHARED TEST FIXTURES
// =========================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// mockUserRepo is an in-memory repository.UserRepository.
type mockUserRepo struct {
	users map[string]*model.User
	// forcedErr, when set, is returned from every call.
	forcedErr error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if m.forcedErr != nil {
		return m.forcedErr
	}
	if _, ok := m.users[user.Username]; ok {
		return apperror.DuplicateUser(user.Username)
	}
	user.ID = fmt.Sprintf("mock-%d", len(m.users)+1)
	user.CreatedAt = time.Now()
	stored := *user
	m.users[user.Username] = &stored
	return nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	if m.forcedErr != nil {
		return nil, m.forcedErr
	}
	user, ok := m.users[username]
	if !ok {
		return nil, apperror.NotFound("user", username)
	}
	result := *user
	return &result, nil
}

// mockRecordRepo is an in-memory repository.HealthRecordRepository.
type mockRecordRepo struct {
	records   []model.HealthRecord
	nextID    int
	forcedErr error
}

func newMockRecordRepo() *mockRecordRepo {
	return &mockRecordRepo{}
}

func (m *mockRecordRepo) Append(_ context.Context, record *model.HealthRecord) error {
	if m.forcedErr != nil {
		return m.forcedErr
	}
	m.nextID++
	record.ID = fmt.Sprintf("rec-%d", m.nextID)
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	m.records = append(m.records, *record)
	return nil
}

func (m *mockRecordRepo) ListByUser(ctx context.Context, username string) ([]model.HealthRecord, error) {
	return m.ListByUserBetween(ctx, username, time.Time{}, time.Time{})
}

func (m *mockRecordRepo) ListByUserBetween(_ context.Context, username string, from, to time.Time) ([]model.HealthRecord, error) {
	if m.forcedErr != nil {
		return nil, m.forcedErr
	}
	result := make([]model.HealthRecord, 0)
	for _, r := range m.records {
		if r.Username != username {
			continue
		}
		if !from.IsZero() && r.Timestamp.Before(from) {
			continue
		}
		if !to.IsZero() && r.Timestamp.After(to) {
			continue
		}
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})
	return result, nil
}

func (m *mockRecordRepo) LatestByUser(ctx context.Context, username string) (*model.HealthRecord, error) {
	records, err := m.ListByUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperror.NotFound("health record", username)
	}
	latest := records[len(records)-1]
	return &latest, nil
}

func (m *mockRecordRepo) DeleteAllForUser(_ context.Context, username string) error {
	if m.forcedErr != nil {
		return m.forcedErr
	}
	kept := m.records[:0]
	for _, r := range m.records {
		if r.Username != username {
			kept = append(kept, r)
		}
	}
	m.records = kept
	return nil
}

// mockAuditRepo records audit entries in memory.
type mockAuditRepo struct {
	entries   []model.AuditEntry
	forcedErr error
}

func newMockAuditRepo() *mockAuditRepo {
	return &mockAuditRepo{}
}

func (m *mockAuditRepo) Record(_ context.Context, entry *model.AuditEntry) error {
	if m.forcedErr != nil {
		return m.forcedErr
	}
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockAuditRepo) lastAction(t *testing.T) string {
	t.Helper()
	if len(m.entries) == 0 {
		t.Fatal("no audit entries recorded")
	}
	return m.entries[len(m.entries)-1].Action
}

// stubModel returns a fixed label for every input.
type stubModel struct {
	label int
	err   error
}

func (s stubModel) Predict(_ []float64) (int, error) {
	return s.label, s.err
}

// fullModelSet builds a predictor set where every classifier returns label.
func fullModelSet(label int) *predictor.Set {
	models := make(map[string]predictor.Model, len(predictor.ModelIDs))
	for _, id := range predictor.ModelIDs {
		models[id] = stubModel{label: label}
	}
	return predictor.NewSet(models, testLogger())
}
