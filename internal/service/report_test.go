package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nadira/healthdash/internal/apperror"
	"github.com/nadira/healthdash/internal/model"
	"github.com/nadira/healthdash/internal/refdata"
)

func seedRecords(t *testing.T, records *mockRecordRepo, username string, base time.Time) {
	t.Helper()
	rows := []model.HealthRecord{
		{Username: username, Timestamp: base, Age: 30, Sex: model.SexMale,
			HeightCm: 200, WeightKg: 100, GammaGTP: 30, SBP: 120, DBP: 80, BLDS: 90,
			SmokingPrediction: 1, DrinkingPrediction: 0},
		{Username: username, Timestamp: base.Add(24 * time.Hour), Age: 30, Sex: model.SexMale,
			HeightCm: 200, WeightKg: 100, GammaGTP: 50, SBP: 130, DBP: 90, BLDS: 110,
			SmokingPrediction: 0, DrinkingPrediction: 1},
	}
	for i := range rows {
		if err := records.Append(context.Background(), &rows[i]); err != nil {
			t.Fatalf("seeding record: %v", err)
		}
	}
}

func TestHistory_RangeFilter(t *testing.T) {
	records := newMockRecordRepo()
	svc := NewReportService(records, newMockAuditRepo(), nil, testLogger())
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	seedRecords(t, records, "nadira", base)

	all, err := svc.History(context.Background(), "nadira", time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("History() = %d records, want 2", len(all))
	}

	// Only the first day.
	firstDay, err := svc.History(context.Background(), "nadira", base, base.Add(time.Hour))
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(firstDay) != 1 {
		t.Errorf("History() with range = %d records, want 1", len(firstDay))
	}
}

// =========================================================================
// SUMMARY TESTS
// =========================================================================

func TestSummary_UserScope(t *testing.T) {
	records := newMockRecordRepo()
	svc := NewReportService(records, newMockAuditRepo(), nil, testLogger())
	seedRecords(t, records, "nadira", time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC))

	sum, err := svc.Summary(context.Background(), "nadira", model.ScopeUser)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if sum.Scope != model.ScopeUser {
		t.Errorf("Scope = %q, want %q", sum.Scope, model.ScopeUser)
	}
	if sum.Count != 2 {
		t.Errorf("Count = %d, want 2", sum.Count)
	}
	if sum.MeanSBP != 125 {
		t.Errorf("MeanSBP = %v, want 125", sum.MeanSBP)
	}
	if sum.MeanBLDS != 100 {
		t.Errorf("MeanBLDS = %v, want 100", sum.MeanBLDS)
	}
	if math.Abs(sum.MeanBMI-25) > 1e-9 {
		t.Errorf("MeanBMI = %v, want 25", sum.MeanBMI)
	}
	if sum.SmokerPercent != 50 || sum.DrinkerPercent != 50 {
		t.Errorf("percentages = (%v, %v), want (50, 50)", sum.SmokerPercent, sum.DrinkerPercent)
	}
}

func TestSummary_EmptyHistory(t *testing.T) {
	svc := NewReportService(newMockRecordRepo(), newMockAuditRepo(), nil, testLogger())

	sum, err := svc.Summary(context.Background(), "nadira", "")
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if sum.Count != 0 {
		t.Errorf("Count = %d, want 0", sum.Count)
	}
	if sum.MeanSBP != 0 {
		t.Errorf("MeanSBP = %v, want 0 on empty history", sum.MeanSBP)
	}
}

func TestSummary_GlobalScope(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "population.csv")
	content := "sex,age,height,weight,SBP,DBP,BLDS,gamma_GTP,smoking,drinking\n" +
		"Male,30,200,100,120,80,90,30,3,Y\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	population, err := refdata.Load(path, testLogger())
	if err != nil {
		t.Fatalf("refdata.Load() error = %v", err)
	}

	svc := NewReportService(newMockRecordRepo(), newMockAuditRepo(), population, testLogger())

	sum, err := svc.Summary(context.Background(), "nadira", model.ScopeGlobal)
	if err != nil {
		t.Fatalf("Summary(global) error = %v", err)
	}
	if sum.Scope != model.ScopeGlobal {
		t.Errorf("Scope = %q, want %q", sum.Scope, model.ScopeGlobal)
	}
	if sum.Count != 1 {
		t.Errorf("Count = %d, want 1", sum.Count)
	}
}

func TestSummary_GlobalScopeWithoutDataset(t *testing.T) {
	svc := NewReportService(newMockRecordRepo(), newMockAuditRepo(), nil, testLogger())

	_, err := svc.Summary(context.Background(), "nadira", model.ScopeGlobal)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Summary(global) error = %v, want ErrNotFound when no dataset is loaded", err)
	}
}

func TestSummary_BadScope(t *testing.T) {
	svc := NewReportService(newMockRecordRepo(), newMockAuditRepo(), nil, testLogger())

	_, err := svc.Summary(context.Background(), "nadira", "everyone")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Summary(everyone) error = %v, want ErrValidation", err)
	}
}

// =========================================================================
// CSV EXPORT TESTS
// =========================================================================

func TestExportCSV(t *testing.T) {
	records := newMockRecordRepo()
	svc := NewReportService(records, newMockAuditRepo(), nil, testLogger())
	seedRecords(t, records, "nadira", time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC))

	var buf bytes.Buffer
	if err := svc.ExportCSV(context.Background(), "nadira", time.Time{}, time.Time{}, &buf); err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parsing export: %v", err)
	}
	if len(rows) != 3 { // header + 2 records
		t.Fatalf("export has %d rows, want 3", len(rows))
	}
	if rows[0][0] != "id" || rows[0][1] != "timestamp" {
		t.Errorf("unexpected header: %v", rows[0])
	}
	if rows[1][3] != model.SexMale {
		t.Errorf("sex column = %q, want %q", rows[1][3], model.SexMale)
	}
	if rows[1][7] != "120" {
		t.Errorf("SBP column = %q, want 120", rows[1][7])
	}
}

func TestExportCSV_EmptyHistoryStillHasHeader(t *testing.T) {
	svc := NewReportService(newMockRecordRepo(), newMockAuditRepo(), nil, testLogger())

	var buf bytes.Buffer
	if err := svc.ExportCSV(context.Background(), "nadira", time.Time{}, time.Time{}, &buf); err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parsing export: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("empty export has %d rows, want header only", len(rows))
	}
}

// =========================================================================
// DELETE HISTORY TESTS
// =========================================================================

func TestDeleteHistory(t *testing.T) {
	records := newMockRecordRepo()
	audits := newMockAuditRepo()
	svc := NewReportService(records, audits, nil, testLogger())
	seedRecords(t, records, "nadira", time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC))
	seedRecords(t, records, "other", time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC))

	if err := svc.DeleteHistory(context.Background(), "nadira"); err != nil {
		t.Fatalf("DeleteHistory() error = %v", err)
	}

	mine, _ := svc.History(context.Background(), "nadira", time.Time{}, time.Time{})
	if len(mine) != 0 {
		t.Errorf("history not emptied: %d records remain", len(mine))
	}
	others, _ := svc.History(context.Background(), "other", time.Time{}, time.Time{})
	if len(others) != 2 {
		t.Errorf("other user's history touched: %d records", len(others))
	}
	if got := audits.lastAction(t); got != model.AuditDeleteHistory {
		t.Errorf("audit action = %q, want %q", got, model.AuditDeleteHistory)
	}
}
