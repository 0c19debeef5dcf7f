package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/nadira/healthdash/internal/apperror"
	"github.com/nadira/healthdash/internal/model"
	"github.com/nadira/healthdash/internal/refdata"
	"github.com/nadira/healthdash/internal/repository"
	"github.com/nadira/healthdash/internal/risk"
)

// ReportService serves the dashboard: history tables, summary gauges and
// the CSV export. The reference dataset is optional; without it the global
// summary scope reports not found.
type ReportService struct {
	records    repository.HealthRecordRepository
	audits     repository.AuditRepository
	population *refdata.Dataset
	logger     *slog.Logger
}

func NewReportService(
	records repository.HealthRecordRepository,
	audits repository.AuditRepository,
	population *refdata.Dataset,
	logger *slog.Logger,
) *ReportService {
	return &ReportService{
		records:    records,
		audits:     audits,
		population: population,
		logger:     logger,
	}
}

// History returns the user's records within [from, to]. Zero times leave
// that side unbounded.
func (s *ReportService) History(ctx context.Context, username string, from, to time.Time) ([]model.HealthRecord, error) {
	records, err := s.records.ListByUserBetween(ctx, username, from, to)
	if err != nil {
		return nil, fmt.Errorf("service/report: listing records for %q: %w", username, err)
	}
	return records, nil
}

// Summary aggregates either the user's own history or the reference
// population, selected by scope.
func (s *ReportService) Summary(ctx context.Context, username, scope string) (model.Summary, error) {
	switch scope {
	case "", model.ScopeUser:
		return s.userSummary(ctx, username)
	case model.ScopeGlobal:
		if s.population == nil {
			return model.Summary{}, apperror.NotFound("summary", model.ScopeGlobal)
		}
		return s.population.Summary(), nil
	default:
		return model.Summary{}, apperror.ValidationFailed("scope", "scope must be user or global")
	}
}

func (s *ReportService) userSummary(ctx context.Context, username string) (model.Summary, error) {
	records, err := s.records.ListByUser(ctx, username)
	if err != nil {
		return model.Summary{}, fmt.Errorf("service/report: listing records for %q: %w", username, err)
	}

	sum := model.Summary{Scope: model.ScopeUser, Count: len(records)}
	if len(records) == 0 {
		return sum, nil
	}

	var smokers, drinkers int
	for i := range records {
		r := &records[i]
		sum.MeanBLDS += r.BLDS
		sum.MeanBMI += risk.BMI(r.WeightKg, r.HeightCm)
		sum.MeanSBP += r.SBP
		sum.MeanDBP += r.DBP
		sum.MeanGammaGTP += r.GammaGTP
		if r.SmokingPrediction == 1 {
			smokers++
		}
		if r.DrinkingPrediction == 1 {
			drinkers++
		}
	}

	n := float64(len(records))
	sum.MeanBLDS /= n
	sum.MeanBMI /= n
	sum.MeanSBP /= n
	sum.MeanDBP /= n
	sum.MeanGammaGTP /= n
	sum.SmokerPercent = float64(smokers) / n * 100
	sum.DrinkerPercent = float64(drinkers) / n * 100
	return sum, nil
}

// exportHeader defines the CSV column order of the export download.
var exportHeader = []string{
	"id", "timestamp", "age", "sex", "height", "weight",
	"gamma_GTP", "SBP", "DBP", "BLDS",
	"smoking_prediction", "drinking_prediction",
}

// ExportCSV streams the user's filtered history to w as CSV.
func (s *ReportService) ExportCSV(ctx context.Context, username string, from, to time.Time, w io.Writer) error {
	records, err := s.records.ListByUserBetween(ctx, username, from, to)
	if err != nil {
		return fmt.Errorf("service/report: listing records for %q: %w", username, err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("service/report: writing CSV header: %w", err)
	}
	for i := range records {
		r := &records[i]
		row := []string{
			r.ID,
			r.Timestamp.UTC().Format(time.RFC3339),
			strconv.Itoa(r.Age),
			r.Sex,
			formatFloat(r.HeightCm),
			formatFloat(r.WeightKg),
			formatFloat(r.GammaGTP),
			formatFloat(r.SBP),
			formatFloat(r.DBP),
			formatFloat(r.BLDS),
			strconv.Itoa(r.SmokingPrediction),
			strconv.Itoa(r.DrinkingPrediction),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("service/report: writing CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// DeleteHistory permanently removes all of the user's health records and
// records the deletion in the audit log.
func (s *ReportService) DeleteHistory(ctx context.Context, username string) error {
	if err := s.records.DeleteAllForUser(ctx, username); err != nil {
		return fmt.Errorf("service/report: deleting records for %q: %w", username, err)
	}

	s.logger.Info("health history deleted", slog.String("username", username))
	err := s.audits.Record(ctx, &model.AuditEntry{
		Username: username,
		Action:   model.AuditDeleteHistory,
	})
	if err != nil {
		s.logger.Error("audit write failed",
			slog.String("username", username),
			slog.String("action", model.AuditDeleteHistory),
			slog.Any("error", err),
		)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
