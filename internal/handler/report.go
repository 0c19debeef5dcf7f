package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nadira/healthdash/internal/apperror"
	"github.com/nadira/healthdash/internal/auth"
	"github.com/nadira/healthdash/internal/service"
)

// ReportHandler serves the history table, the summary gauges, the CSV
// export and the bulk delete.
type ReportHandler struct {
	reports *service.ReportService
	logger  *slog.Logger
}

func NewReportHandler(reports *service.ReportService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, logger: logger}
}

// parseTimeParam accepts RFC 3339 or a bare date. A bare date in "to"
// position extends to the end of that day so ?to=2026-05-01 includes the
// whole of May 1st.
func parseTimeParam(value string, endOfDay bool) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("must be RFC 3339 or YYYY-MM-DD")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

func timeRange(r *http.Request) (from, to time.Time, err error) {
	from, err = parseTimeParam(r.URL.Query().Get("from"), false)
	if err != nil {
		return time.Time{}, time.Time{}, apperror.ValidationFailed("from", err.Error())
	}
	to, err = parseTimeParam(r.URL.Query().Get("to"), true)
	if err != nil {
		return time.Time{}, time.Time{}, apperror.ValidationFailed("to", err.Error())
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return time.Time{}, time.Time{}, apperror.ValidationFailed("to", "to must not be before from")
	}
	return from, to, nil
}

// HandleRecords returns the user's history, optionally bounded by
// ?from and ?to.
//
// HTTP: GET /api/records (auth required)
func (h *ReportHandler) HandleRecords(w http.ResponseWriter, r *http.Request) {
	username, ok := auth.UsernameFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "login required"})
		return
	}

	from, to, err := timeRange(r)
	if err != nil {
		writeError(w, err)
		return
	}

	records, err := h.reports.History(r.Context(), username, from, to)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"records": records,
		"count":   len(records),
	})
}

// HandleSummary returns the aggregate gauge metrics for ?scope=user
// (default) or ?scope=global.
//
// HTTP: GET /api/records/summary (auth required)
func (h *ReportHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	username, ok := auth.UsernameFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "login required"})
		return
	}

	summary, err := h.reports.Summary(r.Context(), username, r.URL.Query().Get("scope"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// HandleExport streams the user's history as a CSV download.
//
// HTTP: GET /api/records/export (auth required)
func (h *ReportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	username, ok := auth.UsernameFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "login required"})
		return
	}

	from, to, err := timeRange(r)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "health_history_"+username+".csv"))

	if err := h.reports.ExportCSV(r.Context(), username, from, to, w); err != nil {
		// The header is already out; all we can do is log.
		h.logger.Error("CSV export failed", slog.String("username", username), slog.Any("error", err))
	}
}

// HandleDelete permanently removes all of the user's health records.
//
// HTTP: DELETE /api/records (auth required)
func (h *ReportHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	username, ok := auth.UsernameFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "login required"})
		return
	}

	if err := h.reports.DeleteHistory(r.Context(), username); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "all health records deleted"})
}
