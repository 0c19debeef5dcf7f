package handler

import (
	"log/slog"
	"net/http"

	"github.com/nadira/healthdash/internal/auth"
	"github.com/nadira/healthdash/internal/model"
	"github.com/nadira/healthdash/internal/service"
)

// AssessmentHandler exposes the two screening endpoints.
type AssessmentHandler struct {
	assessments *service.AssessmentService
	logger      *slog.Logger
}

func NewAssessmentHandler(assessments *service.AssessmentService, logger *slog.Logger) *AssessmentHandler {
	return &AssessmentHandler{assessments: assessments, logger: logger}
}

// HandlePredict runs the lifestyle screening and appends the result to the
// user's history.
//
// HTTP: POST /api/predictions (auth required)
func (h *AssessmentHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	username, ok := auth.UsernameFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "login required"})
		return
	}

	var in service.LifestyleInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.assessments.SubmitLifestyle(r.Context(), username, in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// HandleRiskAssessment runs the comprehensive clinical screening. The
// result is returned, never stored.
//
// HTTP: POST /api/risk-assessments (auth required)
func (h *AssessmentHandler) HandleRiskAssessment(w http.ResponseWriter, r *http.Request) {
	username, ok := auth.UsernameFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "login required"})
		return
	}

	var a model.Assessment
	if err := decodeJSON(r, &a); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.assessments.SubmitRiskAssessment(r.Context(), username, &a)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
