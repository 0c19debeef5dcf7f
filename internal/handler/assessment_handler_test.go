package handler_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nadira/healthdash/internal/handler"
	"github.com/nadira/healthdash/internal/predictor"
	"github.com/nadira/healthdash/internal/service"
)

const validLifestyleBody = `{
	"age": 35, "sex": "male",
	"heightCm": 175, "weightKg": 72,
	"gammaGtp": 28, "sbp": 120, "dbp": 80, "blds": 92
}`

const validAssessmentBody = `{
	"sex": "female", "age": 52,
	"heightCm": 162, "weightKg": 70, "waistCm": 82,
	"sightLeft": 1.0, "sightRight": 1.0, "hearLeft": 1, "hearRight": 1,
	"sbp": 145, "dbp": 88, "blds": 101,
	"totalCholesterol": 205, "hdl": 45, "ldl": 120, "triglyceride": 160,
	"hemoglobin": 12.5, "urineProtein": 1, "serumCreatinine": 0.8,
	"ast": 30, "alt": 28, "gammaGtp": 40,
	"smoking": 1, "drinking": 0
}`

func TestAssessmentHandler_Predict(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "nadira", "pw123")

	t.Run("valid submission", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/api/predictions", validLifestyleBody)
		rr := env.serveAuthed(t, "nadira", env.assessments.HandlePredict, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var res struct {
			Smoking  int `json:"smoking"`
			Drinking int `json:"drinking"`
			Record   struct {
				ID       string `json:"id"`
				Username string `json:"username"`
			} `json:"record"`
		}
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, 1, res.Smoking)
		assert.Equal(t, 1, res.Drinking)
		assert.NotEmpty(t, res.Record.ID)
		assert.Equal(t, "nadira", res.Record.Username)
	})

	t.Run("record persisted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/records", nil)
		rr := env.serveAuthed(t, "nadira", env.reports.HandleRecords, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var res struct {
			Count int `json:"count"`
		}
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, 1, res.Count)
	})

	t.Run("validation failure", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/api/predictions",
			`{"age": 0, "sex": "male", "heightCm": 175, "weightKg": 72, "gammaGtp": 28, "sbp": 120, "dbp": 80, "blds": 92}`)
		rr := env.serveAuthed(t, "nadira", env.assessments.HandlePredict, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "validation_error")
	})

	t.Run("unauthenticated", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/api/predictions", validLifestyleBody)
		rr := httptest.NewRecorder()
		env.assessments.HandlePredict(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestAssessmentHandler_Predict_NoModels(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "nadira", "pw123")

	// Rebuild the handler with an empty model set.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := service.NewAssessmentService(env.db, env.db, predictor.NewSet(nil, logger), logger)
	h := handler.NewAssessmentHandler(svc, logger)

	req := jsonRequest(http.MethodPost, "/api/predictions", validLifestyleBody)
	rr := env.serveAuthed(t, "nadira", h.HandlePredict, req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "model_unavailable")
}

func TestAssessmentHandler_RiskAssessment(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "nadira", "pw123")

	t.Run("valid assessment", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/api/risk-assessments", validAssessmentBody)
		rr := env.serveAuthed(t, "nadira", env.assessments.HandleRiskAssessment, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var res struct {
			Rules struct {
				Hypertension bool    `json:"hypertension"`
				Diabetes     bool    `json:"diabetes"`
				BMI          float64 `json:"bmi"`
			} `json:"rules"`
			Predictions []struct {
				ModelID   string `json:"modelId"`
				Available bool   `json:"available"`
			} `json:"predictions"`
		}
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		// SBP 145 crosses the 140 cutoff; BLDS 101 stays under 126.
		assert.True(t, res.Rules.Hypertension)
		assert.False(t, res.Rules.Diabetes)
		assert.Greater(t, res.Rules.BMI, 0.0)
		assert.Len(t, res.Predictions, 5)
		for _, p := range res.Predictions {
			assert.True(t, p.Available, p.ModelID)
		}
	})

	t.Run("assessment is not persisted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/records", nil)
		rr := env.serveAuthed(t, "nadira", env.reports.HandleRecords, req)

		var res struct {
			Count int `json:"count"`
		}
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, 0, res.Count)
	})

	t.Run("invalid smoking ordinal", func(t *testing.T) {
		body := `{"sex": "male", "age": 40, "heightCm": 175, "weightKg": 70, "waistCm": 85,
			"sbp": 120, "dbp": 80, "blds": 95, "hemoglobin": 14, "smoking": 9, "drinking": 0}`
		req := jsonRequest(http.MethodPost, "/api/risk-assessments", body)
		rr := env.serveAuthed(t, "nadira", env.assessments.HandleRiskAssessment, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
