package handler_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/nadira/healthdash/internal/auth"
	"github.com/nadira/healthdash/internal/handler"
	"github.com/nadira/healthdash/internal/predictor"
	"github.com/nadira/healthdash/internal/repository/sqlite"
	"github.com/nadira/healthdash/internal/service"
)

// testEnv wires real services over an in-memory SQLite database so the
// handler tests exercise the full stack below the HTTP layer.
type testEnv struct {
	db     *sqlite.DB
	tokens *auth.TokenService

	auth        *handler.AuthHandler
	assessments *handler.AssessmentHandler
	reports     *handler.ReportHandler
	recommend   *handler.RecommendHandler
	dashboard   *handler.DashboardHandler
}

// stubModel returns a fixed label for every input.
type stubModel struct {
	label int
}

func (s stubModel) Predict(_ []float64) (int, error) { return s.label, nil }

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("handler-test-secret-key")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	passwords := auth.NewPasswordServiceForTest(4)

	models := make(map[string]predictor.Model, len(predictor.ModelIDs))
	for _, id := range predictor.ModelIDs {
		models[id] = stubModel{label: 1}
	}
	modelSet := predictor.NewSet(models, logger)

	authSvc := service.NewAuthService(db, db, tokens, passwords, logger)
	assessSvc := service.NewAssessmentService(db, db, modelSet, logger)
	reportSvc := service.NewReportService(db, db, nil, logger)
	recommendSvc := service.NewRecommendationService(db, logger)

	return &testEnv{
		db:          db,
		tokens:      tokens,
		auth:        handler.NewAuthHandler(authSvc, logger),
		assessments: handler.NewAssessmentHandler(assessSvc, logger),
		reports:     handler.NewReportHandler(reportSvc, logger),
		recommend:   handler.NewRecommendHandler(recommendSvc, logger),
		dashboard:   handler.NewDashboardHandler(reportSvc, logger),
	}
}

// signup creates an account through the handler itself.
func (e *testEnv) signup(t *testing.T, username, password string) {
	t.Helper()
	rr := httptest.NewRecorder()
	req := jsonRequest(http.MethodPost, "/api/auth/signup",
		`{"username":"`+username+`","password":"`+password+`"}`)
	e.auth.HandleSignup(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("signup returned %d: %s", rr.Code, rr.Body.String())
	}
}

// serveAuthed runs h behind RequireAuth with a valid session cookie for
// username.
func (e *testEnv) serveAuthed(t *testing.T, username string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	token, err := e.tokens.Generate(username)
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: token})

	rr := httptest.NewRecorder()
	auth.RequireAuth(e.tokens)(h).ServeHTTP(rr, req)
	return rr
}

func jsonRequest(method, target, body string) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}
