// Package predictor wraps the pre-trained binary classifiers.
//
// The classifiers are opaque artifacts produced by an offline training
// pipeline: one file per model, loaded once at startup and cached for the
// life of the process. The application consumes them only through the Model
// interface: a fixed-order feature vector in, a 0/1 label out.
//
// DEGRADED MODE:
// A missing or corrupt artifact must not prevent the server from starting.
// Load records which models are unavailable; Predict on one of those returns
// apperror.ErrModelUnavailable, which handlers surface as a degraded-mode
// message while everything else (rule-based checks, the other models) keeps
// working.
package predictor

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nadira/healthdash/internal/apperror"
)

// Model is a single binary classifier.
type Model interface {
	// Predict returns 0 or 1 for the given feature vector. The vector must
	// follow the model's feature-order contract exactly (see features.go).
	Predict(features []float64) (int, error)
}

// Model IDs. Artifact files are named "<id>.model" in the model directory.
const (
	ModelSmoking         = "smoking"
	ModelDrinking        = "drinking"
	ModelHypertension    = "hypertension"
	ModelDiabetes        = "diabetes"
	ModelHighCholesterol = "high_cholesterol"
	ModelAnemia          = "anemia"
	ModelFattyLiver      = "fatty_liver"
)

// ModelIDs lists every classifier the application knows about, in a stable
// order (used for loading and for the degraded-mode report).
var ModelIDs = []string{
	ModelSmoking,
	ModelDrinking,
	ModelHypertension,
	ModelDiabetes,
	ModelHighCholesterol,
	ModelAnemia,
	ModelFattyLiver,
}

// Set is the registry of loaded models. Models that failed to load are
// simply absent; Predict reports them as unavailable.
type Set struct {
	models map[string]Model
	logger *slog.Logger
}

// Load reads every known artifact from dir. It never fails: per-artifact
// problems are logged and leave that model unavailable. Callers can inspect
// Missing() to present a degraded-mode banner.
func Load(dir string, logger *slog.Logger) *Set {
	s := &Set{
		models: make(map[string]Model, len(ModelIDs)),
		logger: logger,
	}

	for _, id := range ModelIDs {
		path := filepath.Join(dir, id+".model")
		m, err := loadArtifact(path)
		if err != nil {
			if os.IsNotExist(err) {
				logger.Warn("model artifact missing, predictions unavailable",
					slog.String("model", id),
					slog.String("path", path),
				)
			} else {
				logger.Error("failed to load model artifact",
					slog.String("model", id),
					slog.String("path", path),
					slog.String("error", err.Error()),
				)
			}
			continue
		}
		s.models[id] = m
		logger.Info("model loaded", slog.String("model", id))
	}

	return s
}

// NewSet builds a Set from already-constructed models. Used by tests and by
// any caller that wants to inject a fake classifier.
func NewSet(models map[string]Model, logger *slog.Logger) *Set {
	if models == nil {
		models = map[string]Model{}
	}
	return &Set{models: models, logger: logger}
}

// Predict runs the named model on the given feature vector.
// Returns apperror.ErrModelUnavailable if the artifact did not load.
func (s *Set) Predict(modelID string, features []float64) (int, error) {
	m, ok := s.models[modelID]
	if !ok {
		return 0, apperror.ModelUnavailable(modelID)
	}

	label, err := m.Predict(features)
	if err != nil {
		return 0, fmt.Errorf("predictor: %s: %w", modelID, err)
	}
	return label, nil
}

// Available reports whether the named model loaded successfully.
func (s *Set) Available(modelID string) bool {
	_, ok := s.models[modelID]
	return ok
}

// Missing returns the IDs of models that failed to load, in ModelIDs order.
// Empty slice when everything loaded.
func (s *Set) Missing() []string {
	missing := []string{}
	for _, id := range ModelIDs {
		if _, ok := s.models[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
