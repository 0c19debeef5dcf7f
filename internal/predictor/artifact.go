package predictor

import (
	"encoding/gob"
	"fmt"
	"math"
	"os"
)

// Artifact is the on-disk form of one classifier: a logistic model exported
// by the offline training pipeline (weights, intercept and the feature
// column names it was trained on), gob-encoded.
//
// The feature names are carried for sanity only; prediction uses positions,
// never names. What matters is that the caller builds vectors in the same
// column order as training; that contract lives in features.go.
type Artifact struct {
	ModelID      string
	FeatureNames []string
	Weights      []float64
	Intercept    float64
}

// logisticModel evaluates a loaded artifact: label = 1 iff
// sigmoid(w·x + b) ≥ 0.5, which is w·x + b ≥ 0.
type logisticModel struct {
	weights   []float64
	intercept float64
}

var _ Model = (*logisticModel)(nil)

func (m *logisticModel) Predict(features []float64) (int, error) {
	if len(features) != len(m.weights) {
		return 0, fmt.Errorf("expected %d features, got %d", len(m.weights), len(features))
	}

	z := m.intercept
	for i, w := range m.weights {
		z += w * features[i]
	}

	if math.IsNaN(z) {
		return 0, fmt.Errorf("model produced NaN score")
	}
	if z >= 0 {
		return 1, nil
	}
	return 0, nil
}

// loadArtifact reads and validates one artifact file.
func loadArtifact(path string) (Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var a Artifact
	if err := gob.NewDecoder(f).Decode(&a); err != nil {
		return nil, fmt.Errorf("decoding artifact: %w", err)
	}

	if len(a.Weights) == 0 {
		return nil, fmt.Errorf("artifact has no weights")
	}
	if len(a.FeatureNames) != 0 && len(a.FeatureNames) != len(a.Weights) {
		return nil, fmt.Errorf("artifact has %d feature names but %d weights",
			len(a.FeatureNames), len(a.Weights))
	}

	return &logisticModel{
		weights:   a.Weights,
		intercept: a.Intercept,
	}, nil
}

// Save writes an artifact to path. Not used by the server itself; it exists
// for the export step of the training pipeline and for tests that need real
// artifact files on disk.
func (a *Artifact) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating artifact file: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(a); err != nil {
		return fmt.Errorf("encoding artifact: %w", err)
	}
	return nil
}
