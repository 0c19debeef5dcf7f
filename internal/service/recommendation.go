package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nadira/healthdash/internal/apperror"
	"github.com/nadira/healthdash/internal/recommend"
	"github.com/nadira/healthdash/internal/repository"
)

// RecommendationService wraps the advice rules. When the caller sends no
// input, the user's latest stored record pre-fills the form, the way the
// dashboard pre-fills the recommendation page after a prediction.
type RecommendationService struct {
	records repository.HealthRecordRepository
	logger  *slog.Logger
}

func NewRecommendationService(records repository.HealthRecordRepository, logger *slog.Logger) *RecommendationService {
	return &RecommendationService{records: records, logger: logger}
}

// Recommend evaluates the advice rules for the given input. A nil input
// falls back to the user's latest health record; with no history either,
// apperror.ErrNotFound is returned.
func (s *RecommendationService) Recommend(ctx context.Context, username string, in *recommend.Input) (*recommend.Result, error) {
	if in == nil {
		latest, err := s.records.LatestByUser(ctx, username)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return nil, apperror.NotFound("health record", username)
			}
			return nil, fmt.Errorf("service/recommendation: loading latest record for %q: %w", username, err)
		}
		in = &recommend.Input{
			Age:        latest.Age,
			HeightCm:   latest.HeightCm,
			WeightKg:   latest.WeightKg,
			SBP:        latest.SBP,
			DBP:        latest.DBP,
			BloodSugar: latest.BLDS,
			Smoker:     latest.SmokingPrediction == 1,
			Drinker:    latest.DrinkingPrediction == 1,
		}
	}

	if in.Age < 1 || in.Age > 120 {
		return nil, apperror.ValidationFailed("age", "age must be between 1 and 120")
	}
	if in.HeightCm <= 0 {
		return nil, apperror.ValidationFailed("heightCm", "height must be positive")
	}
	if in.WeightKg <= 0 {
		return nil, apperror.ValidationFailed("weightKg", "weight must be positive")
	}

	result := recommend.Evaluate(*in)
	return &result, nil
}
