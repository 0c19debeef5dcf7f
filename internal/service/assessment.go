package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nadira/healthdash/internal/apperror"
	"github.com/nadira/healthdash/internal/model"
	"github.com/nadira/healthdash/internal/predictor"
	"github.com/nadira/healthdash/internal/repository"
	"github.com/nadira/healthdash/internal/risk"
)

// AssessmentService runs the two screening flows: the lifestyle prediction
// (persisted) and the comprehensive risk assessment (transient).
type AssessmentService struct {
	records repository.HealthRecordRepository
	audits  repository.AuditRepository
	models  *predictor.Set
	logger  *slog.Logger
}

func NewAssessmentService(
	records repository.HealthRecordRepository,
	audits repository.AuditRepository,
	models *predictor.Set,
	logger *slog.Logger,
) *AssessmentService {
	return &AssessmentService{
		records: records,
		audits:  audits,
		models:  models,
		logger:  logger,
	}
}

// LifestyleInput is the lifestyle screening form. All fields are required;
// bounds match the intake form the models were trained against.
type LifestyleInput struct {
	Age      int     `json:"age"`
	Sex      string  `json:"sex"`
	HeightCm float64 `json:"heightCm"`
	WeightKg float64 `json:"weightKg"`
	GammaGTP float64 `json:"gammaGtp"`
	SBP      float64 `json:"sbp"`
	DBP      float64 `json:"dbp"`
	BLDS     float64 `json:"blds"`
}

func (in *LifestyleInput) validate() error {
	if in.Age < 1 || in.Age > 120 {
		return apperror.ValidationFailed("age", "age must be between 1 and 120")
	}
	if in.Sex != model.SexMale && in.Sex != model.SexFemale {
		return apperror.ValidationFailed("sex", "sex must be male or female")
	}
	if in.HeightCm < 100 || in.HeightCm > 250 {
		return apperror.ValidationFailed("heightCm", "height must be between 100 and 250 cm")
	}
	if in.WeightKg < 30 || in.WeightKg > 200 {
		return apperror.ValidationFailed("weightKg", "weight must be between 30 and 200 kg")
	}
	if in.GammaGTP < 1 || in.GammaGTP > 50 {
		return apperror.ValidationFailed("gammaGtp", "gamma-GTP must be between 1 and 50")
	}
	if in.SBP < 70 || in.SBP > 250 {
		return apperror.ValidationFailed("sbp", "systolic pressure must be between 70 and 250")
	}
	if in.DBP < 40 || in.DBP > 200 {
		return apperror.ValidationFailed("dbp", "diastolic pressure must be between 40 and 200")
	}
	if in.BLDS < 50 || in.BLDS > 500 {
		return apperror.ValidationFailed("blds", "fasting blood sugar must be between 50 and 500")
	}
	return nil
}

// LifestyleResult is what the lifestyle screening returns: the two binary
// labels plus the record that was appended to the user's history.
type LifestyleResult struct {
	Smoking  int                 `json:"smoking"`
	Drinking int                 `json:"drinking"`
	Record   *model.HealthRecord `json:"record"`
}

// SubmitLifestyle validates the form, runs the smoking and drinking
// classifiers, persists the submission with its labels, and records an
// audit entry. Both classifiers must be loaded; a missing artifact surfaces
// as apperror.ErrModelUnavailable.
func (s *AssessmentService) SubmitLifestyle(ctx context.Context, username string, in LifestyleInput) (*LifestyleResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	smoking, err := s.models.Predict(predictor.ModelSmoking, predictor.SmokingFeatures(in.Sex, in.Age))
	if err != nil {
		return nil, fmt.Errorf("service/assessment: smoking prediction: %w", err)
	}
	drinking, err := s.models.Predict(predictor.ModelDrinking, predictor.DrinkingFeatures(in.Sex, in.Age, in.HeightCm, in.GammaGTP))
	if err != nil {
		return nil, fmt.Errorf("service/assessment: drinking prediction: %w", err)
	}

	record := &model.HealthRecord{
		Username:           username,
		Age:                in.Age,
		Sex:                in.Sex,
		HeightCm:           in.HeightCm,
		WeightKg:           in.WeightKg,
		GammaGTP:           in.GammaGTP,
		SBP:                in.SBP,
		DBP:                in.DBP,
		BLDS:               in.BLDS,
		SmokingPrediction:  smoking,
		DrinkingPrediction: drinking,
	}
	if err := s.records.Append(ctx, record); err != nil {
		return nil, fmt.Errorf("service/assessment: appending record for %q: %w", username, err)
	}

	s.logger.Info("lifestyle prediction stored",
		slog.String("username", username),
		slog.String("recordID", record.ID),
		slog.Int("smoking", smoking),
		slog.Int("drinking", drinking),
	)
	s.audit(ctx, username, model.AuditPrediction,
		fmt.Sprintf("smoking=%d drinking=%d", smoking, drinking))

	return &LifestyleResult{
		Smoking:  smoking,
		Drinking: drinking,
		Record:   record,
	}, nil
}

// DiseasePrediction is one classifier's verdict in a risk assessment.
// Available is false when the artifact was not loaded; Label is meaningful
// only when Available is true.
type DiseasePrediction struct {
	ModelID   string `json:"modelId"`
	Available bool   `json:"available"`
	Label     int    `json:"label"`
}

// RiskResult combines the deterministic rule flags with the per-disease
// classifier verdicts. It is never persisted.
type RiskResult struct {
	Rules       risk.Report         `json:"rules"`
	Predictions []DiseasePrediction `json:"predictions"`
}

// riskModels are the classifiers consulted by the comprehensive
// assessment, in response order.
var riskModels = []string{
	predictor.ModelHypertension,
	predictor.ModelDiabetes,
	predictor.ModelHighCholesterol,
	predictor.ModelAnemia,
	predictor.ModelFattyLiver,
}

// SubmitRiskAssessment validates the full clinical form, evaluates the rule
// engine, and consults whichever disease classifiers are loaded. Missing
// models degrade to Available=false entries rather than failing the whole
// assessment; the rule flags are always computed.
func (s *AssessmentService) SubmitRiskAssessment(ctx context.Context, username string, a *model.Assessment) (*RiskResult, error) {
	if err := validateAssessment(a); err != nil {
		return nil, err
	}

	result := &RiskResult{
		Rules:       risk.Evaluate(a),
		Predictions: make([]DiseasePrediction, 0, len(riskModels)),
	}

	features := predictor.RiskFeatures(a)
	for _, id := range riskModels {
		p := DiseasePrediction{ModelID: id}
		if s.models.Available(id) {
			label, err := s.models.Predict(id, features)
			if err != nil {
				s.logger.Error("disease prediction failed",
					slog.String("model", id),
					slog.Any("error", err),
				)
			} else {
				p.Available = true
				p.Label = label
			}
		}
		result.Predictions = append(result.Predictions, p)
	}

	s.audit(ctx, username, model.AuditRiskCheck, "")
	return result, nil
}

func validateAssessment(a *model.Assessment) error {
	if a == nil {
		return apperror.ValidationFailed("body", "assessment is required")
	}
	if a.Age < 1 || a.Age > 120 {
		return apperror.ValidationFailed("age", "age must be between 1 and 120")
	}
	if a.Sex != model.SexMale && a.Sex != model.SexFemale {
		return apperror.ValidationFailed("sex", "sex must be male or female")
	}
	if a.HeightCm <= 0 {
		return apperror.ValidationFailed("heightCm", "height must be positive")
	}
	if a.WeightKg <= 0 {
		return apperror.ValidationFailed("weightKg", "weight must be positive")
	}
	if a.WaistCm <= 0 {
		return apperror.ValidationFailed("waistCm", "waist circumference must be positive")
	}
	if a.SBP <= 0 || a.DBP <= 0 {
		return apperror.ValidationFailed("bloodPressure", "blood pressure readings must be positive")
	}
	if a.BLDS <= 0 {
		return apperror.ValidationFailed("blds", "fasting blood sugar must be positive")
	}
	if a.Hemoglobin <= 0 {
		return apperror.ValidationFailed("hemoglobin", "hemoglobin must be positive")
	}

	// Every lab value is required. A zero here means the field was absent
	// from the submission, and a zero fed to the rule engine flags diseases
	// the user does not have (HDL=0 reads as severe dyslipidemia).
	labs := []struct {
		field    string
		value    float64
		min, max float64
	}{
		{"sightLeft", a.SightLeft, 0.1, 2.0},
		{"sightRight", a.SightRight, 0.1, 2.0},
		{"totalCholesterol", a.TotalCholesterol, 100, 400},
		{"hdl", a.HDL, 20, 100},
		{"ldl", a.LDL, 50, 250},
		{"triglyceride", a.Triglyceride, 50, 500},
		{"serumCreatinine", a.SerumCreatinine, 0.5, 5.0},
		{"ast", a.AST, 5, 200},
		{"alt", a.ALT, 5, 200},
		{"gammaGtp", a.GammaGTP, 5, 300},
	}
	for _, l := range labs {
		if l.value < l.min || l.value > l.max {
			return apperror.ValidationFailed(l.field,
				fmt.Sprintf("%s must be between %g and %g", l.field, l.min, l.max))
		}
	}
	if a.HearLeft != 1 && a.HearLeft != 2 {
		return apperror.ValidationFailed("hearLeft", "hearing must be 1 (normal) or 2 (abnormal)")
	}
	if a.HearRight != 1 && a.HearRight != 2 {
		return apperror.ValidationFailed("hearRight", "hearing must be 1 (normal) or 2 (abnormal)")
	}
	if a.UrineProtein < 1 || a.UrineProtein > 4 {
		return apperror.ValidationFailed("urineProtein", "urine protein must be between 1 and 4")
	}
	switch a.Smoking {
	case model.SmokingNever, model.SmokingFormer, model.SmokingCurrent:
	default:
		return apperror.ValidationFailed("smoking", "smoking must be 1 (never), 2 (former) or 3 (current)")
	}
	if a.Drinking != 0 && a.Drinking != 1 {
		return apperror.ValidationFailed("drinking", "drinking must be 0 or 1")
	}
	return nil
}

func (s *AssessmentService) audit(ctx context.Context, username, action, metadata string) {
	err := s.audits.Record(ctx, &model.AuditEntry{
		Username: username,
		Action:   action,
		Metadata: metadata,
	})
	if err != nil {
		s.logger.Error("audit write failed",
			slog.String("username", username),
			slog.String("action", action),
			slog.Any("error", err),
		)
	}
}
