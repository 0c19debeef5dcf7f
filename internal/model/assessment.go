package model

// Smoking status levels used by the comprehensive risk screen. The lifestyle
// screen uses a plain 0/1 label instead; the two encodings are independent
// model contracts and are not collapsed into each other.
const (
	SmokingNever   = 1
	SmokingFormer  = 2
	SmokingCurrent = 3
)

// Assessment is the validated 24-field input bag consumed by the risk rule
// engine and the comprehensive risk classifiers. It is transient: built fresh
// per submission, never persisted, discarded after the report is produced.
//
// Field names follow the clinical dataset the models were trained on
// (SGOT_AST, BLDS, gamma_GTP and friends) rather than Go-pretty names, so
// that the feature-order contract in internal/predictor reads one-to-one
// against the training columns.
type Assessment struct {
	Sex        string  `json:"sex"` // SexMale or SexFemale
	Age        int     `json:"age"`
	HeightCm   float64 `json:"heightCm"`
	WeightKg   float64 `json:"weightKg"`
	WaistCm    float64 `json:"waistCm"`
	SightLeft  float64 `json:"sightLeft"`
	SightRight float64 `json:"sightRight"`
	HearLeft   int     `json:"hearLeft"`  // 1 normal, 2 abnormal
	HearRight  int     `json:"hearRight"` // 1 normal, 2 abnormal

	SBP  float64 `json:"sbp"`
	DBP  float64 `json:"dbp"`
	BLDS float64 `json:"blds"`

	TotalCholesterol float64 `json:"totalCholesterol"`
	HDL              float64 `json:"hdl"`
	LDL              float64 `json:"ldl"`
	Triglyceride     float64 `json:"triglyceride"`
	Hemoglobin       float64 `json:"hemoglobin"`
	UrineProtein     int     `json:"urineProtein"` // 1 normal, 2-4 abnormal
	SerumCreatinine  float64 `json:"serumCreatinine"`
	AST              float64 `json:"ast"` // SGOT_AST
	ALT              float64 `json:"alt"` // SGOT_ALT
	GammaGTP         float64 `json:"gammaGtp"`

	Smoking  int `json:"smoking"`  // SmokingNever / SmokingFormer / SmokingCurrent
	Drinking int `json:"drinking"` // 0 no, 1 yes
}

// BMI returns weight(kg) / height(m)² for this assessment.
func (a *Assessment) BMI() float64 {
	if a.HeightCm <= 0 {
		return 0
	}
	m := a.HeightCm / 100
	return a.WeightKg / (m * m)
}
