// Package risk implements the rule-based disease risk classifier.
//
// Every rule is a pure function over clinical measurements, using literal
// WHO/ADA-style cutoffs. The thresholds are part of the product contract and
// must not be "tidied": 126 mg/dL is 126 mg/dL. Each rule is evaluable and
// testable on its own; Evaluate composes them into a full report.
//
// Rules never touch storage, never log, never fail: given numbers in, flags
// come out. That makes them the one part of the system that always works even
// when every ML artifact is missing.
package risk

import "github.com/nadira/healthdash/internal/model"

// Clinical cutoffs. Sources: WHO hypertension guideline (140/90), WHO/ADA
// fasting plasma glucose (126), lipid panel cutoffs as used in the training
// dataset, WHO hemoglobin thresholds for anemia.
const (
	SBPThreshold  = 140.0
	DBPThreshold  = 90.0
	BLDSThreshold = 126.0

	TotalCholesterolThreshold = 193.0
	LDLThreshold              = 116.0
	TriglycerideThreshold     = 150.0
	HDLThresholdMale          = 40.0
	HDLThresholdFemale        = 50.0

	HemoglobinThresholdMale   = 13.0
	HemoglobinThresholdFemale = 12.0

	ASTThreshold      = 40.0
	ALTThreshold      = 40.0
	GammaGTPThreshold = 60.0

	WaistThresholdMale   = 94.0
	WaistThresholdFemale = 80.0

	BMIUnderweight = 18.5
	BMIOverweight  = 25.0
	BMIObese       = 30.0
)

// BMICategory labels follow the standard WHO bands. Boundaries are
// half-open: [18.5, 25) is Normal, [25, 30) is Overweight.
const (
	CategoryUnderweight = "Underweight"
	CategoryNormal      = "Normal"
	CategoryOverweight  = "Overweight"
	CategoryObese       = "Obese"
)

// Report holds the boolean risk flags for one assessment plus the derived
// BMI. Flags are rule outputs, distinct from the ML-predicted labels the
// predictor package produces for the same diseases.
type Report struct {
	Hypertension bool `json:"hypertension"`
	Diabetes     bool `json:"diabetes"`
	Dyslipidemia bool `json:"dyslipidemia"`
	Anemia       bool `json:"anemia"`
	FattyLiver   bool `json:"fattyLiver"`

	BMI         float64 `json:"bmi"`
	BMICategory string  `json:"bmiCategory"`
}

// BMI computes weight(kg) / height(m)². Height is in centimetres; a
// non-positive height yields 0 rather than a division panic.
func BMI(weightKg, heightCm float64) float64 {
	if heightCm <= 0 {
		return 0
	}
	m := heightCm / 100
	return weightKg / (m * m)
}

// BMICategory classifies a BMI value. The bands have no gaps or overlaps:
// exactly 18.5 is Normal, exactly 25 is Overweight, exactly 30 is Obese.
func BMICategory(bmi float64) string {
	switch {
	case bmi < BMIUnderweight:
		return CategoryUnderweight
	case bmi < BMIOverweight:
		return CategoryNormal
	case bmi < BMIObese:
		return CategoryOverweight
	default:
		return CategoryObese
	}
}

// Hypertension flags systolic ≥ 140 mmHg or diastolic ≥ 90 mmHg.
func Hypertension(sbp, dbp float64) bool {
	return sbp >= SBPThreshold || dbp >= DBPThreshold
}

// Diabetes flags fasting glucose ≥ 126 mg/dL.
func Diabetes(blds float64) bool {
	return blds >= BLDSThreshold
}

// Dyslipidemia flags any elevated lipid, or low HDL with a sex-dependent
// cutoff (< 40 mg/dL for males, < 50 mg/dL for females).
func Dyslipidemia(totChole, ldl, triglyceride, hdl float64, sex string) bool {
	if totChole >= TotalCholesterolThreshold {
		return true
	}
	if ldl >= LDLThreshold {
		return true
	}
	if triglyceride >= TriglycerideThreshold {
		return true
	}
	hdlCutoff := HDLThresholdFemale
	if sex == model.SexMale {
		hdlCutoff = HDLThresholdMale
	}
	return hdl < hdlCutoff
}

// Anemia flags hemoglobin below 13 g/dL for males, 12 g/dL for females.
func Anemia(hemoglobin float64, sex string) bool {
	cutoff := HemoglobinThresholdFemale
	if sex == model.SexMale {
		cutoff = HemoglobinThresholdMale
	}
	return hemoglobin < cutoff
}

// FattyLiver is a NAFLD risk indicator: elevated liver enzymes (AST > 40,
// ALT > 40 or gamma-GTP > 60) combined with at least two metabolic risk
// factors among {BMI ≥ 25, high waist circumference, hypertension flag,
// diabetes flag, dyslipidemia flag}.
//
// Note the strict > on the enzyme cutoffs versus the ≥ elsewhere; that is
// how the rule was defined, not an accident.
func FattyLiver(ast, alt, gammaGTP, bmi, waistCm float64, sex string,
	hypertension, diabetes, dyslipidemia bool) bool {

	elevated := ast > ASTThreshold || alt > ALTThreshold || gammaGTP > GammaGTPThreshold
	if !elevated {
		return false
	}

	waistCutoff := WaistThresholdFemale
	if sex == model.SexMale {
		waistCutoff = WaistThresholdMale
	}

	factors := 0
	if bmi >= BMIOverweight {
		factors++
	}
	if waistCm >= waistCutoff {
		factors++
	}
	if hypertension {
		factors++
	}
	if diabetes {
		factors++
	}
	if dyslipidemia {
		factors++
	}

	return factors >= 2
}

// Evaluate runs every rule against one assessment and returns the combined
// report. The hypertension/diabetes/dyslipidemia flags feed into the fatty
// liver rule, so they are computed first.
func Evaluate(a *model.Assessment) Report {
	bmi := BMI(a.WeightKg, a.HeightCm)

	hypertension := Hypertension(a.SBP, a.DBP)
	diabetes := Diabetes(a.BLDS)
	dyslipidemia := Dyslipidemia(a.TotalCholesterol, a.LDL, a.Triglyceride, a.HDL, a.Sex)

	return Report{
		Hypertension: hypertension,
		Diabetes:     diabetes,
		Dyslipidemia: dyslipidemia,
		Anemia:       Anemia(a.Hemoglobin, a.Sex),
		FattyLiver: FattyLiver(a.AST, a.ALT, a.GammaGTP, bmi, a.WaistCm, a.Sex,
			hypertension, diabetes, dyslipidemia),
		BMI:         bmi,
		BMICategory: BMICategory(bmi),
	}
}
