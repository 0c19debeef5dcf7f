package predictor

import "github.com/nadira/healthdash/internal/model"

// FEATURE ORDER CONTRACTS
//
// Each classifier expects its features in exactly the column order used at
// training time. The orders below are hardcoded, not inferred; changing one
// silently breaks every prediction, so they are treated as wire formats.
//
// The two screens also encode sex differently, and that divergence is
// intentional: the lifestyle models (smoking, drinking) were trained with
// male=1/female=0, the comprehensive risk models with male=0/female=1.
// Re-encoding one to match the other would feed every model inverted sex.

// SmokingFeatureNames is the training column order of the smoking model.
var SmokingFeatureNames = []string{"sex", "age"}

// DrinkingFeatureNames is the training column order of the drinking model.
var DrinkingFeatureNames = []string{"sex", "age", "height", "gamma_GTP"}

// RiskFeatureNames is the training column order shared by all five
// comprehensive risk models.
var RiskFeatureNames = []string{
	"sex", "age", "height", "weight", "waistline",
	"sight_left", "sight_right", "hear_left", "hear_right",
	"SBP", "DBP", "BLDS",
	"tot_chole", "HDL_chole", "LDL_chole", "triglyceride",
	"hemoglobin", "urine_protein", "serum_creatinine",
	"SGOT_AST", "SGOT_ALT", "gamma_GTP",
	"smoking", "drinking",
}

// encodeSexLifestyle is the lifestyle-screen encoding: male=1, female=0.
func encodeSexLifestyle(sex string) float64 {
	if sex == model.SexMale {
		return 1
	}
	return 0
}

// encodeSexClinical is the comprehensive-screen encoding: male=0, female=1.
func encodeSexClinical(sex string) float64 {
	if sex == model.SexMale {
		return 0
	}
	return 1
}

// SmokingFeatures builds the smoking model's feature vector.
func SmokingFeatures(sex string, age int) []float64 {
	return []float64{encodeSexLifestyle(sex), float64(age)}
}

// DrinkingFeatures builds the drinking model's feature vector.
func DrinkingFeatures(sex string, age int, heightCm, gammaGTP float64) []float64 {
	return []float64{encodeSexLifestyle(sex), float64(age), heightCm, gammaGTP}
}

// RiskFeatures builds the 24-element vector shared by the comprehensive risk
// models, in RiskFeatureNames order. Smoking is the three-level ordinal
// (1 never, 2 former, 3 current); drinking is 0/1.
func RiskFeatures(a *model.Assessment) []float64 {
	return []float64{
		encodeSexClinical(a.Sex),
		float64(a.Age),
		a.HeightCm,
		a.WeightKg,
		a.WaistCm,
		a.SightLeft,
		a.SightRight,
		float64(a.HearLeft),
		float64(a.HearRight),
		a.SBP,
		a.DBP,
		a.BLDS,
		a.TotalCholesterol,
		a.HDL,
		a.LDL,
		a.Triglyceride,
		a.Hemoglobin,
		float64(a.UrineProtein),
		a.SerumCreatinine,
		a.AST,
		a.ALT,
		a.GammaGTP,
		float64(a.Smoking),
		float64(a.Drinking),
	}
}
