package model

import "time"

// HealthRecord is one persisted biometric submission. A row is appended on
// every successful lifestyle prediction and never individually mutated; the
// only destructive operation is "delete all history" scoped to one user.
//
// Keying rows on (username, timestamp) alone collides
// under rapid consecutive submissions. We key on an xid instead: xids embed
// the creation instant, so ordering by ID agrees with ordering by timestamp.
// The store still enforces (username, timestamp) uniqueness as a guard.
type HealthRecord struct {
	ID        string    `json:"id"        db:"id"`
	Username  string    `json:"username"  db:"username"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`

	Age      int     `json:"age"      db:"age"`
	Sex      string  `json:"sex"      db:"sex"` // SexMale or SexFemale
	HeightCm float64 `json:"heightCm" db:"height"`
	WeightKg float64 `json:"weightKg" db:"weight"`
	GammaGTP float64 `json:"gammaGtp" db:"gamma_GTP"`
	SBP      float64 `json:"sbp"      db:"SBP"`
	DBP      float64 `json:"dbp"      db:"DBP"`
	BLDS     float64 `json:"blds"     db:"BLDS"` // fasting blood glucose

	// Binary labels returned by the classifiers at submission time.
	SmokingPrediction  int `json:"smokingPrediction"  db:"smoking_prediction"`
	DrinkingPrediction int `json:"drinkingPrediction" db:"drinking_prediction"`
}

// BMI returns weight(kg) / height(m)² for this record, or 0 when the height
// is missing.
func (r *HealthRecord) BMI() float64 {
	if r.HeightCm <= 0 {
		return 0
	}
	m := r.HeightCm / 100
	return r.WeightKg / (m * m)
}

// AuditEntry is one row of the write-only history table. Nothing in the
// application reads it back; it exists for after-the-fact inspection of who
// did what and when.
type AuditEntry struct {
	Username  string    `json:"username"  db:"username"`
	Action    string    `json:"action"    db:"action"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	Metadata  string    `json:"metadata"  db:"metadata"`
}

// Audit actions recorded by the services.
const (
	AuditSignup        = "signup"
	AuditLogin         = "login"
	AuditPrediction    = "prediction"
	AuditRiskCheck     = "risk_assessment"
	AuditDeleteHistory = "delete_history"
)
