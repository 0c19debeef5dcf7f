package model

// Summary scopes.
const (
	ScopeUser   = "user"
	ScopeGlobal = "global"
)

// Summary holds the aggregate metrics shown on the dashboard gauges,
// computed either over one user's history or over the reference
// population dataset.
type Summary struct {
	Scope          string  `json:"scope"`
	Count          int     `json:"count"`
	MeanBLDS       float64 `json:"meanBlds"`
	MeanBMI        float64 `json:"meanBmi"`
	MeanSBP        float64 `json:"meanSbp"`
	MeanDBP        float64 `json:"meanDbp"`
	MeanGammaGTP   float64 `json:"meanGammaGtp"`
	SmokerPercent  float64 `json:"smokerPercent"`
	DrinkerPercent float64 `json:"drinkerPercent"`
}
