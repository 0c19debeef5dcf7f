// Package recommend turns a user's latest health numbers into lifestyle
// advice and a small set of related health-news links. All functions are
// pure; persistence and auth live in the service layer.
package recommend

import "github.com/nadira/healthdash/internal/risk"

// Input is the subset of health data the advice rules look at.
type Input struct {
	Age        int     `json:"age"`
	HeightCm   float64 `json:"heightCm"`
	WeightKg   float64 `json:"weightKg"`
	SBP        float64 `json:"sbp"`
	DBP        float64 `json:"dbp"`
	BloodSugar float64 `json:"bloodSugar"`
	Smoker     bool    `json:"smoker"`
	Drinker    bool    `json:"drinker"`
}

// Advice is one actionable recommendation.
type Advice struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// NewsItem is a curated health article relevant to one of the advice rules.
type NewsItem struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Link    string `json:"link"`
}

// Result bundles everything the recommendations endpoint returns.
type Result struct {
	BMI         float64    `json:"bmi"`
	BMICategory string     `json:"bmiCategory"`
	Advice      []Advice   `json:"advice"`
	News        []NewsItem `json:"news"`
}

// seniorAge is the cutoff for the low-impact-activity advice.
const seniorAge = 60

var newsCatalog = []NewsItem{
	{
		ID:      "smoking",
		Title:   "Quitting Smoking Pays Off Sooner Than Expected",
		Summary: "Studies show measurable improvement in lung function within weeks of quitting.",
		Link:    "https://www.who.int/news-room/spotlight/more-than-100-reasons-to-quit-tobacco",
	},
	{
		ID:      "hypertension",
		Title:   "The DASH Diet: A Proven Way to Control High Blood Pressure",
		Summary: "Dietary Approaches to Stop Hypertension (DASH) has been shown to lower elevated blood pressure.",
		Link:    "https://www.nhlbi.nih.gov/education/dash-eating-plan",
	},
	{
		ID:      "drinking",
		Title:   "What a Month Without Alcohol Does for Your Body",
		Summary: "A month off alcohol can improve sleep, liver markers and overall awareness of drinking habits.",
		Link:    "https://www.who.int/news-room/fact-sheets/detail/alcohol",
	},
	{
		ID:      "bmi",
		Title:   "Obesity: Causes and Health Consequences to Watch For",
		Summary: "Excess weight affects physical and mental health, quality of life and life expectancy.",
		Link:    "https://www.who.int/news-room/fact-sheets/detail/obesity-and-overweight",
	},
	{
		ID:      "senior",
		Title:   "Exercise Options for Older Adults and Their Benefits",
		Summary: "Regular light activity keeps muscles and joints strong and lowers the risk of age-related disease.",
		Link:    "https://www.cdc.gov/physical-activity-basics/guidelines/older-adults.html",
	},
	{
		ID:      "general",
		Title:   "Why Enough Sleep Matters for Long-Term Health",
		Summary: "Seven to eight hours of quality sleep supports immunity, cognition and mental health.",
		Link:    "https://www.cdc.gov/sleep/about/index.html",
	},
}

// Evaluate derives BMI from the input and runs the advice and news rules.
func Evaluate(in Input) Result {
	bmi := risk.BMI(in.WeightKg, in.HeightCm)
	return Result{
		BMI:         bmi,
		BMICategory: risk.BMICategory(bmi),
		Advice:      adviceFor(in, bmi),
		News:        newsFor(in, bmi),
	}
}

func adviceFor(in Input, bmi float64) []Advice {
	var out []Advice
	if bmi >= risk.BMIOverweight {
		out = append(out, Advice{
			Title: "Weight Management",
			Body:  "Your BMI indicates excess weight. Adopt a balanced diet and increase physical activity.",
		})
	}
	if in.SBP >= risk.SBPThreshold || in.DBP >= risk.DBPThreshold {
		out = append(out, Advice{
			Title: "Blood Pressure Control",
			Body:  "Your blood pressure is high. Reduce sodium intake, manage stress and consult a doctor.",
		})
	}
	if in.BloodSugar >= risk.BLDSThreshold {
		out = append(out, Advice{
			Title: "Diabetes Warning",
			Body:  "Your fasting blood sugar is high. Cut down on sugar and consult a doctor.",
		})
	}
	if in.Age >= seniorAge {
		out = append(out, Advice{
			Title: "Activity for Older Adults",
			Body:  "Do light physical activity regularly, such as walking or gentle exercise.",
		})
	}
	if in.Smoker {
		out = append(out, Advice{
			Title: "Benefits of Quitting Smoking",
			Body:  "Quitting smoking drastically lowers your risk of heart disease, stroke and cancer.",
		})
	}
	if in.Drinker {
		out = append(out, Advice{
			Title: "Reduce Alcohol Consumption",
			Body:  "Cutting back on alcohol benefits liver health and lowers the risk of chronic disease.",
		})
	}
	if len(out) == 0 {
		out = append(out, Advice{
			Title: "You Are Doing Well",
			Body:  "Keep up your healthy lifestyle!",
		})
	}
	return out
}

func newsFor(in Input, bmi float64) []NewsItem {
	var ids []string
	if in.Smoker {
		ids = append(ids, "smoking")
	}
	if in.SBP >= risk.SBPThreshold || in.DBP >= risk.DBPThreshold {
		ids = append(ids, "hypertension")
	}
	if in.Drinker {
		ids = append(ids, "drinking")
	}
	if bmi >= risk.BMIOverweight {
		ids = append(ids, "bmi")
	}
	if in.Age >= seniorAge {
		ids = append(ids, "senior")
	}
	// The general item closes every list.
	ids = append(ids, "general")

	seen := make(map[string]bool, len(ids))
	var out []NewsItem
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if item, ok := newsByID(id); ok {
			out = append(out, item)
		}
	}
	return out
}

func newsByID(id string) (NewsItem, bool) {
	for _, item := range newsCatalog {
		if item.ID == id {
			return item, true
		}
	}
	return NewsItem{}, false
}
