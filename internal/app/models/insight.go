package models

// Insight priorities and urgencies used by the generators. Insights are
// computed on demand and never persisted.
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

const (
	UrgencyImmediate = "Immediate"
	UrgencyThisWeek  = "This Week"
	UrgencyThisMonth = "This Month"
)

type Insight struct {
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Confidence    float64 `json:"confidence"`
	Actionable    bool    `json:"actionable"`
	Priority      string  `json:"priority"`
	Category      string  `json:"category,omitempty"`
	WeatherFactor string  `json:"weatherFactor,omitempty"`
	Urgency       string  `json:"urgency,omitempty"`
}

// PriorityRank maps a priority label to its sort weight.
func PriorityRank(p string) int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// UrgencyRank maps an urgency label to its sort weight. A missing urgency
// sorts as "This Month".
func UrgencyRank(u string) int {
	switch u {
	case UrgencyImmediate:
		return 3
	case UrgencyThisWeek:
		return 2
	default:
		return 1
	}
}
