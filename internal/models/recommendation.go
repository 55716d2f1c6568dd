package models

// Severity is the urgency tag attached to a recommendation.
// Ordering, most to least urgent: red > yellow > blue > green > slate.
type Severity string

const (
	SeverityRed    Severity = "red"
	SeverityYellow Severity = "yellow"
	SeverityBlue   Severity = "blue"
	SeverityGreen  Severity = "green"
	SeveritySlate  Severity = "slate"
)

// Recommendation is the classifier output shown on the dashboard card.
type Recommendation struct {
	Text     string   `json:"text"`
	Severity Severity `json:"severity"`
}
