package engine

import (
	"time"

	"wisefido-vitals/internal/models"
)

// Classifier thresholds.
const (
	criticalSpO2       = 92.0
	lowAvgSpO2         = 95.0
	elevatedAvgBPM     = 110.0
	feverAvgTemp       = 37.8
	lowLatestBPM       = 55.0
	poorSleepQuality   = 5.0
	decliningSpO2Trend = -1.5
	risingBPMTrend     = 10.0
	improvingSpO2Trend = 0.5
	improvingBPMTrend  = -5.0
)

// cascadeStats holds everything a cascade rule may look at, computed
// once over the shared 12-reading analysis window.
type cascadeStats struct {
	latest       models.Reading
	avgBpm       float64
	avgSpo2      float64
	avgTemp      float64
	bpmTrend     float64 // second-half mean minus first-half mean
	spo2Trend    float64
	sleepQuality float64
	dayOfWeek    int
}

// recommendRule is one (predicate, outcome) pair in the cascade.
type recommendRule struct {
	name string
	when func(s cascadeStats) bool
	then func(s cascadeStats) models.Recommendation
}

func staticOutcome(text string, sev models.Severity) func(cascadeStats) models.Recommendation {
	return func(cascadeStats) models.Recommendation {
		return models.Recommendation{Text: text, Severity: sev}
	}
}

// rehabFocusTexts rotate day by day while vitals are locally stable,
// so guidance varies without being safety-relevant.
var rehabFocusTexts = [3]string{
	"Rehab Focus: Vitals are stable. Let's work on breathing. Try 5 minutes of deep belly breathing to improve lung capacity.",
	"Rehab Focus: Your condition is stable. It's a good time for light activity. Try a slow, 5-minute walk indoors to promote circulation.",
	"Rehab Focus: Vitals look good. Gentle movement is key. Try some simple seated leg raises (10 per leg) to maintain muscle tone.",
}

// recommendCascade is evaluated top to bottom, first match wins. The
// more severe conditions sit first, so precedence stays auditable.
var recommendCascade = []recommendRule{
	{
		name: "critical_oxygen",
		when: func(s cascadeStats) bool { return s.latest.SpO2 < criticalSpO2 },
		then: staticOutcome(
			"Critical: Oxygen saturation is very low. Immediate medical attention may be required. Focus on deep, controlled breathing.",
			models.SeverityRed,
		),
	},
	{
		name: "declining_oxygen_trend",
		when: func(s cascadeStats) bool { return s.spo2Trend < decliningSpO2Trend },
		then: staticOutcome(
			"Concern: Oxygen saturation shows a declining trend. Please ensure you are in a well-ventilated area and practice deep breathing exercises.",
			models.SeverityYellow,
		),
	},
	{
		name: "low_average_oxygen",
		when: func(s cascadeStats) bool { return s.avgSpo2 < lowAvgSpO2 },
		then: staticOutcome(
			"Attention: Average oxygen saturation is consistently below the optimal 95%. Try sitting upright to improve lung expansion. Continue to monitor closely.",
			models.SeverityYellow,
		),
	},
	{
		name: "elevated_heart_rate",
		when: func(s cascadeStats) bool { return s.avgBpm > elevatedAvgBPM },
		then: staticOutcome(
			"Attention: Heart rate has been consistently elevated. Avoid stimulants like caffeine, ensure proper hydration, and prioritize rest.",
			models.SeverityYellow,
		),
	},
	{
		name: "rising_heart_rate_trend",
		when: func(s cascadeStats) bool { return s.bpmTrend > risingBPMTrend },
		then: staticOutcome(
			"Observation: Heart rate shows a notable increasing trend. Monitor for symptoms like palpitations or shortness of breath and report them.",
			models.SeverityYellow,
		),
	},
	{
		name: "fever",
		when: func(s cascadeStats) bool { return s.avgTemp > feverAvgTemp },
		then: staticOutcome(
			"Fever detected. Average temperature is high. Ensure high fluid intake and get plenty of rest. A tepid sponge bath can help provide comfort.",
			models.SeverityYellow,
		),
	},
	{
		name: "low_heart_rate",
		when: func(s cascadeStats) bool { return s.latest.BPM < lowLatestBPM },
		then: staticOutcome(
			"Heart rate is low. Monitor for symptoms like dizziness, lightheadedness, or fatigue. Report any concerns to your healthcare provider.",
			models.SeverityBlue,
		),
	},
	{
		name: "poor_sleep",
		when: func(s cascadeStats) bool { return s.sleepQuality > 0 && s.sleepQuality < poorSleepQuality },
		then: staticOutcome(
			"Observation: Your recent sleep quality has been low. Poor sleep can affect recovery. Try to maintain a consistent sleep schedule and avoid screens before bed.",
			models.SeverityYellow,
		),
	},
	{
		name: "rehab_focus",
		when: func(s cascadeStats) bool {
			return s.latest.BPM > 60 && s.latest.BPM < 100 && s.latest.SpO2 > 95
		},
		then: func(s cascadeStats) models.Recommendation {
			return models.Recommendation{
				Text:     rehabFocusTexts[s.dayOfWeek%3],
				Severity: models.SeverityBlue,
			}
		},
	},
	{
		name: "positive_progress",
		when: func(s cascadeStats) bool {
			return s.spo2Trend > improvingSpO2Trend && s.bpmTrend < improvingBPMTrend
		},
		then: staticOutcome(
			"Positive Progress: Vitals show excellent improvement, with oxygen levels rising and heart rate stabilizing. Keep up with the current care plan!",
			models.SeverityGreen,
		),
	},
}

var stableRecommendation = models.Recommendation{
	Text:     "Vitals are stable and within the normal range. Continue to maintain a balanced diet, stay hydrated, and get adequate rest. Great job!",
	Severity: models.SeverityGreen,
}

var moreDataRecommendation = models.Recommendation{
	Text:     "More data is needed for a comprehensive recommendation. Continue monitoring.",
	Severity: models.SeveritySlate,
}

// Recommend classifies the record's recent trend into a templated
// recommendation. Fewer than three total readings degrades to the
// slate "more data" message; with exactly three, every statistic runs
// over all three readings.
func Recommend(rec models.PatientRecord, now time.Time) models.Recommendation {
	readings := Flatten(rec)
	if len(readings) < 3 {
		return moreDataRecommendation
	}

	window := LastN(readings, analysisWindow)
	stats := computeCascadeStats(window, now)

	for _, rule := range recommendCascade {
		if rule.when(stats) {
			return rule.then(stats)
		}
	}
	return stableRecommendation
}

func computeCascadeStats(window []models.Reading, now time.Time) cascadeStats {
	half := len(window) / 2
	firstHalf := window[:half]
	secondHalf := window[half:]

	return cascadeStats{
		latest:       window[len(window)-1],
		avgBpm:       meanBPM(window),
		avgSpo2:      meanSpO2(window),
		avgTemp:      meanTemp(window),
		bpmTrend:     meanBPM(secondHalf) - meanBPM(firstHalf),
		spo2Trend:    meanSpO2(secondHalf) - meanSpO2(firstHalf),
		sleepQuality: EstimateSleepQuality(window),
		dayOfWeek:    int(now.Weekday()),
	}
}
