package engine

import (
	"sort"
	"time"

	"wisefido-vitals/internal/models"
)

// Degraded discharge labels for records without enough data.
const (
	DischargeEvaluationNeeded = "Evaluation needed"
	DischargeMonitoring       = "Monitoring"
)

// PredictDischargeDate projects a discharge date from the last three
// readings of the most recent day. The policy is ordered, first match
// wins: stable and improving +3 days, stable only +5, neither +10,
// improving but not stable +7 (the default).
func PredictDischargeDate(rec models.PatientRecord, now time.Time) string {
	dates := rec.Dates()
	if len(dates) == 0 {
		return DischargeEvaluationNeeded
	}

	latestDay := rec.Vitals[dates[len(dates)-1]]
	times := make([]string, 0, len(latestDay))
	for t := range latestDay {
		times = append(times, t)
	}
	if len(times) < dischargeWindow {
		return DischargeMonitoring
	}
	sort.Strings(times)

	recent := make([]models.Reading, 0, dischargeWindow)
	for _, t := range times[len(times)-dischargeWindow:] {
		recent = append(recent, models.Reading{Time: t, VitalsReading: latestDay[t]})
	}

	avgBpm := meanBPM(recent)
	avgSpo2 := meanSpO2(recent)

	isStable := avgBpm > 60 && avgBpm < 100 && avgSpo2 > 95
	trendImproving := recent[2].BPM <= recent[0].BPM && recent[2].SpO2 >= recent[0].SpO2

	daysToAdd := 7
	switch {
	case isStable && trendImproving:
		daysToAdd = 3
	case isStable:
		daysToAdd = 5
	case !isStable && !trendImproving:
		daysToAdd = 10
	}

	return now.AddDate(0, 0, daysToAdd).Format("January 2")
}
