package engine

import (
	"math"
	"sort"

	"wisefido-vitals/internal/models"
)

// Window sizes shared by the engine algorithms. The classifier and the
// sleep scorer must use the same window so their outputs stay
// consistent on the dashboard.
const (
	dischargeWindow = 3
	analysisWindow  = 12
	alertWindow     = 4
	historyWindow   = 10
)

// Flatten returns every reading in the record in chronological order
// (date key, then time key within the date). Date and time keys are
// ISO-like, so lexicographic order is chronological order.
func Flatten(rec models.PatientRecord) []models.Reading {
	readings := make([]models.Reading, 0, len(rec.Vitals)*4)
	for _, date := range rec.Dates() {
		day := rec.Vitals[date]

		times := make([]string, 0, len(day))
		for t := range day {
			times = append(times, t)
		}
		sort.Strings(times)

		for _, t := range times {
			readings = append(readings, models.Reading{
				Date:          date,
				Time:          t,
				VitalsReading: day[t],
			})
		}
	}
	return readings
}

// LastN returns the suffix of at most n readings.
func LastN(readings []models.Reading, n int) []models.Reading {
	if len(readings) <= n {
		return readings
	}
	return readings[len(readings)-n:]
}

func meanBPM(readings []models.Reading) float64 {
	return meanOf(readings, func(r models.Reading) float64 { return r.BPM })
}

func meanSpO2(readings []models.Reading) float64 {
	return meanOf(readings, func(r models.Reading) float64 { return r.SpO2 })
}

func meanTemp(readings []models.Reading) float64 {
	return meanOf(readings, func(r models.Reading) float64 { return r.Temp })
}

func meanOf(readings []models.Reading, field func(models.Reading) float64) float64 {
	if len(readings) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range readings {
		sum += field(r)
	}
	return sum / float64(len(readings))
}

// stdDevBPM is the population standard deviation (divide by N) of the
// heart-rate series, used as the restlessness measure.
func stdDevBPM(readings []models.Reading) float64 {
	n := len(readings)
	if n == 0 {
		return 0
	}
	mean := meanBPM(readings)
	sum := 0.0
	for _, r := range readings {
		d := r.BPM - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(n))
}

func minSpO2(readings []models.Reading) float64 {
	if len(readings) == 0 {
		return 0
	}
	min := readings[0].SpO2
	for _, r := range readings[1:] {
		if r.SpO2 < min {
			min = r.SpO2
		}
	}
	return min
}
