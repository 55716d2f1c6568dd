package engine

import (
	"math"

	"wisefido-vitals/internal/models"
)

// Sleep-quality penalty thresholds and caps. The score starts at a
// perfect 10.0 and each penalty is independent, additive and capped.
const (
	sleepIdealBPM      = 70.0
	sleepBPMPenaltyCap = 2.5

	sleepRestlessStdDev   = 4.0
	sleepStdDevPenaltyCap = 2.0

	sleepIdealMinSpO2    = 95.0
	sleepSpO2PenaltyCap  = 3.5

	sleepIdealTemp      = 37.2
	sleepTempPenaltyCap = 2.0
)

// EstimateSleepQuality derives a 1-10 sleep score (one decimal place)
// from a window of readings. An empty window scores 0, the caller's
// signal that there is nothing to estimate from.
func EstimateSleepQuality(window []models.Reading) float64 {
	if len(window) == 0 {
		return 0
	}

	avgBpm := meanBPM(window)
	stdDev := stdDevBPM(window)
	minSpo2 := minSpO2(window)
	avgTemp := meanTemp(window)

	score := 10.0

	// Elevated average heart rate: ideal sleeping HR is lower.
	if avgBpm > sleepIdealBPM {
		score -= math.Min(sleepBPMPenaltyCap, (avgBpm-sleepIdealBPM)*0.2)
	}

	// Heart-rate instability reads as restlessness.
	if stdDev > sleepRestlessStdDev {
		score -= math.Min(sleepStdDevPenaltyCap, (stdDev-sleepRestlessStdDev)*0.5)
	}

	// Any oxygen dip is penalised hardest.
	if minSpo2 < sleepIdealMinSpO2 {
		score -= math.Min(sleepSpO2PenaltyCap, (sleepIdealMinSpO2-minSpo2)*1.5)
	}

	// Fever disrupts sleep.
	if avgTemp > sleepIdealTemp {
		score -= math.Min(sleepTempPenaltyCap, (avgTemp-sleepIdealTemp)*2)
	}

	if score < 1 {
		score = 1
	}
	if score > 10 {
		score = 10
	}
	return math.Round(score*10) / 10
}
