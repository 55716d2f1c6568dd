package models

import "time"

// Evaluation is one full engine pass over a patient record. It is
// written to the insights cache for the presentation layer; Alert is
// nil unless this pass crossed a suppression edge.
type Evaluation struct {
	PatientID      string         `json:"patient_id"`
	Discharge      string         `json:"discharge"`
	Recommendation Recommendation `json:"recommendation"`
	SleepQuality   float64        `json:"sleep_quality"`
	Alert          *AlertEvent    `json:"alert,omitempty"`
	EvaluatedAt    time.Time      `json:"evaluated_at"`
}
