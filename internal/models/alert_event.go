package models

import "time"

// Alert types (human-readable, used in notifications and persistence).
const (
	AlertTypeHighHeartRate = "High Heart Rate"
	AlertTypeLowHeartRate  = "Low Heart Rate"
)

// Alert event lifecycle states (alert_events.alarm_status).
const (
	AlertStatusActive       = "active"
	AlertStatusAcknowledged = "acknowledged"
)

// AlertEvent is emitted when a sustained heart-rate breach is first
// detected for a patient. It carries the four readings that tripped
// the threshold plus up to the last ten readings for context.
type AlertEvent struct {
	EventID     string    `json:"event_id"`
	TenantID    string    `json:"tenant_id"`
	PatientID   string    `json:"patient_id"`
	AlertType   string    `json:"alert_type"`
	AlarmStatus string    `json:"alarm_status"`
	BPMReadings []float64 `json:"bpm_readings"`
	History     []Reading `json:"history,omitempty"`
	TriggeredAt time.Time `json:"triggered_at"`
}
