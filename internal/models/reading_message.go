package models

// ReadingMessage is one vitals sample as published by bedside devices
// on the ingest MQTT topic. Payloads are arrays of these messages.
type ReadingMessage struct {
	PatientID string  `json:"patient_id"`
	Date      string  `json:"date"` // "YYYY-MM-DD"
	Time      string  `json:"time"` // "HH:MM:SS"
	BPM       float64 `json:"bpm"`
	SpO2      float64 `json:"spo2"`
	Temp      float64 `json:"temp"`
}
