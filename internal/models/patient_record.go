package models

import (
	"encoding/json"
	"fmt"
	"sort"
)

// FeedbackKey is the sidecar key the legacy record document uses for
// patient feedback. It sits next to the date keys in the same JSON
// object and must never be treated as a daily log.
const FeedbackKey = "feedback"

// VitalsReading is one sampled measurement at a specific time of day.
type VitalsReading struct {
	BPM          float64  `json:"bpm"`
	SpO2         float64  `json:"spo2"`
	Temp         float64  `json:"temp"`
	SleepQuality *float64 `json:"sleepQuality,omitempty"`
}

// DailyLog maps a time-of-day key ("HH:MM:SS") to its reading.
// Keys sort lexicographically in chronological order.
type DailyLog map[string]VitalsReading

// FeedbackEntry is one patient feedback message, keyed by submission
// timestamp in the record's sidecar.
type FeedbackEntry struct {
	Text  string  `json:"text"`
	Read  bool    `json:"read"`
	Reply *string `json:"reply,omitempty"`
}

// PatientRecord is one patient's full vitals document. Vitals maps a
// date key ("YYYY-MM-DD") to that day's log; Feedback holds the
// sidecar entries. The split happens once, at JSON decode time, so the
// engine never has to filter sidecar keys out of date iteration.
type PatientRecord struct {
	Vitals   map[string]DailyLog
	Feedback map[string]FeedbackEntry
}

// UnmarshalJSON decodes the legacy wire form, where the "feedback"
// sidecar lives next to the date keys in a single object.
func (r *PatientRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode patient record: %w", err)
	}

	r.Vitals = make(map[string]DailyLog, len(raw))
	for key, val := range raw {
		if key == FeedbackKey {
			if err := json.Unmarshal(val, &r.Feedback); err != nil {
				return fmt.Errorf("malformed feedback sidecar: %w", err)
			}
			continue
		}

		var day DailyLog
		if err := json.Unmarshal(val, &day); err != nil {
			return fmt.Errorf("malformed daily log %q: %w", key, err)
		}
		r.Vitals[key] = day
	}

	return nil
}

// MarshalJSON re-assembles the legacy wire form.
func (r PatientRecord) MarshalJSON() ([]byte, error) {
	doc := make(map[string]interface{}, len(r.Vitals)+1)
	for date, day := range r.Vitals {
		doc[date] = day
	}
	if len(r.Feedback) > 0 {
		doc[FeedbackKey] = r.Feedback
	}
	return json.Marshal(doc)
}

// Dates returns the record's date keys in chronological order.
func (r PatientRecord) Dates() []string {
	dates := make([]string, 0, len(r.Vitals))
	for date := range r.Vitals {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}

// Reading is one vitals sample tagged with its position in the record.
type Reading struct {
	Date string `json:"date"`
	Time string `json:"time"`
	VitalsReading
}
