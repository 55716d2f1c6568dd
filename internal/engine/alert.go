package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"wisefido-vitals/internal/models"
)

// Per-patient alert states. The empty string means no alert condition
// is currently latched.
const (
	AlertStateNone = ""
	AlertStateHigh = "high"
	AlertStateLow  = "low"
)

// AlertStateStore remembers the last alert condition fired per
// patient, so repeat evaluations of a sustained breach stay silent.
// Implementations live in internal/state.
type AlertStateStore interface {
	Get(ctx context.Context, patientID string) (string, error)
	Set(ctx context.Context, patientID, state string) error
	Clear(ctx context.Context, patientID string) error
}

// Alerter detects sustained heart-rate breaches over the last four
// readings and emits an event only when the latched state changes.
// Callers must serialize evaluations per patient; the suppression
// state is order-dependent.
type Alerter struct {
	highThreshold float64
	lowThreshold  float64
	store         AlertStateStore
	logger        *zap.Logger
}

// NewAlerter creates an alerter with the given bpm thresholds.
func NewAlerter(highThreshold, lowThreshold float64, store AlertStateStore, logger *zap.Logger) *Alerter {
	return &Alerter{
		highThreshold: highThreshold,
		lowThreshold:  lowThreshold,
		store:         store,
		logger:        logger,
	}
}

// Evaluate runs the alert state machine for one patient snapshot.
// It returns a non-nil event exactly when a new alert fires. State is
// updated on the decision, independent of whether delivery later
// succeeds.
func (a *Alerter) Evaluate(ctx context.Context, tenantID, patientID string, rec models.PatientRecord) (*models.AlertEvent, error) {
	readings := Flatten(rec)
	if len(readings) < alertWindow {
		return nil, nil
	}

	lastFour := LastN(readings, alertWindow)
	bpms := make([]float64, len(lastFour))
	isHigh, isLow := true, true
	for i, r := range lastFour {
		bpms[i] = r.BPM
		if r.BPM <= a.highThreshold {
			isHigh = false
		}
		if r.BPM >= a.lowThreshold {
			isLow = false
		}
	}

	prev, err := a.store.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}

	switch {
	case isHigh:
		if prev == AlertStateHigh {
			return nil, nil
		}
		if err := a.store.Set(ctx, patientID, AlertStateHigh); err != nil {
			return nil, err
		}
		return a.buildEvent(tenantID, patientID, models.AlertTypeHighHeartRate, bpms, readings), nil

	case isLow:
		if prev == AlertStateLow {
			return nil, nil
		}
		if err := a.store.Set(ctx, patientID, AlertStateLow); err != nil {
			return nil, err
		}
		return a.buildEvent(tenantID, patientID, models.AlertTypeLowHeartRate, bpms, readings), nil

	default:
		// Condition no longer holds: re-arm both alert kinds.
		if prev != AlertStateNone {
			if err := a.store.Clear(ctx, patientID); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}
}

func (a *Alerter) buildEvent(tenantID, patientID, alertType string, bpms []float64, readings []models.Reading) *models.AlertEvent {
	event := &models.AlertEvent{
		EventID:     uuid.New().String(),
		TenantID:    tenantID,
		PatientID:   patientID,
		AlertType:   alertType,
		AlarmStatus: models.AlertStatusActive,
		BPMReadings: bpms,
		History:     LastN(readings, historyWindow),
		TriggeredAt: time.Now(),
	}

	a.logger.Warn("Heart rate alert fired",
		zap.String("patient_id", patientID),
		zap.String("alert_type", alertType),
		zap.Float64s("bpm_readings", bpms),
	)

	return event
}
