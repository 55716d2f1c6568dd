package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"wisefido-vitals/internal/models"
)

// Evaluator runs the four inference algorithms over one patient
// record snapshot. It never mutates the record; the alert state store
// behind the Alerter is the only mutable resource it touches.
type Evaluator struct {
	alerter *Alerter
	logger  *zap.Logger
}

// NewEvaluator creates the engine facade.
func NewEvaluator(alerter *Alerter, logger *zap.Logger) *Evaluator {
	return &Evaluator{
		alerter: alerter,
		logger:  logger,
	}
}

// Evaluate produces the full evaluation for one snapshot. Every
// algorithm degrades to an explicit fallback on insufficient data, so
// the only error path is the alert state store.
func (e *Evaluator) Evaluate(ctx context.Context, tenantID, patientID string, rec models.PatientRecord) (*models.Evaluation, error) {
	now := time.Now()

	eval := &models.Evaluation{
		PatientID:      patientID,
		Discharge:      PredictDischargeDate(rec, now),
		Recommendation: Recommend(rec, now),
		EvaluatedAt:    now,
	}

	window := LastN(Flatten(rec), analysisWindow)
	eval.SleepQuality = EstimateSleepQuality(window)

	alert, err := e.alerter.Evaluate(ctx, tenantID, patientID, rec)
	if err != nil {
		return nil, err
	}
	eval.Alert = alert

	return eval, nil
}
