package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wisefido-vitals/internal/models"
	"wisefido-vitals/internal/state"
)

func TestEvaluator_FullPass(t *testing.T) {
	alerter := NewAlerter(120, 55, state.NewMemoryStore(), zap.NewNop())
	evaluator := NewEvaluator(alerter, zap.NewNop())

	rec := buildRecord(repeatVitals(12, vitals(70, 98, 36.8))...)

	eval, err := evaluator.Evaluate(context.Background(), "tenant-1", "patient-1", rec)

	require.NoError(t, err)
	assert.Equal(t, "patient-1", eval.PatientID)
	assert.NotEmpty(t, eval.Discharge)
	assert.NotEmpty(t, eval.Recommendation.Text)
	assert.Equal(t, 10.0, eval.SleepQuality)
	assert.Nil(t, eval.Alert)
	assert.False(t, eval.EvaluatedAt.IsZero())
}

func TestEvaluator_EmptyRecordDegrades(t *testing.T) {
	alerter := NewAlerter(120, 55, state.NewMemoryStore(), zap.NewNop())
	evaluator := NewEvaluator(alerter, zap.NewNop())

	eval, err := evaluator.Evaluate(context.Background(), "tenant-1", "patient-1", models.PatientRecord{})

	require.NoError(t, err)
	assert.Equal(t, DischargeEvaluationNeeded, eval.Discharge)
	assert.Equal(t, models.SeveritySlate, eval.Recommendation.Severity)
	assert.Equal(t, 0.0, eval.SleepQuality)
	assert.Nil(t, eval.Alert)
}

func TestEvaluator_CarriesAlert(t *testing.T) {
	alerter := NewAlerter(120, 55, state.NewMemoryStore(), zap.NewNop())
	evaluator := NewEvaluator(alerter, zap.NewNop())

	rec := buildRecord(repeatVitals(4, vitals(130, 98, 36.8))...)

	eval, err := evaluator.Evaluate(context.Background(), "tenant-1", "patient-1", rec)

	require.NoError(t, err)
	require.NotNil(t, eval.Alert)
	assert.Equal(t, models.AlertTypeHighHeartRate, eval.Alert.AlertType)
}
