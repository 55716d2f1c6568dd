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

func newTestAlerter() *Alerter {
	return NewAlerter(120, 55, state.NewMemoryStore(), zap.NewNop())
}

func TestAlerter_TooFewReadings(t *testing.T) {
	a := newTestAlerter()
	rec := buildRecord(
		vitals(150, 98, 36.8),
		vitals(150, 98, 36.8),
		vitals(150, 98, 36.8),
	)

	event, err := a.Evaluate(context.Background(), "tenant-1", "patient-1", rec)

	require.NoError(t, err)
	assert.Nil(t, event)
}

func TestAlerter_HighHeartRateFiresOnce(t *testing.T) {
	a := newTestAlerter()
	ctx := context.Background()
	rec := buildRecord(repeatVitals(4, vitals(130, 98, 36.8))...)

	event, err := a.Evaluate(ctx, "tenant-1", "patient-1", rec)
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, models.AlertTypeHighHeartRate, event.AlertType)

	// The same sustained breach must not fire again.
	for i := 0; i < 9; i++ {
		event, err = a.Evaluate(ctx, "tenant-1", "patient-1", rec)
		require.NoError(t, err)
		assert.Nil(t, event)
	}
}

func TestAlerter_LowHeartRate(t *testing.T) {
	a := newTestAlerter()
	rec := buildRecord(repeatVitals(4, vitals(45, 98, 36.8))...)

	event, err := a.Evaluate(context.Background(), "tenant-1", "patient-1", rec)

	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, models.AlertTypeLowHeartRate, event.AlertType)
}

func TestAlerter_MixedReadingsNeverFire(t *testing.T) {
	a := newTestAlerter()
	rec := buildRecord(
		vitals(130, 98, 36.8),
		vitals(130, 98, 36.8),
		vitals(130, 98, 36.8),
		vitals(90, 98, 36.8),
	)

	event, err := a.Evaluate(context.Background(), "tenant-1", "patient-1", rec)

	require.NoError(t, err)
	assert.Nil(t, event)
}

func TestAlerter_RearmsAfterRecovery(t *testing.T) {
	a := newTestAlerter()
	ctx := context.Background()

	high := buildRecord(repeatVitals(4, vitals(130, 98, 36.8))...)
	normal := buildRecord(repeatVitals(4, vitals(80, 98, 36.8))...)

	event, err := a.Evaluate(ctx, "tenant-1", "patient-1", high)
	require.NoError(t, err)
	require.NotNil(t, event)

	// Recovery clears the latch.
	event, err = a.Evaluate(ctx, "tenant-1", "patient-1", normal)
	require.NoError(t, err)
	assert.Nil(t, event)

	// A fresh breach fires a new event.
	event, err = a.Evaluate(ctx, "tenant-1", "patient-1", high)
	require.NoError(t, err)
	require.NotNil(t, event)
}

func TestAlerter_HighThenLowFiresBoth(t *testing.T) {
	a := newTestAlerter()
	ctx := context.Background()

	high := buildRecord(repeatVitals(4, vitals(130, 98, 36.8))...)
	low := buildRecord(repeatVitals(4, vitals(45, 98, 36.8))...)

	event, err := a.Evaluate(ctx, "tenant-1", "patient-1", high)
	require.NoError(t, err)
	require.NotNil(t, event)

	// A direct swing to the opposite breach is a new condition.
	event, err = a.Evaluate(ctx, "tenant-1", "patient-1", low)
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, models.AlertTypeLowHeartRate, event.AlertType)
}

func TestAlerter_EventContents(t *testing.T) {
	a := newTestAlerter()
	rec := buildRecord(repeatVitals(12, vitals(130, 98, 36.8))...)

	event, err := a.Evaluate(context.Background(), "tenant-1", "patient-1", rec)

	require.NoError(t, err)
	require.NotNil(t, event)
	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "tenant-1", event.TenantID)
	assert.Equal(t, "patient-1", event.PatientID)
	assert.Equal(t, models.AlertStatusActive, event.AlarmStatus)
	assert.Equal(t, []float64{130, 130, 130, 130}, event.BPMReadings)
	assert.Len(t, event.History, 10)
	assert.False(t, event.TriggeredAt.IsZero())
}

func TestAlerter_PatientsAreIndependent(t *testing.T) {
	a := newTestAlerter()
	ctx := context.Background()
	rec := buildRecord(repeatVitals(4, vitals(130, 98, 36.8))...)

	event, err := a.Evaluate(ctx, "tenant-1", "patient-1", rec)
	require.NoError(t, err)
	require.NotNil(t, event)

	// The first patient's latch must not suppress the second.
	event, err = a.Evaluate(ctx, "tenant-1", "patient-2", rec)
	require.NoError(t, err)
	require.NotNil(t, event)
}
