package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wisefido-vitals/internal/models"
)

func setupMockAlertEventsDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *AlertEventsRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	logger := zap.NewNop()
	repo := NewAlertEventsRepository(db, logger)

	return db, mock, repo
}

func TestCreateAlertEvent_Success(t *testing.T) {
	db, mock, repo := setupMockAlertEventsDB(t)
	defer db.Close()

	ctx := context.Background()
	tenantID := uuid.New().String()
	event := &models.AlertEvent{
		EventID:     uuid.New().String(),
		TenantID:    tenantID,
		PatientID:   "patient-1",
		AlertType:   models.AlertTypeHighHeartRate,
		AlarmStatus: models.AlertStatusActive,
		BPMReadings: []float64{130, 132, 131, 133},
		TriggeredAt: time.Now(),
	}

	mock.ExpectExec(`INSERT INTO alert_events`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.CreateAlertEvent(ctx, tenantID, event)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAlertEvent_TenantMismatch(t *testing.T) {
	db, _, repo := setupMockAlertEventsDB(t)
	defer db.Close()

	event := &models.AlertEvent{
		EventID:  uuid.New().String(),
		TenantID: "tenant-a",
	}

	err := repo.CreateAlertEvent(context.Background(), "tenant-b", event)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "must match")
}

func TestGetRecentAlertEvent_Found(t *testing.T) {
	db, mock, repo := setupMockAlertEventsDB(t)
	defer db.Close()

	ctx := context.Background()
	tenantID := uuid.New().String()
	eventID := uuid.New().String()
	triggeredAt := time.Now()

	rows := sqlmock.NewRows([]string{
		"event_id", "tenant_id", "patient_id", "alert_type",
		"alarm_status", "triggered_at", "bpm_readings", "history",
	}).AddRow(
		eventID, tenantID, "patient-1", "High Heart Rate",
		"active", triggeredAt, `[130,132,131,133]`, `[]`,
	)

	mock.ExpectQuery(`SELECT`).
		WillReturnRows(rows)

	event, err := repo.GetRecentAlertEvent(ctx, tenantID, "patient-1", models.AlertTypeHighHeartRate, 60)

	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, eventID, event.EventID)
	assert.Equal(t, []float64{130, 132, 131, 133}, event.BPMReadings)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRecentAlertEvent_NoneReturnsNil(t *testing.T) {
	db, mock, repo := setupMockAlertEventsDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).
		WillReturnError(sql.ErrNoRows)

	event, err := repo.GetRecentAlertEvent(context.Background(), "tenant-1", "patient-1", models.AlertTypeLowHeartRate, 60)

	require.NoError(t, err)
	assert.Nil(t, event)
}

func TestListAlertEvents_Paged(t *testing.T) {
	db, mock, repo := setupMockAlertEventsDB(t)
	defer db.Close()

	ctx := context.Background()
	tenantID := uuid.New().String()
	triggeredAt := time.Now()

	mock.ExpectQuery(`SELECT COUNT`).
		WithArgs(tenantID, "patient-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	rows := sqlmock.NewRows([]string{
		"event_id", "tenant_id", "patient_id", "alert_type",
		"alarm_status", "triggered_at", "bpm_readings", "history",
	}).AddRow(
		uuid.New().String(), tenantID, "patient-1", "High Heart Rate",
		"active", triggeredAt, `[130,131,132,133]`, `[]`,
	).AddRow(
		uuid.New().String(), tenantID, "patient-1", "Low Heart Rate",
		"acknowledged", triggeredAt.Add(-time.Hour), `[45,44,43,42]`, `[]`,
	)

	mock.ExpectQuery(`SELECT`).
		WithArgs(tenantID, "patient-1", 2, 0).
		WillReturnRows(rows)

	events, total, err := repo.ListAlertEvents(ctx, tenantID, "patient-1", 1, 2)

	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, events, 2)
	assert.Equal(t, models.AlertTypeHighHeartRate, events[0].AlertType)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListAlertEvents_EmptyTenant(t *testing.T) {
	db, _, repo := setupMockAlertEventsDB(t)
	defer db.Close()

	_, _, err := repo.ListAlertEvents(context.Background(), "", "patient-1", 1, 20)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "tenant_id is required")
}

func TestListAlertEvents_EmptyPatient(t *testing.T) {
	db, _, repo := setupMockAlertEventsDB(t)
	defer db.Close()

	_, _, err := repo.ListAlertEvents(context.Background(), "tenant-1", "", 1, 20)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "patient_id is required")
}

func TestAcknowledgeAlertEvent_Success(t *testing.T) {
	db, mock, repo := setupMockAlertEventsDB(t)
	defer db.Close()

	eventID := uuid.New().String()
	tenantID := uuid.New().String()

	mock.ExpectExec(`UPDATE alert_events`).
		WithArgs(eventID, tenantID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.AcknowledgeAlertEvent(context.Background(), tenantID, eventID)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAcknowledgeAlertEvent_NotFound(t *testing.T) {
	db, mock, repo := setupMockAlertEventsDB(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE alert_events`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.AcknowledgeAlertEvent(context.Background(), "tenant-1", "event-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found or already acknowledged")
}
