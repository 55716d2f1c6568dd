package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"wisefido-vitals/internal/models"
)

// AlertEventsRepository persists fired alert events to PostgreSQL.
type AlertEventsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAlertEventsRepository creates an alert events repository.
func NewAlertEventsRepository(db *sql.DB, logger *zap.Logger) *AlertEventsRepository {
	return &AlertEventsRepository{
		db:     db,
		logger: logger,
	}
}

// CreateAlertEvent inserts a fired event (tenant checked).
func (r *AlertEventsRepository) CreateAlertEvent(ctx context.Context, tenantID string, event *models.AlertEvent) error {
	if tenantID == "" {
		return fmt.Errorf("tenant_id is required")
	}
	if event == nil {
		return fmt.Errorf("event is required")
	}
	if event.TenantID != tenantID {
		return fmt.Errorf("event.tenant_id must match tenant_id parameter")
	}

	bpmJSON, err := json.Marshal(event.BPMReadings)
	if err != nil {
		return fmt.Errorf("failed to marshal bpm readings: %w", err)
	}
	historyJSON, err := json.Marshal(event.History)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	query := `
		INSERT INTO alert_events (
			event_id,
			tenant_id,
			patient_id,
			alert_type,
			alarm_status,
			triggered_at,
			bpm_readings,
			history,
			created_at,
			updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
	`

	now := time.Now()
	_, err = r.db.ExecContext(ctx,
		query,
		event.EventID,
		event.TenantID,
		event.PatientID,
		event.AlertType,
		event.AlarmStatus,
		event.TriggeredAt,
		bpmJSON,
		historyJSON,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create alert event: %w", err)
	}

	return nil
}

// GetRecentAlertEvent returns the latest active event of the given
// type for the patient within the last withinMinutes, or nil.
func (r *AlertEventsRepository) GetRecentAlertEvent(ctx context.Context, tenantID, patientID, alertType string, withinMinutes int) (*models.AlertEvent, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant_id is required")
	}
	if patientID == "" {
		return nil, fmt.Errorf("patient_id is required")
	}
	if alertType == "" {
		return nil, fmt.Errorf("alert_type is required")
	}

	thresholdTime := time.Now().Add(-time.Duration(withinMinutes) * time.Minute)

	query := `
		SELECT
			event_id,
			tenant_id,
			patient_id,
			alert_type,
			alarm_status,
			triggered_at,
			bpm_readings,
			history
		FROM alert_events
		WHERE tenant_id = $1
		  AND patient_id = $2
		  AND alert_type = $3
		  AND triggered_at > $4
		  AND alarm_status = 'active'
		ORDER BY triggered_at DESC
		LIMIT 1
	`

	event, err := scanAlertEvent(r.db.QueryRowContext(ctx, query, tenantID, patientID, alertType, thresholdTime))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query recent alert event: %w", err)
	}

	return event, nil
}

// ListAlertEvents returns the patient's events, newest first, paged.
func (r *AlertEventsRepository) ListAlertEvents(ctx context.Context, tenantID, patientID string, page, size int) ([]*models.AlertEvent, int, error) {
	if tenantID == "" {
		return nil, 0, fmt.Errorf("tenant_id is required")
	}
	if patientID == "" {
		return nil, 0, fmt.Errorf("patient_id is required")
	}

	queryCount := `
		SELECT COUNT(*)
		FROM alert_events
		WHERE tenant_id = $1
		  AND patient_id = $2
	`

	var total int
	if err := r.db.QueryRowContext(ctx, queryCount, tenantID, patientID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count alert events: %w", err)
	}

	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	offset := (page - 1) * size

	query := `
		SELECT
			event_id,
			tenant_id,
			patient_id,
			alert_type,
			alarm_status,
			triggered_at,
			bpm_readings,
			history
		FROM alert_events
		WHERE tenant_id = $1
		  AND patient_id = $2
		ORDER BY triggered_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID, patientID, size, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query alert events: %w", err)
	}
	defer rows.Close()

	events := []*models.AlertEvent{}
	for rows.Next() {
		event, err := scanAlertEvent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan alert event: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate alert events: %w", err)
	}

	return events, total, nil
}

// AcknowledgeAlertEvent marks the event acknowledged.
func (r *AlertEventsRepository) AcknowledgeAlertEvent(ctx context.Context, tenantID, eventID string) error {
	if tenantID == "" {
		return fmt.Errorf("tenant_id is required")
	}
	if eventID == "" {
		return fmt.Errorf("event_id is required")
	}

	query := `
		UPDATE alert_events
		SET alarm_status = 'acknowledged',
		    updated_at = CURRENT_TIMESTAMP
		WHERE event_id = $1
		  AND tenant_id = $2
		  AND alarm_status = 'active'
	`

	result, err := r.db.ExecContext(ctx, query, eventID, tenantID)
	if err != nil {
		return fmt.Errorf("failed to acknowledge alert event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("alert event not found or already acknowledged: event_id=%s, tenant_id=%s", eventID, tenantID)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAlertEvent(row rowScanner) (*models.AlertEvent, error) {
	var event models.AlertEvent
	var bpmJSON, historyJSON []byte

	err := row.Scan(
		&event.EventID,
		&event.TenantID,
		&event.PatientID,
		&event.AlertType,
		&event.AlarmStatus,
		&event.TriggeredAt,
		&bpmJSON,
		&historyJSON,
	)
	if err != nil {
		return nil, err
	}

	if len(bpmJSON) > 0 {
		if err := json.Unmarshal(bpmJSON, &event.BPMReadings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal bpm readings: %w", err)
		}
	}
	if len(historyJSON) > 0 {
		if err := json.Unmarshal(historyJSON, &event.History); err != nil {
			return nil, fmt.Errorf("failed to unmarshal history: %w", err)
		}
	}

	return &event, nil
}
