package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"wisefido-vitals/internal/models"
	"wisefido-vitals/internal/notifier"
	"wisefido-vitals/internal/repository"
)

// alertDedupWindowMinutes bounds how recently an active event of the
// same type may exist before a new one is dropped as a duplicate. The
// engine's suppression state already prevents repeats within one
// process; this guard covers restarts and multiple engine instances
// sharing the events table.
const alertDedupWindowMinutes = 30

// AlertDispatcher persists fired alert events and hands them to the
// email notifier. Persistence and dispatch are independent of the
// engine's suppression state, which was latched when the event was
// produced.
type AlertDispatcher struct {
	eventsRepo  *repository.AlertEventsRepository
	patientRepo *repository.PatientRepository
	notifier    *notifier.EmailNotifier
	logger      *zap.Logger
}

// NewAlertDispatcher creates the dispatcher.
func NewAlertDispatcher(
	eventsRepo *repository.AlertEventsRepository,
	patientRepo *repository.PatientRepository,
	emailNotifier *notifier.EmailNotifier,
	logger *zap.Logger,
) *AlertDispatcher {
	return &AlertDispatcher{
		eventsRepo:  eventsRepo,
		patientRepo: patientRepo,
		notifier:    emailNotifier,
		logger:      logger,
	}
}

// HandleAlert records the event, then attempts notification. A
// delivery failure is returned for logging but the event stays
// persisted and the alert state stays latched.
func (d *AlertDispatcher) HandleAlert(ctx context.Context, event *models.AlertEvent) error {
	recent, err := d.eventsRepo.GetRecentAlertEvent(ctx, event.TenantID, event.PatientID, event.AlertType, alertDedupWindowMinutes)
	if err != nil {
		return fmt.Errorf("failed to check for recent alert event: %w", err)
	}
	if recent != nil {
		d.logger.Info("Recent active alert event exists, skipping duplicate",
			zap.String("patient_id", event.PatientID),
			zap.String("alert_type", event.AlertType),
			zap.String("recent_event_id", recent.EventID),
		)
		return nil
	}

	if err := d.eventsRepo.CreateAlertEvent(ctx, event.TenantID, event); err != nil {
		return fmt.Errorf("failed to persist alert event: %w", err)
	}

	d.logger.Info("Alert event created",
		zap.String("event_id", event.EventID),
		zap.String("patient_id", event.PatientID),
		zap.String("alert_type", event.AlertType),
	)

	patientName := event.PatientID
	if patient, err := d.patientRepo.GetPatient(ctx, event.TenantID, event.PatientID); err == nil {
		patientName = patient.PatientName
	} else {
		d.logger.Warn("Failed to resolve patient name for alert",
			zap.String("patient_id", event.PatientID),
			zap.Error(err),
		)
	}

	if err := d.notifier.SendAlert(ctx, patientName, event); err != nil {
		return fmt.Errorf("alert delivery failed: %w", err)
	}

	return nil
}
