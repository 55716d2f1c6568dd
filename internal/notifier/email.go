package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"wisefido-vitals/internal/models"
)

// EmailNotifier posts alert events to an external email-dispatch
// endpoint. The engine never depends on delivery succeeding; failures
// come back as errors for the caller to log.
type EmailNotifier struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

// NewEmailNotifier creates a notifier for the given endpoint. An empty
// endpoint disables dispatch (SendAlert becomes a logged no-op).
func NewEmailNotifier(endpoint string, timeout time.Duration, logger *zap.Logger) *EmailNotifier {
	return &EmailNotifier{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// alertPayload is the wire contract of the dispatch endpoint.
type alertPayload struct {
	PatientName string           `json:"patientName"`
	AlertType   string           `json:"alertType"`
	Readings    []float64        `json:"readings"`
	History     []models.Reading `json:"history,omitempty"`
}

// SendAlert delivers one alert event. Non-2xx responses are errors.
func (n *EmailNotifier) SendAlert(ctx context.Context, patientName string, event *models.AlertEvent) error {
	if n.endpoint == "" {
		n.logger.Info("Alert dispatch disabled, skipping notification",
			zap.String("event_id", event.EventID),
			zap.String("alert_type", event.AlertType),
		)
		return nil
	}

	payload := alertPayload{
		PatientName: patientName,
		AlertType:   event.AlertType,
		Readings:    event.BPMReadings,
		History:     event.History,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal alert payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build alert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send alert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("alert endpoint returned status %d", resp.StatusCode)
	}

	n.logger.Info("Alert notification sent",
		zap.String("event_id", event.EventID),
		zap.String("alert_type", event.AlertType),
		zap.String("patient_name", patientName),
	)

	return nil
}
