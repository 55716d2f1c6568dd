package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"

	"go.uber.org/zap"

	"wisefido-vitals/internal/config"
	"wisefido-vitals/internal/consumer"
	"wisefido-vitals/internal/models"
	"wisefido-vitals/internal/mqtt"
)

var (
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`)
)

// MQTTConsumer receives vitals readings from bedside devices and
// appends them to the patient record documents. Malformed readings
// are rejected here, at the boundary, so the engine can assume
// validated input.
type MQTTConsumer struct {
	config     *config.Config
	mqttClient *mqtt.Client
	cache      *consumer.CacheManager
	logger     *zap.Logger
}

// NewMQTTConsumer creates the ingest consumer.
func NewMQTTConsumer(
	cfg *config.Config,
	mqttClient *mqtt.Client,
	cache *consumer.CacheManager,
	logger *zap.Logger,
) *MQTTConsumer {
	return &MQTTConsumer{
		config:     cfg,
		mqttClient: mqttClient,
		cache:      cache,
		logger:     logger,
	}
}

// Start subscribes to the ingest topic and blocks until the context
// is cancelled.
func (c *MQTTConsumer) Start(ctx context.Context) error {
	topic := c.config.Vitals.Ingest.Topic
	if topic == "" {
		return fmt.Errorf("ingest MQTT topic not configured")
	}

	if err := c.mqttClient.Subscribe(topic, c.config.MQTT.QoS, c.handleMessage); err != nil {
		return fmt.Errorf("failed to subscribe to ingest topic: %w", err)
	}

	c.logger.Info("Ingest consumer started",
		zap.String("topic", topic),
	)

	<-ctx.Done()
	return nil
}

// Stop unsubscribes from the ingest topic.
func (c *MQTTConsumer) Stop() {
	topic := c.config.Vitals.Ingest.Topic
	if topic != "" {
		if err := c.mqttClient.Unsubscribe(topic); err != nil {
			c.logger.Error("Failed to unsubscribe", zap.Error(err))
		}
	}

	c.logger.Info("Ingest consumer stopped")
}

// handleMessage parses one payload (an array of readings) and appends
// each valid reading to its patient's record.
func (c *MQTTConsumer) handleMessage(topic string, payload []byte) error {
	var messages []models.ReadingMessage
	if err := json.Unmarshal(payload, &messages); err != nil {
		return fmt.Errorf("failed to unmarshal readings payload: %w", err)
	}

	ctx := context.Background()
	for _, msg := range messages {
		if err := ValidateReadingMessage(msg); err != nil {
			c.logger.Warn("Rejected malformed reading",
				zap.String("patient_id", msg.PatientID),
				zap.String("date", msg.Date),
				zap.String("time", msg.Time),
				zap.Error(err),
			)
			continue
		}

		reading := models.VitalsReading{
			BPM:  msg.BPM,
			SpO2: msg.SpO2,
			Temp: msg.Temp,
		}
		if err := c.cache.AppendReading(ctx, msg.PatientID, msg.Date, msg.Time, reading); err != nil {
			c.logger.Error("Failed to append reading",
				zap.String("patient_id", msg.PatientID),
				zap.Error(err),
			)
		}
	}

	return nil
}

// ValidateReadingMessage rejects readings the engine must never see:
// missing identity, non-sortable date/time keys, or vitals outside
// physiological possibility.
func ValidateReadingMessage(msg models.ReadingMessage) error {
	if msg.PatientID == "" {
		return fmt.Errorf("patient_id is required")
	}
	if !datePattern.MatchString(msg.Date) {
		return fmt.Errorf("invalid date key: %q", msg.Date)
	}
	if !timePattern.MatchString(msg.Time) {
		return fmt.Errorf("invalid time key: %q", msg.Time)
	}
	if math.IsNaN(msg.BPM) || msg.BPM <= 0 || msg.BPM > 300 {
		return fmt.Errorf("bpm out of range: %v", msg.BPM)
	}
	if math.IsNaN(msg.SpO2) || msg.SpO2 <= 0 || msg.SpO2 > 100 {
		return fmt.Errorf("spo2 out of range: %v", msg.SpO2)
	}
	if math.IsNaN(msg.Temp) || msg.Temp < 25 || msg.Temp > 45 {
		return fmt.Errorf("temp out of range: %v", msg.Temp)
	}
	return nil
}
