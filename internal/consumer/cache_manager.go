package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"wisefido-vitals/internal/config"
	"wisefido-vitals/internal/models"
)

// ErrRecordNotFound means no record document exists for the patient.
var ErrRecordNotFound = errors.New("patient record not found")

// CacheManager reads patient record documents from the realtime Redis
// cache and writes engine evaluations back for the presentation layer.
type CacheManager struct {
	config      *config.Config
	redisClient *redis.Client
	logger      *zap.Logger
}

// NewCacheManager creates a cache manager.
func NewCacheManager(cfg *config.Config, redisClient *redis.Client, logger *zap.Logger) *CacheManager {
	return &CacheManager{
		config:      cfg,
		redisClient: redisClient,
		logger:      logger,
	}
}

func (c *CacheManager) recordKey(patientID string) string {
	return fmt.Sprintf("%s%s%s",
		c.config.Vitals.Cache.RecordKeyPrefix,
		patientID,
		c.config.Vitals.Cache.RecordSuffix,
	)
}

func (c *CacheManager) insightsKey(patientID string) string {
	return fmt.Sprintf("%s%s%s",
		c.config.Vitals.Cache.RecordKeyPrefix,
		patientID,
		c.config.Vitals.Cache.InsightsSuffix,
	)
}

// GetPatientRecord reads and decodes one patient's record snapshot.
// The feedback sidecar is split off at decode time.
func (c *CacheManager) GetPatientRecord(ctx context.Context, patientID string) (*models.PatientRecord, error) {
	val, err := c.redisClient.Get(ctx, c.recordKey(patientID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, patientID)
		}
		return nil, fmt.Errorf("failed to get record cache: %w", err)
	}

	var rec models.PatientRecord
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal patient record: %w", err)
	}

	return &rec, nil
}

// SavePatientRecord writes the full record document back. The record
// cache has no TTL; it is the realtime source of truth for the
// dashboard and the engine.
func (c *CacheManager) SavePatientRecord(ctx context.Context, patientID string, rec *models.PatientRecord) error {
	jsonData, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal patient record: %w", err)
	}

	if err := c.redisClient.Set(ctx, c.recordKey(patientID), jsonData, 0).Err(); err != nil {
		return fmt.Errorf("failed to set record cache: %w", err)
	}

	return nil
}

// AppendReading adds one validated reading to the patient's record.
func (c *CacheManager) AppendReading(ctx context.Context, patientID, date, timeOfDay string, reading models.VitalsReading) error {
	rec, err := c.GetPatientRecord(ctx, patientID)
	if err != nil {
		if !errors.Is(err, ErrRecordNotFound) {
			return err
		}
		rec = &models.PatientRecord{Vitals: make(map[string]models.DailyLog)}
	}

	day, ok := rec.Vitals[date]
	if !ok {
		day = make(models.DailyLog)
		rec.Vitals[date] = day
	}
	day[timeOfDay] = reading

	return c.SavePatientRecord(ctx, patientID, rec)
}

// UpdateInsightsCache publishes the latest evaluation with a TTL, so
// the dashboard never renders results older than one poll cycle plus
// the TTL.
func (c *CacheManager) UpdateInsightsCache(ctx context.Context, patientID string, eval *models.Evaluation) error {
	jsonData, err := json.Marshal(eval)
	if err != nil {
		return fmt.Errorf("failed to marshal evaluation: %w", err)
	}

	err = c.redisClient.Set(
		ctx,
		c.insightsKey(patientID),
		jsonData,
		time.Duration(c.config.Vitals.Cache.InsightsTTL)*time.Second,
	).Err()
	if err != nil {
		return fmt.Errorf("failed to set insights cache: %w", err)
	}

	c.logger.Debug("Updated insights cache",
		zap.String("patient_id", patientID),
	)

	return nil
}
