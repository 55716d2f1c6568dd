package state

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisStore keeps per-patient alert states in Redis, keyed
// "<prefix><tenant_id>:<patient_id>". States carry a TTL so a stale
// latch cannot suppress alerts forever after a restart of the fleet.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	tenantID  string
	ttl       time.Duration
	logger    *zap.Logger
}

// NewRedisStore creates a Redis-backed alert state store.
func NewRedisStore(client *redis.Client, keyPrefix, tenantID string, ttl time.Duration, logger *zap.Logger) *RedisStore {
	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
		tenantID:  tenantID,
		ttl:       ttl,
		logger:    logger,
	}
}

func (s *RedisStore) key(patientID string) string {
	return fmt.Sprintf("%s%s:%s", s.keyPrefix, s.tenantID, patientID)
}

// Get returns the latched state for the patient, or the empty string
// when no alert is latched.
func (s *RedisStore) Get(ctx context.Context, patientID string) (string, error) {
	val, err := s.client.Get(ctx, s.key(patientID)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", fmt.Errorf("failed to get alert state: %w", err)
	}
	return val, nil
}

// Set latches the given state for the patient.
func (s *RedisStore) Set(ctx context.Context, patientID, state string) error {
	if err := s.client.Set(ctx, s.key(patientID), state, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set alert state: %w", err)
	}

	s.logger.Debug("Alert state updated",
		zap.String("patient_id", patientID),
		zap.String("state", state),
	)
	return nil
}

// Clear removes the latch, re-arming both alert kinds.
func (s *RedisStore) Clear(ctx context.Context, patientID string) error {
	if err := s.client.Del(ctx, s.key(patientID)).Err(); err != nil {
		return fmt.Errorf("failed to clear alert state: %w", err)
	}
	return nil
}
