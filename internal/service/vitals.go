package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"wisefido-vitals/internal/config"
	"wisefido-vitals/internal/consumer"
	"wisefido-vitals/internal/engine"
	"wisefido-vitals/internal/ingest"
	"wisefido-vitals/internal/mqtt"
	"wisefido-vitals/internal/notifier"
	"wisefido-vitals/internal/repository"
	"wisefido-vitals/internal/state"
)

// VitalsService wires the full inference pipeline: record cache in,
// engine in the middle, insights cache plus alert persistence and
// email dispatch out.
type VitalsService struct {
	config      *config.Config
	db          *sql.DB
	redisClient *redis.Client
	mqttClient  *mqtt.Client
	logger      *zap.Logger
	tenantID    string

	cacheManager     *consumer.CacheManager
	snapshotConsumer *consumer.SnapshotConsumer
	ingestConsumer   *ingest.MQTTConsumer
	patientRepo      *repository.PatientRepository
	alertEventsRepo  *repository.AlertEventsRepository
	feedbackService  *FeedbackService
	evaluator        *engine.Evaluator
}

// NewVitalsService connects the backing stores and builds every layer.
func NewVitalsService(cfg *config.Config, logger *zap.Logger, tenantID string) (*VitalsService, error) {
	db, err := sql.Open("postgres", cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	configurePool(db, &cfg.Database)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	patientRepo := repository.NewPatientRepository(db, logger)
	alertEventsRepo := repository.NewAlertEventsRepository(db, logger)

	cacheManager := consumer.NewCacheManager(cfg, redisClient, logger)

	stateStore := state.NewRedisStore(
		redisClient,
		cfg.Vitals.Cache.StateKeyPrefix,
		tenantID,
		time.Duration(cfg.Vitals.Cache.StateTTL)*time.Second,
		logger,
	)

	alerter := engine.NewAlerter(
		cfg.Vitals.Engine.HighBPMThreshold,
		cfg.Vitals.Engine.LowBPMThreshold,
		stateStore,
		logger,
	)
	evaluator := engine.NewEvaluator(alerter, logger)

	emailNotifier := notifier.NewEmailNotifier(
		cfg.Vitals.Notifier.Endpoint,
		time.Duration(cfg.Vitals.Notifier.Timeout)*time.Second,
		logger,
	)
	dispatcher := NewAlertDispatcher(alertEventsRepo, patientRepo, emailNotifier, logger)

	snapshotConsumer := consumer.NewSnapshotConsumer(
		cfg,
		cacheManager,
		patientRepo,
		dispatcher,
		logger,
		tenantID,
	)

	svc := &VitalsService{
		config:           cfg,
		db:               db,
		redisClient:      redisClient,
		logger:           logger,
		tenantID:         tenantID,
		cacheManager:     cacheManager,
		snapshotConsumer: snapshotConsumer,
		patientRepo:      patientRepo,
		alertEventsRepo:  alertEventsRepo,
		feedbackService:  NewFeedbackService(cacheManager, logger),
		evaluator:        evaluator,
	}

	// The ingest consumer is optional. Deployments without a broker run
	// on records written by the upstream sync service alone.
	if cfg.MQTT.Broker != "" {
		mqttClient, err := mqtt.NewClient(&cfg.MQTT, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MQTT broker: %w", err)
		}
		svc.mqttClient = mqttClient
		svc.ingestConsumer = ingest.NewMQTTConsumer(cfg, mqttClient, cacheManager, logger)
	}

	return svc, nil
}

func configurePool(db *sql.DB, cfg *config.DatabaseConfig) {
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	if cfg.MaxIdle > 0 {
		db.SetMaxIdleConns(cfg.MaxIdle)
	}
}

// Start runs the consumers until the context is cancelled.
func (s *VitalsService) Start(ctx context.Context) error {
	s.logger.Info("Starting vitals service",
		zap.String("tenant_id", s.tenantID),
	)

	if s.ingestConsumer != nil {
		go func() {
			if err := s.ingestConsumer.Start(ctx); err != nil {
				s.logger.Error("Ingest consumer exited",
					zap.Error(err),
				)
			}
		}()
	}

	return s.snapshotConsumer.Start(ctx, s.evaluator)
}

// Stop releases broker and store connections.
func (s *VitalsService) Stop() {
	s.logger.Info("Stopping vitals service")

	if s.ingestConsumer != nil {
		s.ingestConsumer.Stop()
	}
	if s.mqttClient != nil {
		s.mqttClient.Disconnect()
	}

	if err := s.redisClient.Close(); err != nil {
		s.logger.Error("Failed to close redis client", zap.Error(err))
	}
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close database", zap.Error(err))
	}
}

// Feedback exposes the feedback workflow over the record cache.
func (s *VitalsService) Feedback() *FeedbackService {
	return s.feedbackService
}

// AlertEvents exposes the alert history repository.
func (s *VitalsService) AlertEvents() *repository.AlertEventsRepository {
	return s.alertEventsRepo
}
