package consumer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"wisefido-vitals/internal/config"
	"wisefido-vitals/internal/models"
	"wisefido-vitals/internal/repository"
)

// Evaluator runs the inference engine over one patient snapshot.
type Evaluator interface {
	Evaluate(ctx context.Context, tenantID, patientID string, rec models.PatientRecord) (*models.Evaluation, error)
}

// AlertSink receives newly fired alert events for persistence and
// dispatch. A sink error must not prevent the evaluation from being
// cached; alert state has already been latched by the engine.
type AlertSink interface {
	HandleAlert(ctx context.Context, event *models.AlertEvent) error
}

// SnapshotConsumer polls the realtime record cache for every patient
// on the roster and runs a full engine pass per snapshot. Evaluations
// for the same patient are serialized, because the alert suppression
// state is order-dependent; different patients proceed independently.
type SnapshotConsumer struct {
	config      *config.Config
	cache       *CacheManager
	patientRepo *repository.PatientRepository
	alertSink   AlertSink
	logger      *zap.Logger
	tenantID    string

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per-patient evaluation locks
}

// NewSnapshotConsumer creates the polling consumer.
func NewSnapshotConsumer(
	cfg *config.Config,
	cache *CacheManager,
	patientRepo *repository.PatientRepository,
	alertSink AlertSink,
	logger *zap.Logger,
	tenantID string,
) *SnapshotConsumer {
	return &SnapshotConsumer{
		config:      cfg,
		cache:       cache,
		patientRepo: patientRepo,
		alertSink:   alertSink,
		logger:      logger,
		tenantID:    tenantID,
		locks:       make(map[string]*sync.Mutex),
	}
}

// Start runs the poll loop until the context is cancelled.
func (c *SnapshotConsumer) Start(ctx context.Context, evaluator Evaluator) error {
	c.logger.Info("Snapshot consumer started",
		zap.String("tenant_id", c.tenantID),
		zap.Int("poll_interval", c.config.Vitals.PollInterval),
	)

	ticker := time.NewTicker(time.Duration(c.config.Vitals.PollInterval) * time.Second)
	defer ticker.Stop()

	// Evaluate once immediately on startup.
	if err := c.evaluateAllPatients(ctx, evaluator); err != nil {
		c.logger.Error("Failed to evaluate patients on startup",
			zap.Error(err),
		)
	}

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Snapshot consumer stopped")
			return nil
		case <-ticker.C:
			if err := c.evaluateAllPatients(ctx, evaluator); err != nil {
				c.logger.Error("Failed to evaluate patients",
					zap.Error(err),
				)
			}
		}
	}
}

func (c *SnapshotConsumer) evaluateAllPatients(ctx context.Context, evaluator Evaluator) error {
	patients, err := c.patientRepo.GetAllPatients(ctx, c.tenantID)
	if err != nil {
		return fmt.Errorf("failed to get patient roster: %w", err)
	}

	c.logger.Debug("Evaluating patients",
		zap.Int("patient_count", len(patients)),
	)

	batchSize := c.config.Vitals.Evaluation.BatchSize
	for i := 0; i < len(patients); i += batchSize {
		end := i + batchSize
		if end > len(patients) {
			end = len(patients)
		}

		if err := c.evaluateBatch(ctx, patients[i:end], evaluator); err != nil {
			c.logger.Error("Failed to evaluate batch",
				zap.Int("batch_start", i),
				zap.Int("batch_end", end),
				zap.Error(err),
			)
			// Keep going with the next batch.
		}
	}

	return nil
}

func (c *SnapshotConsumer) evaluateBatch(ctx context.Context, patients []repository.PatientInfo, evaluator Evaluator) error {
	for _, patient := range patients {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		c.EvaluatePatient(ctx, patient.PatientID, evaluator)
	}

	return nil
}

// EvaluatePatient runs one serialized engine pass for the patient and
// publishes the outcome. Missing records are skipped quietly; a
// patient may simply not have data yet.
func (c *SnapshotConsumer) EvaluatePatient(ctx context.Context, patientID string, evaluator Evaluator) {
	lock := c.patientLock(patientID)
	lock.Lock()
	defer lock.Unlock()

	rec, err := c.cache.GetPatientRecord(ctx, patientID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			c.logger.Debug("Record not found for patient",
				zap.String("patient_id", patientID),
			)
			return
		}
		c.logger.Error("Failed to read patient record",
			zap.String("patient_id", patientID),
			zap.Error(err),
		)
		return
	}

	eval, err := evaluator.Evaluate(ctx, c.tenantID, patientID, *rec)
	if err != nil {
		c.logger.Error("Failed to evaluate patient",
			zap.String("patient_id", patientID),
			zap.Error(err),
		)
		return
	}

	if eval.Alert != nil {
		if err := c.alertSink.HandleAlert(ctx, eval.Alert); err != nil {
			// Delivery failures are recoverable and must not corrupt
			// alert state or block the insights update.
			c.logger.Error("Failed to handle alert event",
				zap.String("patient_id", patientID),
				zap.String("event_id", eval.Alert.EventID),
				zap.Error(err),
			)
		}
	}

	if err := c.cache.UpdateInsightsCache(ctx, patientID, eval); err != nil {
		c.logger.Error("Failed to update insights cache",
			zap.String("patient_id", patientID),
			zap.Error(err),
		)
	}
}

func (c *SnapshotConsumer) patientLock(patientID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	lock, ok := c.locks[patientID]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[patientID] = lock
	}
	return lock
}
