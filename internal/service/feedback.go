package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"wisefido-vitals/internal/consumer"
	"wisefido-vitals/internal/models"
)

// FeedbackService manages the feedback sidecar of the patient record:
// patients submit messages, staff read and reply. Entries are keyed by
// submission timestamp, so listing in key order is listing in time
// order.
type FeedbackService struct {
	cache  *consumer.CacheManager
	logger *zap.Logger
}

// NewFeedbackService creates the feedback service.
func NewFeedbackService(cache *consumer.CacheManager, logger *zap.Logger) *FeedbackService {
	return &FeedbackService{
		cache:  cache,
		logger: logger,
	}
}

// FeedbackItem is one sidecar entry tagged with its timestamp key.
type FeedbackItem struct {
	Timestamp string `json:"timestamp"`
	models.FeedbackEntry
}

// SubmitFeedback appends a new unread entry and returns its key.
func (s *FeedbackService) SubmitFeedback(ctx context.Context, patientID, text string) (string, error) {
	if text == "" {
		return "", fmt.Errorf("feedback text is required")
	}

	rec, err := s.cache.GetPatientRecord(ctx, patientID)
	if err != nil {
		return "", err
	}

	if rec.Feedback == nil {
		rec.Feedback = make(map[string]models.FeedbackEntry)
	}

	key := time.Now().UTC().Format(time.RFC3339)
	rec.Feedback[key] = models.FeedbackEntry{Text: text}

	if err := s.cache.SavePatientRecord(ctx, patientID, rec); err != nil {
		return "", err
	}

	s.logger.Info("Feedback submitted",
		zap.String("patient_id", patientID),
		zap.String("feedback_key", key),
	)

	return key, nil
}

// ListFeedback returns the patient's entries, oldest first.
func (s *FeedbackService) ListFeedback(ctx context.Context, patientID string) ([]FeedbackItem, error) {
	rec, err := s.cache.GetPatientRecord(ctx, patientID)
	if err != nil {
		return nil, err
	}

	items := make([]FeedbackItem, 0, len(rec.Feedback))
	for key, entry := range rec.Feedback {
		items = append(items, FeedbackItem{Timestamp: key, FeedbackEntry: entry})
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Timestamp < items[j].Timestamp
	})

	return items, nil
}

// ReplyToFeedback attaches a staff reply and marks the entry read.
func (s *FeedbackService) ReplyToFeedback(ctx context.Context, patientID, feedbackKey, reply string) error {
	if reply == "" {
		return fmt.Errorf("reply text is required")
	}

	rec, err := s.cache.GetPatientRecord(ctx, patientID)
	if err != nil {
		return err
	}

	entry, ok := rec.Feedback[feedbackKey]
	if !ok {
		return fmt.Errorf("feedback entry not found: %s", feedbackKey)
	}

	entry.Reply = &reply
	entry.Read = true
	rec.Feedback[feedbackKey] = entry

	if err := s.cache.SavePatientRecord(ctx, patientID, rec); err != nil {
		return err
	}

	s.logger.Info("Feedback reply recorded",
		zap.String("patient_id", patientID),
		zap.String("feedback_key", feedbackKey),
	)

	return nil
}

// MarkFeedbackRead marks one entry read without replying.
func (s *FeedbackService) MarkFeedbackRead(ctx context.Context, patientID, feedbackKey string) error {
	rec, err := s.cache.GetPatientRecord(ctx, patientID)
	if err != nil {
		return err
	}

	entry, ok := rec.Feedback[feedbackKey]
	if !ok {
		return fmt.Errorf("feedback entry not found: %s", feedbackKey)
	}
	if entry.Read {
		return nil
	}

	entry.Read = true
	rec.Feedback[feedbackKey] = entry

	return s.cache.SavePatientRecord(ctx, patientID, rec)
}
