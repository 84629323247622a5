package services

import (
	"context"
	"fmt"
	"time"

	"servicebot/internal/config"
	"servicebot/internal/costtracker"
	"servicebot/internal/models"
	"servicebot/internal/store"
	"servicebot/internal/util"
	"servicebot/pkg/classifier"

	log "github.com/sirupsen/logrus"
)

// Classification is one classifier answer plus how long it took.
type Classification struct {
	classifier.Result
	Duration time.Duration
}

// ClassificationService runs the classifier and records every attempt in
// the classification log.
type ClassificationService struct {
	classifier classifier.Classifier
	logs       store.ClassificationLogStore
	costs      *costtracker.Estimator
}

// NewClassificationService creates a ClassificationService. logs may be nil
// to skip recording; pricing may be nil to record zero cost.
func NewClassificationService(c classifier.Classifier, logs store.ClassificationLogStore, pricing map[string]map[string]config.PricingInfo) *ClassificationService {
	return &ClassificationService{classifier: c, logs: logs, costs: costtracker.New(pricing)}
}

// Classify normalizes text and classifies it.
func (s *ClassificationService) Classify(ctx context.Context, text string) (*Classification, error) {
	text = util.NormalizeMessage(text)
	if text == "" {
		return nil, fmt.Errorf("%w: message is required", models.ErrValidation)
	}

	start := time.Now()
	res, err := s.classifier.Classify(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("classify message: %w", err)
	}
	c := &Classification{Result: res, Duration: time.Since(start)}

	log.WithFields(log.Fields{
		"category":   res.Category,
		"confidence": res.Confidence,
		"method":     res.Method,
		"provider":   res.Provider,
		"duration":   c.Duration,
	}).Info("Message classified")
	return c, nil
}

// Record writes c to the classification log. conversationID may be empty.
// Failures are logged and returned; callers treat them as non-fatal.
func (s *ClassificationService) Record(ctx context.Context, conversationID string, c *Classification) error {
	if s.logs == nil || c == nil {
		return nil
	}

	entry := &models.ClassificationLog{
		Method:           c.Method,
		Provider:         c.Provider,
		ModelName:        c.Model,
		Category:         c.Category,
		Confidence:       c.Confidence,
		Reasoning:        c.Reasoning,
		DurationMs:       c.Duration.Milliseconds(),
		PromptTokens:     c.PromptTokens,
		CompletionTokens: c.CompletionTokens,
		Cost:             s.costs.Estimate(c.Provider, c.Model, c.PromptTokens, c.CompletionTokens),
	}
	if conversationID != "" {
		entry.ConversationID = &conversationID
	}
	if c.PrimaryErr != nil {
		msg := c.PrimaryErr.Error()
		entry.Error = &msg
	}

	if err := s.logs.RecordClassification(ctx, entry); err != nil {
		log.Warnf("Failed to record classification log: %v", err)
		return fmt.Errorf("record classification: %w", err)
	}
	return nil
}
