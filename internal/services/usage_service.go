package services

import (
	"context"
	"fmt"

	"servicebot/internal/models"
	"servicebot/internal/store"
)

// UsageService provides methods for accessing classification usage data.
type UsageService struct {
	store store.ClassificationLogStore
}

// NewUsageService creates a new UsageService.
func NewUsageService(store store.ClassificationLogStore) *UsageService {
	return &UsageService{store: store}
}

// ListUsage retrieves a paginated list of classification logs.
func (s *UsageService) ListUsage(ctx context.Context, limit, offset int) ([]*models.ClassificationLog, error) {
	logs, err := s.store.ListClassifications(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list classification logs from store: %w", err)
	}
	return logs, nil
}

// GetSummary retrieves token and cost totals.
func (s *UsageService) GetSummary(ctx context.Context) (*models.UsageSummary, error) {
	sum, err := s.store.GetUsageSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get usage summary from store: %w", err)
	}
	return sum, nil
}

// GetBreakdown aggregates classifications per method and category.
func (s *UsageService) GetBreakdown(ctx context.Context) ([]models.ClassificationSummary, error) {
	rows, err := s.store.SummarizeClassifications(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize classification logs: %w", err)
	}
	return rows, nil
}
