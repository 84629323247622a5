package primary

import (
	"context"
	"fmt"

	"servicebot/internal/models"
	"servicebot/internal/store"
)

// RecordClassification inserts a new classification log entry.
func (s *StoreImpl) RecordClassification(ctx context.Context, log *models.ClassificationLog) error {
	query := `
		INSERT INTO classification_logs (
			conversation_id, method, provider, model_name, category, confidence, reasoning,
			duration_ms, prompt_tokens, completion_tokens, cost, error, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now())
		RETURNING id, created_at
	`
	err := s.db.QueryRow(ctx, query,
		log.ConversationID,
		log.Method,
		log.Provider,
		log.ModelName,
		log.Category,
		log.Confidence,
		log.Reasoning,
		log.DurationMs,
		log.PromptTokens,
		log.CompletionTokens,
		log.Cost,
		log.Error,
	).Scan(&log.ID, &log.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert classification_log: %w", err)
	}
	return nil
}

// ListClassifications returns classification logs, newest first.
func (s *StoreImpl) ListClassifications(ctx context.Context, limit, offset int) ([]*models.ClassificationLog, error) {
	query := `
		SELECT id, conversation_id, method, provider, model_name, category, confidence, reasoning,
		       duration_ms, prompt_tokens, completion_tokens, cost, error, created_at
		FROM classification_logs
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := s.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query classification_logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.ClassificationLog
	for rows.Next() {
		l := &models.ClassificationLog{}
		if err := rows.Scan(
			&l.ID, &l.ConversationID, &l.Method, &l.Provider, &l.ModelName, &l.Category,
			&l.Confidence, &l.Reasoning, &l.DurationMs, &l.PromptTokens, &l.CompletionTokens,
			&l.Cost, &l.Error, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan classification_log row: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating classification_log rows: %w", err)
	}
	return logs, nil
}

// SummarizeClassifications aggregates logs per method and category.
func (s *StoreImpl) SummarizeClassifications(ctx context.Context) ([]models.ClassificationSummary, error) {
	query := `
		SELECT method, category, count(*), avg(confidence), avg(duration_ms)::float8
		FROM classification_logs
		GROUP BY method, category
		ORDER BY method, category
	`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize classification_logs: %w", err)
	}
	defer rows.Close()

	var out []models.ClassificationSummary
	for rows.Next() {
		var sum models.ClassificationSummary
		if err := rows.Scan(&sum.Method, &sum.Category, &sum.Count, &sum.AvgConfidence, &sum.AvgDurationMs); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// GetUsageSummary totals token usage and cost.
func (s *StoreImpl) GetUsageSummary(ctx context.Context) (*models.UsageSummary, error) {
	query := `
		SELECT count(*),
		       count(*) FILTER (WHERE method = 'fallback'),
		       COALESCE(sum(prompt_tokens), 0),
		       COALESCE(sum(completion_tokens), 0),
		       COALESCE(sum(cost), 0)::float8
		FROM classification_logs
	`
	sum := &models.UsageSummary{}
	err := s.db.QueryRow(ctx, query).Scan(&sum.Calls, &sum.FallbackCalls, &sum.TotalInputTokens, &sum.TotalOutputTokens, &sum.TotalCost)
	if err != nil {
		return nil, fmt.Errorf("failed to get usage summary: %w", err)
	}
	return sum, nil
}

var _ store.ClassificationLogStore = (*StoreImpl)(nil)
