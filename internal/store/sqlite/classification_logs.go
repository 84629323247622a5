package sqlite

import (
	"context"
	"fmt"

	"servicebot/internal/models"
)

func (s *Store) RecordClassification(ctx context.Context, log *models.ClassificationLog) error {
	log.CreatedAt = now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO classification_logs (
			conversation_id, method, provider, model_name, category, confidence, reasoning,
			duration_ms, prompt_tokens, completion_tokens, cost, error, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		log.ConversationID, log.Method, log.Provider, log.ModelName, log.Category, log.Confidence,
		log.Reasoning, log.DurationMs, log.PromptTokens, log.CompletionTokens, log.Cost, log.Error, log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert classification_log: %w", err)
	}
	log.ID, err = res.LastInsertId()
	return err
}

func (s *Store) ListClassifications(ctx context.Context, limit, offset int) ([]*models.ClassificationLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, conversation_id, method, provider, model_name, category, confidence, reasoning,
		       duration_ms, prompt_tokens, completion_tokens, cost, error, created_at
		FROM classification_logs
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`, limit, offset)
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
	return logs, rows.Err()
}

func (s *Store) SummarizeClassifications(ctx context.Context) ([]models.ClassificationSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT method, category, count(*), avg(confidence), avg(CAST(duration_ms AS REAL))
		FROM classification_logs
		GROUP BY method, category
		ORDER BY method, category`)
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

func (s *Store) GetUsageSummary(ctx context.Context) (*models.UsageSummary, error) {
	sum := &models.UsageSummary{}
	err := s.db.QueryRowContext(ctx, `
		SELECT count(*),
		       COALESCE(sum(CASE WHEN method = 'fallback' THEN 1 ELSE 0 END), 0),
		       COALESCE(sum(prompt_tokens), 0),
		       COALESCE(sum(completion_tokens), 0),
		       COALESCE(sum(cost), 0.0)
		FROM classification_logs`,
	).Scan(&sum.Calls, &sum.FallbackCalls, &sum.TotalInputTokens, &sum.TotalOutputTokens, &sum.TotalCost)
	if err != nil {
		return nil, fmt.Errorf("failed to get usage summary: %w", err)
	}
	return sum, nil
}
