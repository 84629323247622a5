package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"servicebot/internal/models"
	"servicebot/internal/store"

	"github.com/google/uuid"
)

func (s *Store) RecordJobEnqueue(ctx context.Context, params store.JobRecordParams) error {
	payload := "{}"
	if params.Payload != nil {
		payload = string(params.Payload)
	}
	var relatedType, relatedID *string
	if params.RelatedEntityType != "" {
		relatedType = &params.RelatedEntityType
	}
	if params.RelatedEntityID != "" {
		relatedID = &params.RelatedEntityID
	}
	ts := now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO background_jobs (job_id, task_type, payload, queue, status, related_entity_type, related_entity_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (job_id) DO NOTHING`,
		params.JobID.String(), params.TaskType, payload, params.Queue, params.Status, relatedType, relatedID, ts, ts,
	)
	if err != nil {
		return fmt.Errorf("failed to record job enqueue event for JobID %s: %w", params.JobID, err)
	}
	return nil
}

func (s *Store) UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE background_jobs SET status = ?, updated_at = ? WHERE job_id = ?`,
		status, now(), jobID.String())
	if err != nil {
		return fmt.Errorf("failed to update job status for job %s: %w", jobID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("job %s not found to update status: %w", jobID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) GetJob(ctx context.Context, jobID uuid.UUID) (*models.BackgroundJob, error) {
	job := &models.BackgroundJob{}
	var payload []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT id, job_id, task_type, payload, queue, status, related_entity_type, related_entity_id, created_at, updated_at
		FROM background_jobs WHERE job_id = ?`, jobID.String(),
	).Scan(&job.ID, &job.JobID, &job.TaskType, &payload, &job.Queue, &job.Status,
		&job.RelatedEntityType, &job.RelatedEntityID, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("job %s: %w", jobID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get job %s: %w", jobID, err)
	}
	job.Payload = payload
	return job, nil
}
