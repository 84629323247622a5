package primary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"servicebot/internal/models"
	"servicebot/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

// --- Job Store Implementation ---

// RecordJobEnqueue inserts a record into the background_jobs table.
func (s *StoreImpl) RecordJobEnqueue(ctx context.Context, params store.JobRecordParams) error {
	query := `
		INSERT INTO background_jobs (job_id, task_type, payload, queue, status, related_entity_type, related_entity_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (job_id) DO NOTHING
		RETURNING id`

	payloadJSON := json.RawMessage("{}")
	if params.Payload != nil {
		payloadJSON = json.RawMessage(params.Payload)
	}

	var relatedType, relatedID *string
	if params.RelatedEntityType != "" {
		relatedType = &params.RelatedEntityType
	}
	if params.RelatedEntityID != "" {
		relatedID = &params.RelatedEntityID
	}

	var insertedID int64
	err := s.db.QueryRow(ctx, query,
		params.JobID,
		params.TaskType,
		payloadJSON,
		params.Queue,
		params.Status,
		relatedType,
		relatedID,
		time.Now(),
	).Scan(&insertedID)
	if err != nil {
		// ON CONFLICT DO NOTHING inserts no row, so Scan sees pgx.ErrNoRows.
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debugf("Job %s already recorded, skipping insertion.", params.JobID)
			return nil
		}
		return fmt.Errorf("failed to record job enqueue event for JobID %s: %w", params.JobID, err)
	}

	log.Debugf("Recorded job enqueue event for JobID %s with DB ID %d", params.JobID, insertedID)
	return nil
}

// UpdateJobStatus updates the status of a job given its Asynq Task UUID.
func (s *StoreImpl) UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status string) error {
	query := `UPDATE background_jobs SET status = $1, updated_at = $2 WHERE job_id = $3`
	cmdTag, err := s.db.Exec(ctx, query, status, time.Now(), jobID)
	if err != nil {
		return fmt.Errorf("failed to update job status for job %s: %w", jobID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("job %s not found to update status: %w", jobID, store.ErrNotFound)
	}
	return nil
}

// GetJob retrieves a job record by its Asynq Task UUID.
func (s *StoreImpl) GetJob(ctx context.Context, jobID uuid.UUID) (*models.BackgroundJob, error) {
	query := `
		SELECT id, job_id, task_type, payload, queue, status, related_entity_type, related_entity_id, created_at, updated_at
		FROM background_jobs WHERE job_id = $1`
	job := &models.BackgroundJob{}
	err := s.db.QueryRow(ctx, query, jobID).Scan(
		&job.ID, &job.JobID, &job.TaskType, &job.Payload, &job.Queue, &job.Status,
		&job.RelatedEntityType, &job.RelatedEntityID, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("job %s: %w", jobID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get job %s: %w", jobID, err)
	}
	return job, nil
}

var _ store.JobStore = (*StoreImpl)(nil)
