package store

import (
	"context"
	"fmt"

	"servicebot/internal/models"
	"servicebot/internal/tasks"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"
)

// AsynqJobClient is a concrete JobClient.
// It enqueues tasks on Redis and records them to the JobStore.
type AsynqJobClient struct {
	client   *asynq.Client
	jobStore JobStore
}

// NewAsynqJobClient connects to Redis at opt and records enqueues in js.
func NewAsynqJobClient(opt asynq.RedisClientOpt, js JobStore) (*AsynqJobClient, error) {
	if js == nil {
		return nil, fmt.Errorf("JobStore cannot be nil for AsynqJobClient")
	}
	return &AsynqJobClient{client: asynq.NewClient(opt), jobStore: js}, nil
}

func (jc *AsynqJobClient) Close() error {
	return jc.client.Close()
}

// Enqueue enqueues a task and records the event to the JobStore. Recording
// failures are logged; the task is already on the queue by then.
func (jc *AsynqJobClient) Enqueue(ctx context.Context, task *asynq.Task, relatedEntityType, relatedEntityID string, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if jc.client == nil {
		return nil, fmt.Errorf("AsynqJobClient internal client is not initialized")
	}
	log.Debugf("Enqueuing task type '%s'", task.Type())
	info, err := jc.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		log.Errorf("Failed to enqueue task type '%s': %v", task.Type(), err)
		return nil, err
	}
	log.Debugf("Enqueued task type '%s' with ID %s on queue %s", task.Type(), info.ID, info.Queue)

	jobUUID, err := uuid.Parse(info.ID)
	if err != nil {
		log.Errorf("Failed to parse Asynq Task ID '%s' to UUID: %v. Job record skipped.", info.ID, err)
		return info, nil
	}

	recordParams := JobRecordParams{
		JobID:             jobUUID,
		TaskType:          task.Type(),
		Payload:           task.Payload(),
		Queue:             info.Queue,
		Status:            models.JobStatusEnqueued,
		RelatedEntityType: relatedEntityType,
		RelatedEntityID:   relatedEntityID,
	}
	if err := jc.jobStore.RecordJobEnqueue(ctx, recordParams); err != nil {
		log.Errorf("Failed to record job enqueue event for Task ID %s: %v", info.ID, err)
	}
	return info, nil
}

// EnqueueRouteConversation schedules routing of a completed conversation.
func (jc *AsynqJobClient) EnqueueRouteConversation(ctx context.Context, conversationID string) error {
	task, err := tasks.NewRouteConversationTask(conversationID)
	if err != nil {
		return err
	}
	_, err = jc.Enqueue(ctx, task, "conversation", conversationID,
		asynq.Queue(tasks.QueueRouting),
		asynq.MaxRetry(5),
	)
	if err != nil {
		return fmt.Errorf("enqueue routing job for conversation %s: %w", conversationID, err)
	}
	return nil
}

// NoopJobClient drops every task. Used when routing is disabled.
type NoopJobClient struct{}

func (NoopJobClient) Enqueue(ctx context.Context, task *asynq.Task, relatedEntityType, relatedEntityID string, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	log.Debugf("Routing disabled; dropping task type '%s'", task.Type())
	return &asynq.TaskInfo{Type: task.Type(), Payload: task.Payload()}, nil
}

func (NoopJobClient) EnqueueRouteConversation(ctx context.Context, conversationID string) error {
	log.Debugf("Routing disabled; conversation %s stays unrouted", conversationID)
	return nil
}

func (NoopJobClient) Close() error { return nil }

var (
	_ JobClient = (*AsynqJobClient)(nil)
	_ JobClient = NoopJobClient{}
)
