package store

import (
	"context"
	"time"

	"servicebot/internal/models"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// --- Job Client ---

type JobClient interface {
	// Enqueue includes related entity info for recording purposes
	Enqueue(ctx context.Context, task *asynq.Task, relatedEntityType, relatedEntityID string, opts ...asynq.Option) (*asynq.TaskInfo, error)
	EnqueueRouteConversation(ctx context.Context, conversationID string) error
	Close() error
}

// --- Conversation Store ---

// ListConversationsParams filters and pages ListConversations. A zero Status lists every conversation.
type ListConversationsParams struct {
	Status models.ConversationStatus
	Limit  int
	Offset int
}

// TurnUpdate is what a TurnFunc wants persisted for one conversation turn.
type TurnUpdate struct {
	Messages      []*models.Message // appended in order
	QuestionIndex int
	Status        models.ConversationStatus
}

// TurnFunc inspects the locked conversation and decides the turn's writes.
// Returning an error aborts the turn without writing anything.
type TurnFunc func(conv *models.Conversation) (*TurnUpdate, error)

type ConversationStore interface {
	// CreateConversation inserts conv and its initial messages in one transaction.
	// IDs and timestamps are filled in on the passed structs.
	CreateConversation(ctx context.Context, conv *models.Conversation, msgs ...*models.Message) error
	GetConversation(ctx context.Context, id string) (*models.Conversation, error)
	ListConversations(ctx context.Context, params ListConversationsParams) ([]*models.Conversation, error)
	UpdateConversationCategory(ctx context.Context, id, category string, confidence float64) error
	UpdateConversationStatus(ctx context.Context, id string, status models.ConversationStatus) error
	MarkRouted(ctx context.Context, id, team string, at time.Time) error

	AppendMessage(ctx context.Context, msg *models.Message) error
	// ListMessages returns the transcript ordered by (created_at, id).
	ListMessages(ctx context.Context, conversationID string) ([]*models.Message, error)
	CountUserMessages(ctx context.Context, conversationID string) (int, error)

	// RecordTurn locks the conversation row, hands it to fn and applies the
	// returned update in the same transaction. Unknown ids yield ErrNotFound.
	RecordTurn(ctx context.Context, id string, fn TurnFunc) (*models.Conversation, error)

	Ping(ctx context.Context) error
}

// --- Classification Log Store ---

type ClassificationLogStore interface {
	RecordClassification(ctx context.Context, log *models.ClassificationLog) error
	ListClassifications(ctx context.Context, limit, offset int) ([]*models.ClassificationLog, error)
	SummarizeClassifications(ctx context.Context) ([]models.ClassificationSummary, error)
	GetUsageSummary(ctx context.Context) (*models.UsageSummary, error)
}

// --- Job Store ---

// JobRecordParams holds parameters for recording a job event.
type JobRecordParams struct {
	JobID             uuid.UUID
	TaskType          string
	Payload           []byte
	Queue             string
	Status            string
	RelatedEntityType string // Optional: e.g., "conversation"
	RelatedEntityID   string // Optional: e.g., conversation.ID
}

type JobStore interface {
	RecordJobEnqueue(ctx context.Context, params JobRecordParams) error
	UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status string) error
	GetJob(ctx context.Context, jobID uuid.UUID) (*models.BackgroundJob, error)
}

// Store is everything a backing database provides.
type Store interface {
	ConversationStore
	ClassificationLogStore
	JobStore
	Close() error
}
