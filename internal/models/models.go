package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Conversation is one end-to-end intake session.
type Conversation struct {
	ID            string             `db:"id" json:"id"`
	Status        ConversationStatus `db:"status" json:"status"`
	Category      *string            `db:"category" json:"category"`
	Confidence    *float64           `db:"confidence" json:"confidence"`
	QuestionIndex int                `db:"question_index" json:"question_index"` // script questions asked so far
	RoutedTo      *string            `db:"routed_to" json:"routed_to,omitempty"`
	RoutedAt      *time.Time         `db:"routed_at" json:"routed_at,omitempty"`
	CreatedAt     time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `db:"updated_at" json:"updated_at"`
}

// CategoryKey returns the stored category or "" when the conversation is unclassified.
func (c *Conversation) CategoryKey() string {
	if c.Category == nil {
		return ""
	}
	return *c.Category
}

type Message struct {
	ID             int64     `db:"id" json:"id"`
	ConversationID string    `db:"conversation_id" json:"conversation_id"`
	Content        string    `db:"content" json:"content"`
	Sender         Sender    `db:"sender" json:"sender"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// ClassificationLog records one classification attempt, whichever path answered it.
type ClassificationLog struct {
	ID               int64     `db:"id" json:"id"`
	ConversationID   *string   `db:"conversation_id" json:"conversation_id,omitempty"` // nullable
	Method           string    `db:"method" json:"method"`                             // "llm" or "fallback"
	Provider         string    `db:"provider" json:"provider"`
	ModelName        string    `db:"model_name" json:"model_name"`
	Category         string    `db:"category" json:"category"`
	Confidence       float64   `db:"confidence" json:"confidence"`
	Reasoning        string    `db:"reasoning" json:"reasoning"`
	DurationMs       int64     `db:"duration_ms" json:"duration_ms"`
	PromptTokens     int       `db:"prompt_tokens" json:"prompt_tokens"`
	CompletionTokens int       `db:"completion_tokens" json:"completion_tokens"`
	Cost             float64   `db:"cost" json:"cost"` // estimated USD from configured pricing
	Error            *string   `db:"error" json:"error,omitempty"` // primary-path failure that forced the fallback
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// ClassificationSummary aggregates classification logs per method and category.
type ClassificationSummary struct {
	Method        string  `json:"method"`
	Category      string  `json:"category"`
	Count         int64   `json:"count"`
	AvgConfidence float64 `json:"avg_confidence"`
	AvgDurationMs float64 `json:"avg_duration_ms"`
}

// UsageSummary totals LLM token usage and estimated cost across all logs.
type UsageSummary struct {
	Calls             int64   `json:"calls"`
	FallbackCalls     int64   `json:"fallback_calls"`
	TotalInputTokens  int64   `json:"total_input_tokens"`
	TotalOutputTokens int64   `json:"total_output_tokens"`
	TotalCost         float64 `json:"total_cost"`
}

// BackgroundJob mirrors the background_jobs table schema.
type BackgroundJob struct {
	ID                int64           `db:"id"`
	JobID             uuid.UUID       `db:"job_id"` // Asynq Task ID
	TaskType          string          `db:"task_type"`
	Payload           json.RawMessage `db:"payload"`
	Queue             string          `db:"queue"`
	Status            string          `db:"status"`
	RelatedEntityType *string         `db:"related_entity_type"`
	RelatedEntityID   *string         `db:"related_entity_id"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
}
