package models

/*
Status and type constants shared by the stores, services and worker.
Centralizing these avoids magic strings.
*/

// ConversationStatus is the persisted lifecycle state of a conversation.
type ConversationStatus string

const (
	ConversationStatusActive    ConversationStatus = "active"
	ConversationStatusCompleted ConversationStatus = "completed"
)

// Valid reports whether s is a known conversation status.
func (s ConversationStatus) Valid() bool {
	return s == ConversationStatusActive || s == ConversationStatusCompleted
}

// Sender identifies who wrote a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Classification methods
const (
	ClassificationMethodLLM      = "llm"
	ClassificationMethodFallback = "fallback"
)

// Job status constants
const (
	JobStatusEnqueued  = "enqueued"
	JobStatusRunning   = "running"
	JobStatusRetrying  = "retrying" // last attempt failed, asynq will retry
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)
