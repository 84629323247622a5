package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Defines constants for task types used in Asynq.

const (
	// TypeRouteConversation hands a completed conversation to its category's team.
	TypeRouteConversation = "conversation:route"

	// QueueRouting is the queue routing tasks are enqueued on.
	QueueRouting = "routing"
)

// RouteConversationPayload is the payload of a TypeRouteConversation task.
type RouteConversationPayload struct {
	ConversationID string `json:"conversation_id"`
}

// NewRouteConversationTask builds a routing task for conversationID.
func NewRouteConversationTask(conversationID string) (*asynq.Task, error) {
	if conversationID == "" {
		return nil, fmt.Errorf("conversation id is required")
	}
	payload, err := json.Marshal(RouteConversationPayload{ConversationID: conversationID})
	if err != nil {
		return nil, fmt.Errorf("marshal route payload: %w", err)
	}
	return asynq.NewTask(TypeRouteConversation, payload), nil
}

// ParseRouteConversationPayload decodes and checks a routing task payload.
func ParseRouteConversationPayload(data []byte) (RouteConversationPayload, error) {
	var p RouteConversationPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("unmarshal route payload: %w", err)
	}
	if p.ConversationID == "" {
		return p, fmt.Errorf("route payload has no conversation_id")
	}
	return p, nil
}
