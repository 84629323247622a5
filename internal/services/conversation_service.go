package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"servicebot/internal/catalog"
	"servicebot/internal/models"
	"servicebot/internal/store"
	"servicebot/internal/util"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Categorization is the classification outcome returned to API clients.
type Categorization struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// CreateConversationResult is returned when a conversation is opened.
type CreateConversationResult struct {
	ConversationID   string           `json:"conversation_id"`
	Categorization   Categorization   `json:"categorization"`
	FollowUpQuestion string           `json:"follow_up_question"`
	CategoryInfo     catalog.Category `json:"category_info"`
}

// AddMessageResult is the bot's reply to one user turn.
type AddMessageResult struct {
	Message    string `json:"message"`
	IsComplete bool   `json:"is_complete"`
	Category   string `json:"category"`
}

// ConversationDetail is a conversation with its full transcript.
type ConversationDetail struct {
	Conversation *models.Conversation `json:"conversation"`
	Messages     []*models.Message    `json:"messages"`
}

// ConversationService drives the intake conversation: classify the opening
// message, then walk the category's question script one reply at a time.
type ConversationService struct {
	store          store.ConversationStore
	classification *ClassificationService
	catalog        *catalog.Catalog
	jobClient      store.JobClient
	turns          *keyedMutex
	newID          func() string
}

func NewConversationService(st store.ConversationStore, cs *ClassificationService, cat *catalog.Catalog, jc store.JobClient) *ConversationService {
	if jc == nil {
		jc = store.NoopJobClient{}
	}
	return &ConversationService{
		store:          st,
		classification: cs,
		catalog:        cat,
		jobClient:      jc,
		turns:          newKeyedMutex(),
		newID:          uuid.NewString,
	}
}

// CreateConversation classifies the opening message and persists the
// conversation, the message and the first question together. Nothing is
// written for a blank message.
func (s *ConversationService) CreateConversation(ctx context.Context, initialMessage string) (*CreateConversationResult, error) {
	if util.IsBlank(initialMessage) {
		return nil, fmt.Errorf("%w: initial message is required", models.ErrValidation)
	}

	c, err := s.classification.Classify(ctx, initialMessage)
	if err != nil {
		return nil, err
	}

	cat, ok := s.catalog.Get(c.Category)
	if !ok {
		return nil, &models.UnknownCategoryError{Category: c.Category}
	}
	question := cat.Questions[0]

	conv := &models.Conversation{
		ID:            s.newID(),
		Status:        models.ConversationStatusActive,
		Category:      &cat.Key,
		Confidence:    &c.Confidence,
		QuestionIndex: 1,
	}
	err = s.store.CreateConversation(ctx, conv,
		&models.Message{Content: strings.TrimSpace(initialMessage), Sender: models.SenderUser},
		&models.Message{Content: question, Sender: models.SenderBot},
	)
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	log.Infof("Created conversation %s (category %s)", conv.ID, cat.Key)

	// The conversation exists either way; a missing log row is not worth failing the request.
	_ = s.classification.Record(ctx, conv.ID, c)

	return &CreateConversationResult{
		ConversationID: conv.ID,
		Categorization: Categorization{
			Category:   c.Category,
			Confidence: c.Confidence,
			Reasoning:  c.Reasoning,
		},
		FollowUpQuestion: question,
		CategoryInfo:     cat,
	}, nil
}

// AddMessage records a user reply and the bot's answer: the next scripted
// question, or the completion message once the script is exhausted. Turns on
// the same conversation are serialized.
func (s *ConversationService) AddMessage(ctx context.Context, conversationID, content string) (*AddMessageResult, error) {
	if util.IsBlank(content) {
		return nil, fmt.Errorf("%w: message content is required", models.ErrValidation)
	}

	unlock := s.turns.Lock(conversationID)
	defer unlock()

	var result AddMessageResult
	conv, err := s.store.RecordTurn(ctx, conversationID, func(conv *models.Conversation) (*store.TurnUpdate, error) {
		if conv.Status == models.ConversationStatusCompleted {
			return nil, fmt.Errorf("conversation %s: %w", conv.ID, models.ErrConversationCompleted)
		}
		cat, ok := s.catalog.Get(conv.CategoryKey())
		if !ok {
			return nil, &models.UnknownCategoryError{Category: conv.CategoryKey()}
		}

		update := &store.TurnUpdate{
			QuestionIndex: conv.QuestionIndex,
			Status:        models.ConversationStatusActive,
		}
		if conv.QuestionIndex < len(cat.Questions) {
			result.Message = cat.Questions[conv.QuestionIndex]
			update.QuestionIndex++
		} else {
			result.Message = cat.CompletionMessage()
			result.IsComplete = true
			update.Status = models.ConversationStatusCompleted
		}
		result.Category = cat.Key

		update.Messages = []*models.Message{
			{Content: strings.TrimSpace(content), Sender: models.SenderUser},
			{Content: result.Message, Sender: models.SenderBot},
		}
		return update, nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("conversation %s: %w", conversationID, models.ErrNotFound)
		}
		return nil, err
	}

	if result.IsComplete {
		log.Infof("Conversation %s completed (category %s)", conv.ID, result.Category)
		if err := s.jobClient.EnqueueRouteConversation(ctx, conv.ID); err != nil {
			log.Errorf("Failed to enqueue routing for conversation %s: %v", conv.ID, err)
		}
	}
	return &result, nil
}

// GetConversation returns a conversation and its ordered transcript.
func (s *ConversationService) GetConversation(ctx context.Context, conversationID string) (*ConversationDetail, error) {
	conv, err := s.store.GetConversation(ctx, conversationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("conversation %s: %w", conversationID, models.ErrNotFound)
		}
		return nil, err
	}
	msgs, err := s.store.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []*models.Message{}
	}
	return &ConversationDetail{Conversation: conv, Messages: msgs}, nil
}

// ListConversations pages through conversations, newest first.
func (s *ConversationService) ListConversations(ctx context.Context, status string, limit, offset int) ([]*models.Conversation, error) {
	params := store.ListConversationsParams{
		Status: models.ConversationStatus(status),
		Limit:  limit,
		Offset: offset,
	}
	if status != "" && !params.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", models.ErrValidation, status)
	}
	if params.Limit <= 0 {
		params.Limit = defaultListLimit
	}
	if params.Limit > maxListLimit {
		params.Limit = maxListLimit
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	convs, err := s.store.ListConversations(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	if convs == nil {
		convs = []*models.Conversation{}
	}
	return convs, nil
}

// Categories returns the catalog in its fixed order.
func (s *ConversationService) Categories() []catalog.Category {
	return s.catalog.All()
}
