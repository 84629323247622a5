package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"servicebot/internal/models"
	"servicebot/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func newConversation(t *testing.T, s *Store, id string) *models.Conversation {
	t.Helper()
	conv := &models.Conversation{
		ID:            id,
		Category:      strPtr("billing"),
		Confidence:    floatPtr(0.9),
		QuestionIndex: 1,
	}
	err := s.CreateConversation(context.Background(), conv,
		&models.Message{Content: "I was charged twice", Sender: models.SenderUser},
		&models.Message{Content: "What is your account email?", Sender: models.SenderBot},
	)
	require.NoError(t, err)
	return conv
}

func TestCreateAndGetConversation(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	conv := newConversation(t, s, "c-1")
	assert.Equal(t, models.ConversationStatusActive, conv.Status)
	assert.False(t, conv.CreatedAt.IsZero())

	got, err := s.GetConversation(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, "billing", got.CategoryKey())
	assert.Equal(t, 0.9, *got.Confidence)
	assert.Equal(t, 1, got.QuestionIndex)
	assert.Nil(t, got.RoutedTo)
	assert.Nil(t, got.RoutedAt)

	msgs, err := s.ListMessages(ctx, "c-1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, models.SenderUser, msgs[0].Sender)
	assert.Equal(t, models.SenderBot, msgs[1].Sender)
	assert.Less(t, msgs[0].ID, msgs[1].ID)

	n, err := s.CountUserMessages(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestGetConversation_NotFound(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.GetConversation(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateConversation_RollsBackOnMessageFailure(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	conv := &models.Conversation{ID: "c-bad"}
	err := s.CreateConversation(ctx, conv, &models.Message{Content: "hi", Sender: "robot"})
	require.Error(t, err, "sender check constraint rejects the message")

	_, err = s.GetConversation(ctx, "c-bad")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRecordTurn(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	newConversation(t, s, "c-1")

	updated, err := s.RecordTurn(ctx, "c-1", func(conv *models.Conversation) (*store.TurnUpdate, error) {
		assert.Equal(t, 1, conv.QuestionIndex)
		return &store.TurnUpdate{
			Messages: []*models.Message{
				{Content: "me@example.com", Sender: models.SenderUser},
				{Content: "What is the approximate date of the charge?", Sender: models.SenderBot},
			},
			QuestionIndex: 2,
			Status:        models.ConversationStatusActive,
		}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.QuestionIndex)

	msgs, err := s.ListMessages(ctx, "c-1")
	require.NoError(t, err)
	assert.Len(t, msgs, 4)
	assert.Equal(t, "me@example.com", msgs[2].Content)
}

func TestRecordTurn_AbortWritesNothing(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	newConversation(t, s, "c-1")

	abort := errors.New("abort")
	_, err := s.RecordTurn(ctx, "c-1", func(conv *models.Conversation) (*store.TurnUpdate, error) {
		return nil, abort
	})
	assert.ErrorIs(t, err, abort)

	msgs, err := s.ListMessages(ctx, "c-1")
	require.NoError(t, err)
	assert.Len(t, msgs, 2)

	_, err = s.RecordTurn(ctx, "missing", func(conv *models.Conversation) (*store.TurnUpdate, error) {
		t.Fatal("fn must not run for unknown ids")
		return nil, nil
	})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListConversations(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	newConversation(t, s, "c-1")
	newConversation(t, s, "c-2")
	require.NoError(t, s.UpdateConversationStatus(ctx, "c-2", models.ConversationStatusCompleted))

	all, err := s.ListConversations(ctx, store.ListConversationsParams{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	completed, err := s.ListConversations(ctx, store.ListConversationsParams{Status: models.ConversationStatusCompleted, Limit: 10})
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, "c-2", completed[0].ID)

	page, err := s.ListConversations(ctx, store.ListConversationsParams{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestUpdatesAndRouting(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	newConversation(t, s, "c-1")

	require.NoError(t, s.UpdateConversationCategory(ctx, "c-1", "technical", 0.4))
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, s.MarkRouted(ctx, "c-1", "engineering", at))
	require.NoError(t, s.AppendMessage(ctx, &models.Message{ConversationID: "c-1", Content: "note", Sender: models.SenderBot}))

	got, err := s.GetConversation(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, "technical", got.CategoryKey())
	require.NotNil(t, got.RoutedTo)
	assert.Equal(t, "engineering", *got.RoutedTo)
	require.NotNil(t, got.RoutedAt)
	assert.True(t, at.Equal(*got.RoutedAt))

	assert.ErrorIs(t, s.MarkRouted(ctx, "missing", "x", at), store.ErrNotFound)
	assert.ErrorIs(t, s.UpdateConversationStatus(ctx, "missing", models.ConversationStatusCompleted), store.ErrNotFound)
}

func TestClassificationLogs(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	newConversation(t, s, "c-1")

	primaryErr := "connection refused"
	logs := []*models.ClassificationLog{
		{ConversationID: strPtr("c-1"), Method: "llm", Provider: "openai", ModelName: "gpt-4o-mini", Category: "billing", Confidence: 0.9, PromptTokens: 100, CompletionTokens: 10, Cost: 0.001},
		{Method: "fallback", Provider: "keyword", Category: "authentication", Confidence: 0.8, Error: &primaryErr},
	}
	for _, l := range logs {
		require.NoError(t, s.RecordClassification(ctx, l))
		assert.NotZero(t, l.ID)
	}

	listed, err := s.ListClassifications(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "fallback", listed[0].Method, "newest first")
	require.NotNil(t, listed[0].Error)
	assert.Nil(t, listed[0].ConversationID)

	summary, err := s.SummarizeClassifications(ctx)
	require.NoError(t, err)
	assert.Len(t, summary, 2)

	usage, err := s.GetUsageSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), usage.Calls)
	assert.Equal(t, int64(1), usage.FallbackCalls)
	assert.Equal(t, int64(100), usage.TotalInputTokens)
	assert.InDelta(t, 0.001, usage.TotalCost, 1e-9)
}

func TestJobStore(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	jobID := uuid.New()

	params := store.JobRecordParams{
		JobID:             jobID,
		TaskType:          "conversation:route",
		Payload:           []byte(`{"conversation_id":"c-1"}`),
		Queue:             "routing",
		Status:            models.JobStatusEnqueued,
		RelatedEntityType: "conversation",
		RelatedEntityID:   "c-1",
	}
	require.NoError(t, s.RecordJobEnqueue(ctx, params))
	require.NoError(t, s.RecordJobEnqueue(ctx, params), "duplicate enqueue records are ignored")
	require.NoError(t, s.UpdateJobStatus(ctx, jobID, models.JobStatusCompleted))

	job, err := s.GetJob(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, jobID, job.JobID)
	assert.Equal(t, models.JobStatusCompleted, job.Status)
	assert.JSONEq(t, `{"conversation_id":"c-1"}`, string(job.Payload))
	require.NotNil(t, job.RelatedEntityID)
	assert.Equal(t, "c-1", *job.RelatedEntityID)

	assert.ErrorIs(t, s.UpdateJobStatus(ctx, uuid.New(), models.JobStatusFailed), store.ErrNotFound)
}
