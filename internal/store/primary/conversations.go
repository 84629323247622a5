package primary

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"servicebot/internal/models"
	"servicebot/internal/store"
)

// CreateConversation inserts conv and its initial messages in one transaction.
func (s *StoreImpl) CreateConversation(ctx context.Context, conv *models.Conversation, msgs ...*models.Message) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for conversation: %w", err)
	}
	defer tx.Rollback(ctx) // Rollback if commit fails

	if conv.Status == "" {
		conv.Status = models.ConversationStatusActive
	}
	query := `
		INSERT INTO conversations (id, status, category, confidence, question_index, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING created_at, updated_at`
	err = tx.QueryRow(ctx, query,
		conv.ID, string(conv.Status), conv.Category, conv.Confidence, conv.QuestionIndex,
	).Scan(&conv.CreatedAt, &conv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert conversation %s: %w", conv.ID, err)
	}

	for _, msg := range msgs {
		msg.ConversationID = conv.ID
		if err := insertMessage(ctx, tx, msg); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit conversation %s: %w", conv.ID, err)
	}
	return nil
}

// GetConversation retrieves a conversation by ID.
func (s *StoreImpl) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = $1`
	conv := &models.Conversation{}
	if err := scanConversation(s.db.QueryRow(ctx, query, id), conv); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("conversation %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get conversation %s: %w", id, err)
	}
	return conv, nil
}

// ListConversations returns conversations newest first.
func (s *StoreImpl) ListConversations(ctx context.Context, params store.ListConversationsParams) ([]*models.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations
		WHERE ($1::text = '' OR status = $1::text)
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`
	rows, err := s.db.Query(ctx, query, string(params.Status), params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer rows.Close()

	var convs []*models.Conversation
	for rows.Next() {
		conv := &models.Conversation{}
		if err := scanConversation(rows, conv); err != nil {
			return nil, fmt.Errorf("failed to scan conversation row: %w", err)
		}
		convs = append(convs, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversation rows: %w", err)
	}
	return convs, nil
}

func (s *StoreImpl) UpdateConversationCategory(ctx context.Context, id, category string, confidence float64) error {
	query := `UPDATE conversations SET category = $1, confidence = $2, updated_at = now() WHERE id = $3`
	return s.execOne(ctx, id, query, category, confidence, id)
}

func (s *StoreImpl) UpdateConversationStatus(ctx context.Context, id string, status models.ConversationStatus) error {
	query := `UPDATE conversations SET status = $1, updated_at = now() WHERE id = $2`
	return s.execOne(ctx, id, query, string(status), id)
}

// MarkRouted records the team a conversation was handed to.
func (s *StoreImpl) MarkRouted(ctx context.Context, id, team string, at time.Time) error {
	query := `UPDATE conversations SET routed_to = $1, routed_at = $2, updated_at = now() WHERE id = $3`
	return s.execOne(ctx, id, query, team, at, id)
}

func (s *StoreImpl) execOne(ctx context.Context, id, query string, args ...any) error {
	cmdTag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update conversation %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("conversation %s: %w", id, store.ErrNotFound)
	}
	return nil
}

// AppendMessage adds one message to a conversation's transcript.
func (s *StoreImpl) AppendMessage(ctx context.Context, msg *models.Message) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for message: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertMessage(ctx, tx, msg); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE conversations SET updated_at = now() WHERE id = $1`, msg.ConversationID); err != nil {
		return fmt.Errorf("failed to touch conversation %s: %w", msg.ConversationID, err)
	}
	return tx.Commit(ctx)
}

// ListMessages returns a conversation's transcript in order.
func (s *StoreImpl) ListMessages(ctx context.Context, conversationID string) ([]*models.Message, error) {
	query := `
		SELECT id, conversation_id, content, sender, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at, id`
	rows, err := s.db.Query(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages for conversation %s: %w", conversationID, err)
	}
	defer rows.Close()

	var msgs []*models.Message
	for rows.Next() {
		m := &models.Message{}
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Content, &m.Sender, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}
	return msgs, nil
}

func (s *StoreImpl) CountUserMessages(ctx context.Context, conversationID string) (int, error) {
	var n int
	query := `SELECT count(*) FROM messages WHERE conversation_id = $1 AND sender = 'user'`
	if err := s.db.QueryRow(ctx, query, conversationID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count user messages for conversation %s: %w", conversationID, err)
	}
	return n, nil
}

// RecordTurn runs fn against the conversation row locked with FOR UPDATE and
// applies its update in the same transaction.
func (s *StoreImpl) RecordTurn(ctx context.Context, id string, fn store.TurnFunc) (*models.Conversation, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin turn transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	conv := &models.Conversation{}
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = $1 FOR UPDATE`
	if err := scanConversation(tx.QueryRow(ctx, query, id), conv); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("conversation %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to lock conversation %s: %w", id, err)
	}

	update, err := fn(conv)
	if err != nil {
		return nil, err
	}

	for _, msg := range update.Messages {
		msg.ConversationID = id
		if err := insertMessage(ctx, tx, msg); err != nil {
			return nil, err
		}
	}

	err = tx.QueryRow(ctx, `
		UPDATE conversations SET question_index = $1, status = $2, updated_at = now()
		WHERE id = $3
		RETURNING question_index, status, updated_at`,
		update.QuestionIndex, string(update.Status), id,
	).Scan(&conv.QuestionIndex, &conv.Status, &conv.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update conversation %s: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit turn for conversation %s: %w", id, err)
	}
	return conv, nil
}
