package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"servicebot/internal/models"
	"servicebot/internal/store"
)

func (s *Store) CreateConversation(ctx context.Context, conv *models.Conversation, msgs ...*models.Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for conversation: %w", err)
	}
	defer tx.Rollback()

	if conv.Status == "" {
		conv.Status = models.ConversationStatusActive
	}
	conv.CreatedAt = now()
	conv.UpdatedAt = conv.CreatedAt
	_, err = tx.ExecContext(ctx, `
		INSERT INTO conversations (id, status, category, confidence, question_index, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		conv.ID, string(conv.Status), conv.Category, conv.Confidence, conv.QuestionIndex, conv.CreatedAt, conv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert conversation %s: %w", conv.ID, err)
	}

	for _, msg := range msgs {
		msg.ConversationID = conv.ID
		if err := insertMessage(ctx, tx, msg); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit conversation %s: %w", conv.ID, err)
	}
	return nil
}

func (s *Store) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	conv := &models.Conversation{}
	row := s.db.QueryRowContext(ctx, `SELECT `+conversationColumns+` FROM conversations WHERE id = ?`, id)
	if err := scanConversation(row, conv); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("conversation %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get conversation %s: %w", id, err)
	}
	return conv, nil
}

func (s *Store) ListConversations(ctx context.Context, params store.ListConversationsParams) ([]*models.Conversation, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+conversationColumns+` FROM conversations
		WHERE (? = '' OR status = ?)
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?`,
		string(params.Status), string(params.Status), params.Limit, params.Offset,
	)
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

func (s *Store) UpdateConversationCategory(ctx context.Context, id, category string, confidence float64) error {
	return s.execOne(ctx, id, `UPDATE conversations SET category = ?, confidence = ?, updated_at = ? WHERE id = ?`,
		category, confidence, now(), id)
}

func (s *Store) UpdateConversationStatus(ctx context.Context, id string, status models.ConversationStatus) error {
	return s.execOne(ctx, id, `UPDATE conversations SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), now(), id)
}

func (s *Store) MarkRouted(ctx context.Context, id, team string, at time.Time) error {
	return s.execOne(ctx, id, `UPDATE conversations SET routed_to = ?, routed_at = ?, updated_at = ? WHERE id = ?`,
		team, at.UTC(), now(), id)
}

func (s *Store) execOne(ctx context.Context, id, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update conversation %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update conversation %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("conversation %s: %w", id, store.ErrNotFound)
	}
	return nil
}

func (s *Store) AppendMessage(ctx context.Context, msg *models.Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for message: %w", err)
	}
	defer tx.Rollback()

	if err := insertMessage(ctx, tx, msg); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE conversations SET updated_at = ? WHERE id = ?`, msg.CreatedAt, msg.ConversationID); err != nil {
		return fmt.Errorf("failed to touch conversation %s: %w", msg.ConversationID, err)
	}
	return tx.Commit()
}

func (s *Store) ListMessages(ctx context.Context, conversationID string) ([]*models.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, conversation_id, content, sender, created_at
		FROM messages
		WHERE conversation_id = ?
		ORDER BY created_at, id`, conversationID)
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

func (s *Store) CountUserMessages(ctx context.Context, conversationID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM messages WHERE conversation_id = ? AND sender = 'user'`, conversationID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count user messages for conversation %s: %w", conversationID, err)
	}
	return n, nil
}

// RecordTurn reads and updates the conversation inside one transaction. The
// single connection keeps any other turn out until it commits.
func (s *Store) RecordTurn(ctx context.Context, id string, fn store.TurnFunc) (*models.Conversation, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin turn transaction: %w", err)
	}
	defer tx.Rollback()

	conv := &models.Conversation{}
	row := tx.QueryRowContext(ctx, `SELECT `+conversationColumns+` FROM conversations WHERE id = ?`, id)
	if err := scanConversation(row, conv); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("conversation %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load conversation %s: %w", id, err)
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

	conv.QuestionIndex = update.QuestionIndex
	conv.Status = update.Status
	conv.UpdatedAt = now()
	_, err = tx.ExecContext(ctx, `UPDATE conversations SET question_index = ?, status = ?, updated_at = ? WHERE id = ?`,
		conv.QuestionIndex, string(conv.Status), conv.UpdatedAt, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update conversation %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit turn for conversation %s: %w", id, err)
	}
	return conv, nil
}
