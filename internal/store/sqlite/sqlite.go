// Package sqlite is a single-file store for local runs and tests. It holds a
// single connection, so transactions are serialized by database/sql itself.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"servicebot/internal/models"
	"servicebot/internal/store"
)

//go:embed schema.sql
var schemaSQL string

// Store implements store.Store on SQLite.
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// New opens (creating if needed) the database at path and applies the schema.
// ":memory:" gives a private in-memory database.
func New(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlite path cannot be empty")
	}
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_foreign_keys=on&_busy_timeout=5000"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping sqlite database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func now() time.Time {
	return time.Now().UTC()
}

const conversationColumns = `id, status, category, confidence, question_index, routed_to, routed_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row rowScanner, dest *models.Conversation) error {
	return row.Scan(
		&dest.ID,
		&dest.Status,
		&dest.Category,
		&dest.Confidence,
		&dest.QuestionIndex,
		&dest.RoutedTo,
		&dest.RoutedAt,
		&dest.CreatedAt,
		&dest.UpdatedAt,
	)
}

func insertMessage(ctx context.Context, tx *sql.Tx, msg *models.Message) error {
	msg.CreatedAt = now()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO messages (conversation_id, content, sender, created_at) VALUES (?, ?, ?, ?)`,
		msg.ConversationID, msg.Content, string(msg.Sender), msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert message for conversation %s: %w", msg.ConversationID, err)
	}
	msg.ID, err = res.LastInsertId()
	return err
}
