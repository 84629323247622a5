package primary

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"servicebot/internal/models"
	"servicebot/internal/store"
)

//go:embed schema.sql
var schemaSQL string

// StoreImpl implements store.Store using PostgreSQL.
type StoreImpl struct {
	db *pgxpool.Pool
}

var _ store.Store = (*StoreImpl)(nil)

// NewPrimaryStore creates a new PostgreSQL store and bootstraps its schema.
func NewPrimaryStore(ctx context.Context, dsn string) (*StoreImpl, error) {
	if dsn == "" {
		return nil, errors.New("database DSN cannot be empty")
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database DSN: %w", err)
	}

	dbpool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	if _, err := dbpool.Exec(ctx, schemaSQL); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("unable to apply schema: %w", err)
	}

	return &StoreImpl{db: dbpool}, nil
}

// Ping checks the database connection.
func (s *StoreImpl) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection pool.
func (s *StoreImpl) Close() error {
	s.db.Close()
	return nil
}

// --- Helper Functions ---

const conversationColumns = `id, status, category, confidence, question_index, routed_to, routed_at, created_at, updated_at`

// scanConversation scans one row selected with conversationColumns.
func scanConversation(row pgx.Row, dest *models.Conversation) error {
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

// insertMessage inserts msg within tx and fills its ID and timestamp.
func insertMessage(ctx context.Context, tx pgx.Tx, msg *models.Message) error {
	query := `
		INSERT INTO messages (conversation_id, content, sender, created_at)
		VALUES ($1, $2, $3, clock_timestamp())
		RETURNING id, created_at`
	if err := tx.QueryRow(ctx, query, msg.ConversationID, msg.Content, string(msg.Sender)).Scan(&msg.ID, &msg.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert message for conversation %s: %w", msg.ConversationID, err)
	}
	return nil
}
