package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/edgard/commitboard/internal/board"
	errs "github.com/edgard/commitboard/internal/errors"
)

// Store defines the interface for local message persistence.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// AppendMessage durably records a new message with the current UTC
	// timestamp and returns its id. Blank content is rejected with a
	// ValidationError before any row is created.
	AppendMessage(ctx context.Context, content string) (int64, error)

	// AttachCommitRef sets the mirror commit hash for an existing message.
	// Returns a NotFoundError if the id does not exist. Idempotent: setting
	// the same hash again is a no-op, a different hash overwrites.
	AttachCommitRef(ctx context.Context, id int64, sha string) error

	// RecentMessages returns up to limit most recent messages, ascending by
	// timestamp. An empty store yields an empty slice, not an error.
	RecentMessages(ctx context.Context, limit int) ([]board.Message, error)

	// RunMaintenance performs database maintenance tasks like VACUUM.
	RunMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// AppendMessage inserts a new message row and returns the assigned id.
func (s *sqlxStore) AppendMessage(ctx context.Context, content string) (int64, error) {
	if strings.TrimSpace(content) == "" {
		return 0, errs.NewValidationError("message content must not be empty", nil)
	}

	if ctx.Err() != nil {
		return 0, ctx.Err()
	}

	msg := Message{
		Content:   content,
		Timestamp: time.Now().UTC(),
	}

	query := `
        INSERT INTO messages (content, timestamp, git_commit_hash)
        VALUES (:content, :timestamp, :git_commit_hash);
    `

	result, err := s.db.NamedExecContext(ctx, query, msg)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving message", "error", err)
		return 0, errs.NewStorageError("failed to save message", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		s.logger.ErrorContext(ctx, "Could not retrieve last insert ID after saving message", "error", err)
		return 0, errs.NewStorageError("failed to read inserted message id", err)
	}

	s.logger.DebugContext(ctx, "Message saved successfully", "message_id", id)
	return id, nil
}

// AttachCommitRef sets git_commit_hash on an existing row.
func (s *sqlxStore) AttachCommitRef(ctx context.Context, id int64, sha string) error {
	if sha == "" {
		return errs.NewValidationError("commit hash must not be empty", nil)
	}

	query := `UPDATE messages SET git_commit_hash = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, sha, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error attaching commit hash", "message_id", id, "error", err)
		return errs.NewStorageError(fmt.Sprintf("failed to attach commit hash to message %d", id), err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		s.logger.WarnContext(ctx, "Could not get affected row count when attaching commit hash",
			"message_id", id, "error", err)
		return nil
	}
	if affected == 0 {
		return errs.NewNotFoundError(fmt.Sprintf("message %d not found", id), nil)
	}

	s.logger.DebugContext(ctx, "Commit hash attached", "message_id", id, "sha", sha)
	return nil
}

// RecentMessages retrieves the most recent 'limit' messages, ascending by timestamp.
func (s *sqlxStore) RecentMessages(ctx context.Context, limit int) ([]board.Message, error) {
	if limit <= 0 {
		limit = 50
		s.logger.DebugContext(ctx, "Invalid limit provided, using default", "default_limit", limit)
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var rows []Message
	query := `
        SELECT id, content, timestamp, git_commit_hash
        FROM messages
        ORDER BY timestamp DESC, id DESC
        LIMIT ?;
    `

	err := s.db.SelectContext(ctx, &rows, query, limit)

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.logger.WarnContext(ctx, "Context timeout or cancellation while fetching messages", "error", err)
		return nil, err
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		s.logger.ErrorContext(ctx, "Error getting recent messages", "limit", limit, "error", err)
		return nil, errs.NewStorageError("failed to get recent messages", err)
	}

	// Rows come back newest-first; flip to ascending for the aggregated view.
	messages := make([]board.Message, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		messages = append(messages, rows[i].toBoard())
	}

	s.logger.DebugContext(ctx, "Fetched recent messages successfully", "count", len(messages))
	return messages, nil
}

// RunMaintenance executes a VACUUM command on the SQLite database.
func (s *sqlxStore) RunMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	// VACUUM must run outside a transaction in SQLite.
	_, err := s.db.ExecContext(ctx, "VACUUM;")

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)

	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)

	default:
		s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	}

	return nil
}
