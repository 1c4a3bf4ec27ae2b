package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	apperrors "github.com/edgard/friendbook/internal/errors"
	"github.com/edgard/friendbook/internal/logger"
)

// Store defines the friend record operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// CreateFriend inserts a new record and sets friend.ID to the assigned id.
	CreateFriend(ctx context.Context, friend *Friend) error

	// GetFriend retrieves a record by id. Returns nil, nil if not found.
	GetFriend(ctx context.Context, id int64) (*Friend, error)

	// ListFriends retrieves all records in insertion order.
	ListFriends(ctx context.Context) ([]Friend, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

const friendColumns = `id, name, profession, profession_description, photo_url`

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
func NewStore(db *sqlx.DB, log *slog.Logger) Store {
	if log == nil {
		log = logger.Discard()
	}
	return &sqlxStore{
		db:     db,
		logger: log.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateFriend inserts the record inside a transaction. Any failure rolls the
// transaction back so no partial row is left behind.
func (s *sqlxStore) CreateFriend(ctx context.Context, friend *Friend) error {
	if friend == nil {
		return apperrors.NewPersistenceError("cannot save nil friend", nil)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for saving friend", "error", err)
		return apperrors.NewPersistenceError("failed to begin transaction", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
			}
		}
	}()

	query, args, err := sqlx.Named(`
        INSERT INTO friends (name, profession, profession_description, photo_url)
        VALUES (:name, :profession, :profession_description, :photo_url)
        RETURNING id;
    `, friend)
	if err != nil {
		return apperrors.NewPersistenceError("failed to build insert query", err)
	}

	var id int64
	if err := tx.GetContext(ctx, &id, tx.Rebind(query), args...); err != nil {
		s.logger.ErrorContext(ctx, "Error saving friend", "name", friend.Name, "error", err)
		return apperrors.NewPersistenceError("failed to save friend", err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit transaction", "name", friend.Name, "error", err)
		return apperrors.NewPersistenceError("failed to commit transaction", err)
	}
	// Successfully committed, set tx to nil to avoid rollback
	tx = nil
	friend.ID = id

	s.logger.DebugContext(ctx, "Friend saved successfully", "friend_id", id)
	return nil
}

// GetFriend retrieves a record by id. Returns nil, nil if not found.
func (s *sqlxStore) GetFriend(ctx context.Context, id int64) (*Friend, error) {
	var friend Friend
	query := s.db.Rebind(`SELECT ` + friendColumns + ` FROM friends WHERE id = ?`)

	err := s.db.GetContext(ctx, &friend, query, id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		s.logger.DebugContext(ctx, "No friend found", "friend_id", id)
		return nil, nil

	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "Context timeout or cancellation while fetching friend", "friend_id", id, "error", err)
		return nil, apperrors.NewPersistenceError("friend lookup interrupted", err)

	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting friend by ID", "friend_id", id, "error", err)
		return nil, apperrors.NewPersistenceError(fmt.Sprintf("failed to get friend %d", id), err)
	}

	return &friend, nil
}

// ListFriends retrieves all records ordered by id. The result is never nil.
func (s *sqlxStore) ListFriends(ctx context.Context) ([]Friend, error) {
	friends := make([]Friend, 0)
	err := s.db.SelectContext(ctx, &friends, `SELECT `+friendColumns+` FROM friends ORDER BY id`)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error listing friends", "error", err)
		return nil, apperrors.NewPersistenceError("failed to list friends", err)
	}

	s.logger.DebugContext(ctx, "Fetched friends", "count", len(friends))
	return friends, nil
}

// RunSQLMaintenance reclaims space and refreshes planner statistics.
// VACUUM must run outside a transaction on both SQLite and Postgres.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	statement := "VACUUM;"
	if s.db.DriverName() == DriverPostgres {
		statement = "VACUUM ANALYZE friends;"
	}

	s.logger.InfoContext(ctx, "Starting database maintenance", "statement", statement)
	_, err := s.db.ExecContext(ctx, statement)

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "Database maintenance timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance timed out: %w", err)

	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance failed", "error", err)
		return apperrors.NewPersistenceError("failed to run database maintenance", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance completed successfully")
	return nil
}
