package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"idman-gateway/internal/domain"

	"github.com/jackc/pgx/v5"
)

// SessionRepository implements domain.SessionStore for PostgreSQL.
type SessionRepository struct {
	db     Querier
	logger *slog.Logger
}

// NewSessionRepository creates a new PostgreSQL session repository.
func NewSessionRepository(db Querier, logger *slog.Logger) *SessionRepository {
	return &SessionRepository{
		db:     db,
		logger: logger.With("component", "session_repository"),
	}
}

// Create implements domain.SessionStore.
func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, service_id, role, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.ServiceID,
		session.Role,
		session.CreatedAt,
		session.Expiry,
	)
	if err != nil {
		r.logger.Error("failed to create session", "session_id", session.ID, "error", err)
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// Get implements domain.SessionStore.
func (r *SessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	query := `
		SELECT id, user_id, service_id, role, created_at, expires_at
		FROM sessions
		WHERE id = $1`

	session := &domain.Session{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&session.ID,
		&session.UserID,
		&session.ServiceID,
		&session.Role,
		&session.CreatedAt,
		&session.Expiry,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		r.logger.Error("failed to load session", "session_id", id, "error", err)
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return session, nil
}

// CleanupLoop deletes expired sessions every interval until the context is
// cancelled. Errors are logged and the loop keeps going.
func (r *SessionRepository) CleanupLoop(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _ = r.DeleteExpired(ctx)
		case <-ctx.Done():
			return nil
		}
	}
}

// DeleteExpired removes sessions whose expiry is in the past. Intended for
// periodic maintenance.
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM sessions WHERE expires_at IS NOT NULL AND expires_at < CURRENT_TIMESTAMP`

	result, err := r.db.Exec(ctx, query)
	if err != nil {
		r.logger.Error("failed to delete expired sessions", "error", err)
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	deleted := result.RowsAffected()
	if deleted > 0 {
		r.logger.Info("expired sessions deleted", "rows_affected", deleted)
	}
	return deleted, nil
}
