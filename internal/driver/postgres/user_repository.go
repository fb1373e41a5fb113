package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"idman-gateway/internal/domain"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository implements domain.UserStore, domain.PasswordStore and
// domain.UserRoleStore for PostgreSQL.
type UserRepository struct {
	db     Querier
	logger *slog.Logger
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(db Querier, logger *slog.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger.With("component", "user_repository"),
	}
}

// Get implements domain.UserStore.
func (r *UserRepository) Get(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, email, display_name, user_type, auth_mode
		FROM users
		WHERE id = $1`

	return r.scanUser(ctx, query, id)
}

// GetByEmail implements domain.UserStore.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, email, display_name, user_type, auth_mode
		FROM users
		WHERE email = $1`

	return r.scanUser(ctx, query, email)
}

func (r *UserRepository) scanUser(ctx context.Context, query string, arg string) (*domain.User, error) {
	user := &domain.User{}
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.UserType,
		&user.AuthMode,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		r.logger.Error("failed to load user", "error", err)
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// Verify implements domain.PasswordStore. A user without a stored hash
// fails verification rather than erroring so callers cannot tell the cases
// apart.
func (r *UserRepository) Verify(ctx context.Context, userID, password string) (bool, error) {
	query := `SELECT password_hash FROM user_passwords WHERE user_id = $1`

	var hash string
	err := r.db.QueryRow(ctx, query, userID).Scan(&hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		r.logger.Error("failed to load password hash", "user_id", userID, "error", err)
		return false, fmt.Errorf("failed to load password hash: %w", err)
	}

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil, nil
}

// Set implements domain.PasswordStore.
func (r *UserRepository) Set(ctx context.Context, userID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	query := `
		INSERT INTO user_passwords (user_id, password_hash)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET password_hash = EXCLUDED.password_hash`

	if _, err := r.db.Exec(ctx, query, userID, string(hash)); err != nil {
		r.logger.Error("failed to store password hash", "user_id", userID, "error", err)
		return fmt.Errorf("failed to store password hash: %w", err)
	}
	return nil
}

// Role implements domain.UserRoleStore. A user with no binding for the
// service has the empty role.
func (r *UserRepository) Role(ctx context.Context, userID, serviceID string) (string, error) {
	query := `SELECT role FROM user_roles WHERE user_id = $1 AND service_id = $2`

	var role string
	err := r.db.QueryRow(ctx, query, userID, serviceID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		r.logger.Error("failed to load role", "user_id", userID, "service_id", serviceID, "error", err)
		return "", fmt.Errorf("failed to load role: %w", err)
	}
	return role, nil
}
