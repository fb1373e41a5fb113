package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"idman-gateway/internal/domain"

	"github.com/jackc/pgx/v5"
)

// ServiceRepository implements domain.ServiceStore for PostgreSQL.
type ServiceRepository struct {
	db     Querier
	logger *slog.Logger
}

// NewServiceRepository creates a new PostgreSQL service repository.
func NewServiceRepository(db Querier, logger *slog.Logger) *ServiceRepository {
	return &ServiceRepository{
		db:     db,
		logger: logger.With("component", "service_repository"),
	}
}

// Get implements domain.ServiceStore.
func (r *ServiceRepository) Get(ctx context.Context, id string) (*domain.Service, error) {
	query := `SELECT id, name, secret FROM services WHERE id = $1`

	service := &domain.Service{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&service.ID,
		&service.Name,
		&service.Secret,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrServiceNotFound
		}
		r.logger.Error("failed to load service", "service_id", id, "error", err)
		return nil, fmt.Errorf("failed to load service: %w", err)
	}
	return service, nil
}
