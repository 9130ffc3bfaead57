package repositories

import (
	"context"

	"github.com/monban-project/monban/internal/entities"
)

// RequestRepository persists execution requests. Loaded requests carry their
// connection and its datasource so the permission chain can walk the
// ownership hierarchy.
type RequestRepository interface {
	Create(ctx context.Context, req *entities.ExecutionRequest) error
	GetByID(ctx context.Context, id string) (*entities.ExecutionRequest, error)
	List(ctx context.Context) ([]*entities.ExecutionRequest, error)
	Update(ctx context.Context, req *entities.ExecutionRequest) error
}
