package repositories

import (
	"context"

	"github.com/monban-project/monban/internal/entities"
)

// ConnectionRepository persists datasource connections. Loaded connections
// carry their parent datasource so the permission chain can walk to it.
type ConnectionRepository interface {
	Create(ctx context.Context, conn *entities.Connection) error
	GetByID(ctx context.Context, id string) (*entities.Connection, error)
	List(ctx context.Context) ([]*entities.Connection, error)
	Update(ctx context.Context, conn *entities.Connection) error
}
