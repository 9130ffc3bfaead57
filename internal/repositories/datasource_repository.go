package repositories

import (
	"context"

	"github.com/monban-project/monban/internal/entities"
)

// DatasourceRepository persists datasources.
type DatasourceRepository interface {
	Create(ctx context.Context, ds *entities.Datasource) error
	GetByID(ctx context.Context, id string) (*entities.Datasource, error)
	List(ctx context.Context) ([]*entities.Datasource, error)
	Update(ctx context.Context, ds *entities.Datasource) error
}
