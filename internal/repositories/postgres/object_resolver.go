package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/monban-project/monban/internal/entities"
	"github.com/monban-project/monban/internal/repositories"
)

// ObjectResolver is the identifier-resolution collaborator: it dispatches a
// SecuredID to the repository for its resource kind and returns the live
// object with its ownership lineage populated.
type ObjectResolver struct {
	datasources repositories.DatasourceRepository
	connections repositories.ConnectionRepository
	requests    repositories.RequestRepository
	comments    repositories.CommentRepository
}

// NewObjectResolver creates a resolver over all secured repositories.
func NewObjectResolver(db *sql.DB) *ObjectResolver {
	return &ObjectResolver{
		datasources: NewPostgresDatasourceRepository(db),
		connections: NewPostgresConnectionRepository(db),
		requests:    NewPostgresRequestRepository(db),
		comments:    NewPostgresCommentRepository(db),
	}
}

// Resolve returns the secured object named by id, or
// repositories.ErrNotFound when the identifier is unknown. Identifiers of
// resource kinds that have no backing store cannot be resolved and are
// reported as not found as well.
func (r *ObjectResolver) Resolve(ctx context.Context, id entities.SecuredID) (entities.SecuredObject, error) {
	switch id.Resource {
	case entities.ResourceDatasource:
		return r.datasources.GetByID(ctx, id.ID)
	case entities.ResourceConnection:
		return r.connections.GetByID(ctx, id.ID)
	case entities.ResourceRequest:
		return r.requests.GetByID(ctx, id.ID)
	case entities.ResourceComment:
		return r.comments.GetByID(ctx, id.ID)
	}
	return nil, fmt.Errorf("resource %q: %w", id.Resource, repositories.ErrNotFound)
}
