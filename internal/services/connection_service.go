package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/monban-project/monban/internal/entities"
	"github.com/monban-project/monban/internal/repositories"
	"github.com/monban-project/monban/internal/services/authorization"
)

// CreateConnectionInput carries the fields for adding a connection to a
// datasource.
type CreateConnectionInput struct {
	DatasourceID string
	Name         string
	DatabaseName string
	Username     string
}

// UpdateConnectionInput carries the editable fields of a connection.
type UpdateConnectionInput struct {
	Name         string
	DatabaseName string
	Username     string
}

// ConnectionService exposes the protected connection operations.
type ConnectionService struct {
	connections repositories.ConnectionRepository
	guard       *authorization.Guard
	invalidator repositories.ObjectInvalidator
}

// NewConnectionService creates a new ConnectionService. invalidator may be
// nil when object resolution is not cached.
func NewConnectionService(
	connections repositories.ConnectionRepository,
	guard *authorization.Guard,
	invalidator repositories.ObjectInvalidator,
) *ConnectionService {
	return &ConnectionService{connections: connections, guard: guard, invalidator: invalidator}
}

// Create adds a connection to a datasource. The parent datasource is the
// check's target, so an instance-scoped datasource:get grant on it
// satisfies the inherited link while datasource_connection:create must be
// held globally.
func (s *ConnectionService) Create(ctx context.Context, sec *authorization.Security, input CreateConnectionInput) (*entities.Connection, error) {
	if input.DatasourceID == "" {
		return nil, fmt.Errorf("%w: datasource_id is required", ErrInvalidInput)
	}
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	sid := entities.SecuredID{Resource: entities.ResourceDatasource, ID: input.DatasourceID}
	result, err := s.guard.Invoke(ctx, sec, entities.ConnectionCreate, []any{sid}, func(ctx context.Context) (authorization.Result, error) {
		now := time.Now()
		conn := &entities.Connection{
			ID:           uuid.NewString(),
			DatasourceID: input.DatasourceID,
			Name:         input.Name,
			DatabaseName: input.DatabaseName,
			Username:     input.Username,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.connections.Create(ctx, conn); err != nil {
			return authorization.Empty(), fmt.Errorf("failed to create connection: %w", err)
		}
		created, err := s.connections.GetByID(ctx, conn.ID)
		if err != nil {
			return authorization.Empty(), err
		}
		return authorization.Single(created), nil
	})
	if err != nil {
		return nil, err
	}
	return result.Object().(*entities.Connection), nil
}

// Get returns a single connection, authorizing the identified instance.
func (s *ConnectionService) Get(ctx context.Context, sec *authorization.Security, id string) (*entities.Connection, error) {
	sid := entities.SecuredID{Resource: entities.ResourceConnection, ID: id}
	result, err := s.guard.Invoke(ctx, sec, entities.ConnectionGet, []any{sid}, func(ctx context.Context) (authorization.Result, error) {
		conn, err := s.connections.GetByID(ctx, id)
		if err != nil {
			return authorization.Empty(), err
		}
		return authorization.Single(conn), nil
	})
	if err != nil {
		return nil, err
	}
	return result.Object().(*entities.Connection), nil
}

// List returns the connections the principal may see.
func (s *ConnectionService) List(ctx context.Context, sec *authorization.Security) ([]*entities.Connection, error) {
	result, err := s.guard.Invoke(ctx, sec, entities.ConnectionView, nil, func(ctx context.Context) (authorization.Result, error) {
		list, err := s.connections.List(ctx)
		if err != nil {
			return authorization.Empty(), err
		}
		objects := make([]entities.SecuredObject, len(list))
		for i, conn := range list {
			objects[i] = conn
		}
		return authorization.Many(objects), nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]*entities.Connection, 0, len(result.Objects()))
	for _, object := range result.Objects() {
		out = append(out, object.(*entities.Connection))
	}
	return out, nil
}

// Update edits a connection in place.
func (s *ConnectionService) Update(ctx context.Context, sec *authorization.Security, id string, input UpdateConnectionInput) (*entities.Connection, error) {
	sid := entities.SecuredID{Resource: entities.ResourceConnection, ID: id}
	result, err := s.guard.Invoke(ctx, sec, entities.ConnectionEdit, []any{sid}, func(ctx context.Context) (authorization.Result, error) {
		conn, err := s.connections.GetByID(ctx, id)
		if err != nil {
			return authorization.Empty(), err
		}
		if input.Name != "" {
			conn.Name = input.Name
		}
		if input.DatabaseName != "" {
			conn.DatabaseName = input.DatabaseName
		}
		if input.Username != "" {
			conn.Username = input.Username
		}
		conn.UpdatedAt = time.Now()
		if err := s.connections.Update(ctx, conn); err != nil {
			return authorization.Empty(), fmt.Errorf("failed to update connection: %w", err)
		}
		return authorization.Single(conn), nil
	})
	if err != nil {
		return nil, err
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, sid)
	}
	return result.Object().(*entities.Connection), nil
}
