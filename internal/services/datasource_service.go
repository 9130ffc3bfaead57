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

// CreateDatasourceInput carries the fields for registering a datasource.
type CreateDatasourceInput struct {
	Name   string
	Driver string
	Host   string
	Port   int
}

// UpdateDatasourceInput carries the editable fields of a datasource.
type UpdateDatasourceInput struct {
	Name string
	Host string
	Port int
}

// DatasourceService exposes the protected datasource operations.
type DatasourceService struct {
	datasources repositories.DatasourceRepository
	guard       *authorization.Guard
	invalidator repositories.ObjectInvalidator
}

// NewDatasourceService creates a new DatasourceService. invalidator may be
// nil when object resolution is not cached.
func NewDatasourceService(
	datasources repositories.DatasourceRepository,
	guard *authorization.Guard,
	invalidator repositories.ObjectInvalidator,
) *DatasourceService {
	return &DatasourceService{datasources: datasources, guard: guard, invalidator: invalidator}
}

// Create registers a new datasource. The check is unscoped: only a global
// datasource:create grant satisfies it.
func (s *DatasourceService) Create(ctx context.Context, sec *authorization.Security, input CreateDatasourceInput) (*entities.Datasource, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if input.Driver == "" {
		return nil, fmt.Errorf("%w: driver is required", ErrInvalidInput)
	}

	result, err := s.guard.Invoke(ctx, sec, entities.DatasourceCreate, nil, func(ctx context.Context) (authorization.Result, error) {
		now := time.Now()
		ds := &entities.Datasource{
			ID:        uuid.NewString(),
			Name:      input.Name,
			Driver:    input.Driver,
			Host:      input.Host,
			Port:      input.Port,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.datasources.Create(ctx, ds); err != nil {
			return authorization.Empty(), fmt.Errorf("failed to create datasource: %w", err)
		}
		return authorization.Single(ds), nil
	})
	if err != nil {
		return nil, err
	}
	return result.Object().(*entities.Datasource), nil
}

// Get returns a single datasource, authorizing the identified instance.
func (s *DatasourceService) Get(ctx context.Context, sec *authorization.Security, id string) (*entities.Datasource, error) {
	sid := entities.SecuredID{Resource: entities.ResourceDatasource, ID: id}
	result, err := s.guard.Invoke(ctx, sec, entities.DatasourceGet, []any{sid}, func(ctx context.Context) (authorization.Result, error) {
		ds, err := s.datasources.GetByID(ctx, id)
		if err != nil {
			return authorization.Empty(), err
		}
		return authorization.Single(ds), nil
	})
	if err != nil {
		return nil, err
	}
	return result.Object().(*entities.Datasource), nil
}

// List returns the datasources the principal may see. Denied elements are
// silently dropped, preserving order.
func (s *DatasourceService) List(ctx context.Context, sec *authorization.Security) ([]*entities.Datasource, error) {
	result, err := s.guard.Invoke(ctx, sec, entities.DatasourceView, nil, func(ctx context.Context) (authorization.Result, error) {
		list, err := s.datasources.List(ctx)
		if err != nil {
			return authorization.Empty(), err
		}
		objects := make([]entities.SecuredObject, len(list))
		for i, ds := range list {
			objects[i] = ds
		}
		return authorization.Many(objects), nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]*entities.Datasource, 0, len(result.Objects()))
	for _, object := range result.Objects() {
		out = append(out, object.(*entities.Datasource))
	}
	return out, nil
}

// Update edits a datasource in place.
func (s *DatasourceService) Update(ctx context.Context, sec *authorization.Security, id string, input UpdateDatasourceInput) (*entities.Datasource, error) {
	sid := entities.SecuredID{Resource: entities.ResourceDatasource, ID: id}
	result, err := s.guard.Invoke(ctx, sec, entities.DatasourceEdit, []any{sid}, func(ctx context.Context) (authorization.Result, error) {
		ds, err := s.datasources.GetByID(ctx, id)
		if err != nil {
			return authorization.Empty(), err
		}
		if input.Name != "" {
			ds.Name = input.Name
		}
		if input.Host != "" {
			ds.Host = input.Host
		}
		if input.Port != 0 {
			ds.Port = input.Port
		}
		ds.UpdatedAt = time.Now()
		if err := s.datasources.Update(ctx, ds); err != nil {
			return authorization.Empty(), fmt.Errorf("failed to update datasource: %w", err)
		}
		return authorization.Single(ds), nil
	})
	if err != nil {
		return nil, err
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, sid)
	}
	return result.Object().(*entities.Datasource), nil
}
