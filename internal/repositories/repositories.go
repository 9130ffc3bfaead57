package repositories

import (
	"context"
	"errors"

	"github.com/monban-project/monban/internal/entities"
)

// ErrNotFound is returned by all repositories when the requested row does
// not exist. The enforcement point treats it as a denial (fail closed).
var ErrNotFound = errors.New("not found")

// ObjectResolver resolves a secured identifier to the live domain object,
// with its parent objects populated far enough for the permission chain to
// walk Related links. It is the engine's only window into persistence.
type ObjectResolver interface {
	Resolve(ctx context.Context, id entities.SecuredID) (entities.SecuredObject, error)
}

// ObjectInvalidator drops a cached object after a mutation so the next
// check sees fresh state. Resolvers without a cache need not implement it.
type ObjectInvalidator interface {
	Invalidate(ctx context.Context, id entities.SecuredID)
}
