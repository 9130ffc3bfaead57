package repositories

import (
	"context"

	"github.com/monban-project/monban/internal/entities"
)

// PrincipalRepository resolves principals from API tokens.
type PrincipalRepository interface {
	// GetByToken returns the principal that owns the given unexpired token,
	// or ErrNotFound.
	GetByToken(ctx context.Context, token string) (*entities.Principal, error)
}
