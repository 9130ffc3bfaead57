package repositories

import (
	"context"

	"github.com/monban-project/monban/internal/entities"
)

// GrantRepository loads the policy grants held by a principal. The returned
// slice is a snapshot for a single call; callers must not cache it across
// calls, since grants may change between calls.
type GrantRepository interface {
	ListByPrincipal(ctx context.Context, principalID string) ([]*entities.PolicyGrantedAuthority, error)
}
