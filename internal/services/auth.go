package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/monban-project/monban/internal/repositories"
	"github.com/monban-project/monban/internal/services/authorization"
)

// Authenticator resolves an API token to the calling principal and its
// grant snapshot.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*authorization.Security, error)
}

// AuthService is the token-backed Authenticator. An unknown or expired
// token yields authorization.ErrUnauthenticated; a known principal with no
// grants is authenticated but will be denied by the voter.
type AuthService struct {
	principals repositories.PrincipalRepository
	grants     repositories.GrantRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(principals repositories.PrincipalRepository, grants repositories.GrantRepository) *AuthService {
	return &AuthService{principals: principals, grants: grants}
}

// Authenticate looks up the token's principal and loads its grants. The
// returned Security is a per-call snapshot and must not be cached.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*authorization.Security, error) {
	if token == "" {
		return nil, authorization.ErrUnauthenticated
	}

	principal, err := s.principals.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, authorization.ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to resolve principal: %w", err)
	}

	grants, err := s.grants.ListByPrincipal(ctx, principal.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load grants for principal %s: %w", principal.ID, err)
	}

	return &authorization.Security{Principal: principal, Grants: grants}, nil
}
