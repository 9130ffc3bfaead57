package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/monban-project/monban/internal/entities"
	"github.com/monban-project/monban/internal/repositories"
)

// PostgresPrincipalRepository implements PrincipalRepository using
// PostgreSQL.
type PostgresPrincipalRepository struct {
	db *sql.DB
}

// NewPostgresPrincipalRepository creates a new PostgreSQL principal
// repository.
func NewPostgresPrincipalRepository(db *sql.DB) repositories.PrincipalRepository {
	return &PostgresPrincipalRepository{db: db}
}

// GetByToken returns the principal owning an unexpired API token.
func (r *PostgresPrincipalRepository) GetByToken(ctx context.Context, token string) (*entities.Principal, error) {
	query := `
		SELECT p.id, p.name
		FROM api_tokens t
		JOIN principals p ON p.id = t.principal_id
		WHERE t.token = $1
			AND (t.expires_at IS NULL OR t.expires_at > NOW())
	`
	principal := &entities.Principal{}
	err := r.db.QueryRowContext(ctx, query, token).Scan(&principal.ID, &principal.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get principal by token: %w", err)
	}
	return principal, nil
}
