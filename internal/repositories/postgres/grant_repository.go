package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/monban-project/monban/internal/entities"
	"github.com/monban-project/monban/internal/repositories"
)

// PostgresGrantRepository implements GrantRepository using PostgreSQL.
// Stored permission names are resolved against the catalogue; rows naming a
// permission the catalogue no longer contains are skipped, never treated as
// an allow.
type PostgresGrantRepository struct {
	db        *sql.DB
	catalogue *entities.Catalogue
}

// NewPostgresGrantRepository creates a new PostgreSQL grant repository.
func NewPostgresGrantRepository(db *sql.DB, catalogue *entities.Catalogue) repositories.GrantRepository {
	return &PostgresGrantRepository{db: db, catalogue: catalogue}
}

// ListByPrincipal returns the grant snapshot for a principal.
func (r *PostgresGrantRepository) ListByPrincipal(ctx context.Context, principalID string) ([]*entities.PolicyGrantedAuthority, error) {
	query := `
		SELECT permission, COALESCE(scope_id, '')
		FROM policy_grants
		WHERE principal_id = $1
	`
	rows, err := r.db.QueryContext(ctx, query, principalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list grants: %w", err)
	}
	defer rows.Close()

	var grants []*entities.PolicyGrantedAuthority
	for rows.Next() {
		var name, scopeID string
		if err := rows.Scan(&name, &scopeID); err != nil {
			return nil, fmt.Errorf("failed to scan grant: %w", err)
		}
		permission := r.catalogue.Get(name)
		if permission == nil {
			log.Printf("skipping grant for principal %s: unknown permission %q", principalID, name)
			continue
		}
		grants = append(grants, &entities.PolicyGrantedAuthority{
			Permission: permission,
			ScopeID:    scopeID,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate grants: %w", err)
	}
	return grants, nil
}
