package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/monban-project/monban/internal/entities"
	"github.com/monban-project/monban/internal/repositories"
)

func seedPrincipal(t *testing.T, db *sql.DB, id, name string) {
	t.Helper()
	if _, err := db.Exec(`INSERT INTO principals (id, name) VALUES ($1, $2)`, id, name); err != nil {
		t.Fatalf("failed to seed principal: %v", err)
	}
}

func seedGrant(t *testing.T, db *sql.DB, principalID, permission, scopeID string) {
	t.Helper()
	var scope any
	if scopeID != "" {
		scope = scopeID
	}
	_, err := db.Exec(
		`INSERT INTO policy_grants (principal_id, permission, scope_id) VALUES ($1, $2, $3)`,
		principalID, permission, scope,
	)
	if err != nil {
		t.Fatalf("failed to seed grant: %v", err)
	}
}

func TestGrantRepository_ListByPrincipal(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	seedPrincipal(t, db, "p1", "bob")
	seedGrant(t, db, "p1", "datasource:get", "")
	seedGrant(t, db, "p1", "execution_request:get", "r1")
	// Refers to a permission the catalogue does not know; must be skipped.
	seedGrant(t, db, "p1", "legacy:frobnicate", "")

	repo := NewPostgresGrantRepository(db, entities.DefaultCatalogue())
	grants, err := repo.ListByPrincipal(context.Background(), "p1")
	if err != nil {
		t.Fatalf("ListByPrincipal() error = %v", err)
	}
	if len(grants) != 2 {
		t.Fatalf("loaded %d grants, want 2 (unknown permission skipped)", len(grants))
	}

	byName := map[string]*entities.PolicyGrantedAuthority{}
	for _, g := range grants {
		byName[g.Permission.Name()] = g
	}
	if g := byName["datasource:get"]; g == nil || !g.Global() {
		t.Error("datasource:get should be a global grant")
	}
	if g := byName["execution_request:get"]; g == nil || g.ScopeID != "r1" {
		t.Error("execution_request:get should be scoped to r1")
	}
}

func TestGrantRepository_ListByPrincipal_Empty(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	seedPrincipal(t, db, "p1", "bob")

	repo := NewPostgresGrantRepository(db, entities.DefaultCatalogue())
	grants, err := repo.ListByPrincipal(context.Background(), "p1")
	if err != nil {
		t.Fatalf("ListByPrincipal() error = %v", err)
	}
	if len(grants) != 0 {
		t.Errorf("loaded %d grants, want 0", len(grants))
	}
}

func TestPrincipalRepository_GetByToken(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	seedPrincipal(t, db, "p1", "bob")
	if _, err := db.Exec(`INSERT INTO api_tokens (token, principal_id) VALUES ($1, $2)`, "tok-1", "p1"); err != nil {
		t.Fatalf("failed to seed token: %v", err)
	}
	expired := time.Now().Add(-time.Hour)
	if _, err := db.Exec(
		`INSERT INTO api_tokens (token, principal_id, expires_at) VALUES ($1, $2, $3)`,
		"tok-old", "p1", expired,
	); err != nil {
		t.Fatalf("failed to seed expired token: %v", err)
	}

	repo := NewPostgresPrincipalRepository(db)
	ctx := context.Background()

	principal, err := repo.GetByToken(ctx, "tok-1")
	if err != nil {
		t.Fatalf("GetByToken() error = %v", err)
	}
	if principal.ID != "p1" || principal.Name != "bob" {
		t.Errorf("GetByToken() = %+v", principal)
	}

	if _, err := repo.GetByToken(ctx, "tok-old"); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("GetByToken(expired) error = %v, want ErrNotFound", err)
	}
	if _, err := repo.GetByToken(ctx, "unknown"); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("GetByToken(unknown) error = %v, want ErrNotFound", err)
	}
}
