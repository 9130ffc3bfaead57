package postgres

import (
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/lib/pq"

	"github.com/monban-project/monban/internal/infrastructure/config"
	"github.com/monban-project/monban/internal/infrastructure/database"
)

// SetupTestDB connects to the test database and runs migrations. Tests are
// skipped when no database is reachable, so the unit suite stays runnable
// without infrastructure.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	if err := config.InitConfig("test"); err != nil {
		t.Fatalf("Failed to init config: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Skipf("Skipping database test: %v", err)
	}

	pg, err := database.NewPostgres(&cfg.Database)
	if err != nil {
		t.Skipf("Skipping database test: %v", err)
	}

	if err := pg.RunMigrations("../../../internal/infrastructure/database/migrations/postgres"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return pg.DB
}

// CleanupTestDB closes the database connection and cleans up test data.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	t.Helper()

	// Children first, FK constraints.
	tables := []string{
		"comment_events",
		"execution_requests",
		"datasource_connections",
		"datasources",
		"policy_grants",
		"api_tokens",
		"principals",
	}
	for _, table := range tables {
		if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Logf("Warning: Failed to clean up table %s: %v", table, err)
		}
	}

	if err := db.Close(); err != nil {
		t.Logf("Warning: Failed to close database: %v", err)
	}
}
