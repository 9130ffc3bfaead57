package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/monban-project/monban/internal/entities"
	"github.com/monban-project/monban/internal/repositories"
)

// PostgresDatasourceRepository implements DatasourceRepository using
// PostgreSQL.
type PostgresDatasourceRepository struct {
	db *sql.DB
}

// NewPostgresDatasourceRepository creates a new PostgreSQL datasource
// repository.
func NewPostgresDatasourceRepository(db *sql.DB) repositories.DatasourceRepository {
	return &PostgresDatasourceRepository{db: db}
}

// Create inserts a new datasource.
func (r *PostgresDatasourceRepository) Create(ctx context.Context, ds *entities.Datasource) error {
	query := `
		INSERT INTO datasources (id, name, driver, host, port, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		ds.ID, ds.Name, ds.Driver, ds.Host, ds.Port, ds.CreatedAt, ds.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert datasource: %w", err)
	}
	return nil
}

// GetByID returns the datasource with the given identifier.
func (r *PostgresDatasourceRepository) GetByID(ctx context.Context, id string) (*entities.Datasource, error) {
	query := `
		SELECT id, name, driver, host, port, created_at, updated_at
		FROM datasources
		WHERE id = $1
	`
	ds := &entities.Datasource{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&ds.ID, &ds.Name, &ds.Driver, &ds.Host, &ds.Port, &ds.CreatedAt, &ds.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get datasource: %w", err)
	}
	return ds, nil
}

// List returns all datasources ordered by creation time.
func (r *PostgresDatasourceRepository) List(ctx context.Context) ([]*entities.Datasource, error) {
	query := `
		SELECT id, name, driver, host, port, created_at, updated_at
		FROM datasources
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasources: %w", err)
	}
	defer rows.Close()

	var list []*entities.Datasource
	for rows.Next() {
		ds := &entities.Datasource{}
		if err := rows.Scan(&ds.ID, &ds.Name, &ds.Driver, &ds.Host, &ds.Port, &ds.CreatedAt, &ds.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan datasource: %w", err)
		}
		list = append(list, ds)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate datasources: %w", err)
	}
	return list, nil
}

// Update rewrites the mutable columns of a datasource.
func (r *PostgresDatasourceRepository) Update(ctx context.Context, ds *entities.Datasource) error {
	query := `
		UPDATE datasources
		SET name = $2, host = $3, port = $4, updated_at = $5
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, ds.ID, ds.Name, ds.Host, ds.Port, ds.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update datasource: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
