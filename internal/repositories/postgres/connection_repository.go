package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/monban-project/monban/internal/entities"
	"github.com/monban-project/monban/internal/repositories"
)

// PostgresConnectionRepository implements ConnectionRepository using
// PostgreSQL. Reads join the parent datasource so returned connections can
// walk Related links during authorization.
type PostgresConnectionRepository struct {
	db *sql.DB
}

// NewPostgresConnectionRepository creates a new PostgreSQL connection
// repository.
func NewPostgresConnectionRepository(db *sql.DB) repositories.ConnectionRepository {
	return &PostgresConnectionRepository{db: db}
}

const connectionSelect = `
	SELECT c.id, c.datasource_id, c.name, c.database_name, c.username, c.created_at, c.updated_at,
	       d.id, d.name, d.driver, d.host, d.port, d.created_at, d.updated_at
	FROM datasource_connections c
	JOIN datasources d ON d.id = c.datasource_id
`

func scanConnection(scanner interface{ Scan(dest ...any) error }) (*entities.Connection, error) {
	conn := &entities.Connection{Datasource: &entities.Datasource{}}
	err := scanner.Scan(
		&conn.ID, &conn.DatasourceID, &conn.Name, &conn.DatabaseName, &conn.Username, &conn.CreatedAt, &conn.UpdatedAt,
		&conn.Datasource.ID, &conn.Datasource.Name, &conn.Datasource.Driver, &conn.Datasource.Host,
		&conn.Datasource.Port, &conn.Datasource.CreatedAt, &conn.Datasource.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Create inserts a new connection.
func (r *PostgresConnectionRepository) Create(ctx context.Context, conn *entities.Connection) error {
	query := `
		INSERT INTO datasource_connections (id, datasource_id, name, database_name, username, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		conn.ID, conn.DatasourceID, conn.Name, conn.DatabaseName, conn.Username, conn.CreatedAt, conn.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert connection: %w", err)
	}
	return nil
}

// GetByID returns the connection with its parent datasource populated.
func (r *PostgresConnectionRepository) GetByID(ctx context.Context, id string) (*entities.Connection, error) {
	conn, err := scanConnection(r.db.QueryRowContext(ctx, connectionSelect+` WHERE c.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}
	return conn, nil
}

// List returns all connections ordered by creation time.
func (r *PostgresConnectionRepository) List(ctx context.Context) ([]*entities.Connection, error) {
	rows, err := r.db.QueryContext(ctx, connectionSelect+` ORDER BY c.created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	defer rows.Close()

	var list []*entities.Connection
	for rows.Next() {
		conn, err := scanConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan connection: %w", err)
		}
		list = append(list, conn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate connections: %w", err)
	}
	return list, nil
}

// Update rewrites the mutable columns of a connection.
func (r *PostgresConnectionRepository) Update(ctx context.Context, conn *entities.Connection) error {
	query := `
		UPDATE datasource_connections
		SET name = $2, database_name = $3, username = $4, updated_at = $5
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, conn.ID, conn.Name, conn.DatabaseName, conn.Username, conn.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update connection: %w", err)
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
