package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/monban-project/monban/internal/entities"
	"github.com/monban-project/monban/internal/repositories"
)

// PostgresRequestRepository implements RequestRepository using PostgreSQL.
// Reads join the connection and its datasource so returned requests carry
// their full ownership lineage for authorization.
type PostgresRequestRepository struct {
	db *sql.DB
}

// NewPostgresRequestRepository creates a new PostgreSQL request repository.
func NewPostgresRequestRepository(db *sql.DB) repositories.RequestRepository {
	return &PostgresRequestRepository{db: db}
}

const requestSelect = `
	SELECT r.id, r.connection_id, r.author_id, r.title, r.statement, r.status, r.created_at, r.updated_at, r.executed_at,
	       c.id, c.datasource_id, c.name, c.database_name, c.username, c.created_at, c.updated_at,
	       d.id, d.name, d.driver, d.host, d.port, d.created_at, d.updated_at
	FROM execution_requests r
	JOIN datasource_connections c ON c.id = r.connection_id
	JOIN datasources d ON d.id = c.datasource_id
`

func scanRequest(scanner interface{ Scan(dest ...any) error }) (*entities.ExecutionRequest, error) {
	req := &entities.ExecutionRequest{
		Connection: &entities.Connection{Datasource: &entities.Datasource{}},
	}
	var executedAt sql.NullTime
	err := scanner.Scan(
		&req.ID, &req.ConnectionID, &req.AuthorID, &req.Title, &req.Statement, &req.Status,
		&req.CreatedAt, &req.UpdatedAt, &executedAt,
		&req.Connection.ID, &req.Connection.DatasourceID, &req.Connection.Name, &req.Connection.DatabaseName,
		&req.Connection.Username, &req.Connection.CreatedAt, &req.Connection.UpdatedAt,
		&req.Connection.Datasource.ID, &req.Connection.Datasource.Name, &req.Connection.Datasource.Driver,
		&req.Connection.Datasource.Host, &req.Connection.Datasource.Port,
		&req.Connection.Datasource.CreatedAt, &req.Connection.Datasource.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if executedAt.Valid {
		req.ExecutedAt = &executedAt.Time
	}
	return req, nil
}

// Create inserts a new execution request.
func (r *PostgresRequestRepository) Create(ctx context.Context, req *entities.ExecutionRequest) error {
	query := `
		INSERT INTO execution_requests (id, connection_id, author_id, title, statement, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		req.ID, req.ConnectionID, req.AuthorID, req.Title, req.Statement, string(req.Status),
		req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert request: %w", err)
	}
	return nil
}

// GetByID returns the request with its ownership lineage populated.
func (r *PostgresRequestRepository) GetByID(ctx context.Context, id string) (*entities.ExecutionRequest, error) {
	req, err := scanRequest(r.db.QueryRowContext(ctx, requestSelect+` WHERE r.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return req, nil
}

// List returns all requests ordered by creation time.
func (r *PostgresRequestRepository) List(ctx context.Context) ([]*entities.ExecutionRequest, error) {
	rows, err := r.db.QueryContext(ctx, requestSelect+` ORDER BY r.created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	var list []*entities.ExecutionRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		list = append(list, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate requests: %w", err)
	}
	return list, nil
}

// Update rewrites the mutable columns of a request.
func (r *PostgresRequestRepository) Update(ctx context.Context, req *entities.ExecutionRequest) error {
	var executedAt sql.NullTime
	if req.ExecutedAt != nil {
		executedAt = sql.NullTime{Time: *req.ExecutedAt, Valid: true}
	}
	query := `
		UPDATE execution_requests
		SET title = $2, statement = $3, status = $4, updated_at = $5, executed_at = $6
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, req.ID, req.Title, req.Statement, string(req.Status), req.UpdatedAt, executedAt)
	if err != nil {
		return fmt.Errorf("failed to update request: %w", err)
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
