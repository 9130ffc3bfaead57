package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/monban-project/monban/internal/entities"
	"github.com/monban-project/monban/internal/repositories"
)

// PostgresCommentRepository implements CommentRepository using PostgreSQL.
// Reads join the parent request (with its own lineage) so comments can be
// authorized through the ownership chain.
type PostgresCommentRepository struct {
	db       *sql.DB
	requests *PostgresRequestRepository
}

// NewPostgresCommentRepository creates a new PostgreSQL comment repository.
func NewPostgresCommentRepository(db *sql.DB) repositories.CommentRepository {
	return &PostgresCommentRepository{
		db:       db,
		requests: &PostgresRequestRepository{db: db},
	}
}

// Create inserts a new comment event.
func (r *PostgresCommentRepository) Create(ctx context.Context, comment *entities.CommentEvent) error {
	query := `
		INSERT INTO comment_events (id, request_id, author_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		comment.ID, comment.RequestID, comment.AuthorID, comment.Body, comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

// GetByID returns the comment with its parent request populated.
func (r *PostgresCommentRepository) GetByID(ctx context.Context, id string) (*entities.CommentEvent, error) {
	query := `
		SELECT id, request_id, author_id, body, created_at
		FROM comment_events
		WHERE id = $1
	`
	comment := &entities.CommentEvent{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&comment.ID, &comment.RequestID, &comment.AuthorID, &comment.Body, &comment.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}

	request, err := r.requests.GetByID(ctx, comment.RequestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load comment's request: %w", err)
	}
	comment.Request = request
	return comment, nil
}

// ListByRequest returns the comments on a request, oldest first, each
// carrying the shared parent request.
func (r *PostgresCommentRepository) ListByRequest(ctx context.Context, requestID string) ([]*entities.CommentEvent, error) {
	request, err := r.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load request: %w", err)
	}

	query := `
		SELECT id, request_id, author_id, body, created_at
		FROM comment_events
		WHERE request_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var list []*entities.CommentEvent
	for rows.Next() {
		comment := &entities.CommentEvent{Request: request}
		if err := rows.Scan(&comment.ID, &comment.RequestID, &comment.AuthorID, &comment.Body, &comment.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		list = append(list, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}
	return list, nil
}
