package repositories

import (
	"context"

	"github.com/monban-project/monban/internal/entities"
)

// CommentRepository persists comment events.
type CommentRepository interface {
	Create(ctx context.Context, comment *entities.CommentEvent) error
	GetByID(ctx context.Context, id string) (*entities.CommentEvent, error)
	ListByRequest(ctx context.Context, requestID string) ([]*entities.CommentEvent, error)
}
