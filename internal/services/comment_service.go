package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/monban-project/monban/internal/entities"
	"github.com/monban-project/monban/internal/repositories"
	"github.com/monban-project/monban/internal/services/authorization"
)

// CommentService exposes the protected comment operations. Comments are
// authorized through their parent request: both operations take the
// request's identifier as the check's target.
type CommentService struct {
	comments repositories.CommentRepository
	guard    *authorization.Guard
}

// NewCommentService creates a new CommentService.
func NewCommentService(comments repositories.CommentRepository, guard *authorization.Guard) *CommentService {
	return &CommentService{comments: comments, guard: guard}
}

// Add attaches a review comment to a request.
func (s *CommentService) Add(ctx context.Context, sec *authorization.Security, requestID, body string) (*entities.CommentEvent, error) {
	if body == "" {
		return nil, fmt.Errorf("%w: body is required", ErrInvalidInput)
	}

	sid := entities.SecuredID{Resource: entities.ResourceRequest, ID: requestID}
	result, err := s.guard.Invoke(ctx, sec, entities.CommentCreate, []any{sid}, func(ctx context.Context) (authorization.Result, error) {
		comment := &entities.CommentEvent{
			ID:        uuid.NewString(),
			RequestID: requestID,
			AuthorID:  sec.Principal.ID,
			Body:      body,
			CreatedAt: time.Now(),
		}
		if err := s.comments.Create(ctx, comment); err != nil {
			return authorization.Empty(), fmt.Errorf("failed to create comment: %w", err)
		}
		created, err := s.comments.GetByID(ctx, comment.ID)
		if err != nil {
			return authorization.Empty(), err
		}
		return authorization.Single(created), nil
	})
	if err != nil {
		return nil, err
	}
	return result.Object().(*entities.CommentEvent), nil
}

// ListForRequest returns the comments on a request the principal may see.
func (s *CommentService) ListForRequest(ctx context.Context, sec *authorization.Security, requestID string) ([]*entities.CommentEvent, error) {
	sid := entities.SecuredID{Resource: entities.ResourceRequest, ID: requestID}
	result, err := s.guard.Invoke(ctx, sec, entities.CommentGet, []any{sid}, func(ctx context.Context) (authorization.Result, error) {
		list, err := s.comments.ListByRequest(ctx, requestID)
		if err != nil {
			return authorization.Empty(), err
		}
		objects := make([]entities.SecuredObject, len(list))
		for i, comment := range list {
			objects[i] = comment
		}
		return authorization.Many(objects), nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]*entities.CommentEvent, 0, len(result.Objects()))
	for _, object := range result.Objects() {
		out = append(out, object.(*entities.CommentEvent))
	}
	return out, nil
}
