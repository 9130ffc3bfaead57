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

// CreateRequestInput carries the fields for submitting an execution
// request. Draft requests are visible only to their author until submitted.
type CreateRequestInput struct {
	ConnectionID string
	Title        string
	Statement    string
	Draft        bool
}

// RequestService exposes the protected execution request operations.
type RequestService struct {
	requests    repositories.RequestRepository
	guard       *authorization.Guard
	invalidator repositories.ObjectInvalidator
}

// NewRequestService creates a new RequestService. invalidator may be nil
// when object resolution is not cached.
func NewRequestService(
	requests repositories.RequestRepository,
	guard *authorization.Guard,
	invalidator repositories.ObjectInvalidator,
) *RequestService {
	return &RequestService{requests: requests, guard: guard, invalidator: invalidator}
}

// Create submits a new execution request against a connection. The parent
// connection is the check's target.
func (s *RequestService) Create(ctx context.Context, sec *authorization.Security, input CreateRequestInput) (*entities.ExecutionRequest, error) {
	if input.ConnectionID == "" {
		return nil, fmt.Errorf("%w: connection_id is required", ErrInvalidInput)
	}
	if input.Statement == "" {
		return nil, fmt.Errorf("%w: statement is required", ErrInvalidInput)
	}

	sid := entities.SecuredID{Resource: entities.ResourceConnection, ID: input.ConnectionID}
	result, err := s.guard.Invoke(ctx, sec, entities.RequestCreate, []any{sid}, func(ctx context.Context) (authorization.Result, error) {
		status := entities.StatusPending
		if input.Draft {
			status = entities.StatusDraft
		}
		now := time.Now()
		req := &entities.ExecutionRequest{
			ID:           uuid.NewString(),
			ConnectionID: input.ConnectionID,
			AuthorID:     sec.Principal.ID,
			Title:        input.Title,
			Statement:    input.Statement,
			Status:       status,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.requests.Create(ctx, req); err != nil {
			return authorization.Empty(), fmt.Errorf("failed to create request: %w", err)
		}
		created, err := s.requests.GetByID(ctx, req.ID)
		if err != nil {
			return authorization.Empty(), err
		}
		return authorization.Single(created), nil
	})
	if err != nil {
		return nil, err
	}
	return result.Object().(*entities.ExecutionRequest), nil
}

// Get returns a single request, authorizing the identified instance.
func (s *RequestService) Get(ctx context.Context, sec *authorization.Security, id string) (*entities.ExecutionRequest, error) {
	sid := entities.SecuredID{Resource: entities.ResourceRequest, ID: id}
	result, err := s.guard.Invoke(ctx, sec, entities.RequestGet, []any{sid}, func(ctx context.Context) (authorization.Result, error) {
		req, err := s.requests.GetByID(ctx, id)
		if err != nil {
			return authorization.Empty(), err
		}
		return authorization.Single(req), nil
	})
	if err != nil {
		return nil, err
	}
	return result.Object().(*entities.ExecutionRequest), nil
}

// List returns the requests the principal may see. The pre-check is the
// execution_request root gate; the post-check drops denied elements, for
// example other authors' drafts, preserving order.
func (s *RequestService) List(ctx context.Context, sec *authorization.Security) ([]*entities.ExecutionRequest, error) {
	result, err := s.guard.Invoke(ctx, sec, entities.RequestView, nil, func(ctx context.Context) (authorization.Result, error) {
		list, err := s.requests.List(ctx)
		if err != nil {
			return authorization.Empty(), err
		}
		objects := make([]entities.SecuredObject, len(list))
		for i, req := range list {
			objects[i] = req
		}
		return authorization.Many(objects), nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]*entities.ExecutionRequest, 0, len(result.Objects()))
	for _, object := range result.Objects() {
		out = append(out, object.(*entities.ExecutionRequest))
	}
	return out, nil
}

// Submit moves a draft request to pending review.
func (s *RequestService) Submit(ctx context.Context, sec *authorization.Security, id string) (*entities.ExecutionRequest, error) {
	return s.transition(ctx, sec, id, entities.RequestGet, entities.StatusDraft, entities.StatusPending, nil)
}

// Approve marks a pending request as approved. The request's own veto hook
// rejects approval by the author, regardless of grants.
func (s *RequestService) Approve(ctx context.Context, sec *authorization.Security, id string) (*entities.ExecutionRequest, error) {
	return s.transition(ctx, sec, id, entities.RequestApprove, entities.StatusPending, entities.StatusApproved, nil)
}

// Reject marks a pending request as rejected.
func (s *RequestService) Reject(ctx context.Context, sec *authorization.Security, id string) (*entities.ExecutionRequest, error) {
	return s.transition(ctx, sec, id, entities.RequestApprove, entities.StatusPending, entities.StatusRejected, nil)
}

// Execute runs an approved request. The statement itself is dispatched to
// the datasource out of band; here the request is marked executed. Note the
// status change commits before the post-check runs, so execution relies on
// the pre-check for denial.
func (s *RequestService) Execute(ctx context.Context, sec *authorization.Security, id string) (*entities.ExecutionRequest, error) {
	now := time.Now()
	return s.transition(ctx, sec, id, entities.RequestExecute, entities.StatusApproved, entities.StatusExecuted, &now)
}

// transition authorizes the permission against the request and advances its
// status, enforcing the expected current state.
func (s *RequestService) transition(
	ctx context.Context,
	sec *authorization.Security,
	id string,
	permission *entities.Permission,
	from, to entities.RequestStatus,
	executedAt *time.Time,
) (*entities.ExecutionRequest, error) {
	sid := entities.SecuredID{Resource: entities.ResourceRequest, ID: id}
	result, err := s.guard.Invoke(ctx, sec, permission, []any{sid}, func(ctx context.Context) (authorization.Result, error) {
		req, err := s.requests.GetByID(ctx, id)
		if err != nil {
			return authorization.Empty(), err
		}
		if req.Status != from {
			return authorization.Empty(), fmt.Errorf("%w: request %s is %s, expected %s", ErrInvalidState, id, req.Status, from)
		}
		req.Status = to
		req.UpdatedAt = time.Now()
		if executedAt != nil {
			req.ExecutedAt = executedAt
		}
		if err := s.requests.Update(ctx, req); err != nil {
			return authorization.Empty(), fmt.Errorf("failed to update request: %w", err)
		}
		return authorization.Single(req), nil
	})
	if err != nil {
		return nil, err
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, sid)
	}
	return result.Object().(*entities.ExecutionRequest), nil
}
