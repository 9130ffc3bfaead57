package entities

import "time"

// RequestStatus is the lifecycle state of an execution request.
type RequestStatus string

const (
	StatusDraft    RequestStatus = "draft"
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
	StatusExecuted RequestStatus = "executed"
)

// ExecutionRequest is a statement submitted for review and execution against
// a connection.
type ExecutionRequest struct {
	ID           string
	ConnectionID string
	AuthorID     string
	Title        string
	Statement    string
	Status       RequestStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ExecutedAt   *time.Time

	// Connection is the resolved parent, populated by the repository when
	// the request is loaded for an authorization check.
	Connection *Connection
}

func (r *ExecutionRequest) SecuredID() string {
	return r.ID
}

func (r *ExecutionRequest) ResourceKind() Resource {
	return ResourceRequest
}

func (r *ExecutionRequest) Related(resource Resource) SecuredObject {
	switch resource {
	case ResourceConnection:
		if r.Connection != nil {
			return r.Connection
		}
	case ResourceDatasource:
		if r.Connection != nil {
			return r.Connection.Related(resource)
		}
	}
	return nil
}

// Authorize vetoes approval and execution of a request by its own author.
// Holding the grants is not enough: review requires a second person.
func (r *ExecutionRequest) Authorize(permission *Permission, principal *Principal) bool {
	if permission.Resource != ResourceRequest {
		return true
	}
	switch permission.Action {
	case "approve", "execute":
		return principal == nil || principal.ID != r.AuthorID
	}
	return true
}

// SecurityAttributes exposes request fields to configured veto expressions.
func (r *ExecutionRequest) SecurityAttributes() map[string]any {
	return map[string]any{
		"id":        r.ID,
		"author_id": r.AuthorID,
		"status":    string(r.Status),
	}
}
