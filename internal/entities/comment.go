package entities

import "time"

// CommentEvent is a review comment attached to an execution request.
type CommentEvent struct {
	ID        string
	RequestID string
	AuthorID  string
	Body      string
	CreatedAt time.Time

	// Request is the resolved parent, populated by the repository when the
	// comment is loaded for an authorization check.
	Request *ExecutionRequest
}

func (c *CommentEvent) SecuredID() string {
	return c.ID
}

func (c *CommentEvent) ResourceKind() Resource {
	return ResourceComment
}

func (c *CommentEvent) Related(resource Resource) SecuredObject {
	switch resource {
	case ResourceRequest:
		if c.Request != nil {
			return c.Request
		}
	case ResourceConnection, ResourceDatasource:
		if c.Request != nil {
			return c.Request.Related(resource)
		}
	}
	return nil
}

func (c *CommentEvent) Authorize(*Permission, *Principal) bool {
	return true
}
