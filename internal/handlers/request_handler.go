package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/monban-project/monban/internal/entities"
	"github.com/monban-project/monban/internal/services"
	"github.com/monban-project/monban/internal/services/authorization"
)

// RequestServiceInterface defines the execution request operations used by
// the handler.
type RequestServiceInterface interface {
	Create(ctx context.Context, sec *authorization.Security, input services.CreateRequestInput) (*entities.ExecutionRequest, error)
	Get(ctx context.Context, sec *authorization.Security, id string) (*entities.ExecutionRequest, error)
	List(ctx context.Context, sec *authorization.Security) ([]*entities.ExecutionRequest, error)
	Submit(ctx context.Context, sec *authorization.Security, id string) (*entities.ExecutionRequest, error)
	Approve(ctx context.Context, sec *authorization.Security, id string) (*entities.ExecutionRequest, error)
	Reject(ctx context.Context, sec *authorization.Security, id string) (*entities.ExecutionRequest, error)
	Execute(ctx context.Context, sec *authorization.Security, id string) (*entities.ExecutionRequest, error)
}

// RequestHandler handles execution request HTTP requests.
type RequestHandler struct {
	service RequestServiceInterface
}

// NewRequestHandler creates a new RequestHandler.
func NewRequestHandler(service RequestServiceInterface) *RequestHandler {
	return &RequestHandler{service: service}
}

// Register mounts the request routes on the group.
func (h *RequestHandler) Register(g *echo.Group) {
	g.POST("/requests", h.Create)
	g.GET("/requests", h.List)
	g.GET("/requests/:id", h.Get)
	g.POST("/requests/:id/submit", h.Submit)
	g.POST("/requests/:id/approve", h.Approve)
	g.POST("/requests/:id/reject", h.Reject)
	g.POST("/requests/:id/execute", h.Execute)
}

type createRequestRequest struct {
	ConnectionID string `json:"connection_id"`
	Title        string `json:"title"`
	Statement    string `json:"statement"`
	Draft        bool   `json:"draft"`
}

type requestResponse struct {
	ID           string     `json:"id"`
	ConnectionID string     `json:"connection_id"`
	AuthorID     string     `json:"author_id"`
	Title        string     `json:"title"`
	Statement    string     `json:"statement"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	ExecutedAt   *time.Time `json:"executed_at,omitempty"`
}

func requestToResponse(req *entities.ExecutionRequest) *requestResponse {
	return &requestResponse{
		ID:           req.ID,
		ConnectionID: req.ConnectionID,
		AuthorID:     req.AuthorID,
		Title:        req.Title,
		Statement:    req.Statement,
		Status:       string(req.Status),
		CreatedAt:    req.CreatedAt,
		UpdatedAt:    req.UpdatedAt,
		ExecutedAt:   req.ExecutedAt,
	}
}

// Create handles POST /requests
func (h *RequestHandler) Create(c echo.Context) error {
	var req createRequestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	created, err := h.service.Create(c.Request().Context(), securityFrom(c), services.CreateRequestInput{
		ConnectionID: req.ConnectionID,
		Title:        req.Title,
		Statement:    req.Statement,
		Draft:        req.Draft,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, requestToResponse(created))
}

// Get handles GET /requests/:id
func (h *RequestHandler) Get(c echo.Context) error {
	req, err := h.service.Get(c.Request().Context(), securityFrom(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, requestToResponse(req))
}

// List handles GET /requests
func (h *RequestHandler) List(c echo.Context) error {
	list, err := h.service.List(c.Request().Context(), securityFrom(c))
	if err != nil {
		return httpError(err)
	}

	out := make([]*requestResponse, 0, len(list))
	for _, req := range list {
		out = append(out, requestToResponse(req))
	}
	return c.JSON(http.StatusOK, out)
}

// Submit handles POST /requests/:id/submit
func (h *RequestHandler) Submit(c echo.Context) error {
	return h.transition(c, h.service.Submit)
}

// Approve handles POST /requests/:id/approve
func (h *RequestHandler) Approve(c echo.Context) error {
	return h.transition(c, h.service.Approve)
}

// Reject handles POST /requests/:id/reject
func (h *RequestHandler) Reject(c echo.Context) error {
	return h.transition(c, h.service.Reject)
}

// Execute handles POST /requests/:id/execute
func (h *RequestHandler) Execute(c echo.Context) error {
	return h.transition(c, h.service.Execute)
}

func (h *RequestHandler) transition(
	c echo.Context,
	op func(ctx context.Context, sec *authorization.Security, id string) (*entities.ExecutionRequest, error),
) error {
	req, err := op(c.Request().Context(), securityFrom(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, requestToResponse(req))
}
