package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/monban-project/monban/internal/entities"
	"github.com/monban-project/monban/internal/services/authorization"
)

// CommentServiceInterface defines the comment operations used by the handler.
type CommentServiceInterface interface {
	Add(ctx context.Context, sec *authorization.Security, requestID, body string) (*entities.CommentEvent, error)
	ListForRequest(ctx context.Context, sec *authorization.Security, requestID string) ([]*entities.CommentEvent, error)
}

// CommentHandler handles comment HTTP requests.
type CommentHandler struct {
	service CommentServiceInterface
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(service CommentServiceInterface) *CommentHandler {
	return &CommentHandler{service: service}
}

// Register mounts the comment routes on the group.
func (h *CommentHandler) Register(g *echo.Group) {
	g.POST("/requests/:id/comments", h.Add)
	g.GET("/requests/:id/comments", h.List)
}

type addCommentRequest struct {
	Body string `json:"body"`
}

type commentResponse struct {
	ID        string    `json:"id"`
	RequestID string    `json:"request_id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func commentToResponse(c *entities.CommentEvent) *commentResponse {
	return &commentResponse{
		ID:        c.ID,
		RequestID: c.RequestID,
		AuthorID:  c.AuthorID,
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
	}
}

// Add handles POST /requests/:id/comments
func (h *CommentHandler) Add(c echo.Context) error {
	var req addCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	comment, err := h.service.Add(c.Request().Context(), securityFrom(c), c.Param("id"), req.Body)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, commentToResponse(comment))
}

// List handles GET /requests/:id/comments
func (h *CommentHandler) List(c echo.Context) error {
	list, err := h.service.ListForRequest(c.Request().Context(), securityFrom(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}

	out := make([]*commentResponse, 0, len(list))
	for _, comment := range list {
		out = append(out, commentToResponse(comment))
	}
	return c.JSON(http.StatusOK, out)
}
