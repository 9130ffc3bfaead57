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

// ConnectionServiceInterface defines the connection operations used by the
// handler.
type ConnectionServiceInterface interface {
	Create(ctx context.Context, sec *authorization.Security, input services.CreateConnectionInput) (*entities.Connection, error)
	Get(ctx context.Context, sec *authorization.Security, id string) (*entities.Connection, error)
	List(ctx context.Context, sec *authorization.Security) ([]*entities.Connection, error)
	Update(ctx context.Context, sec *authorization.Security, id string, input services.UpdateConnectionInput) (*entities.Connection, error)
}

// ConnectionHandler handles datasource connection HTTP requests.
type ConnectionHandler struct {
	service ConnectionServiceInterface
}

// NewConnectionHandler creates a new ConnectionHandler.
func NewConnectionHandler(service ConnectionServiceInterface) *ConnectionHandler {
	return &ConnectionHandler{service: service}
}

// Register mounts the connection routes on the group.
func (h *ConnectionHandler) Register(g *echo.Group) {
	g.POST("/connections", h.Create)
	g.GET("/connections", h.List)
	g.GET("/connections/:id", h.Get)
	g.PATCH("/connections/:id", h.Update)
}

type connectionRequest struct {
	DatasourceID string `json:"datasource_id"`
	Name         string `json:"name"`
	DatabaseName string `json:"database_name"`
	Username     string `json:"username"`
}

type connectionResponse struct {
	ID           string    `json:"id"`
	DatasourceID string    `json:"datasource_id"`
	Name         string    `json:"name"`
	DatabaseName string    `json:"database_name"`
	Username     string    `json:"username"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func connectionToResponse(conn *entities.Connection) *connectionResponse {
	return &connectionResponse{
		ID:           conn.ID,
		DatasourceID: conn.DatasourceID,
		Name:         conn.Name,
		DatabaseName: conn.DatabaseName,
		Username:     conn.Username,
		CreatedAt:    conn.CreatedAt,
		UpdatedAt:    conn.UpdatedAt,
	}
}

// Create handles POST /connections
func (h *ConnectionHandler) Create(c echo.Context) error {
	var req connectionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	conn, err := h.service.Create(c.Request().Context(), securityFrom(c), services.CreateConnectionInput{
		DatasourceID: req.DatasourceID,
		Name:         req.Name,
		DatabaseName: req.DatabaseName,
		Username:     req.Username,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, connectionToResponse(conn))
}

// Get handles GET /connections/:id
func (h *ConnectionHandler) Get(c echo.Context) error {
	conn, err := h.service.Get(c.Request().Context(), securityFrom(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, connectionToResponse(conn))
}

// List handles GET /connections
func (h *ConnectionHandler) List(c echo.Context) error {
	list, err := h.service.List(c.Request().Context(), securityFrom(c))
	if err != nil {
		return httpError(err)
	}

	out := make([]*connectionResponse, 0, len(list))
	for _, conn := range list {
		out = append(out, connectionToResponse(conn))
	}
	return c.JSON(http.StatusOK, out)
}

// Update handles PATCH /connections/:id
func (h *ConnectionHandler) Update(c echo.Context) error {
	var req connectionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	conn, err := h.service.Update(c.Request().Context(), securityFrom(c), c.Param("id"), services.UpdateConnectionInput{
		Name:         req.Name,
		DatabaseName: req.DatabaseName,
		Username:     req.Username,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, connectionToResponse(conn))
}
