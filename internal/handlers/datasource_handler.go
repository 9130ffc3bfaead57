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

// DatasourceServiceInterface defines the datasource operations used by the
// handler.
type DatasourceServiceInterface interface {
	Create(ctx context.Context, sec *authorization.Security, input services.CreateDatasourceInput) (*entities.Datasource, error)
	Get(ctx context.Context, sec *authorization.Security, id string) (*entities.Datasource, error)
	List(ctx context.Context, sec *authorization.Security) ([]*entities.Datasource, error)
	Update(ctx context.Context, sec *authorization.Security, id string, input services.UpdateDatasourceInput) (*entities.Datasource, error)
}

// DatasourceHandler handles datasource HTTP requests.
type DatasourceHandler struct {
	service DatasourceServiceInterface
}

// NewDatasourceHandler creates a new DatasourceHandler.
func NewDatasourceHandler(service DatasourceServiceInterface) *DatasourceHandler {
	return &DatasourceHandler{service: service}
}

// Register mounts the datasource routes on the group.
func (h *DatasourceHandler) Register(g *echo.Group) {
	g.POST("/datasources", h.Create)
	g.GET("/datasources", h.List)
	g.GET("/datasources/:id", h.Get)
	g.PATCH("/datasources/:id", h.Update)
}

type datasourceRequest struct {
	Name   string `json:"name"`
	Driver string `json:"driver"`
	Host   string `json:"host"`
	Port   int    `json:"port"`
}

type datasourceResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Driver    string    `json:"driver"`
	Host      string    `json:"host"`
	Port      int       `json:"port"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func datasourceToResponse(ds *entities.Datasource) *datasourceResponse {
	return &datasourceResponse{
		ID:        ds.ID,
		Name:      ds.Name,
		Driver:    ds.Driver,
		Host:      ds.Host,
		Port:      ds.Port,
		CreatedAt: ds.CreatedAt,
		UpdatedAt: ds.UpdatedAt,
	}
}

// Create handles POST /datasources
func (h *DatasourceHandler) Create(c echo.Context) error {
	var req datasourceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ds, err := h.service.Create(c.Request().Context(), securityFrom(c), services.CreateDatasourceInput{
		Name:   req.Name,
		Driver: req.Driver,
		Host:   req.Host,
		Port:   req.Port,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, datasourceToResponse(ds))
}

// Get handles GET /datasources/:id
func (h *DatasourceHandler) Get(c echo.Context) error {
	ds, err := h.service.Get(c.Request().Context(), securityFrom(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, datasourceToResponse(ds))
}

// List handles GET /datasources
func (h *DatasourceHandler) List(c echo.Context) error {
	list, err := h.service.List(c.Request().Context(), securityFrom(c))
	if err != nil {
		return httpError(err)
	}

	out := make([]*datasourceResponse, 0, len(list))
	for _, ds := range list {
		out = append(out, datasourceToResponse(ds))
	}
	return c.JSON(http.StatusOK, out)
}

// Update handles PATCH /datasources/:id
func (h *DatasourceHandler) Update(c echo.Context) error {
	var req datasourceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ds, err := h.service.Update(c.Request().Context(), securityFrom(c), c.Param("id"), services.UpdateDatasourceInput{
		Name: req.Name,
		Host: req.Host,
		Port: req.Port,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, datasourceToResponse(ds))
}
