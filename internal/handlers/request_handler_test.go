package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/monban-project/monban/internal/entities"
	"github.com/monban-project/monban/internal/services"
	"github.com/monban-project/monban/internal/services/authorization"
)

// mockRequestService returns canned responses and records the security
// snapshot it was called with.
type mockRequestService struct {
	request *entities.ExecutionRequest
	list    []*entities.ExecutionRequest
	err     error
	lastSec *authorization.Security
}

func (m *mockRequestService) Create(ctx context.Context, sec *authorization.Security, input services.CreateRequestInput) (*entities.ExecutionRequest, error) {
	m.lastSec = sec
	return m.request, m.err
}

func (m *mockRequestService) Get(ctx context.Context, sec *authorization.Security, id string) (*entities.ExecutionRequest, error) {
	m.lastSec = sec
	return m.request, m.err
}

func (m *mockRequestService) List(ctx context.Context, sec *authorization.Security) ([]*entities.ExecutionRequest, error) {
	m.lastSec = sec
	return m.list, m.err
}

func (m *mockRequestService) Submit(ctx context.Context, sec *authorization.Security, id string) (*entities.ExecutionRequest, error) {
	m.lastSec = sec
	return m.request, m.err
}

func (m *mockRequestService) Approve(ctx context.Context, sec *authorization.Security, id string) (*entities.ExecutionRequest, error) {
	m.lastSec = sec
	return m.request, m.err
}

func (m *mockRequestService) Reject(ctx context.Context, sec *authorization.Security, id string) (*entities.ExecutionRequest, error) {
	m.lastSec = sec
	return m.request, m.err
}

func (m *mockRequestService) Execute(ctx context.Context, sec *authorization.Security, id string) (*entities.ExecutionRequest, error) {
	m.lastSec = sec
	return m.request, m.err
}

// mockAuthenticator accepts a single token.
type mockAuthenticator struct {
	token string
	sec   *authorization.Security
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, token string) (*authorization.Security, error) {
	if token != m.token {
		return nil, authorization.ErrUnauthenticated
	}
	return m.sec, nil
}

func testServer(svc RequestServiceInterface) *echo.Echo {
	e := echo.New()
	auth := &mockAuthenticator{
		token: "tok-1",
		sec:   &authorization.Security{Principal: &entities.Principal{ID: "bob"}},
	}
	g := e.Group("/api/v1", RequireAuth(auth))
	NewRequestHandler(svc).Register(g)
	return e
}

func TestRequestHandler_Get(t *testing.T) {
	svc := &mockRequestService{
		request: &entities.ExecutionRequest{
			ID: "r1", ConnectionID: "c1", AuthorID: "alice",
			Title: "cleanup", Statement: "DELETE FROM stale_rows",
			Status: entities.StatusPending,
		},
	}
	e := testServer(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/requests/r1", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer tok-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body = %s", rec.Code, rec.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if body["id"] != "r1" || body["status"] != "pending" {
		t.Errorf("body = %v", body)
	}
	if svc.lastSec == nil || svc.lastSec.Principal.ID != "bob" {
		t.Error("handler must pass the authenticated security snapshot to the service")
	}
}

func TestRequestHandler_Unauthenticated(t *testing.T) {
	e := testServer(&mockRequestService{})

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"wrong scheme", "Basic dXNlcg=="},
		{"unknown token", "Bearer nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/requests", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestRequestHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"access denied", &authorization.AccessDeniedError{Permission: entities.RequestGet}, http.StatusForbidden},
		{"invalid input", services.ErrInvalidInput, http.StatusBadRequest},
		{"invalid state", services.ErrInvalidState, http.StatusConflict},
		{"contract violation", &authorization.ContractViolationError{Reason: "two identifiers"}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := testServer(&mockRequestService{err: tt.err})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/requests/r1", nil)
			req.Header.Set(echo.HeaderAuthorization, "Bearer tok-1")
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRequestHandler_Create(t *testing.T) {
	svc := &mockRequestService{
		request: &entities.ExecutionRequest{
			ID: "r1", ConnectionID: "c1", AuthorID: "bob",
			Statement: "SELECT 1", Status: entities.StatusDraft,
		},
	}
	e := testServer(svc)

	payload := `{"connection_id":"c1","statement":"SELECT 1","draft":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/requests", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer tok-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body = %s", rec.Code, rec.Body.String())
	}
}

func TestRequestHandler_Transitions(t *testing.T) {
	for _, action := range []string{"submit", "approve", "reject", "execute"} {
		t.Run(action, func(t *testing.T) {
			svc := &mockRequestService{
				request: &entities.ExecutionRequest{ID: "r1", Status: entities.StatusApproved},
			}
			e := testServer(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/requests/r1/"+action, nil)
			req.Header.Set(echo.HeaderAuthorization, "Bearer tok-1")
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Errorf("status = %d, want 200; body = %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRequestHandler_List(t *testing.T) {
	svc := &mockRequestService{
		list: []*entities.ExecutionRequest{
			{ID: "r1", Status: entities.StatusPending},
			{ID: "r2", Status: entities.StatusApproved},
		},
	}
	e := testServer(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/requests", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer tok-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(body) != 2 {
		t.Errorf("returned %d requests, want 2", len(body))
	}
}
