package services

import (
	"context"
	"errors"
	"testing"

	"github.com/monban-project/monban/internal/entities"
	"github.com/monban-project/monban/internal/repositories"
	"github.com/monban-project/monban/internal/services/authorization"
)

// mockRequestRepository keeps requests in a map and records mutations.
type mockRequestRepository struct {
	requests map[string]*entities.ExecutionRequest
	order    []string
	updated  []string
}

func newMockRequestRepository(reqs ...*entities.ExecutionRequest) *mockRequestRepository {
	m := &mockRequestRepository{requests: make(map[string]*entities.ExecutionRequest)}
	for _, r := range reqs {
		m.requests[r.ID] = r
		m.order = append(m.order, r.ID)
	}
	return m
}

func (m *mockRequestRepository) Create(ctx context.Context, req *entities.ExecutionRequest) error {
	m.requests[req.ID] = req
	m.order = append(m.order, req.ID)
	return nil
}

func (m *mockRequestRepository) GetByID(ctx context.Context, id string) (*entities.ExecutionRequest, error) {
	req, ok := m.requests[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return req, nil
}

func (m *mockRequestRepository) List(ctx context.Context) ([]*entities.ExecutionRequest, error) {
	out := make([]*entities.ExecutionRequest, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.requests[id])
	}
	return out, nil
}

func (m *mockRequestRepository) Update(ctx context.Context, req *entities.ExecutionRequest) error {
	if _, ok := m.requests[req.ID]; !ok {
		return repositories.ErrNotFound
	}
	m.requests[req.ID] = req
	m.updated = append(m.updated, req.ID)
	return nil
}

// mockResolver resolves objects out of the request repository plus a fixed
// set of connections.
type mockResolver struct {
	requests    *mockRequestRepository
	connections map[string]*entities.Connection
}

func (m *mockResolver) Resolve(ctx context.Context, id entities.SecuredID) (entities.SecuredObject, error) {
	switch id.Resource {
	case entities.ResourceRequest:
		return m.requests.GetByID(ctx, id.ID)
	case entities.ResourceConnection:
		if conn, ok := m.connections[id.ID]; ok {
			return conn, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func serviceFixture(t *testing.T, reqs ...*entities.ExecutionRequest) (*RequestService, *mockRequestRepository, *entities.Connection) {
	t.Helper()

	ds := &entities.Datasource{ID: "ds1"}
	conn := &entities.Connection{ID: "c1", DatasourceID: "ds1", Datasource: ds}
	for _, r := range reqs {
		r.Connection = conn
	}
	repo := newMockRequestRepository(reqs...)

	vetoes, err := authorization.NewVetoEngine()
	if err != nil {
		t.Fatalf("NewVetoEngine() error = %v", err)
	}
	if err := authorization.RegisterDefaultVetoes(vetoes); err != nil {
		t.Fatalf("RegisterDefaultVetoes() error = %v", err)
	}
	resolver := authorization.NewChainResolverWithVetoes(authorization.NewGrantVoter(), vetoes)
	guard := authorization.NewGuard(resolver, &mockResolver{
		requests:    repo,
		connections: map[string]*entities.Connection{"c1": conn},
	})

	return NewRequestService(repo, guard, nil), repo, conn
}

func reviewerSecurity() *authorization.Security {
	return &authorization.Security{
		Principal: &entities.Principal{ID: "bob"},
		Grants: []*entities.PolicyGrantedAuthority{
			entities.Grant(entities.RequestView),
			entities.Grant(entities.RequestGet),
			entities.Grant(entities.RequestCreate),
			entities.Grant(entities.RequestApprove),
			entities.Grant(entities.RequestExecute),
			entities.Grant(entities.ConnectionGet),
			entities.Grant(entities.DatasourceGet),
		},
	}
}

func TestRequestService_Create(t *testing.T) {
	svc, repo, _ := serviceFixture(t)
	sec := reviewerSecurity()

	created, err := svc.Create(context.Background(), sec, CreateRequestInput{
		ConnectionID: "c1",
		Title:        "cleanup",
		Statement:    "DELETE FROM stale_rows",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.Status != entities.StatusPending {
		t.Errorf("status = %s, want pending", created.Status)
	}
	if created.AuthorID != "bob" {
		t.Errorf("author = %s, want bob", created.AuthorID)
	}
	if len(repo.requests) != 1 {
		t.Errorf("stored %d requests, want 1", len(repo.requests))
	}
}

func TestRequestService_Create_Validation(t *testing.T) {
	svc, _, _ := serviceFixture(t)
	sec := reviewerSecurity()

	tests := []struct {
		name  string
		input CreateRequestInput
	}{
		{"missing connection", CreateRequestInput{Statement: "SELECT 1"}},
		{"missing statement", CreateRequestInput{ConnectionID: "c1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), sec, tt.input); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Create() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestRequestService_Create_RequiresConnectionGrant(t *testing.T) {
	svc, _, _ := serviceFixture(t)

	// execution_request:create alone does not reach through the lineage.
	sec := &authorization.Security{
		Principal: &entities.Principal{ID: "bob"},
		Grants:    []*entities.PolicyGrantedAuthority{entities.Grant(entities.RequestCreate)},
	}

	_, err := svc.Create(context.Background(), sec, CreateRequestInput{
		ConnectionID: "c1",
		Statement:    "SELECT 1",
	})
	if !authorization.IsAccessDenied(err) {
		t.Errorf("Create() error = %v, want access denied", err)
	}
}

func TestRequestService_List_FiltersForeignDrafts(t *testing.T) {
	svc, _, _ := serviceFixture(t,
		&entities.ExecutionRequest{ID: "r1", ConnectionID: "c1", AuthorID: "alice", Status: entities.StatusPending},
		&entities.ExecutionRequest{ID: "r2", ConnectionID: "c1", AuthorID: "alice", Status: entities.StatusDraft},
		&entities.ExecutionRequest{ID: "r3", ConnectionID: "c1", AuthorID: "bob", Status: entities.StatusDraft},
	)
	sec := reviewerSecurity()

	list, err := svc.List(context.Background(), sec)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	var ids []string
	for _, req := range list {
		ids = append(ids, req.ID)
	}
	want := []string{"r1", "r3"}
	if len(ids) != len(want) {
		t.Fatalf("List() = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("List() = %v, want %v", ids, want)
		}
	}
}

func TestRequestService_Get_DeniesForeignDraft(t *testing.T) {
	svc, _, _ := serviceFixture(t,
		&entities.ExecutionRequest{ID: "r1", ConnectionID: "c1", AuthorID: "alice", Status: entities.StatusDraft},
	)
	sec := reviewerSecurity()

	_, err := svc.Get(context.Background(), sec, "r1")
	if !authorization.IsAccessDenied(err) {
		t.Errorf("Get() error = %v, want access denied for another author's draft", err)
	}
}

func TestRequestService_Lifecycle(t *testing.T) {
	svc, repo, _ := serviceFixture(t,
		&entities.ExecutionRequest{ID: "r1", ConnectionID: "c1", AuthorID: "alice", Status: entities.StatusPending},
	)
	sec := reviewerSecurity()

	approved, err := svc.Approve(context.Background(), sec, "r1")
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if approved.Status != entities.StatusApproved {
		t.Errorf("status = %s, want approved", approved.Status)
	}

	executed, err := svc.Execute(context.Background(), sec, "r1")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if executed.Status != entities.StatusExecuted {
		t.Errorf("status = %s, want executed", executed.Status)
	}
	if executed.ExecutedAt == nil {
		t.Error("ExecutedAt should be set")
	}
	if len(repo.updated) != 2 {
		t.Errorf("updated %d times, want 2", len(repo.updated))
	}
}

func TestRequestService_Approve_SelfReviewVetoed(t *testing.T) {
	svc, repo, _ := serviceFixture(t,
		&entities.ExecutionRequest{ID: "r1", ConnectionID: "c1", AuthorID: "bob", Status: entities.StatusPending},
	)
	sec := reviewerSecurity() // bob

	_, err := svc.Approve(context.Background(), sec, "r1")
	if !authorization.IsAccessDenied(err) {
		t.Fatalf("Approve() error = %v, want access denied for self-review", err)
	}
	if len(repo.updated) != 0 {
		t.Error("denied approval must not write")
	}
	if repo.requests["r1"].Status != entities.StatusPending {
		t.Errorf("status = %s, want pending left untouched", repo.requests["r1"].Status)
	}
}

func TestRequestService_Transition_WrongState(t *testing.T) {
	svc, _, _ := serviceFixture(t,
		&entities.ExecutionRequest{ID: "r1", ConnectionID: "c1", AuthorID: "alice", Status: entities.StatusPending},
	)
	sec := reviewerSecurity()

	// Executing a request that was never approved.
	_, err := svc.Execute(context.Background(), sec, "r1")
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("Execute() error = %v, want ErrInvalidState", err)
	}
}

func TestRequestService_Submit(t *testing.T) {
	draft := &entities.ExecutionRequest{ID: "r1", ConnectionID: "c1", AuthorID: "bob", Status: entities.StatusDraft}
	svc, _, _ := serviceFixture(t, draft)
	sec := reviewerSecurity() // bob, the author

	submitted, err := svc.Submit(context.Background(), sec, "r1")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if submitted.Status != entities.StatusPending {
		t.Errorf("status = %s, want pending", submitted.Status)
	}
}

func TestRequestService_Get_UnknownDenies(t *testing.T) {
	svc, _, _ := serviceFixture(t)
	sec := reviewerSecurity()

	_, err := svc.Get(context.Background(), sec, "missing")
	if !authorization.IsAccessDenied(err) {
		t.Errorf("Get() error = %v, want access denied for unknown id", err)
	}
}
