package entities

import "testing"

func lineage() (*Datasource, *Connection, *ExecutionRequest, *CommentEvent) {
	ds := &Datasource{ID: "ds1", Name: "analytics"}
	conn := &Connection{ID: "c1", DatasourceID: "ds1", Datasource: ds}
	req := &ExecutionRequest{ID: "r1", ConnectionID: "c1", AuthorID: "alice", Status: StatusPending, Connection: conn}
	comment := &CommentEvent{ID: "e1", RequestID: "r1", Request: req}
	return ds, conn, req, comment
}

func TestRelated_WalksLineage(t *testing.T) {
	ds, conn, req, comment := lineage()

	tests := []struct {
		name     string
		object   SecuredObject
		resource Resource
		want     SecuredObject
	}{
		{"request to connection", req, ResourceConnection, conn},
		{"request to datasource", req, ResourceDatasource, ds},
		{"connection to datasource", conn, ResourceDatasource, ds},
		{"comment to request", comment, ResourceRequest, req},
		{"comment to datasource", comment, ResourceDatasource, ds},
		{"datasource has no parent", ds, ResourceConnection, nil},
		{"request to unrelated kind", req, ResourceRole, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.object.Related(tt.resource); got != tt.want {
				t.Errorf("Related(%s) = %v, want %v", tt.resource, got, tt.want)
			}
		})
	}
}

func TestRelated_UnresolvedParent(t *testing.T) {
	// Loaded without its parent: lineage stops.
	req := &ExecutionRequest{ID: "r1", ConnectionID: "c1"}
	if got := req.Related(ResourceDatasource); got != nil {
		t.Errorf("Related(datasource) = %v, want nil when parent not resolved", got)
	}
}

func TestExecutionRequest_Authorize_SelfReview(t *testing.T) {
	req := &ExecutionRequest{ID: "r1", AuthorID: "alice", Status: StatusPending}
	author := &Principal{ID: "alice"}
	reviewer := &Principal{ID: "bob"}

	tests := []struct {
		name       string
		permission *Permission
		principal  *Principal
		want       bool
	}{
		{"author cannot approve own request", RequestApprove, author, false},
		{"author cannot execute own request", RequestExecute, author, false},
		{"reviewer can approve", RequestApprove, reviewer, true},
		{"reviewer can execute", RequestExecute, reviewer, true},
		{"author can still read own request", RequestGet, author, true},
		{"non-request permission passes through", ConnectionGet, author, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := req.Authorize(tt.permission, tt.principal); got != tt.want {
				t.Errorf("Authorize(%s, %s) = %v, want %v", tt.permission.Name(), tt.principal.ID, got, tt.want)
			}
		})
	}
}

func TestExecutionRequest_SecurityAttributes(t *testing.T) {
	req := &ExecutionRequest{ID: "r1", AuthorID: "alice", Status: StatusDraft}
	attrs := req.SecurityAttributes()

	if attrs["author_id"] != "alice" {
		t.Errorf("author_id = %v, want alice", attrs["author_id"])
	}
	if attrs["status"] != "draft" {
		t.Errorf("status = %v, want draft", attrs["status"])
	}
}

func TestPolicyGrantedAuthority_Global(t *testing.T) {
	if !Grant(DatasourceGet).Global() {
		t.Error("Grant() should be global")
	}
	if GrantScoped(DatasourceGet, "ds1").Global() {
		t.Error("GrantScoped() should not be global")
	}
}
