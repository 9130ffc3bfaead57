package authorization

import (
	"testing"

	"github.com/monban-project/monban/internal/entities"
)

func testLineage() (*entities.Datasource, *entities.Connection, *entities.ExecutionRequest) {
	ds := &entities.Datasource{ID: "ds1"}
	conn := &entities.Connection{ID: "c1", DatasourceID: "ds1", Datasource: ds}
	req := &entities.ExecutionRequest{
		ID:           "r1",
		ConnectionID: "c1",
		AuthorID:     "alice",
		Status:       entities.StatusApproved,
		Connection:   conn,
	}
	return ds, conn, req
}

func TestChainResolver_Authorize_Chain(t *testing.T) {
	resolver := NewChainResolver(NewGrantVoter())
	_, _, req := testLineage()
	reviewer := &entities.Principal{ID: "bob"}

	tests := []struct {
		name   string
		grants []*entities.PolicyGrantedAuthority
		want   bool
	}{
		{
			name: "global grants on every node allow",
			grants: []*entities.PolicyGrantedAuthority{
				entities.Grant(entities.RequestExecute),
				entities.Grant(entities.RequestGet),
				entities.Grant(entities.ConnectionGet),
				entities.Grant(entities.DatasourceGet),
			},
			want: true,
		},
		{
			name: "missing link in the chain denies",
			// datasource:get is global and execution_request:execute is
			// scoped to the request, but datasource_connection:get is
			// absent, so the walk stops there.
			grants: []*entities.PolicyGrantedAuthority{
				entities.GrantScoped(entities.RequestExecute, "r1"),
				entities.GrantScoped(entities.RequestGet, "r1"),
				entities.Grant(entities.DatasourceGet),
			},
			want: false,
		},
		{
			name: "scoped grants along the lineage allow",
			grants: []*entities.PolicyGrantedAuthority{
				entities.GrantScoped(entities.RequestExecute, "r1"),
				entities.GrantScoped(entities.RequestGet, "r1"),
				entities.GrantScoped(entities.ConnectionGet, "c1"),
				entities.Grant(entities.DatasourceGet),
			},
			want: true,
		},
		{
			name: "grant scoped to a different instance denies",
			grants: []*entities.PolicyGrantedAuthority{
				entities.GrantScoped(entities.RequestExecute, "r2"),
				entities.Grant(entities.RequestGet),
				entities.Grant(entities.ConnectionGet),
				entities.Grant(entities.DatasourceGet),
			},
			want: false,
		},
		{
			name: "head grant alone is not enough",
			grants: []*entities.PolicyGrantedAuthority{
				entities.Grant(entities.RequestExecute),
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.Authorize(tt.grants, entities.RequestExecute, req, reviewer)
			if err != nil {
				t.Fatalf("Authorize() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Authorize() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChainResolver_Authorize_GrantMonotonicity(t *testing.T) {
	// Adding a grant can only turn a deny into an allow, never the reverse.
	resolver := NewChainResolver(NewGrantVoter())
	_, _, req := testLineage()
	reviewer := &entities.Principal{ID: "bob"}

	grants := []*entities.PolicyGrantedAuthority{}
	additions := []*entities.PolicyGrantedAuthority{
		entities.GrantScoped(entities.RequestExecute, "r1"),
		entities.Grant(entities.DatasourceGet),
		entities.GrantScoped(entities.RequestGet, "r1"),
		entities.GrantScoped(entities.ConnectionGet, "c1"),
	}

	previous := false
	for _, grant := range additions {
		grants = append(grants, grant)
		allowed, err := resolver.Authorize(grants, entities.RequestExecute, req, reviewer)
		if err != nil {
			t.Fatalf("Authorize() error = %v", err)
		}
		if previous && !allowed {
			t.Fatalf("adding grant %s turned allow into deny", grant.Permission.Name())
		}
		previous = allowed
	}
	if !previous {
		t.Error("full grant set should allow")
	}
}

func TestChainResolver_Authorize_UnscopedCheck(t *testing.T) {
	resolver := NewChainResolver(NewGrantVoter())
	principal := &entities.Principal{ID: "bob"}

	// With no target every node is voted unscoped, so instance-scoped
	// grants never satisfy it.
	scoped := []*entities.PolicyGrantedAuthority{
		entities.GrantScoped(entities.DatasourceCreate, "ds1"),
	}
	allowed, err := resolver.Authorize(scoped, entities.DatasourceCreate, nil, principal)
	if err != nil {
		t.Fatalf("Authorize() error = %v", err)
	}
	if allowed {
		t.Error("scoped grant should not satisfy an unscoped check")
	}

	global := []*entities.PolicyGrantedAuthority{
		entities.Grant(entities.DatasourceCreate),
	}
	allowed, err = resolver.Authorize(global, entities.DatasourceCreate, nil, principal)
	if err != nil {
		t.Fatalf("Authorize() error = %v", err)
	}
	if !allowed {
		t.Error("global grant should satisfy an unscoped check")
	}
}

func TestChainResolver_Authorize_ObjectVeto(t *testing.T) {
	resolver := NewChainResolver(NewGrantVoter())
	_, _, req := testLineage()
	author := &entities.Principal{ID: "alice"}

	// Full grants, but the request vetoes execution by its own author.
	grants := []*entities.PolicyGrantedAuthority{
		entities.Grant(entities.RequestExecute),
		entities.Grant(entities.RequestGet),
		entities.Grant(entities.ConnectionGet),
		entities.Grant(entities.DatasourceGet),
	}

	allowed, err := resolver.Authorize(grants, entities.RequestExecute, req, author)
	if err != nil {
		t.Fatalf("Authorize() error = %v", err)
	}
	if allowed {
		t.Error("object veto should deny execution by the author despite full grants")
	}
}

func TestChainResolver_Authorize_ConfiguredVeto(t *testing.T) {
	vetoes, err := NewVetoEngine()
	if err != nil {
		t.Fatalf("NewVetoEngine() error = %v", err)
	}
	if err := RegisterDefaultVetoes(vetoes); err != nil {
		t.Fatalf("RegisterDefaultVetoes() error = %v", err)
	}
	resolver := NewChainResolverWithVetoes(NewGrantVoter(), vetoes)

	_, _, req := testLineage()
	req.Status = entities.StatusDraft

	grants := []*entities.PolicyGrantedAuthority{
		entities.Grant(entities.RequestGet),
		entities.Grant(entities.ConnectionGet),
		entities.Grant(entities.DatasourceGet),
	}

	// Drafts are invisible to anyone but the author.
	allowed, err := resolver.Authorize(grants, entities.RequestGet, req, &entities.Principal{ID: "bob"})
	if err != nil {
		t.Fatalf("Authorize() error = %v", err)
	}
	if allowed {
		t.Error("draft request should be hidden from a non-author")
	}

	allowed, err = resolver.Authorize(grants, entities.RequestGet, req, &entities.Principal{ID: "alice"})
	if err != nil {
		t.Fatalf("Authorize() error = %v", err)
	}
	if !allowed {
		t.Error("draft request should be visible to its author")
	}
}

func TestChainResolver_Authorize_VetoOnChainNode(t *testing.T) {
	vetoes, err := NewVetoEngine()
	if err != nil {
		t.Fatalf("NewVetoEngine() error = %v", err)
	}
	if err := RegisterDefaultVetoes(vetoes); err != nil {
		t.Fatalf("RegisterDefaultVetoes() error = %v", err)
	}
	resolver := NewChainResolverWithVetoes(NewGrantVoter(), vetoes)

	_, _, req := testLineage()
	req.Status = entities.StatusPending
	comment := &entities.CommentEvent{ID: "cm1", RequestID: "r1", AuthorID: "alice", Request: req}

	grants := []*entities.PolicyGrantedAuthority{
		entities.Grant(entities.CommentGet),
		entities.Grant(entities.RequestGet),
		entities.Grant(entities.ConnectionGet),
		entities.Grant(entities.DatasourceGet),
	}

	// The execution_request:get rule must see the comment's parent request,
	// not the comment itself; comments carry no status attribute.
	allowed, err := resolver.Authorize(grants, entities.CommentGet, comment, &entities.Principal{ID: "bob"})
	if err != nil {
		t.Fatalf("Authorize() error = %v", err)
	}
	if !allowed {
		t.Error("comment on a pending request should be visible")
	}

	// The same rule still hides the comment while its request is a draft.
	req.Status = entities.StatusDraft
	allowed, err = resolver.Authorize(grants, entities.CommentGet, comment, &entities.Principal{ID: "bob"})
	if err != nil {
		t.Fatalf("Authorize() error = %v", err)
	}
	if allowed {
		t.Error("comment on someone else's draft should be hidden")
	}

	allowed, err = resolver.Authorize(grants, entities.CommentGet, comment, &entities.Principal{ID: "alice"})
	if err != nil {
		t.Fatalf("Authorize() error = %v", err)
	}
	if !allowed {
		t.Error("comment on a draft should be visible to the draft's author")
	}
}

func TestChainResolver_Authorize_DepthLimit(t *testing.T) {
	resolver := NewChainResolver(NewGrantVoter())

	// Build a chain longer than MaxDepth by hand; the catalogue would
	// reject it, the resolver guards against it anyway. Every node must be
	// granted, or the vote denies before the limit is reached.
	head := &entities.Permission{Resource: entities.ResourceRole, Action: "a0"}
	grants := []*entities.PolicyGrantedAuthority{entities.Grant(head)}
	node := head
	for i := 1; i <= MaxDepth; i++ {
		next := &entities.Permission{Resource: entities.ResourceRole, Action: "a" + string(rune('0'+i%10))}
		node.Required = next
		node = next
		grants = append(grants, entities.Grant(next))
	}

	_, err := resolver.Authorize(grants, head, nil, &entities.Principal{ID: "bob"})
	if !IsContractViolation(err) {
		t.Errorf("Authorize() error = %v, want contract violation", err)
	}
}
