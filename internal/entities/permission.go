package entities

import "fmt"

// ActionNone marks a permission that is the root gate for its resource
// ("may see this resource kind at all") rather than a concrete action.
const ActionNone = ""

// Permission identifies a single node in the permission forest. A permission
// may require another permission; following Required links forms a finite
// chain that terminates at a permission with no requirement.
type Permission struct {
	Resource Resource
	Action   string
	Required *Permission
}

// Name returns the canonical name of the permission, e.g.
// "execution_request:execute" or "datasource:*" for a root gate.
func (p *Permission) Name() string {
	if p.Action == ActionNone {
		return fmt.Sprintf("%s:*", p.Resource)
	}
	return fmt.Sprintf("%s:%s", p.Resource, p.Action)
}

// Equal reports whether two permissions identify the same node.
func (p *Permission) Equal(other *Permission) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.Resource == other.Resource && p.Action == other.Action
}

// The built-in permission set. Chains encode action inheritance: executing a
// request requires seeing the request, which requires seeing its connection,
// which requires seeing the parent datasource.
var (
	// Root gates (ActionNone): visibility of the resource kind itself.
	DatasourceView = &Permission{Resource: ResourceDatasource}
	ConnectionView = &Permission{Resource: ResourceConnection}
	RequestView    = &Permission{Resource: ResourceRequest}

	DatasourceGet    = &Permission{Resource: ResourceDatasource, Action: "get"}
	DatasourceCreate = &Permission{Resource: ResourceDatasource, Action: "create"}
	DatasourceEdit   = &Permission{Resource: ResourceDatasource, Action: "edit", Required: DatasourceGet}

	ConnectionGet    = &Permission{Resource: ResourceConnection, Action: "get", Required: DatasourceGet}
	ConnectionCreate = &Permission{Resource: ResourceConnection, Action: "create", Required: DatasourceGet}
	ConnectionEdit   = &Permission{Resource: ResourceConnection, Action: "edit", Required: ConnectionGet}

	RequestGet     = &Permission{Resource: ResourceRequest, Action: "get", Required: ConnectionGet}
	RequestCreate  = &Permission{Resource: ResourceRequest, Action: "create", Required: ConnectionGet}
	RequestExecute = &Permission{Resource: ResourceRequest, Action: "execute", Required: RequestGet}
	RequestApprove = &Permission{Resource: ResourceRequest, Action: "approve", Required: RequestGet}

	CommentGet    = &Permission{Resource: ResourceComment, Action: "get", Required: RequestGet}
	CommentCreate = &Permission{Resource: ResourceComment, Action: "create", Required: RequestGet}

	RoleGet = &Permission{Resource: ResourceRole, Action: "get"}
)

// Catalogue is the static registry of all permissions. It is validated at
// construction and never mutated afterwards, so lookups are safe for
// concurrent use.
type Catalogue struct {
	byName map[string]*Permission
}

// NewCatalogue builds a catalogue from the given permissions. It fails if a
// permission name is duplicated, if a Required link points outside the
// catalogue, or if following Required links does not terminate.
func NewCatalogue(perms ...*Permission) (*Catalogue, error) {
	byName := make(map[string]*Permission, len(perms))
	for _, p := range perms {
		if !p.Resource.Valid() {
			return nil, fmt.Errorf("permission %s: unknown resource %q", p.Name(), p.Resource)
		}
		if _, ok := byName[p.Name()]; ok {
			return nil, fmt.Errorf("duplicate permission %s", p.Name())
		}
		byName[p.Name()] = p
	}

	for _, p := range perms {
		if err := validateChain(p, byName); err != nil {
			return nil, err
		}
	}

	return &Catalogue{byName: byName}, nil
}

// validateChain walks the Required links of p and verifies the chain stays
// inside the catalogue and terminates without revisiting a node.
func validateChain(p *Permission, byName map[string]*Permission) error {
	seen := make(map[string]bool)
	for node := p; node != nil; node = node.Required {
		name := node.Name()
		if seen[name] {
			return fmt.Errorf("permission chain of %s cycles at %s", p.Name(), name)
		}
		seen[name] = true
		if registered, ok := byName[name]; !ok || registered != node {
			return fmt.Errorf("permission chain of %s references unregistered permission %s", p.Name(), name)
		}
	}
	return nil
}

// Get returns the permission with the given canonical name, or nil.
func (c *Catalogue) Get(name string) *Permission {
	return c.byName[name]
}

// Permissions returns all registered permissions.
func (c *Catalogue) Permissions() []*Permission {
	perms := make([]*Permission, 0, len(c.byName))
	for _, p := range c.byName {
		perms = append(perms, p)
	}
	return perms
}

// DefaultCatalogue returns the built-in permission set. The set is fixed at
// compile time, so a validation failure here is a programming error.
func DefaultCatalogue() *Catalogue {
	c, err := NewCatalogue(
		DatasourceView,
		DatasourceGet,
		DatasourceCreate,
		DatasourceEdit,
		ConnectionView,
		ConnectionGet,
		ConnectionCreate,
		ConnectionEdit,
		RequestView,
		RequestGet,
		RequestCreate,
		RequestExecute,
		RequestApprove,
		CommentGet,
		CommentCreate,
		RoleGet,
	)
	if err != nil {
		panic(fmt.Sprintf("built-in permission catalogue is invalid: %v", err))
	}
	return c
}
