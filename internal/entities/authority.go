package entities

// PolicyGrantedAuthority is a single grant held by a principal: a permission
// plus an optional scope. A grant with an empty ScopeID applies to every
// instance of the permission's resource; otherwise it applies only to the
// instance with that identifier.
//
// The set of a principal's grants is loaded fresh for every call and treated
// as a read-only snapshot; the engine never caches it.
type PolicyGrantedAuthority struct {
	Permission *Permission
	ScopeID    string
}

// Global reports whether the grant applies to all instances.
func (a *PolicyGrantedAuthority) Global() bool {
	return a.ScopeID == ""
}

// Grant returns an unscoped authority for the given permission.
func Grant(p *Permission) *PolicyGrantedAuthority {
	return &PolicyGrantedAuthority{Permission: p}
}

// GrantScoped returns an authority bound to a single instance.
func GrantScoped(p *Permission, scopeID string) *PolicyGrantedAuthority {
	return &PolicyGrantedAuthority{Permission: p, ScopeID: scopeID}
}
