package authorization

import (
	"github.com/monban-project/monban/internal/entities"
)

// GrantVoter decides allow/deny for a single permission node from the
// principal's grant snapshot. It is stateless and safe for concurrent use.
type GrantVoter struct{}

// NewGrantVoter creates a new GrantVoter.
func NewGrantVoter() *GrantVoter {
	return &GrantVoter{}
}

// Vote reports whether the grants satisfy the permission for the given
// scope object.
//
// With no scope object, only an unscoped (global) grant satisfies the
// permission. With a scope object, a matching grant must be global or
// scoped to the object's identifier. No matching grant means deny; there is
// no default-allow.
func (v *GrantVoter) Vote(grants []*entities.PolicyGrantedAuthority, permission *entities.Permission, scope entities.SecuredObject) bool {
	for _, grant := range grants {
		if grant == nil || grant.Permission == nil || !grant.Permission.Equal(permission) {
			continue
		}
		if grant.Global() {
			return true
		}
		if scope != nil && scope.SecuredID() != "" && grant.ScopeID == scope.SecuredID() {
			return true
		}
	}
	return false
}
