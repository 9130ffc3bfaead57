package authorization

import (
	"fmt"

	"github.com/monban-project/monban/internal/entities"
)

// MaxDepth bounds the walk over Required links. The catalogue validates
// chains at construction; hitting this limit means a chain was built
// outside the catalogue and is a programming error.
const MaxDepth = 32

// ChainResolver walks a permission and its Required chain, asking the grant
// voter and the target's veto hooks at every node. The first deny aborts
// the whole chain. It holds no per-call state and is safe for concurrent
// use.
type ChainResolver struct {
	voter  *GrantVoter
	vetoes *VetoEngine
}

// NewChainResolver creates a resolver without configured veto expressions.
func NewChainResolver(voter *GrantVoter) *ChainResolver {
	return &ChainResolver{voter: voter}
}

// NewChainResolverWithVetoes creates a resolver that additionally consults
// the veto engine at every chain node.
func NewChainResolverWithVetoes(voter *GrantVoter, vetoes *VetoEngine) *ChainResolver {
	return &ChainResolver{voter: voter, vetoes: vetoes}
}

// Authorize decides whether the grants allow the permission against the
// target. A nil target means an unscoped check: every chain node then
// requires a global grant.
//
// For each node the scope object is the target itself when the node's
// resource matches the target's kind, and otherwise the target's related
// object for that resource (possibly nil, in which case the node is voted
// unscoped). After the vote, the target's own Authorize hook and any veto
// expression registered for the node, evaluated against the node's scope
// object, may still deny.
func (r *ChainResolver) Authorize(
	grants []*entities.PolicyGrantedAuthority,
	permission *entities.Permission,
	target entities.SecuredObject,
	principal *entities.Principal,
) (bool, error) {
	depth := 0
	for p := permission; p != nil; p = p.Required {
		if depth >= MaxDepth {
			return false, &ContractViolationError{
				Reason: fmt.Sprintf("permission chain of %s exceeds maximum depth %d", permission.Name(), MaxDepth),
			}
		}
		depth++

		var scope entities.SecuredObject
		if target != nil {
			if target.ResourceKind() == p.Resource {
				scope = target
			} else {
				scope = target.Related(p.Resource)
			}
		}

		if !r.voter.Vote(grants, p, scope) {
			return false, nil
		}

		if target != nil {
			if !target.Authorize(p, principal) {
				return false, nil
			}
		}
		// Veto expressions are written against the node's resource, so they
		// are evaluated against the scope object, not the top-level target.
		// With no scope object there is nothing to veto.
		if r.vetoes != nil && scope != nil {
			allowed, err := r.vetoes.Evaluate(p, scope, principal)
			if err != nil {
				return false, err
			}
			if !allowed {
				return false, nil
			}
		}
	}

	return true, nil
}
