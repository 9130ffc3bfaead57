package authorization

import (
	"context"
	"errors"
	"fmt"

	"github.com/monban-project/monban/internal/entities"
	"github.com/monban-project/monban/internal/repositories"
)

// Security carries the authenticated principal and its grant snapshot for a
// single call. Callers build it from their own request-scoped context; the
// engine has no ambient security state.
type Security struct {
	Principal *entities.Principal
	Grants    []*entities.PolicyGrantedAuthority
}

// Operation is the business operation wrapped by a guard. It runs only if
// the pre-check allowed the call.
type Operation func(ctx context.Context) (Result, error)

// DecisionRecorder receives the outcome of every authorization check.
// Implementations must be safe for concurrent use.
type DecisionRecorder interface {
	RecordDecision(resource, action string, allowed bool)
	RecordFiltered(resource string, removed int)
}

// Guard is the enforcement point. It wraps a protected operation with a
// declared permission: the pre-check authorizes the call from its
// arguments, and the post-check authorizes or filters its result.
type Guard struct {
	resolver *ChainResolver
	objects  repositories.ObjectResolver
	recorder DecisionRecorder
}

// NewGuard creates a guard without decision metrics.
func NewGuard(resolver *ChainResolver, objects repositories.ObjectResolver) *Guard {
	return &Guard{resolver: resolver, objects: objects}
}

// NewGuardWithRecorder creates a guard that reports every decision to the
// recorder.
func NewGuardWithRecorder(resolver *ChainResolver, objects repositories.ObjectResolver, recorder DecisionRecorder) *Guard {
	return &Guard{resolver: resolver, objects: objects, recorder: recorder}
}

// Invoke runs op protected by the permission.
//
// Pre-check: args is scanned for entities.SecuredID values. With none, the
// check is unscoped; with exactly one, the identifier is resolved to the
// target object (an unknown identifier denies, fail closed); more than one
// is a contract violation. A deny aborts before op runs, so the operation
// has no side effects on denied calls.
//
// Post-check: a Single result is authorized against the same permission and
// the call fails on deny; a Many result is filtered element by element,
// preserving order and never failing for individual denials; an Empty
// result passes through. Note that op has already run by post-check time,
// so operations with externally visible side effects should not rely on the
// post-check to suppress them.
func (g *Guard) Invoke(ctx context.Context, sec *Security, permission *entities.Permission, args []any, op Operation) (Result, error) {
	if permission == nil {
		return Empty(), &ContractViolationError{Reason: "protected operation declared without a permission"}
	}
	if sec == nil || sec.Principal == nil {
		return Empty(), ErrUnauthenticated
	}

	var target entities.SecuredObject
	ids := securedIDs(args)
	switch len(ids) {
	case 0:
		// Unscoped check for a global capability.
	case 1:
		obj, err := g.objects.Resolve(ctx, ids[0])
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				g.recordDecision(permission, false)
				return Empty(), &AccessDeniedError{Permission: permission}
			}
			return Empty(), fmt.Errorf("failed to resolve %s %q: %w", ids[0].Resource, ids[0].ID, err)
		}
		target = obj
	default:
		return Empty(), &ContractViolationError{
			Reason: fmt.Sprintf("found %d secured identifiers in argument list, at most one is allowed", len(ids)),
		}
	}

	allowed, err := g.resolver.Authorize(sec.Grants, permission, target, sec.Principal)
	if err != nil {
		return Empty(), err
	}
	g.recordDecision(permission, allowed)
	if !allowed {
		return Empty(), &AccessDeniedError{Permission: permission}
	}

	result, err := op(ctx)
	if err != nil {
		return Empty(), err
	}

	return g.postCheck(sec, permission, result)
}

// postCheck authorizes the operation's result against the same permission.
func (g *Guard) postCheck(sec *Security, permission *entities.Permission, result Result) (Result, error) {
	switch result.Kind() {
	case ResultEmpty:
		return result, nil

	case ResultSingle:
		object := result.Object()
		if object == nil {
			return Empty(), &ContractViolationError{Reason: "single result carries no object"}
		}
		allowed, err := g.resolver.Authorize(sec.Grants, permission, object, sec.Principal)
		if err != nil {
			return Empty(), err
		}
		g.recordDecision(permission, allowed)
		if !allowed {
			return Empty(), &AccessDeniedError{Permission: permission}
		}
		return result, nil

	case ResultMany:
		objects := result.Objects()
		kept := make([]entities.SecuredObject, 0, len(objects))
		for _, object := range objects {
			allowed, err := g.resolver.Authorize(sec.Grants, permission, object, sec.Principal)
			if err != nil {
				return Empty(), err
			}
			if allowed {
				kept = append(kept, object)
			}
		}
		g.recordFiltered(permission, len(objects)-len(kept))
		return Many(kept), nil
	}

	return Empty(), &ContractViolationError{
		Reason: fmt.Sprintf("unknown result kind %d", result.Kind()),
	}
}

// securedIDs collects the SecuredID values from a protected operation's
// argument list.
func securedIDs(args []any) []entities.SecuredID {
	var ids []entities.SecuredID
	for _, arg := range args {
		switch v := arg.(type) {
		case entities.SecuredID:
			ids = append(ids, v)
		case *entities.SecuredID:
			if v != nil {
				ids = append(ids, *v)
			}
		}
	}
	return ids
}

func (g *Guard) recordDecision(permission *entities.Permission, allowed bool) {
	if g.recorder == nil {
		return
	}
	g.recorder.RecordDecision(string(permission.Resource), permission.Action, allowed)
}

func (g *Guard) recordFiltered(permission *entities.Permission, removed int) {
	if g.recorder == nil || removed == 0 {
		return
	}
	g.recorder.RecordFiltered(string(permission.Resource), removed)
}
