package authorization

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/monban-project/monban/internal/entities"
)

// VetoEngine evaluates configured CEL veto expressions on top of the grant
// checks. An expression is registered per permission and sees two maps:
// "resource" (the target object's security attributes) and "subject" (the
// principal). A false result denies the check.
//
// Expressions are compiled at registration time, so a malformed or
// non-boolean expression fails at startup rather than during a check.
// Registered programs are never mutated afterwards; evaluation is safe for
// concurrent use.
type VetoEngine struct {
	env      *cel.Env
	programs map[string]cel.Program
}

// NewVetoEngine creates a VetoEngine with no registered expressions.
func NewVetoEngine() (*VetoEngine, error) {
	env, err := cel.NewEnv(
		cel.Variable("resource", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("subject", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &VetoEngine{
		env:      env,
		programs: make(map[string]cel.Program),
	}, nil
}

// Register compiles the expression and binds it to the permission. Must be
// called during setup, before the engine is shared between goroutines.
func (e *VetoEngine) Register(permission *entities.Permission, expression string) error {
	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("invalid veto expression for %s: %w", permission.Name(), issues.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return fmt.Errorf("veto expression for %s must return boolean, got %s", permission.Name(), ast.OutputType())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return fmt.Errorf("failed to build veto program for %s: %w", permission.Name(), err)
	}

	e.programs[permission.Name()] = program
	return nil
}

// Evaluate runs the expression registered for the permission, if any.
// Permissions without a registered expression pass. Evaluation errors deny
// (fail closed) and are surfaced to the caller.
func (e *VetoEngine) Evaluate(permission *entities.Permission, target entities.SecuredObject, principal *entities.Principal) (bool, error) {
	program, ok := e.programs[permission.Name()]
	if !ok {
		return true, nil
	}

	resource := map[string]any{}
	if carrier, ok := target.(entities.AttributeCarrier); ok {
		resource = carrier.SecurityAttributes()
	}
	subject := map[string]any{}
	if principal != nil {
		subject = map[string]any{
			"id":   principal.ID,
			"name": principal.Name,
		}
	}

	result, _, err := program.Eval(map[string]any{
		"resource": resource,
		"subject":  subject,
	})
	if err != nil {
		return false, fmt.Errorf("failed to evaluate veto expression for %s: %w", permission.Name(), err)
	}

	allowed, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("veto expression for %s did not evaluate to boolean, got %T", permission.Name(), result.Value())
	}

	return allowed, nil
}

// RegisterDefaultVetoes installs the built-in veto rules: draft requests are
// visible only to their author.
func RegisterDefaultVetoes(e *VetoEngine) error {
	const draftRule = `resource.status != "draft" || resource.author_id == subject.id`
	for _, p := range []*entities.Permission{entities.RequestView, entities.RequestGet} {
		if err := e.Register(p, draftRule); err != nil {
			return err
		}
	}
	return nil
}
