package authorization

import (
	"errors"
	"fmt"

	"github.com/monban-project/monban/internal/entities"
)

// ErrUnauthenticated is returned when a protected operation is invoked
// without an authenticated principal. It is raised before any permission
// logic runs.
var ErrUnauthenticated = errors.New("authentication required")

// AccessDeniedError is returned when a pre-check or a single-object
// post-check denies. Grants are evaluated fresh on every call, so retrying
// is only useful after the underlying grants change.
type AccessDeniedError struct {
	Permission *entities.Permission
}

func (e *AccessDeniedError) Error() string {
	if e.Permission == nil {
		return "access denied"
	}
	return fmt.Sprintf("access denied: %s", e.Permission.Name())
}

// ContractViolationError signals a programming error in how a protected
// operation is declared or implemented: more than one secured identifier in
// the argument list, an unterminated permission chain, or a malformed
// result. These should be caught by tests, not handled at runtime.
type ContractViolationError struct {
	Reason string
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("authorization contract violation: %s", e.Reason)
}

// IsAccessDenied reports whether err is (or wraps) an access denial.
func IsAccessDenied(err error) bool {
	var denied *AccessDeniedError
	return errors.As(err, &denied)
}

// IsContractViolation reports whether err is (or wraps) a contract
// violation.
func IsContractViolation(err error) bool {
	var violation *ContractViolationError
	return errors.As(err, &violation)
}
