package entities

// SecuredID names an instance of a secured resource in the argument list of
// a protected operation. Wrapping the identifier in this type is what tells
// the enforcement point "authorize this instance" as opposed to an ordinary
// string argument. At most one SecuredID is allowed per protected operation.
type SecuredID struct {
	Resource Resource
	ID       string
}

// SecuredObject is the contract every protectable entity implements. The
// authorization engine only ever reads a SecuredObject for the duration of a
// single check; it never retains or mutates one.
type SecuredObject interface {
	// SecuredID returns the identifier of the instance, or the empty string
	// if the instance has not been persisted yet.
	SecuredID() string

	// ResourceKind returns the resource kind of the instance.
	ResourceKind() Resource

	// Related returns the object this instance is owned by or derived from
	// for the given resource kind, or nil when there is none. The chain
	// resolver uses it to find the scope object for inherited permissions.
	Related(resource Resource) SecuredObject

	// Authorize is the instance's own veto on top of the granted policies.
	// Returning false denies the check regardless of grants. Implementations
	// with no special rules return true.
	Authorize(permission *Permission, principal *Principal) bool
}

// AttributeCarrier is optionally implemented by secured objects that expose
// attributes to configured veto expressions.
type AttributeCarrier interface {
	SecurityAttributes() map[string]any
}

// Principal is the authenticated identity a check is evaluated for.
type Principal struct {
	ID   string
	Name string
}
