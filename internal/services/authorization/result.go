package authorization

import "github.com/monban-project/monban/internal/entities"

// ResultKind tags the shape of a protected operation's result.
type ResultKind int

const (
	// ResultEmpty means the operation returned nothing to authorize.
	ResultEmpty ResultKind = iota
	// ResultSingle means the operation returned one secured object.
	ResultSingle
	// ResultMany means the operation returned a collection of secured
	// objects to be filtered.
	ResultMany
)

// Result is the tagged return value of a protected operation. Operation
// authors construct it explicitly with Empty, Single, or Many; there is no
// runtime type inspection of arbitrary return values.
type Result struct {
	kind    ResultKind
	object  entities.SecuredObject
	objects []entities.SecuredObject
}

// Empty returns a result with nothing to authorize. The zero Result is
// equivalent.
func Empty() Result {
	return Result{kind: ResultEmpty}
}

// Single wraps one secured object. The post-check authorizes it and fails
// the call on deny.
func Single(object entities.SecuredObject) Result {
	return Result{kind: ResultSingle, object: object}
}

// Many wraps a collection of secured objects. The post-check silently drops
// the elements the principal may not see, preserving relative order.
func Many(objects []entities.SecuredObject) Result {
	return Result{kind: ResultMany, objects: objects}
}

// Kind returns the result's tag.
func (r Result) Kind() ResultKind {
	return r.kind
}

// Object returns the single object, or nil for other kinds.
func (r Result) Object() entities.SecuredObject {
	return r.object
}

// Objects returns the collection, or nil for other kinds.
func (r Result) Objects() []entities.SecuredObject {
	return r.objects
}
