package entities

// Resource is a kind of protectable entity. The set is closed; adding a new
// resource means adding a constant here and the matching permissions to the
// catalogue.
type Resource string

const (
	ResourceDatasource Resource = "datasource"
	ResourceConnection Resource = "datasource_connection"
	ResourceRequest    Resource = "execution_request"
	ResourceComment    Resource = "comment_event"
	ResourceRole       Resource = "role"
)

// Resources returns all known resource kinds.
func Resources() []Resource {
	return []Resource{
		ResourceDatasource,
		ResourceConnection,
		ResourceRequest,
		ResourceComment,
		ResourceRole,
	}
}

// Valid reports whether r is one of the known resource kinds.
func (r Resource) Valid() bool {
	switch r {
	case ResourceDatasource, ResourceConnection, ResourceRequest, ResourceComment, ResourceRole:
		return true
	}
	return false
}

func (r Resource) String() string {
	return string(r)
}
