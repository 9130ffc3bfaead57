package entities

import "time"

// Connection is a named account on a datasource (database name plus
// credentials) that execution requests run under.
type Connection struct {
	ID           string
	DatasourceID string
	Name         string
	DatabaseName string
	Username     string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Datasource is the resolved parent, populated by the repository when
	// the connection is loaded for an authorization check.
	Datasource *Datasource
}

func (c *Connection) SecuredID() string {
	return c.ID
}

func (c *Connection) ResourceKind() Resource {
	return ResourceConnection
}

func (c *Connection) Related(resource Resource) SecuredObject {
	if resource == ResourceDatasource && c.Datasource != nil {
		return c.Datasource
	}
	return nil
}

func (c *Connection) Authorize(*Permission, *Principal) bool {
	return true
}
