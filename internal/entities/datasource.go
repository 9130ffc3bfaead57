package entities

import "time"

// Datasource is a registered database that requests are executed against.
// It is the root of the ownership hierarchy: connections belong to a
// datasource, requests to a connection, comments to a request.
type Datasource struct {
	ID        string
	Name      string
	Driver    string // e.g. "postgres", "mysql"
	Host      string
	Port      int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (d *Datasource) SecuredID() string {
	return d.ID
}

func (d *Datasource) ResourceKind() Resource {
	return ResourceDatasource
}

// Related returns nil: a datasource has no parent object.
func (d *Datasource) Related(Resource) SecuredObject {
	return nil
}

func (d *Datasource) Authorize(*Permission, *Principal) bool {
	return true
}
