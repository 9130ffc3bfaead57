package authorization

import (
	"testing"

	"github.com/monban-project/monban/internal/entities"
)

func TestGrantVoter_Vote(t *testing.T) {
	voter := NewGrantVoter()
	ds := &entities.Datasource{ID: "ds1"}

	tests := []struct {
		name       string
		grants     []*entities.PolicyGrantedAuthority
		permission *entities.Permission
		scope      entities.SecuredObject
		want       bool
	}{
		{
			name:       "no grants denies",
			grants:     nil,
			permission: entities.DatasourceGet,
			scope:      ds,
			want:       false,
		},
		{
			name:       "global grant matches any instance",
			grants:     []*entities.PolicyGrantedAuthority{entities.Grant(entities.DatasourceGet)},
			permission: entities.DatasourceGet,
			scope:      ds,
			want:       true,
		},
		{
			name:       "global grant matches unscoped check",
			grants:     []*entities.PolicyGrantedAuthority{entities.Grant(entities.DatasourceCreate)},
			permission: entities.DatasourceCreate,
			scope:      nil,
			want:       true,
		},
		{
			name:       "scoped grant matches its instance",
			grants:     []*entities.PolicyGrantedAuthority{entities.GrantScoped(entities.DatasourceGet, "ds1")},
			permission: entities.DatasourceGet,
			scope:      ds,
			want:       true,
		},
		{
			name:       "scoped grant does not match another instance",
			grants:     []*entities.PolicyGrantedAuthority{entities.GrantScoped(entities.DatasourceGet, "ds2")},
			permission: entities.DatasourceGet,
			scope:      ds,
			want:       false,
		},
		{
			name:       "scoped grant never satisfies an unscoped check",
			grants:     []*entities.PolicyGrantedAuthority{entities.GrantScoped(entities.DatasourceGet, "ds1")},
			permission: entities.DatasourceGet,
			scope:      nil,
			want:       false,
		},
		{
			name:       "grant for different permission is ignored",
			grants:     []*entities.PolicyGrantedAuthority{entities.Grant(entities.DatasourceEdit)},
			permission: entities.DatasourceGet,
			scope:      ds,
			want:       false,
		},
		{
			name: "nil entries are skipped",
			grants: []*entities.PolicyGrantedAuthority{
				nil,
				{Permission: nil},
				entities.Grant(entities.DatasourceGet),
			},
			permission: entities.DatasourceGet,
			scope:      ds,
			want:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := voter.Vote(tt.grants, tt.permission, tt.scope); got != tt.want {
				t.Errorf("Vote() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGrantVoter_Vote_UnpersistedScope(t *testing.T) {
	voter := NewGrantVoter()
	// An object without an identifier can only be matched by a global grant.
	unsaved := &entities.Datasource{}

	scoped := []*entities.PolicyGrantedAuthority{entities.GrantScoped(entities.DatasourceGet, "ds1")}
	if voter.Vote(scoped, entities.DatasourceGet, unsaved) {
		t.Error("scoped grant should not match an object with no identifier")
	}

	global := []*entities.PolicyGrantedAuthority{entities.Grant(entities.DatasourceGet)}
	if !voter.Vote(global, entities.DatasourceGet, unsaved) {
		t.Error("global grant should match an object with no identifier")
	}
}
