package order

import "github.com/mayank1327/food-ordering-app/internal/identity"

type Operation string

const (
	OpCreate Operation = "create"
	OpList   Operation = "list"
	OpGet    Operation = "get"
	OpPlace  Operation = "place"
	OpCancel Operation = "cancel"
)

// grant says how far a role's permission for an operation reaches. The
// reach is enforced by the scope the service resolves afterwards; the table
// itself only answers allowed or denied.
type grant int

const (
	grantDenied grant = iota
	// grantOwn: permitted, scoped to the caller's own orders and country.
	grantOwn
	// grantAny: permitted on any order.
	grantAny
)

// permissions is the single source of truth for (operation, role). Role
// checks are consulted here once per operation instead of being scattered
// through handlers and services.
var permissions = map[Operation]map[identity.Role]grant{
	OpCreate: {
		identity.RoleAdmin:   grantAny,
		identity.RoleManager: grantOwn,
		identity.RoleMember:  grantOwn,
	},
	OpList: {
		identity.RoleAdmin:   grantAny,
		identity.RoleManager: grantOwn,
		identity.RoleMember:  grantOwn,
	},
	OpGet: {
		identity.RoleAdmin:   grantAny,
		identity.RoleManager: grantOwn,
		identity.RoleMember:  grantOwn,
	},
	OpPlace: {
		identity.RoleAdmin:   grantAny,
		identity.RoleManager: grantOwn,
	},
	OpCancel: {
		identity.RoleAdmin:   grantAny,
		identity.RoleManager: grantOwn,
	},
}

// Permitted reports whether the role may perform the operation at all.
func Permitted(op Operation, role identity.Role) bool {
	return permissions[op][role] != grantDenied
}
