package domain

// Permission is a fine-grained capability identifier, e.g. "delete:item".
type Permission string

const (
	PermissionReadItem    Permission = "read:item"
	PermissionCreateItem  Permission = "create:item"
	PermissionUpdateItem  Permission = "update:item"
	PermissionDeleteItem  Permission = "delete:item"
	PermissionManageUsers Permission = "manage:users"
)

// RolePermissions maps each role to the permissions it grants. Loaded once,
// never mutated after init, so concurrent reads need no synchronisation.
// A role missing from the map simply has no permissions.
var RolePermissions = map[string][]Permission{
	RoleAdmin: {
		PermissionReadItem,
		PermissionCreateItem,
		PermissionUpdateItem,
		PermissionDeleteItem,
		PermissionManageUsers,
	},
	RoleUser: {
		PermissionReadItem,
		PermissionCreateItem,
	},
}

// HasPermissions reports whether the role's grant set contains every
// permission in required. An empty required list trivially passes.
func HasPermissions(role string, required []Permission) bool {
	granted := RolePermissions[role]
	for _, want := range required {
		found := false
		for _, have := range granted {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
