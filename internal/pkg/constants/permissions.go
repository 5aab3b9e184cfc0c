package constants

const (
	ViewData       = "view_data"
	ManageClients  = "manage_clients"
	IssueShares    = "issue_shares"
	TransferShares = "transfer_shares"
)

// PermissionMinRole is the least privileged role allowed each permission.
// Transfers rewrite ownership, so they sit above issuing.
var PermissionMinRole = map[string]string{
	ViewData:       Viewer,
	ManageClients:  Manager,
	IssueShares:    Manager,
	TransferShares: Admin,
}

// IsConfigured reports whether the permission has a role ladder entry.
func IsConfigured(permission string) bool {
	_, ok := PermissionMinRole[permission]
	return ok
}

// AllowedRole returns true if role may perform the permission.
func AllowedRole(permission, role string) bool {
	min, ok := PermissionMinRole[permission]
	return ok && RoleAtLeast(role, min)
}

// RolesFor expands a permission into the concrete roles holding it.
func RolesFor(permission string) []string {
	var out []string
	for _, r := range ValidRoles {
		if AllowedRole(permission, r) {
			out = append(out, r)
		}
	}
	return out
}
