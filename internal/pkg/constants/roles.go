package constants

const (
	Superadmin = "superadmin"
	Admin      = "admin"
	Manager    = "manager"
	Viewer     = "viewer"
)

// ValidRoles lists the user roles from least to most privileged.
var ValidRoles = []string{Viewer, Manager, Admin, Superadmin}

var roleRank = map[string]int{Viewer: 1, Manager: 2, Admin: 3, Superadmin: 4}

func IsValidRole(role string) bool {
	_, ok := roleRank[role]
	return ok
}

// RoleAtLeast reports whether role is min or more privileged. Unknown roles never qualify.
func RoleAtLeast(role, min string) bool {
	have, ok := roleRank[role]
	if !ok {
		return false
	}
	want, ok := roleRank[min]
	return ok && have >= want
}
