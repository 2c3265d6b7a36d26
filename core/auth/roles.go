package auth

// Roles
const (
	RoleMember = "member"
	RoleEditor = "editor"
	RoleAdmin  = "admin"
)

// Capabilities
const (
	CapRead        = "read"
	CapWrite       = "write"
	CapDelete      = "delete"
	CapManageUsers = "manage_users"
	CapManageBlog  = "manage_blog"
)

var (
	AllRoles = []string{RoleMember, RoleEditor, RoleAdmin}

	Roles = []Role{
		{Name: "Member", Value: RoleMember},
		{Name: "Editor", Value: RoleEditor},
		{Name: "Admin", Value: RoleAdmin},
	}

	rolePriorities = map[string]int{
		RoleAdmin:  30,
		RoleEditor: 20,
		RoleMember: 10,
	}

	// roleCapabilities is the fixed role → capability-set mapping.
	// Unknown roles and unknown capabilities map to nothing: permission
	// checks fail closed, unlike profile resolution which falls back open.
	roleCapabilities = map[string]map[string]struct{}{
		RoleMember: {
			CapRead: {},
		},
		RoleEditor: {
			CapRead:       {},
			CapWrite:      {},
			CapManageBlog: {},
		},
		RoleAdmin: {
			CapRead:        {},
			CapWrite:       {},
			CapDelete:      {},
			CapManageUsers: {},
			CapManageBlog:  {},
		},
	}
)

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func RolePriority(role string) int {
	return rolePriorities[role]
}

// ValidRole reports whether role belongs to the closed role set.
func ValidRole(role string) bool {
	_, ok := roleCapabilities[role]
	return ok
}

// RoleHasCapability reports whether the given role grants the given
// capability. It is pure and total: any unknown role or capability
// simply yields false.
func RoleHasCapability(role, capability string) bool {
	caps, ok := roleCapabilities[role]
	if !ok {
		return false
	}
	_, ok = caps[capability]
	return ok
}
