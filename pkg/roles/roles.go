package roles

// Role is the permission level carried in the access token.
type Role string

const (
	User  Role = "user"
	Admin Role = "admin"
)

type HierarchyLevel int

const (
	UserLevel  HierarchyLevel = 1
	AdminLevel HierarchyLevel = 2
)

func (r Role) GetHierarchyLevel() HierarchyLevel {
	switch r {
	case Admin:
		return AdminLevel
	default:
		return UserLevel
	}
}

// HasPermission reports whether r is at least requiredRole.
func (r Role) HasPermission(requiredRole Role) bool {
	return r.IsValid() && r.GetHierarchyLevel() >= requiredRole.GetHierarchyLevel()
}

func (r Role) IsValid() bool {
	switch r {
	case User, Admin:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}
