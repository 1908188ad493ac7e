package auth

// Role is the global role carried by a user and their tokens.
type Role string

const (
	RoleMember  Role = "member"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

var roleLevel = map[Role]int{
	RoleMember:  0,
	RoleManager: 1,
	RoleAdmin:   2,
}

// Valid reports whether r is one of the predefined roles.
func (r Role) Valid() bool {
	_, ok := roleLevel[r]
	return ok
}

// AtLeast reports whether r meets the minimum role. Unknown roles never do.
func (r Role) AtLeast(min Role) bool {
	cur, ok := roleLevel[r]
	if !ok {
		return false
	}
	want, ok := roleLevel[min]
	if !ok {
		return false
	}
	return cur >= want
}

// Roles returns all roles from least to most privileged.
func Roles() []Role {
	return []Role{RoleMember, RoleManager, RoleAdmin}
}
