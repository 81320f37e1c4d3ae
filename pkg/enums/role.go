package enums

import "fmt"

// Role identifies which credential partition an identity lives in.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleEmployee   Role = "employee"
	RoleCustomer   Role = "customer"

	// RoleUnknown is recorded on audit rows when a login attempt never
	// resolved to an account. It is not a valid partition.
	RoleUnknown Role = "unknown"
)

// AllRoles is ordered from highest to lowest privilege. Login fan-out and
// the role hierarchy both rely on this ordering.
var AllRoles = []Role{
	RoleSuperAdmin,
	RoleAdmin,
	RoleEmployee,
	RoleCustomer,
}

var roleLevels = map[Role]int{
	RoleSuperAdmin: 4,
	RoleAdmin:      3,
	RoleEmployee:   2,
	RoleCustomer:   1,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	_, ok := roleLevels[r]
	return ok
}

// Level returns the privilege rank of the role; higher outranks lower.
// Unknown roles rank below every valid role.
func (r Role) Level() int {
	return roleLevels[r]
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range AllRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
