package authz

import (
	"github.com/google/uuid"

	"github.com/cafenowa/cafenowa-backend/pkg/enums"
)

// Operation names one guarded capability. Menu reads are public and
// deliberately absent from the table below.
type Operation string

const (
	OpMenuWrite      Operation = "menu:write"
	OpInventoryRead  Operation = "inventory:read"
	OpInventoryWrite Operation = "inventory:write"
	OpOrderRead      Operation = "order:read"
	OpOrderWrite     Operation = "order:write"
	OpUserManage     Operation = "user:manage"
	OpAuditRead      Operation = "audit:read"
)

// allowed is the whole policy. Inventory reads admit employees while
// inventory writes do not; that asymmetry is intentional least-privilege
// and must not be "fixed". There is no audit write operation: the audit
// trail accepts no writes through any role, including super_admin.
var allowed = map[Operation]map[enums.Role]bool{
	OpMenuWrite: {
		enums.RoleSuperAdmin: true,
		enums.RoleAdmin:      true,
	},
	OpInventoryRead: {
		enums.RoleSuperAdmin: true,
		enums.RoleAdmin:      true,
		enums.RoleEmployee:   true,
	},
	OpInventoryWrite: {
		enums.RoleSuperAdmin: true,
		enums.RoleAdmin:      true,
	},
	OpOrderRead: {
		enums.RoleSuperAdmin: true,
		enums.RoleAdmin:      true,
		enums.RoleEmployee:   true,
	},
	OpOrderWrite: {
		enums.RoleSuperAdmin: true,
		enums.RoleAdmin:      true,
		enums.RoleEmployee:   true,
	},
	OpUserManage: {
		enums.RoleSuperAdmin: true,
		enums.RoleAdmin:      true,
	},
	OpAuditRead: {
		enums.RoleSuperAdmin: true,
		enums.RoleAdmin:      true,
	},
}

// Allowed reports whether the role may perform the operation.
func Allowed(role enums.Role, op Operation) bool {
	return allowed[op][role]
}

// CanManageRole reports whether an actor of the given role may create,
// update, or deactivate accounts of the target role. Super admins manage
// every tier; admins manage only employees and customers. An admin
// touching an admin-or-higher account is rejected regardless of which
// identity it is.
func CanManageRole(actor, target enums.Role) bool {
	switch actor {
	case enums.RoleSuperAdmin:
		return target.IsValid()
	case enums.RoleAdmin:
		return target == enums.RoleEmployee || target == enums.RoleCustomer
	}
	return false
}

// VisibleRoles returns the partitions an actor may list. Admins never see
// super admin rows.
func VisibleRoles(actor enums.Role) []enums.Role {
	switch actor {
	case enums.RoleSuperAdmin:
		return []enums.Role{enums.RoleSuperAdmin, enums.RoleAdmin, enums.RoleEmployee, enums.RoleCustomer}
	case enums.RoleAdmin:
		return []enums.Role{enums.RoleAdmin, enums.RoleEmployee, enums.RoleCustomer}
	}
	return nil
}

// IsSelf reports whether the actor and target are the same (id, role)
// pair. Used for the self-lockout guard: nobody may deactivate or delete
// their own account, whatever their role.
func IsSelf(actorID uuid.UUID, actorRole enums.Role, targetID uuid.UUID, targetRole enums.Role) bool {
	return actorID == targetID && actorRole == targetRole
}
