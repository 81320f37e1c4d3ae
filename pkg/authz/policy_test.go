package authz

import (
	"testing"

	"github.com/google/uuid"

	"github.com/cafenowa/cafenowa-backend/pkg/enums"
)

func TestAllowedMatrix(t *testing.T) {
	cases := []struct {
		role enums.Role
		op   Operation
		want bool
	}{
		{enums.RoleSuperAdmin, OpMenuWrite, true},
		{enums.RoleAdmin, OpMenuWrite, true},
		{enums.RoleEmployee, OpMenuWrite, false},
		{enums.RoleCustomer, OpMenuWrite, false},

		// Employees read inventory but may not write it.
		{enums.RoleEmployee, OpInventoryRead, true},
		{enums.RoleEmployee, OpInventoryWrite, false},
		{enums.RoleAdmin, OpInventoryWrite, true},
		{enums.RoleCustomer, OpInventoryRead, false},

		{enums.RoleEmployee, OpOrderWrite, true},
		{enums.RoleCustomer, OpOrderWrite, false},

		{enums.RoleAdmin, OpUserManage, true},
		{enums.RoleEmployee, OpUserManage, false},

		{enums.RoleAdmin, OpAuditRead, true},
		{enums.RoleSuperAdmin, OpAuditRead, true},
		{enums.RoleEmployee, OpAuditRead, false},
		{enums.RoleCustomer, OpAuditRead, false},
	}

	for _, tc := range cases {
		if got := Allowed(tc.role, tc.op); got != tc.want {
			t.Fatalf("Allowed(%s, %s) = %v, want %v", tc.role, tc.op, got, tc.want)
		}
	}
}

func TestCanManageRole(t *testing.T) {
	for _, target := range enums.AllRoles {
		if !CanManageRole(enums.RoleSuperAdmin, target) {
			t.Fatalf("super_admin should manage %s", target)
		}
	}

	if CanManageRole(enums.RoleAdmin, enums.RoleSuperAdmin) {
		t.Fatal("admin must not manage super_admin accounts")
	}
	if CanManageRole(enums.RoleAdmin, enums.RoleAdmin) {
		t.Fatal("admin must not manage peer admin accounts")
	}
	if !CanManageRole(enums.RoleAdmin, enums.RoleEmployee) {
		t.Fatal("admin should manage employees")
	}
	if !CanManageRole(enums.RoleAdmin, enums.RoleCustomer) {
		t.Fatal("admin should manage customers")
	}

	if CanManageRole(enums.RoleEmployee, enums.RoleCustomer) {
		t.Fatal("employee must not manage anyone")
	}
	if CanManageRole(enums.RoleAdmin, enums.Role("bogus")) {
		t.Fatal("invalid target role must not be manageable")
	}
}

func TestVisibleRolesExcludeSuperAdminsForAdmins(t *testing.T) {
	for _, role := range VisibleRoles(enums.RoleAdmin) {
		if role == enums.RoleSuperAdmin {
			t.Fatal("admin listing must exclude super_admin rows")
		}
	}
	if got := len(VisibleRoles(enums.RoleSuperAdmin)); got != 4 {
		t.Fatalf("super_admin should see all four partitions, got %d", got)
	}
	if VisibleRoles(enums.RoleEmployee) != nil {
		t.Fatal("employee should see no partitions")
	}
}

func TestIsSelf(t *testing.T) {
	id := uuid.New()
	if !IsSelf(id, enums.RoleAdmin, id, enums.RoleAdmin) {
		t.Fatal("same id and role should be self")
	}
	if IsSelf(id, enums.RoleAdmin, id, enums.RoleEmployee) {
		t.Fatal("same id in a different partition is not self")
	}
	if IsSelf(id, enums.RoleAdmin, uuid.New(), enums.RoleAdmin) {
		t.Fatal("different id is not self")
	}
}
