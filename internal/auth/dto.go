package auth

import (
	"github.com/cafenowa/cafenowa-backend/pkg/enums"
)

// Portal names which login surface the credentials came from. Each
// portal searches a fixed set of partitions in priority order.
type Portal string

const (
	PortalAdmin Portal = "admin"
	PortalUser  Portal = "user"
	PortalAuto  Portal = "auto"
)

// partitionsFor maps a portal to the partitions it may authenticate
// against, highest privilege first. The order is part of the contract:
// when one email exists in several partitions the higher tier wins.
func partitionsFor(portal Portal) []enums.Role {
	switch portal {
	case PortalAdmin:
		return []enums.Role{enums.RoleSuperAdmin, enums.RoleAdmin}
	case PortalUser:
		return []enums.Role{enums.RoleEmployee, enums.RoleCustomer}
	case PortalAuto:
		return []enums.Role{enums.RoleSuperAdmin, enums.RoleAdmin, enums.RoleEmployee, enums.RoleCustomer}
	}
	return nil
}

// LoginRequest is the login payload. UserType defaults to auto.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	UserType string `json:"user_type" validate:"omitempty,oneof=admin user auto"`
}

// LoginResponse is returned on a successful login. The token also
// travels as an HttpOnly cookie; clients that cannot use cookies send
// it as a bearer token.
type LoginResponse struct {
	Token       string     `json:"token"`
	UserType    enums.Role `json:"user_type"`
	Username    string     `json:"username"`
	FullName    string     `json:"full_name"`
	RedirectURL string     `json:"redirect_url"`
}

// redirectFor maps the authenticated role to its landing page.
func redirectFor(role enums.Role) string {
	switch role {
	case enums.RoleSuperAdmin, enums.RoleAdmin:
		return "/admin/dashboard"
	case enums.RoleEmployee:
		return "/employee/dashboard"
	case enums.RoleCustomer:
		return "/customer/home"
	}
	return "/"
}
