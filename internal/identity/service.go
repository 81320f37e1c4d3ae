package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cafenowa/cafenowa-backend/internal/audit"
	"github.com/cafenowa/cafenowa-backend/pkg/authz"
	"github.com/cafenowa/cafenowa-backend/pkg/config"
	"github.com/cafenowa/cafenowa-backend/pkg/db"
	"github.com/cafenowa/cafenowa-backend/pkg/enums"
	pkgerrors "github.com/cafenowa/cafenowa-backend/pkg/errors"
	"github.com/cafenowa/cafenowa-backend/pkg/pagination"
	"github.com/cafenowa/cafenowa-backend/pkg/security"
	"github.com/cafenowa/cafenowa-backend/pkg/types"
)

const usersTable = "users"

// Service defines account management as exposed to the users controller.
type Service interface {
	ListUsers(ctx context.Context, actor types.Actor, meta types.RequestMeta, roleFilter string, search string, page pagination.Params) (*UserPage, error)
	CreateUser(ctx context.Context, actor types.Actor, meta types.RequestMeta, req CreateUserRequest) (*UserDTO, error)
	UpdateUser(ctx context.Context, actor types.Actor, meta types.RequestMeta, req UpdateUserRequest) (*UserDTO, error)
	DeleteUser(ctx context.Context, actor types.Actor, meta types.RequestMeta, req DeleteUserRequest) error
}

type identityRepository interface {
	FindByID(ctx context.Context, role enums.Role, id uuid.UUID) (*Record, error)
	Create(ctx context.Context, role enums.Role, params CreateParams) (*Record, error)
	Update(ctx context.Context, role enums.Role, id uuid.UUID, params UpdateParams) error
	SetActive(ctx context.Context, role enums.Role, id uuid.UUID, active bool) error
	Delete(ctx context.Context, role enums.Role, id uuid.UUID) error
	List(ctx context.Context, roles []enums.Role, search string, page pagination.Params) ([]Record, int64, error)
}

type service struct {
	repo     identityRepository
	audit    audit.Recorder
	security config.SecurityConfig
}

// ServiceParams bundles the dependencies required to build an identity service.
type ServiceParams struct {
	Repo     identityRepository
	Audit    audit.Recorder
	Security config.SecurityConfig
}

// NewService constructs an account management service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("identity repository is required")
	}
	if params.Audit == nil {
		return nil, fmt.Errorf("audit recorder is required")
	}
	return &service{
		repo:     params.Repo,
		audit:    params.Audit,
		security: params.Security,
	}, nil
}

func (s *service) ListUsers(ctx context.Context, actor types.Actor, meta types.RequestMeta, roleFilter, search string, page pagination.Params) (*UserPage, error) {
	page = pagination.Normalize(page)

	visible := authz.VisibleRoles(actor.Role)
	if len(visible) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role may not list accounts")
	}

	roles := visible
	if roleFilter != "" {
		role, err := enums.ParseRole(roleFilter)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid user_type").
				WithDetails(map[string]string{"user_type": roleFilter})
		}
		if !containsRole(visible, role) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role may not list this partition")
		}
		roles = []enums.Role{role}
	}

	records, total, err := s.repo.List(ctx, roles, search, page)
	if err != nil {
		return nil, pkgerrors.WrapStore(err, "list accounts")
	}

	s.recordAction(ctx, actor, meta, enums.ActionView, "Viewed user list", nil)

	users := make([]UserDTO, 0, len(records))
	for i := range records {
		users = append(users, *FromRecord(&records[i]))
	}
	return &UserPage{
		Users: users,
		Pagination: types.Pagination{
			CurrentPage:    page.Page,
			TotalRecords:   total,
			TotalPages:     pagination.TotalPages(total, page.Limit),
			RecordsPerPage: page.Limit,
		},
	}, nil
}

func (s *service) CreateUser(ctx context.Context, actor types.Actor, meta types.RequestMeta, req CreateUserRequest) (*UserDTO, error) {
	target, err := s.manageableRole(actor, req.UserType)
	if err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(req.Password, s.security)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	record, err := s.repo.Create(ctx, target, CreateParams{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		IsActive:     true,
		Position:     req.Position,
		Phone:        req.Phone,
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "username or email already in use")
		}
		return nil, pkgerrors.WrapStore(err, "create account")
	}

	s.recordAction(ctx, actor, meta, enums.ActionCreate,
		fmt.Sprintf("Created %s account %s", target, record.Username), &record.ID)

	return FromRecord(record), nil
}

func (s *service) UpdateUser(ctx context.Context, actor types.Actor, meta types.RequestMeta, req UpdateUserRequest) (*UserDTO, error) {
	target, err := s.manageableRole(actor, req.UserType)
	if err != nil {
		return nil, err
	}

	if req.IsActive != nil && !*req.IsActive &&
		authz.IsSelf(actor.ID, actor.Role, req.UserID, target) {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidOperation, "cannot deactivate your own account")
	}

	params := UpdateParams{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Position: req.Position,
		Phone:    req.Phone,
	}
	if req.Password != nil && strings.TrimSpace(*req.Password) != "" {
		hash, err := security.HashPassword(*req.Password, s.security)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		params.PasswordHash = &hash
	}

	if err := s.repo.Update(ctx, target, req.UserID, params); err != nil {
		return nil, s.mutationError(err, "update account")
	}
	if req.IsActive != nil {
		if err := s.repo.SetActive(ctx, target, req.UserID, *req.IsActive); err != nil {
			return nil, s.mutationError(err, "update account status")
		}
	}

	record, err := s.repo.FindByID(ctx, target, req.UserID)
	if err != nil {
		return nil, s.mutationError(err, "reload account")
	}

	s.recordAction(ctx, actor, meta, enums.ActionUpdate,
		fmt.Sprintf("Updated %s account %s", target, record.Username), &record.ID)

	return FromRecord(record), nil
}

func (s *service) DeleteUser(ctx context.Context, actor types.Actor, meta types.RequestMeta, req DeleteUserRequest) error {
	target, err := s.manageableRole(actor, req.UserType)
	if err != nil {
		return err
	}

	if authz.IsSelf(actor.ID, actor.Role, req.UserID, target) {
		return pkgerrors.New(pkgerrors.CodeInvalidOperation, "cannot delete your own account")
	}

	record, err := s.repo.FindByID(ctx, target, req.UserID)
	if err != nil {
		return s.mutationError(err, "load account")
	}

	if req.Permanent {
		if err := s.repo.Delete(ctx, target, req.UserID); err != nil {
			return s.mutationError(err, "delete account")
		}
		s.recordAction(ctx, actor, meta, enums.ActionDelete,
			fmt.Sprintf("Deleted %s account %s", target, record.Username), &record.ID)
		return nil
	}

	if err := s.repo.SetActive(ctx, target, req.UserID, false); err != nil {
		return s.mutationError(err, "deactivate account")
	}
	s.recordAction(ctx, actor, meta, enums.ActionUpdate,
		fmt.Sprintf("Deactivated %s account %s", target, record.Username), &record.ID)
	return nil
}

func (s *service) manageableRole(actor types.Actor, rawRole string) (enums.Role, error) {
	target, err := enums.ParseRole(rawRole)
	if err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid user_type").
			WithDetails(map[string]string{"user_type": rawRole})
	}
	if !authz.CanManageRole(actor.Role, target) {
		return "", pkgerrors.New(pkgerrors.CodeForbidden, "role may not manage this account tier")
	}
	return target, nil
}

func (s *service) mutationError(err error, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
	}
	if db.IsUniqueViolation(err) {
		return pkgerrors.New(pkgerrors.CodeConflict, "username or email already in use")
	}
	return pkgerrors.WrapStore(err, action)
}

func (s *service) recordAction(ctx context.Context, actor types.Actor, meta types.RequestMeta, actionType enums.ActionType, action string, targetID *uuid.UUID) {
	table := usersTable
	s.audit.Record(ctx, audit.Entry{
		Role:        actor.Role,
		ActorID:     &actor.ID,
		Username:    actor.Username,
		Action:      action,
		ActionType:  actionType,
		TargetTable: &table,
		TargetID:    targetID,
		IPAddress:   meta.IPAddress,
		UserAgent:   meta.UserAgent,
	})
}

func containsRole(roles []enums.Role, role enums.Role) bool {
	for _, candidate := range roles {
		if candidate == role {
			return true
		}
	}
	return false
}
