package menu

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cafenowa/cafenowa-backend/internal/audit"
	"github.com/cafenowa/cafenowa-backend/pkg/db"
	"github.com/cafenowa/cafenowa-backend/pkg/db/models"
	"github.com/cafenowa/cafenowa-backend/pkg/enums"
	pkgerrors "github.com/cafenowa/cafenowa-backend/pkg/errors"
	"github.com/cafenowa/cafenowa-backend/pkg/types"
)

const menuTable = "menu_items"

// Service defines menu reads and audited writes.
type Service interface {
	List(ctx context.Context, category string, availableOnly bool) ([]ItemDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ItemDTO, error)
	Create(ctx context.Context, actor types.Actor, meta types.RequestMeta, req CreateItemRequest) (*ItemDTO, error)
	Update(ctx context.Context, actor types.Actor, meta types.RequestMeta, id uuid.UUID, req UpdateItemRequest) (*ItemDTO, error)
	Delete(ctx context.Context, actor types.Actor, meta types.RequestMeta, id uuid.UUID) error
}

type menuRepository interface {
	List(ctx context.Context, category string, availableOnly bool) ([]models.MenuItem, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.MenuItem, error)
	Create(ctx context.Context, item *models.MenuItem) error
	Update(ctx context.Context, item *models.MenuItem) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo  menuRepository
	audit audit.Recorder
}

// ServiceParams bundles the dependencies required to build a menu service.
type ServiceParams struct {
	Repo  menuRepository
	Audit audit.Recorder
}

// NewService constructs a menu service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("menu repository is required")
	}
	if params.Audit == nil {
		return nil, fmt.Errorf("audit recorder is required")
	}
	return &service{repo: params.Repo, audit: params.Audit}, nil
}

func (s *service) List(ctx context.Context, category string, availableOnly bool) ([]ItemDTO, error) {
	items, err := s.repo.List(ctx, category, availableOnly)
	if err != nil {
		return nil, pkgerrors.WrapStore(err, "list menu")
	}
	dtos := make([]ItemDTO, 0, len(items))
	for i := range items {
		dtos = append(dtos, *fromModel(&items[i]))
	}
	return dtos, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ItemDTO, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.readError(err)
	}
	return fromModel(item), nil
}

func (s *service) Create(ctx context.Context, actor types.Actor, meta types.RequestMeta, req CreateItemRequest) (*ItemDTO, error) {
	if req.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}

	item := &models.MenuItem{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(req.Name),
		Category:    strings.TrimSpace(req.Category),
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
		IsAvailable: true,
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}

	if err := s.repo.Create(ctx, item); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "menu item name already in use")
		}
		return nil, pkgerrors.WrapStore(err, "create menu item")
	}

	s.recordAction(ctx, actor, meta, enums.ActionCreate,
		fmt.Sprintf("Added menu item %s", item.Name), item.ID)
	return fromModel(item), nil
}

func (s *service) Update(ctx context.Context, actor types.Actor, meta types.RequestMeta, id uuid.UUID, req UpdateItemRequest) (*ItemDTO, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.readError(err)
	}

	if req.Name != nil {
		item.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		item.Category = strings.TrimSpace(*req.Category)
	}
	if req.Description != nil {
		item.Description = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		item.Price = *req.Price
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}
	item.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, item); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "menu item name already in use")
		}
		return nil, s.readError(err)
	}

	s.recordAction(ctx, actor, meta, enums.ActionUpdate,
		fmt.Sprintf("Updated menu item %s", item.Name), item.ID)
	return fromModel(item), nil
}

func (s *service) Delete(ctx context.Context, actor types.Actor, meta types.RequestMeta, id uuid.UUID) error {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.readError(err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.readError(err)
	}

	s.recordAction(ctx, actor, meta, enums.ActionDelete,
		fmt.Sprintf("Removed menu item %s", item.Name), item.ID)
	return nil
}

func (s *service) readError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
	}
	return pkgerrors.WrapStore(err, "menu item")
}

func (s *service) recordAction(ctx context.Context, actor types.Actor, meta types.RequestMeta, actionType enums.ActionType, action string, itemID uuid.UUID) {
	table := menuTable
	s.audit.Record(ctx, audit.Entry{
		Role:        actor.Role,
		ActorID:     &actor.ID,
		Username:    actor.Username,
		Action:      action,
		ActionType:  actionType,
		TargetTable: &table,
		TargetID:    &itemID,
		IPAddress:   meta.IPAddress,
		UserAgent:   meta.UserAgent,
	})
}
