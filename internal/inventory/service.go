package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cafenowa/cafenowa-backend/internal/audit"
	"github.com/cafenowa/cafenowa-backend/pkg/db"
	"github.com/cafenowa/cafenowa-backend/pkg/db/models"
	"github.com/cafenowa/cafenowa-backend/pkg/enums"
	pkgerrors "github.com/cafenowa/cafenowa-backend/pkg/errors"
	"github.com/cafenowa/cafenowa-backend/pkg/pagination"
	"github.com/cafenowa/cafenowa-backend/pkg/types"
)

const inventoryTable = "inventory_items"

// Service defines inventory reads and the transactional stock movements.
type Service interface {
	List(ctx context.Context, activeOnly bool) ([]ItemDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ItemDTO, error)
	LowStock(ctx context.Context) ([]ItemDTO, error)
	Transactions(ctx context.Context, itemID *uuid.UUID, page pagination.Params) (*TransactionPage, error)
	CreateItem(ctx context.Context, actor types.Actor, meta types.RequestMeta, req CreateItemRequest) (*ItemDTO, error)
	UpdateItem(ctx context.Context, actor types.Actor, meta types.RequestMeta, id uuid.UUID, req UpdateItemRequest) (*ItemDTO, error)
	Restock(ctx context.Context, actor types.Actor, meta types.RequestMeta, req MovementRequest) (*ItemDTO, error)
	Use(ctx context.Context, actor types.Actor, meta types.RequestMeta, req MovementRequest) (*ItemDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo  *Repository
	tx    txRunner
	audit audit.Recorder
}

// ServiceParams bundles the dependencies required to build an inventory service.
type ServiceParams struct {
	Repo  *Repository
	Tx    txRunner
	Audit audit.Recorder
}

// NewService constructs an inventory service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("inventory repository is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.Audit == nil {
		return nil, fmt.Errorf("audit recorder is required")
	}
	return &service{repo: params.Repo, tx: params.Tx, audit: params.Audit}, nil
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]ItemDTO, error) {
	items, err := s.repo.ListItems(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.WrapStore(err, "list inventory")
	}
	return toItemDTOs(items), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ItemDTO, error) {
	item, err := s.repo.FindItemByID(ctx, id)
	if err != nil {
		return nil, s.readError(err)
	}
	return itemFromModel(item), nil
}

func (s *service) LowStock(ctx context.Context) ([]ItemDTO, error) {
	items, err := s.repo.LowStock(ctx)
	if err != nil {
		return nil, pkgerrors.WrapStore(err, "low stock report")
	}
	return toItemDTOs(items), nil
}

func (s *service) Transactions(ctx context.Context, itemID *uuid.UUID, page pagination.Params) (*TransactionPage, error) {
	page = pagination.Normalize(page)
	txns, total, err := s.repo.ListTransactions(ctx, itemID, page)
	if err != nil {
		return nil, pkgerrors.WrapStore(err, "list movements")
	}

	dtos := make([]TransactionDTO, 0, len(txns))
	for i := range txns {
		dtos = append(dtos, *txnFromModel(&txns[i]))
	}
	return &TransactionPage{
		Transactions: dtos,
		Pagination: types.Pagination{
			CurrentPage:    page.Page,
			TotalRecords:   total,
			TotalPages:     pagination.TotalPages(total, page.Limit),
			RecordsPerPage: page.Limit,
		},
	}, nil
}

func (s *service) CreateItem(ctx context.Context, actor types.Actor, meta types.RequestMeta, req CreateItemRequest) (*ItemDTO, error) {
	if req.CurrentStock < 0 || req.MinimumStock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock levels cannot be negative")
	}
	if req.UnitPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}

	item := &models.InventoryItem{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(req.Name),
		Category:     strings.TrimSpace(req.Category),
		Unit:         strings.TrimSpace(req.Unit),
		CurrentStock: req.CurrentStock,
		MinimumStock: req.MinimumStock,
		UnitPrice:    req.UnitPrice,
		Supplier:     req.Supplier,
		IsActive:     true,
	}

	if err := s.repo.CreateItem(ctx, item); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "inventory item name already in use")
		}
		return nil, pkgerrors.WrapStore(err, "create inventory item")
	}

	s.recordAction(ctx, actor, meta, enums.ActionCreate,
		fmt.Sprintf("Added inventory item %s", item.Name), item.ID)
	return itemFromModel(item), nil
}

func (s *service) UpdateItem(ctx context.Context, actor types.Actor, meta types.RequestMeta, id uuid.UUID, req UpdateItemRequest) (*ItemDTO, error) {
	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		updates["category"] = strings.TrimSpace(*req.Category)
	}
	if req.Unit != nil {
		updates["unit"] = strings.TrimSpace(*req.Unit)
	}
	if req.MinimumStock != nil {
		if *req.MinimumStock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum stock cannot be negative")
		}
		updates["minimum_stock"] = *req.MinimumStock
	}
	if req.UnitPrice != nil {
		if req.UnitPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
		}
		updates["unit_price"] = *req.UnitPrice
	}
	if req.Supplier != nil {
		updates["supplier"] = *req.Supplier
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return s.Get(ctx, id)
	}

	if err := s.repo.UpdateItemFields(ctx, id, updates); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "inventory item name already in use")
		}
		return nil, s.readError(err)
	}

	item, err := s.repo.FindItemByID(ctx, id)
	if err != nil {
		return nil, s.readError(err)
	}

	s.recordAction(ctx, actor, meta, enums.ActionUpdate,
		fmt.Sprintf("Updated inventory item %s", item.Name), item.ID)
	return itemFromModel(item), nil
}

// Restock raises stock inside one transaction: locked read, stock
// write, movement row. Either all three commit or none do.
func (s *service) Restock(ctx context.Context, actor types.Actor, meta types.RequestMeta, req MovementRequest) (*ItemDTO, error) {
	return s.move(ctx, actor, meta, req, enums.MovementRestock)
}

// Use lowers stock under the same transactional discipline. Usage that
// would drive stock negative is rejected and nothing is written.
func (s *service) Use(ctx context.Context, actor types.Actor, meta types.RequestMeta, req MovementRequest) (*ItemDTO, error) {
	return s.move(ctx, actor, meta, req, enums.MovementUse)
}

func (s *service) move(ctx context.Context, actor types.Actor, meta types.RequestMeta, req MovementRequest, movement enums.StockMovement) (*ItemDTO, error) {
	if req.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	var result *models.InventoryItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		item, err := repo.FindItemForUpdate(ctx, req.ItemID)
		if err != nil {
			return err
		}

		unitPrice := item.UnitPrice
		if req.UnitPrice != nil {
			if req.UnitPrice.IsNegative() {
				return pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
			}
			unitPrice = *req.UnitPrice
		}

		now := time.Now().UTC()
		updates := map[string]any{}
		switch movement {
		case enums.MovementRestock:
			item.CurrentStock += req.Quantity
			item.LastRestockedAt = &now
			updates["current_stock"] = item.CurrentStock
			updates["last_restocked_at"] = now
		case enums.MovementUse:
			if item.CurrentStock < req.Quantity {
				return pkgerrors.New(pkgerrors.CodeInvalidOperation, "insufficient stock").
					WithDetails(map[string]int{
						"current_stock": item.CurrentStock,
						"requested":     req.Quantity,
					})
			}
			item.CurrentStock -= req.Quantity
			updates["current_stock"] = item.CurrentStock
		}

		if err := repo.UpdateItemFields(ctx, item.ID, updates); err != nil {
			return err
		}

		total := unitPrice.Mul(decimal.NewFromInt(int64(req.Quantity)))
		if err := repo.InsertTransaction(ctx, &models.InventoryTransaction{
			ID:          uuid.New(),
			ItemID:      item.ID,
			Movement:    movement,
			Quantity:    req.Quantity,
			UnitPrice:   unitPrice,
			TotalAmount: total,
			Note:        req.Note,
			RecordedBy:  actor.ID,
		}); err != nil {
			return err
		}

		result = item
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, s.readError(err)
	}

	actionType := enums.ActionRestock
	verb := "Restocked"
	if movement == enums.MovementUse {
		actionType = enums.ActionUse
		verb = "Used"
	}
	s.recordAction(ctx, actor, meta, actionType,
		fmt.Sprintf("%s %d %s of %s", verb, req.Quantity, result.Unit, result.Name), result.ID)

	return itemFromModel(result), nil
}

func (s *service) readError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
	}
	return pkgerrors.WrapStore(err, "inventory item")
}

func (s *service) recordAction(ctx context.Context, actor types.Actor, meta types.RequestMeta, actionType enums.ActionType, action string, itemID uuid.UUID) {
	table := inventoryTable
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

func toItemDTOs(items []models.InventoryItem) []ItemDTO {
	dtos := make([]ItemDTO, 0, len(items))
	for i := range items {
		dtos = append(dtos, *itemFromModel(&items[i]))
	}
	return dtos
}
