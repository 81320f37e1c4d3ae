package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cafenowa/cafenowa-backend/internal/audit"
	"github.com/cafenowa/cafenowa-backend/pkg/db/models"
	"github.com/cafenowa/cafenowa-backend/pkg/enums"
	pkgerrors "github.com/cafenowa/cafenowa-backend/pkg/errors"
	"github.com/cafenowa/cafenowa-backend/pkg/pagination"
	"github.com/cafenowa/cafenowa-backend/pkg/types"
)

const ordersTable = "orders"

// Service defines counter order operations.
type Service interface {
	Create(ctx context.Context, actor types.Actor, meta types.RequestMeta, req CreateOrderRequest) (*OrderDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error)
	List(ctx context.Context, status string, page pagination.Params) (*OrderPage, error)
	UpdateStatus(ctx context.Context, actor types.Actor, meta types.RequestMeta, id uuid.UUID, req UpdateStatusRequest) (*OrderDTO, error)
}

type orderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, status enums.OrderStatus, page pagination.Params) ([]models.Order, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error
}

type service struct {
	repo  orderRepository
	audit audit.Recorder
}

// ServiceParams bundles the dependencies required to build an orders service.
type ServiceParams struct {
	Repo  orderRepository
	Audit audit.Recorder
}

// NewService constructs an orders service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository is required")
	}
	if params.Audit == nil {
		return nil, fmt.Errorf("audit recorder is required")
	}
	return &service{repo: params.Repo, audit: params.Audit}, nil
}

func (s *service) Create(ctx context.Context, actor types.Actor, meta types.RequestMeta, req CreateOrderRequest) (*OrderDTO, error) {
	if len(req.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order needs at least one item")
	}

	total := decimal.Zero
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		if item.UnitPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item price cannot be negative")
		}
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	payload, err := json.Marshal(req.Items)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode line items")
	}

	order := &models.Order{
		ID:           uuid.New(),
		CustomerName: req.CustomerName,
		Status:       enums.OrderPending,
		Total:        total,
		Items:        payload,
		TakenBy:      actor.ID,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, pkgerrors.WrapStore(err, "create order")
	}

	s.recordAction(ctx, actor, meta, enums.ActionCreate,
		fmt.Sprintf("Took order %s", order.ID), order.ID)

	return s.toDTO(order)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.readError(err)
	}
	return s.toDTO(order)
}

func (s *service) List(ctx context.Context, status string, page pagination.Params) (*OrderPage, error) {
	page = pagination.Normalize(page)

	var statusFilter enums.OrderStatus
	if status != "" {
		parsed, err := enums.ParseOrderStatus(status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status").
				WithDetails(map[string]string{"status": status})
		}
		statusFilter = parsed
	}

	rows, total, err := s.repo.List(ctx, statusFilter, page)
	if err != nil {
		return nil, pkgerrors.WrapStore(err, "list orders")
	}

	dtos := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		dto, err := s.toDTO(&rows[i])
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, *dto)
	}
	return &OrderPage{
		Orders: dtos,
		Pagination: types.Pagination{
			CurrentPage:    page.Page,
			TotalRecords:   total,
			TotalPages:     pagination.TotalPages(total, page.Limit),
			RecordsPerPage: page.Limit,
		},
	}, nil
}

func (s *service) UpdateStatus(ctx context.Context, actor types.Actor, meta types.RequestMeta, id uuid.UUID, req UpdateStatusRequest) (*OrderDTO, error) {
	status, err := enums.ParseOrderStatus(req.Status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status").
			WithDetails(map[string]string{"status": req.Status})
	}

	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.readError(err)
	}
	if order.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidOperation, "order is already closed").
			WithDetails(map[string]string{"status": order.Status.String()})
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, s.readError(err)
	}
	order.Status = status

	s.recordAction(ctx, actor, meta, enums.ActionUpdate,
		fmt.Sprintf("Moved order %s to %s", order.ID, status), order.ID)

	return s.toDTO(order)
}

func (s *service) toDTO(order *models.Order) (*OrderDTO, error) {
	dto, err := fromModel(order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode line items")
	}
	return dto, nil
}

func (s *service) readError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return pkgerrors.WrapStore(err, "order")
}

func (s *service) recordAction(ctx context.Context, actor types.Actor, meta types.RequestMeta, actionType enums.ActionType, action string, orderID uuid.UUID) {
	table := ordersTable
	s.audit.Record(ctx, audit.Entry{
		Role:        actor.Role,
		ActorID:     &actor.ID,
		Username:    actor.Username,
		Action:      action,
		ActionType:  actionType,
		TargetTable: &table,
		TargetID:    &orderID,
		IPAddress:   meta.IPAddress,
		UserAgent:   meta.UserAgent,
	})
}
