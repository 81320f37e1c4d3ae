package orders

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cafenowa/cafenowa-backend/pkg/db/models"
	"github.com/cafenowa/cafenowa-backend/pkg/enums"
	"github.com/cafenowa/cafenowa-backend/pkg/types"
)

// LineItem is one ordered menu item, snapshotted at order time so later
// menu edits never rewrite order history.
type LineItem struct {
	MenuItemID uuid.UUID       `json:"menu_item_id" validate:"required"`
	Name       string          `json:"name" validate:"required"`
	Quantity   int             `json:"quantity" validate:"required,gt=0"`
	UnitPrice  decimal.Decimal `json:"unit_price" validate:"required"`
}

// OrderDTO is the transport shape of one order.
type OrderDTO struct {
	ID           uuid.UUID         `json:"id"`
	CustomerName *string           `json:"customer_name,omitempty"`
	Status       enums.OrderStatus `json:"status"`
	Total        decimal.Decimal   `json:"total"`
	Items        []LineItem        `json:"items"`
	TakenBy      uuid.UUID         `json:"taken_by"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// OrderPage is one page of orders plus its page window.
type OrderPage struct {
	Orders     []OrderDTO       `json:"orders"`
	Pagination types.Pagination `json:"pagination"`
}

// CreateOrderRequest is the payload for taking an order at the counter.
type CreateOrderRequest struct {
	CustomerName *string    `json:"customer_name,omitempty"`
	Items        []LineItem `json:"items" validate:"required,min=1,dive"`
}

// UpdateStatusRequest moves an order through its lifecycle.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func fromModel(m *models.Order) (*OrderDTO, error) {
	if m == nil {
		return nil, nil
	}
	var items []LineItem
	if len(m.Items) > 0 {
		if err := json.Unmarshal(m.Items, &items); err != nil {
			return nil, err
		}
	}
	return &OrderDTO{
		ID:           m.ID,
		CustomerName: m.CustomerName,
		Status:       m.Status,
		Total:        m.Total,
		Items:        items,
		TakenBy:      m.TakenBy,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}, nil
}
