package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cafenowa/cafenowa-backend/pkg/db/models"
	"github.com/cafenowa/cafenowa-backend/pkg/enums"
	"github.com/cafenowa/cafenowa-backend/pkg/types"
)

// StockStatus is derived from current versus minimum stock.
type StockStatus string

const (
	StockOK  StockStatus = "ok"
	StockLow StockStatus = "low"
	StockOut StockStatus = "out_of_stock"
)

// ItemDTO is the transport shape of one inventory item.
type ItemDTO struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Category        string          `json:"category"`
	Unit            string          `json:"unit"`
	CurrentStock    int             `json:"current_stock"`
	MinimumStock    int             `json:"minimum_stock"`
	StockStatus     StockStatus     `json:"stock_status"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Supplier        *string         `json:"supplier,omitempty"`
	LastRestockedAt *time.Time      `json:"last_restocked_at,omitempty"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// TransactionDTO is the transport shape of one movement row.
type TransactionDTO struct {
	ID          uuid.UUID           `json:"id"`
	ItemID      uuid.UUID           `json:"item_id"`
	Movement    enums.StockMovement `json:"movement"`
	Quantity    int                 `json:"quantity"`
	UnitPrice   decimal.Decimal     `json:"unit_price"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
	Note        *string             `json:"note,omitempty"`
	RecordedBy  uuid.UUID           `json:"recorded_by"`
	CreatedAt   time.Time           `json:"created_at"`
}

// TransactionPage is one page of movement rows plus its page window.
type TransactionPage struct {
	Transactions []TransactionDTO `json:"transactions"`
	Pagination   types.Pagination `json:"pagination"`
}

// CreateItemRequest is the payload for adding an inventory item.
type CreateItemRequest struct {
	Name         string          `json:"name" validate:"required"`
	Category     string          `json:"category" validate:"required"`
	Unit         string          `json:"unit" validate:"required"`
	CurrentStock int             `json:"current_stock" validate:"gte=0"`
	MinimumStock int             `json:"minimum_stock" validate:"gte=0"`
	UnitPrice    decimal.Decimal `json:"unit_price" validate:"required"`
	Supplier     *string         `json:"supplier,omitempty"`
}

// UpdateItemRequest is a partial item update. Stock is deliberately
// absent: stock only moves through restock/use.
type UpdateItemRequest struct {
	Name         *string          `json:"name,omitempty"`
	Category     *string          `json:"category,omitempty"`
	Unit         *string          `json:"unit,omitempty"`
	MinimumStock *int             `json:"minimum_stock,omitempty" validate:"omitempty,gte=0"`
	UnitPrice    *decimal.Decimal `json:"unit_price,omitempty"`
	Supplier     *string          `json:"supplier,omitempty"`
	IsActive     *bool            `json:"is_active,omitempty"`
}

// MovementRequest is the payload for restock and use.
type MovementRequest struct {
	ItemID    uuid.UUID        `json:"item_id" validate:"required"`
	Quantity  int              `json:"quantity" validate:"required,gt=0"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	Note      *string          `json:"note,omitempty"`
}

func statusFor(current, minimum int) StockStatus {
	switch {
	case current <= 0:
		return StockOut
	case current <= minimum:
		return StockLow
	default:
		return StockOK
	}
}

func itemFromModel(m *models.InventoryItem) *ItemDTO {
	if m == nil {
		return nil
	}
	return &ItemDTO{
		ID:              m.ID,
		Name:            m.Name,
		Category:        m.Category,
		Unit:            m.Unit,
		CurrentStock:    m.CurrentStock,
		MinimumStock:    m.MinimumStock,
		StockStatus:     statusFor(m.CurrentStock, m.MinimumStock),
		UnitPrice:       m.UnitPrice,
		Supplier:        m.Supplier,
		LastRestockedAt: m.LastRestockedAt,
		IsActive:        m.IsActive,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func txnFromModel(m *models.InventoryTransaction) *TransactionDTO {
	if m == nil {
		return nil
	}
	return &TransactionDTO{
		ID:          m.ID,
		ItemID:      m.ItemID,
		Movement:    m.Movement,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		TotalAmount: m.TotalAmount,
		Note:        m.Note,
		RecordedBy:  m.RecordedBy,
		CreatedAt:   m.CreatedAt,
	}
}
