package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cafenowa/cafenowa-backend/pkg/enums"
)

// InventoryItem tracks a stocked ingredient or supply.
type InventoryItem struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name            string          `gorm:"column:name;type:text;not null;uniqueIndex"`
	Category        string          `gorm:"column:category;type:text;not null;index"`
	Unit            string          `gorm:"column:unit;type:text;not null"`
	CurrentStock    int             `gorm:"column:current_stock;not null;default:0"`
	MinimumStock    int             `gorm:"column:minimum_stock;not null;default:0"`
	UnitPrice       decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null"`
	Supplier        *string         `gorm:"column:supplier;type:text"`
	LastRestockedAt *time.Time      `gorm:"column:last_restocked_at"`
	IsActive        bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (InventoryItem) TableName() string { return "inventory_items" }

// InventoryTransaction is the append-only movement ledger. A row is
// written in the same database transaction as the stock mutation it
// describes.
type InventoryTransaction struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	ItemID      uuid.UUID           `gorm:"column:item_id;type:uuid;not null;index"`
	Movement    enums.StockMovement `gorm:"column:movement;type:text;not null"`
	Quantity    int                 `gorm:"column:quantity;not null"`
	UnitPrice   decimal.Decimal     `gorm:"column:unit_price;type:numeric(10,2);not null"`
	TotalAmount decimal.Decimal     `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Note        *string             `gorm:"column:note;type:text"`
	RecordedBy  uuid.UUID           `gorm:"column:recorded_by;type:uuid;not null"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime;index"`
}

func (InventoryTransaction) TableName() string { return "inventory_transactions" }
