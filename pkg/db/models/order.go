package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cafenowa/cafenowa-backend/pkg/enums"
)

// Order is a counter order taken by an employee. Line items are stored
// as a JSON snapshot of the menu at order time so later menu edits do
// not rewrite order history.
type Order struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	CustomerName *string           `gorm:"column:customer_name;type:text"`
	Status       enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending';index"`
	Total        decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null"`
	Items        json.RawMessage   `gorm:"column:items;type:jsonb;not null"`
	TakenBy      uuid.UUID         `gorm:"column:taken_by;type:uuid;not null"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (Order) TableName() string { return "orders" }
