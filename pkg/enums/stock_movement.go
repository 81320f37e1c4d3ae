package enums

import "fmt"

// StockMovement identifies the direction of an inventory transaction.
type StockMovement string

const (
	MovementRestock StockMovement = "restock"
	MovementUse     StockMovement = "use"
)

func (m StockMovement) String() string {
	return string(m)
}

func (m StockMovement) IsValid() bool {
	return m == MovementRestock || m == MovementUse
}

// ParseStockMovement converts raw input into a StockMovement.
func ParseStockMovement(value string) (StockMovement, error) {
	switch StockMovement(value) {
	case MovementRestock:
		return MovementRestock, nil
	case MovementUse:
		return MovementUse, nil
	}
	return "", fmt.Errorf("invalid stock movement %q", value)
}
