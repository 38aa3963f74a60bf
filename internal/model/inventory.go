package model

import (
	"time"

	"github.com/shopspring/decimal"

	"go-liquor-inventory/internal/costing"
)

// Inventory is the valuation row of one product. TotalValue is always
// Quantity * AverageCost; it only changes through ApplyPosition.
type Inventory struct {
	ID          uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID   uint            `gorm:"uniqueIndex;not null" json:"product_id"`
	Quantity    int             `gorm:"not null;default:0" json:"quantity"`
	AverageCost decimal.Decimal `gorm:"type:decimal(28,10);not null;default:0" json:"average_cost"`
	TotalValue  decimal.Decimal `gorm:"type:decimal(28,10);not null;default:0" json:"total_value"`
	LastUpdated time.Time       `json:"last_updated"`
	Version     int             `gorm:"not null;default:0" json:"version"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewInventory returns an empty row for productID.
func NewInventory(productID uint, now time.Time) *Inventory {
	return &Inventory{
		ProductID:   productID,
		AverageCost: decimal.Zero,
		TotalValue:  decimal.Zero,
		LastUpdated: now,
	}
}

// Position returns the costing view of the row.
func (i *Inventory) Position() costing.Position {
	return costing.NewPosition(i.Quantity, i.AverageCost)
}

// ApplyPosition copies a costing result onto the row.
func (i *Inventory) ApplyPosition(pos costing.Position, now time.Time) {
	i.Quantity = pos.Quantity
	i.AverageCost = pos.AverageCost
	i.TotalValue = costing.Value(pos.Quantity, pos.AverageCost)
	i.LastUpdated = now
}
