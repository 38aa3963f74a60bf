// Package costing implements weighted-average-cost inventory valuation.
//
// All arithmetic is decimal. The only rounding applied is to CostScale when an
// average cost is derived by division, which is the scale the average cost is
// persisted at; totals are always recomputed as quantity * average cost.
package costing

import (
	"github.com/shopspring/decimal"

	"go-liquor-inventory/internal/apperr"
)

// CostScale is the number of fractional digits kept for an average cost.
const CostScale int32 = 10

// Position is the valuation state of one product's stock.
type Position struct {
	Quantity    int
	AverageCost decimal.Decimal
	TotalValue  decimal.Decimal
}

// NewPosition builds a Position with TotalValue derived from quantity and cost.
func NewPosition(quantity int, averageCost decimal.Decimal) Position {
	return Position{
		Quantity:    quantity,
		AverageCost: averageCost,
		TotalValue:  Value(quantity, averageCost),
	}
}

// Value is quantity * averageCost.
func Value(quantity int, averageCost decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(int64(quantity)).Mul(averageCost)
}

// LineTotal is quantity * unitPrice for an order line.
func LineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(int64(quantity)).Mul(unitPrice)
}

// ValidateReceipt checks the inputs of a stock receipt.
func ValidateReceipt(quantity int, unitPrice decimal.Decimal) error {
	if quantity <= 0 {
		return apperr.Validation("quantity must be a positive integer, got %d", quantity)
	}
	if unitPrice.IsNegative() {
		return apperr.Validation("unit price must not be negative, got %s", unitPrice.String())
	}
	return nil
}

// WeightedAverage blends q units at price p into existingQty units at existingAvg.
//
//	newAvg = (existingQty*existingAvg + q*p) / (existingQty + q)
//
// With no existing stock the new average is p.
func WeightedAverage(existingQty int, existingAvg decimal.Decimal, q int, p decimal.Decimal) (decimal.Decimal, error) {
	if err := ValidateReceipt(q, p); err != nil {
		return decimal.Zero, err
	}
	if existingQty < 0 {
		return decimal.Zero, apperr.Validation("existing quantity must not be negative, got %d", existingQty)
	}
	if existingQty == 0 {
		return p, nil
	}
	existingValue := Value(existingQty, existingAvg)
	incomingValue := LineTotal(q, p)
	total := decimal.NewFromInt(int64(existingQty + q))
	return existingValue.Add(incomingValue).Div(total).Round(CostScale), nil
}

// Receive returns the position after receiving q units at unit price p.
func (pos Position) Receive(q int, p decimal.Decimal) (Position, error) {
	avg, err := WeightedAverage(pos.Quantity, pos.AverageCost, q, p)
	if err != nil {
		return pos, err
	}
	return NewPosition(pos.Quantity+q, avg), nil
}

// Adjust applies a signed correction. A positive delta with a unit cost is
// blended like a receipt; without a cost the average is kept. A negative
// delta keeps the average and may not take the quantity below zero.
func (pos Position) Adjust(delta int, unitCost *decimal.Decimal) (Position, error) {
	switch {
	case delta == 0:
		return pos, apperr.Validation("adjustment quantity must not be zero")
	case delta > 0 && unitCost != nil:
		return pos.Receive(delta, *unitCost)
	case delta > 0:
		return NewPosition(pos.Quantity+delta, pos.AverageCost), nil
	}
	if unitCost != nil {
		return pos, apperr.Validation("unit cost only applies to positive adjustments")
	}
	if pos.Quantity+delta < 0 {
		return pos, apperr.Validation("adjustment of %d exceeds on-hand quantity %d", delta, pos.Quantity)
	}
	return NewPosition(pos.Quantity+delta, pos.AverageCost), nil
}

// Consistent reports whether TotalValue equals Quantity * AverageCost.
func (pos Position) Consistent() bool {
	return pos.TotalValue.Equal(Value(pos.Quantity, pos.AverageCost))
}
