package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"go-liquor-inventory/internal/apperr"
)

type ImportOrderStatus string

const (
	ImportPending   ImportOrderStatus = "Pending"
	ImportApproved  ImportOrderStatus = "Approved"
	ImportCompleted ImportOrderStatus = "Completed"
	ImportCancelled ImportOrderStatus = "Cancelled"
)

func (s ImportOrderStatus) String() string {
	return string(s)
}

// IsValid checks if the status is one of the known values.
func (s ImportOrderStatus) IsValid() bool {
	switch s {
	case ImportPending, ImportApproved, ImportCompleted, ImportCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s ImportOrderStatus) IsTerminal() bool {
	return s == ImportCompleted || s == ImportCancelled
}

// CanTransitionTo encodes Pending -> Approved -> Completed and
// Pending|Approved -> Cancelled.
func (s ImportOrderStatus) CanTransitionTo(target ImportOrderStatus) bool {
	switch s {
	case ImportPending:
		return target == ImportApproved || target == ImportCancelled
	case ImportApproved:
		return target == ImportCompleted || target == ImportCancelled
	}
	return false
}

type DetailStatus string

const (
	DetailPending   DetailStatus = "Pending"
	DetailCompleted DetailStatus = "Completed"
	DetailCancelled DetailStatus = "Cancelled"
)

type ImportOrder struct {
	BaseModel
	SupplierID   uint              `gorm:"index;not null" json:"supplier_id"`
	ManagerID    uuid.UUID         `gorm:"type:varchar(36);index;not null" json:"manager_id"`
	OrderDate    time.Time         `gorm:"not null" json:"order_date"`
	ImportDate   *time.Time        `json:"import_date,omitempty"`
	TotalAmount  decimal.Decimal   `gorm:"type:decimal(20,4);not null;default:0" json:"total_amount"`
	Status       ImportOrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Notes        string            `gorm:"type:text" json:"notes"`
	CancelReason string            `gorm:"type:text" json:"cancel_reason,omitempty"`
	ApprovedAt   *time.Time        `json:"approved_at,omitempty"`
	ApprovedBy   string            `gorm:"type:varchar(64)" json:"approved_by,omitempty"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
	CancelledAt  *time.Time        `json:"cancelled_at,omitempty"`
	Version      int               `gorm:"not null;default:0" json:"version"`

	// Loaded explicitly by the repository, never lazily.
	Details []ImportOrderDetail `gorm:"foreignKey:ImportOrderID" json:"import_order_details"`
}

// CheckTransition reports why the order cannot move to target, if it cannot.
func (o *ImportOrder) CheckTransition(target ImportOrderStatus) error {
	if !o.Status.CanTransitionTo(target) {
		return apperr.InvalidTransition(orderRef(o.ID), o.Status, target)
	}
	return nil
}

// Transition moves the order to target or reports why it cannot.
func (o *ImportOrder) Transition(target ImportOrderStatus) error {
	if err := o.CheckTransition(target); err != nil {
		return err
	}
	o.Status = target
	return nil
}

// RecalculateTotal sets TotalAmount to the sum of the line totals.
func (o *ImportOrder) RecalculateTotal() {
	total := decimal.Zero
	for i := range o.Details {
		o.Details[i].RecalculateLineTotal()
		total = total.Add(o.Details[i].LineTotal)
	}
	o.TotalAmount = total
}

type ImportOrderDetail struct {
	ID            uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	ImportOrderID uint            `gorm:"index;not null" json:"import_order_id"`
	ProductID     uint            `gorm:"index;not null" json:"product_id"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	LineTotal     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"line_total"`
	Status        DetailStatus    `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// RecalculateLineTotal sets LineTotal to Quantity * UnitPrice.
func (d *ImportOrderDetail) RecalculateLineTotal() {
	d.LineTotal = decimal.NewFromInt(int64(d.Quantity)).Mul(d.UnitPrice)
}

// Validate checks the line before any stock is touched.
func (d *ImportOrderDetail) Validate() error {
	if d.ProductID == 0 {
		return apperr.Validation("import order line %d has no product", d.ID)
	}
	if d.Quantity <= 0 {
		return apperr.Validation("import order line %d: quantity must be positive, got %d", d.ID, d.Quantity)
	}
	if d.UnitPrice.IsNegative() {
		return apperr.Validation("import order line %d: unit price must not be negative", d.ID)
	}
	return nil
}

// ImportOrderFilter narrows order listings. Zero values match everything.
type ImportOrderFilter struct {
	Status     ImportOrderStatus
	SupplierID uint
}

// Matches reports whether o passes the filter.
func (f ImportOrderFilter) Matches(o *ImportOrder) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if f.SupplierID != 0 && o.SupplierID != f.SupplierID {
		return false
	}
	return true
}

func orderRef(id uint) string {
	return fmt.Sprintf("import order %d", id)
}
