package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type InventoryTransactionType string

const (
	TxImport     InventoryTransactionType = "Import"
	TxExport     InventoryTransactionType = "Export"
	TxAdjustment InventoryTransactionType = "Adjustment"
	TxTransfer   InventoryTransactionType = "Transfer"
	TxReturn     InventoryTransactionType = "Return"
)

// NumberPrefix is the transaction-number prefix for each movement type.
func (t InventoryTransactionType) NumberPrefix() string {
	switch t {
	case TxImport:
		return "IMP"
	case TxExport:
		return "EXP"
	case TxAdjustment:
		return "ADJ"
	case TxTransfer:
		return "TRF"
	case TxReturn:
		return "RET"
	}
	return "INV"
}

type ReferenceType string

const (
	RefImportOrder ReferenceType = "ImportOrder"
	RefOrder       ReferenceType = "Order"
	RefManual      ReferenceType = "Manual"
)

type InventoryTransactionStatus string

const (
	TxStatusPending   InventoryTransactionStatus = "Pending"
	TxStatusCompleted InventoryTransactionStatus = "Completed"
	TxStatusCancelled InventoryTransactionStatus = "Cancelled"
)

// InventoryTransaction is one immutable ledger row. Quantity is signed:
// positive moves stock in, negative moves it out.
type InventoryTransaction struct {
	ID                uint                       `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionNumber string                     `gorm:"type:varchar(40);uniqueIndex;not null" json:"transaction_number"`
	ProductID         uint                       `gorm:"index;not null" json:"product_id"`
	Type              InventoryTransactionType   `gorm:"type:varchar(20);not null;index" json:"type"`
	Quantity          int                        `gorm:"not null" json:"quantity"`
	UnitCost          decimal.Decimal            `gorm:"type:decimal(28,10);not null;default:0" json:"unit_cost"`
	ReferenceType     ReferenceType              `gorm:"type:varchar(20);index:idx_inventory_tx_reference" json:"reference_type"`
	ReferenceID       uint                       `gorm:"index:idx_inventory_tx_reference" json:"reference_id"`
	Status            InventoryTransactionStatus `gorm:"type:varchar(20);not null" json:"status"`
	TransactionDate   time.Time                  `gorm:"index;not null" json:"transaction_date"`
	Notes             string                     `gorm:"type:text" json:"notes"`
	CreatedBy         string                     `gorm:"type:varchar(64)" json:"created_by"`
	CreatedAt         time.Time                  `json:"created_at"`
}

// TransactionFilter narrows ledger listings. Zero values match everything.
type TransactionFilter struct {
	ProductID     uint
	Type          InventoryTransactionType
	ReferenceType ReferenceType
	ReferenceID   uint
	From          *time.Time
	To            *time.Time
	Limit         int
}

// Matches reports whether tx passes the filter (Limit is ignored).
func (f TransactionFilter) Matches(tx *InventoryTransaction) bool {
	if f.ProductID != 0 && tx.ProductID != f.ProductID {
		return false
	}
	if f.Type != "" && tx.Type != f.Type {
		return false
	}
	if f.ReferenceType != "" && tx.ReferenceType != f.ReferenceType {
		return false
	}
	if f.ReferenceID != 0 && tx.ReferenceID != f.ReferenceID {
		return false
	}
	if f.From != nil && tx.TransactionDate.Before(*f.From) {
		return false
	}
	if f.To != nil && tx.TransactionDate.After(*f.To) {
		return false
	}
	return true
}
