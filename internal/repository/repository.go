package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"go-liquor-inventory/internal/apperr"
	"go-liquor-inventory/internal/model"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindAll(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id uint) (*model.Product, error)
	FindBySKU(ctx context.Context, sku string) (*model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	UpdateStock(ctx context.Context, id uint, stock int, updatedBy string) error
}

type SupplierRepository interface {
	Create(ctx context.Context, supplier *model.Supplier) error
	FindAll(ctx context.Context) ([]model.Supplier, error)
	FindByID(ctx context.Context, id uint) (*model.Supplier, error)
}

type InventoryRepository interface {
	FindByProductID(ctx context.Context, productID uint) (*model.Inventory, error)
	// FindByProductIDForUpdate also locks the row until the surrounding transaction ends.
	FindByProductIDForUpdate(ctx context.Context, productID uint) (*model.Inventory, error)
	FindAll(ctx context.Context) ([]model.Inventory, error)
	Create(ctx context.Context, inv *model.Inventory) error
	// Save writes quantity and cost if inv.Version is still current, then bumps inv.Version.
	Save(ctx context.Context, inv *model.Inventory) error
}

// LedgerRepository is append-only.
type LedgerRepository interface {
	Append(ctx context.Context, tx *model.InventoryTransaction) error
	FindByID(ctx context.Context, id uint) (*model.InventoryTransaction, error)
	FindByReference(ctx context.Context, refType model.ReferenceType, refID uint) ([]model.InventoryTransaction, error)
	List(ctx context.Context, filter model.TransactionFilter) ([]model.InventoryTransaction, error)
}

type ImportOrderRepository interface {
	Create(ctx context.Context, order *model.ImportOrder) error
	FindByID(ctx context.Context, id uint) (*model.ImportOrder, error)
	// FindByIDForUpdate also locks the header row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uint) (*model.ImportOrder, error)
	FindAll(ctx context.Context, filter model.ImportOrderFilter) ([]model.ImportOrder, error)
	// UpdateStatus writes the header's lifecycle fields if order.Version is
	// still current, then bumps order.Version.
	UpdateStatus(ctx context.Context, order *model.ImportOrder) error
	UpdateDetailStatus(ctx context.Context, detail *model.ImportOrderDetail, status model.DetailStatus) error
}

// Repos groups the repositories that take part in inventory workflows.
type Repos interface {
	Products() ProductRepository
	Suppliers() SupplierRepository
	Inventories() InventoryRepository
	Ledger() LedgerRepository
	ImportOrders() ImportOrderRepository
}

// Tx is the set of repositories bound to one open transaction.
type Tx interface {
	Repos
}

// Store hands out repositories for plain reads and runs atomic units of work.
type Store interface {
	Repos
	// Transact commits when fn returns nil and rolls back otherwise.
	Transact(ctx context.Context, fn func(tx Tx) error) error
}

// translate maps gorm failures onto the error taxonomy.
func translate(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(format+" not found", args...)
	}
	if isRetryable(err) {
		return &apperr.Error{
			Kind:    apperr.KindConcurrencyConflict,
			Message: fmt.Sprintf(format+" is locked by a concurrent writer, retry", args...),
			Err:     err,
		}
	}
	return apperr.Persistence(err)
}
