package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go-liquor-inventory/internal/apperr"
)

type gormStore struct {
	db *gorm.DB
}

// NewStore builds a Store over db.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Products() ProductRepository         { return NewProductRepo(s.db) }
func (s *gormStore) Suppliers() SupplierRepository       { return NewSupplierRepo(s.db) }
func (s *gormStore) Inventories() InventoryRepository    { return NewInventoryRepo(s.db) }
func (s *gormStore) Ledger() LedgerRepository            { return NewLedgerRepo(s.db) }
func (s *gormStore) ImportOrders() ImportOrderRepository { return NewImportOrderRepo(s.db) }

func (s *gormStore) Transact(ctx context.Context, fn func(tx Tx) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
	var ae *apperr.Error
	if err == nil || errors.As(err, &ae) {
		return err
	}
	// Commit itself can fail with a serialization error.
	return translate(err, "transaction")
}
