package repository

import (
	"context"

	"gorm.io/gorm"

	"go-liquor-inventory/internal/model"
)

type ledgerRepo struct {
	db *gorm.DB
}

func NewLedgerRepo(db *gorm.DB) LedgerRepository {
	return &ledgerRepo{db}
}

func (r *ledgerRepo) Append(ctx context.Context, tx *model.InventoryTransaction) error {
	return translate(r.db.WithContext(ctx).Create(tx).Error, "inventory transaction %s", tx.TransactionNumber)
}

func (r *ledgerRepo) FindByID(ctx context.Context, id uint) (*model.InventoryTransaction, error) {
	var tx model.InventoryTransaction
	if err := r.db.WithContext(ctx).First(&tx, "id = ?", id).Error; err != nil {
		return nil, translate(err, "inventory transaction %d", id)
	}
	return &tx, nil
}

func (r *ledgerRepo) FindByReference(ctx context.Context, refType model.ReferenceType, refID uint) ([]model.InventoryTransaction, error) {
	var txs []model.InventoryTransaction
	err := r.db.WithContext(ctx).
		Where("reference_type = ? AND reference_id = ?", refType, refID).
		Order("id ASC").
		Find(&txs).Error
	return txs, translate(err, "inventory transactions")
}

func (r *ledgerRepo) List(ctx context.Context, f model.TransactionFilter) ([]model.InventoryTransaction, error) {
	q := r.db.WithContext(ctx).Model(&model.InventoryTransaction{})
	if f.ProductID != 0 {
		q = q.Where("product_id = ?", f.ProductID)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.ReferenceType != "" {
		q = q.Where("reference_type = ?", f.ReferenceType)
	}
	if f.ReferenceID != 0 {
		q = q.Where("reference_id = ?", f.ReferenceID)
	}
	if f.From != nil {
		q = q.Where("transaction_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("transaction_date <= ?", *f.To)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var txs []model.InventoryTransaction
	err := q.Order("transaction_date DESC, id DESC").Find(&txs).Error
	return txs, translate(err, "inventory transactions")
}
