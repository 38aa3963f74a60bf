package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-liquor-inventory/internal/apperr"
	"go-liquor-inventory/internal/model"
)

type inventoryRepo struct {
	db *gorm.DB
}

func NewInventoryRepo(db *gorm.DB) InventoryRepository {
	return &inventoryRepo{db}
}

func (r *inventoryRepo) FindByProductID(ctx context.Context, productID uint) (*model.Inventory, error) {
	var inv model.Inventory
	if err := r.db.WithContext(ctx).First(&inv, "product_id = ?", productID).Error; err != nil {
		return nil, translate(err, "inventory for product %d", productID)
	}
	return &inv, nil
}

func (r *inventoryRepo) FindByProductIDForUpdate(ctx context.Context, productID uint) (*model.Inventory, error) {
	var inv model.Inventory
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&inv, "product_id = ?", productID).Error
	if err != nil {
		return nil, translate(err, "inventory for product %d", productID)
	}
	return &inv, nil
}

func (r *inventoryRepo) FindAll(ctx context.Context) ([]model.Inventory, error) {
	var rows []model.Inventory
	err := r.db.WithContext(ctx).Order("product_id ASC").Find(&rows).Error
	return rows, translate(err, "inventory")
}

func (r *inventoryRepo) Create(ctx context.Context, inv *model.Inventory) error {
	inv.TotalValue = inv.Position().TotalValue
	err := r.db.WithContext(ctx).Create(inv).Error
	if isDuplicateKey(err) {
		// Another transaction created the row first.
		return &apperr.Error{
			Kind:    apperr.KindConcurrencyConflict,
			Message: fmt.Sprintf("inventory for product %d was created concurrently", inv.ProductID),
			Err:     err,
		}
	}
	return translate(err, "inventory for product %d", inv.ProductID)
}

func (r *inventoryRepo) Save(ctx context.Context, inv *model.Inventory) error {
	pos := inv.Position()
	res := r.db.WithContext(ctx).Model(&model.Inventory{}).
		Where("id = ? AND version = ?", inv.ID, inv.Version).
		Updates(map[string]interface{}{
			"quantity":     pos.Quantity,
			"average_cost": pos.AverageCost,
			"total_value":  pos.TotalValue,
			"last_updated": inv.LastUpdated,
			"version":      gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return translate(res.Error, "inventory for product %d", inv.ProductID)
	}
	if res.RowsAffected == 0 {
		return apperr.Conflict("inventory for product %d was modified concurrently", inv.ProductID)
	}
	inv.TotalValue = pos.TotalValue
	inv.Version++
	return nil
}
