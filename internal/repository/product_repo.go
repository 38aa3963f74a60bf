package repository

import (
	"context"

	"go-liquor-inventory/internal/model"

	"gorm.io/gorm"
)

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return translate(r.db.WithContext(ctx).Create(product).Error, "product")
}

func (r *productRepo) FindAll(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Order("name ASC").Find(&products).Error
	return products, translate(err, "products")
}

func (r *productRepo) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, translate(err, "product %d", id)
	}
	return &product, nil
}

func (r *productRepo) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, "sku = ?", sku).Error; err != nil {
		return nil, translate(err, "product with sku %q", sku)
	}
	return &product, nil
}

// Update saves catalogue fields. StockQuantity is left to UpdateStock.
func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"sku":             product.SKU,
			"name":            product.Name,
			"category":        product.Category,
			"volume_ml":       product.VolumeML,
			"alcohol_percent": product.AlcoholPercent,
			"retail_price":    product.RetailPrice,
			"unit":            product.Unit,
			"is_active":       product.IsActive,
			"updated_by":      product.UpdatedBy,
		}).Error
	return translate(err, "product %d", product.ID)
}

// UpdateStock syncs the denormalized stock column; run it on the transaction's db.
func (r *productRepo) UpdateStock(ctx context.Context, id uint, stock int, updatedBy string) error {
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock_quantity": stock,
			"updated_by":     updatedBy,
		}).Error
	return translate(err, "product %d", id)
}
