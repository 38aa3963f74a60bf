package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-liquor-inventory/internal/apperr"
	"go-liquor-inventory/internal/model"
)

type importOrderRepo struct {
	db *gorm.DB
}

func NewImportOrderRepo(db *gorm.DB) ImportOrderRepository {
	return &importOrderRepo{db}
}

// Create inserts the header and its details in one statement batch.
func (r *importOrderRepo) Create(ctx context.Context, order *model.ImportOrder) error {
	return translate(r.db.WithContext(ctx).Create(order).Error, "import order")
}

func (r *importOrderRepo) FindByID(ctx context.Context, id uint) (*model.ImportOrder, error) {
	return r.find(ctx, r.db.WithContext(ctx), id)
}

func (r *importOrderRepo) FindByIDForUpdate(ctx context.Context, id uint) (*model.ImportOrder, error) {
	return r.find(ctx, r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *importOrderRepo) find(ctx context.Context, q *gorm.DB, id uint) (*model.ImportOrder, error) {
	var order model.ImportOrder
	if err := q.First(&order, "id = ?", id).Error; err != nil {
		return nil, translate(err, "import order %d", id)
	}
	details, err := r.details(ctx, []uint{order.ID})
	if err != nil {
		return nil, err
	}
	order.Details = details[order.ID]
	return &order, nil
}

func (r *importOrderRepo) details(ctx context.Context, orderIDs []uint) (map[uint][]model.ImportOrderDetail, error) {
	byOrder := make(map[uint][]model.ImportOrderDetail, len(orderIDs))
	if len(orderIDs) == 0 {
		return byOrder, nil
	}
	var rows []model.ImportOrderDetail
	err := r.db.WithContext(ctx).
		Where("import_order_id IN ?", orderIDs).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err, "import order details")
	}
	for _, d := range rows {
		byOrder[d.ImportOrderID] = append(byOrder[d.ImportOrderID], d)
	}
	return byOrder, nil
}

func (r *importOrderRepo) FindAll(ctx context.Context, f model.ImportOrderFilter) ([]model.ImportOrder, error) {
	q := r.db.WithContext(ctx).Model(&model.ImportOrder{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.SupplierID != 0 {
		q = q.Where("supplier_id = ?", f.SupplierID)
	}

	var orders []model.ImportOrder
	if err := q.Order("order_date DESC, id DESC").Find(&orders).Error; err != nil {
		return nil, translate(err, "import orders")
	}

	ids := make([]uint, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
	}
	details, err := r.details(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Details = details[orders[i].ID]
	}
	return orders, nil
}

func (r *importOrderRepo) UpdateStatus(ctx context.Context, order *model.ImportOrder) error {
	now := stamp()
	res := r.db.WithContext(ctx).Model(&model.ImportOrder{}).
		Where("id = ? AND version = ?", order.ID, order.Version).
		Updates(map[string]interface{}{
			"status":        order.Status,
			"import_date":   order.ImportDate,
			"cancel_reason": order.CancelReason,
			"approved_at":   order.ApprovedAt,
			"approved_by":   order.ApprovedBy,
			"completed_at":  order.CompletedAt,
			"cancelled_at":  order.CancelledAt,
			"updated_by":    order.UpdatedBy,
			"updated_at":    now,
			"version":       gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return translate(res.Error, "import order %d", order.ID)
	}
	if res.RowsAffected == 0 {
		return apperr.Conflict("import order %d was modified concurrently", order.ID)
	}
	order.Version++
	order.UpdatedAt = now
	return nil
}

func (r *importOrderRepo) UpdateDetailStatus(ctx context.Context, detail *model.ImportOrderDetail, status model.DetailStatus) error {
	now := stamp()
	err := r.db.WithContext(ctx).Model(&model.ImportOrderDetail{}).
		Where("id = ?", detail.ID).
		Updates(map[string]interface{}{"status": status, "updated_at": now}).Error
	if err != nil {
		return translate(err, "import order detail %d", detail.ID)
	}
	detail.Status = status
	detail.UpdatedAt = now
	return nil
}

// stamp is the write time handed back to callers, cut to the millisecond so
// it survives a DATETIME(3) column unchanged.
func stamp() time.Time {
	return time.Now().Truncate(time.Millisecond)
}
