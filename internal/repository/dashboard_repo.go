package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"go-liquor-inventory/internal/model"
)

type DashboardRepository interface {
	GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error)
	GetDashboardStats(ctx context.Context, lowStockThreshold int) (*DashboardStats, error)
}

// StockMovementData is one day of ledger movement for charts.
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

// DashboardStats is the overview tile data.
type DashboardStats struct {
	TotalProducts        int64           `json:"total_products"`
	LowStockCount        int64           `json:"low_stock_count"`
	TotalInventoryValue  decimal.Decimal `json:"total_inventory_value"`
	PendingImportOrders  int64           `json:"pending_import_orders"`
	ApprovedImportOrders int64           `json:"approved_import_orders"`
}

type dashboardRepo struct {
	db *gorm.DB
}

func NewDashboardRepo(db *gorm.DB) DashboardRepository {
	return &dashboardRepo{db}
}

func (r *dashboardRepo) GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error) {
	var results []StockMovementData

	// Signed quantities: positive rows are inbound, negative rows outbound.
	rows, err := r.db.WithContext(ctx).Model(&model.InventoryTransaction{}).
		Select(`
			DATE(transaction_date) as date,
			COALESCE(SUM(CASE WHEN quantity > 0 THEN quantity ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN quantity < 0 THEN -quantity ELSE 0 END), 0) as outbound
		`).
		Where("transaction_date BETWEEN ? AND ? AND status = ?", startDate, endDate, model.TxStatusCompleted).
		Group("DATE(transaction_date)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, translate(err, "stock movement")
	}
	defer rows.Close()

	for rows.Next() {
		var data StockMovementData
		var day time.Time
		if err := rows.Scan(&day, &data.Inbound, &data.Outbound); err != nil {
			return nil, translate(err, "stock movement")
		}
		data.Date = day.Format("2006-01-02")
		results = append(results, data)
	}
	return results, translate(rows.Err(), "stock movement")
}

func (r *dashboardRepo) GetDashboardStats(ctx context.Context, lowStockThreshold int) (*DashboardStats, error) {
	var stats DashboardStats
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.Product{}).Where("is_active = ?", true).Count(&stats.TotalProducts).Error; err != nil {
		return nil, translate(err, "dashboard stats")
	}
	if err := db.Model(&model.Product{}).
		Where("is_active = ? AND stock_quantity < ?", true, lowStockThreshold).
		Count(&stats.LowStockCount).Error; err != nil {
		return nil, translate(err, "dashboard stats")
	}

	var total decimal.NullDecimal
	if err := db.Model(&model.Inventory{}).Select("SUM(total_value)").Row().Scan(&total); err != nil {
		return nil, translate(err, "dashboard stats")
	}
	stats.TotalInventoryValue = decimal.Zero
	if total.Valid {
		stats.TotalInventoryValue = total.Decimal
	}

	if err := db.Model(&model.ImportOrder{}).Where("status = ?", model.ImportPending).Count(&stats.PendingImportOrders).Error; err != nil {
		return nil, translate(err, "dashboard stats")
	}
	if err := db.Model(&model.ImportOrder{}).Where("status = ?", model.ImportApproved).Count(&stats.ApprovedImportOrders).Error; err != nil {
		return nil, translate(err, "dashboard stats")
	}
	return &stats, nil
}
