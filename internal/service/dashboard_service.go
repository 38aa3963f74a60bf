package service

import (
	"context"
	"time"

	"go-liquor-inventory/internal/repository"
)

type DashboardService interface {
	GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error)
	GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error)
}

type dashboardService struct {
	repo              repository.DashboardRepository
	lowStockThreshold int
}

func NewDashboardService(repo repository.DashboardRepository, lowStockThreshold int) DashboardService {
	return &dashboardService{repo: repo, lowStockThreshold: lowStockThreshold}
}

func (s *dashboardService) GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error) {
	if days <= 0 {
		days = 7
	}
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)

	return s.repo.GetStockMovement(ctx, startDate, endDate)
}

func (s *dashboardService) GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error) {
	return s.repo.GetDashboardStats(ctx, s.lowStockThreshold)
}
