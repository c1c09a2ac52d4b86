package service

import (
	"time"

	"go-pos-backend/internal/repository"
)

// DashboardStats is the overview card data: catalog size, products at or
// below their reorder point (live stock), and today's sales totals.
type DashboardStats struct {
	TotalProducts int64                 `json:"total_products"`
	LowStockCount int                   `json:"low_stock_count"`
	TodaySales    *repository.SaleStats `json:"today_sales"`
}

type ReportingService interface {
	GetDashboardStats() (*DashboardStats, error)
	GetStockMovement(start, end time.Time) ([]repository.StockMovementData, error)
}

type reportingService struct {
	catalog CatalogService
	sales   repository.SaleRepository
	ledger  repository.StockTransactionRepository
	now     func() time.Time
}

func NewReportingService(catalog CatalogService, sales repository.SaleRepository, ledger repository.StockTransactionRepository) ReportingService {
	return &reportingService{catalog: catalog, sales: sales, ledger: ledger, now: time.Now}
}

func (s *reportingService) GetDashboardStats() (*DashboardStats, error) {
	products, err := s.catalog.GetProducts(repository.ProductFilters{})
	if err != nil {
		return nil, err
	}
	low, err := s.catalog.FindLowStock()
	if err != nil {
		return nil, err
	}
	today, err := s.sales.GetTodayStats(s.now())
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		TotalProducts: int64(len(products)),
		LowStockCount: len(low),
		TodaySales:    today,
	}, nil
}

func (s *reportingService) GetStockMovement(start, end time.Time) ([]repository.StockMovementData, error) {
	return s.ledger.GetStockMovement(start, end)
}
