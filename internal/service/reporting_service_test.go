package service

import (
	"context"
	"testing"
	"time"

	"go-pos-backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDashboardStats(t *testing.T) {
	env := newTestEnv()
	catalog := newCatalogService(env)
	sales := newSaleService(env)
	svc := NewReportingService(catalog, env.sales, env.ledger)

	env.seedProduct("PROD-001", "Almost out", 500, 3) // reorder point 10
	env.seedProduct("PROD-002", "Well stocked", 800, 50)

	_, err := sales.ProcessSale(context.Background(), ProcessSaleInput{
		Items:         []SaleLineInput{{SKU: "PROD-002", Quantity: 2}},
		PaymentMethod: model.PaymentCash,
		UserID:        uuid.New(),
	})
	require.NoError(t, err)

	stats, err := svc.GetDashboardStats()
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalProducts)
	assert.Equal(t, 1, stats.LowStockCount)
	require.NotNil(t, stats.TodaySales)
	assert.Equal(t, int64(1600), stats.TodaySales.TotalAmount)
	assert.Equal(t, int64(1), stats.TodaySales.TotalSales)
}

func TestGetStockMovementBuckets(t *testing.T) {
	env := newTestEnv()
	sales := newSaleService(env)
	svc := NewReportingService(newCatalogService(env), env.sales, env.ledger)

	env.seedProduct("PROD-001", "Widget", 500, 10)
	_, err := sales.ProcessSale(context.Background(), ProcessSaleInput{
		Items:         []SaleLineInput{{SKU: "PROD-001", Quantity: 4}},
		PaymentMethod: model.PaymentCash,
		UserID:        uuid.New(),
	})
	require.NoError(t, err)

	start := time.Now().Add(-time.Hour)
	end := time.Now().Add(time.Hour)
	movement, err := svc.GetStockMovement(start, end)
	require.NoError(t, err)
	require.Len(t, movement, 1)
	assert.Equal(t, 10, movement[0].Inbound)
	assert.Equal(t, 4, movement[0].Outbound)
}
