package service

import (
	"context"
	"testing"
	"time"

	"go-pos-backend/internal/domain"
	"go-pos-backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSaleService(env *testEnv) *saleService {
	svc := NewSaleService(env.sales, env.tm, NopBroadcaster).(*saleService)
	svc.now = func() time.Time {
		return time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestProcessSaleDeductsStock(t *testing.T) {
	env := newTestEnv()
	svc := newSaleService(env)
	product := env.seedProduct("PROD-001", "Widget", 500, 8)
	userID := uuid.New()

	result, err := svc.ProcessSale(context.Background(), ProcessSaleInput{
		Items:         []SaleLineInput{{SKU: "PROD-001", Quantity: 3}},
		PaymentMethod: model.PaymentCash,
		UserID:        userID,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Sale)

	stock, _ := env.ledger.GetCurrentStock(product.ID)
	assert.Equal(t, 5, stock)
	assert.Equal(t, model.SaleCompleted, result.Sale.Status)
	assert.NotNil(t, result.Sale.CompletedAt)
	assert.Equal(t, int64(1500), result.Sale.TotalAmount)

	// A second sale exceeding the remaining stock must fail and change nothing.
	_, err = svc.ProcessSale(context.Background(), ProcessSaleInput{
		Items:         []SaleLineInput{{SKU: "PROD-001", Quantity: 10}},
		PaymentMethod: model.PaymentCash,
		UserID:        userID,
	})
	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 5, insufficient.Available)
	assert.Equal(t, 10, insufficient.Requested)

	stock, _ = env.ledger.GetCurrentStock(product.ID)
	assert.Equal(t, 5, stock)
	assert.Len(t, env.sales.sales, 1)
	assert.Len(t, env.saleItems.items, 1)
}

func TestProcessSaleEmptyCart(t *testing.T) {
	env := newTestEnv()
	svc := newSaleService(env)

	_, err := svc.ProcessSale(context.Background(), ProcessSaleInput{
		PaymentMethod: model.PaymentCash,
		UserID:        uuid.New(),
	})
	var empty *domain.EmptySaleError
	require.ErrorAs(t, err, &empty)
	assert.Empty(t, env.sales.sales)
	assert.Empty(t, env.ledger.entries)
}

func TestProcessSaleInvalidPaymentMethod(t *testing.T) {
	env := newTestEnv()
	svc := newSaleService(env)
	env.seedProduct("PROD-001", "Widget", 500, 8)

	_, err := svc.ProcessSale(context.Background(), ProcessSaleInput{
		Items:         []SaleLineInput{{SKU: "PROD-001", Quantity: 1}},
		PaymentMethod: "bitcoin",
		UserID:        uuid.New(),
	})
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "payment_method", validation.Field)
}

func TestProcessSaleUnknownSKU(t *testing.T) {
	env := newTestEnv()
	svc := newSaleService(env)

	_, err := svc.ProcessSale(context.Background(), ProcessSaleInput{
		Items:         []SaleLineInput{{SKU: "NOPE-001", Quantity: 1}},
		PaymentMethod: model.PaymentCash,
		UserID:        uuid.New(),
	})
	var notFound *domain.ProductNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Empty(t, env.sales.sales)
}

func TestProcessSaleSequentialNumbers(t *testing.T) {
	env := newTestEnv()
	svc := newSaleService(env)
	env.seedProduct("PROD-001", "Widget", 500, 100)
	userID := uuid.New()

	for i, want := range []string{"V20250115-0001", "V20250115-0002", "V20250115-0003"} {
		result, err := svc.ProcessSale(context.Background(), ProcessSaleInput{
			Items:         []SaleLineInput{{SKU: "PROD-001", Quantity: 1}},
			PaymentMethod: model.PaymentCash,
			UserID:        userID,
		})
		require.NoError(t, err, "sale %d", i+1)
		assert.Equal(t, want, result.Sale.SaleNumber)
	}
}

func TestProcessSaleDuplicateSKULines(t *testing.T) {
	env := newTestEnv()
	svc := newSaleService(env)
	env.seedProduct("PROD-001", "Widget", 500, 5)

	// Two lines of 3 against stock 5: the second line must see only the
	// remainder, not the full stock again.
	_, err := svc.ProcessSale(context.Background(), ProcessSaleInput{
		Items: []SaleLineInput{
			{SKU: "PROD-001", Quantity: 3},
			{SKU: "PROD-001", Quantity: 3},
		},
		PaymentMethod: model.PaymentCash,
		UserID:        uuid.New(),
	})
	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 2, insufficient.Available)
	assert.Equal(t, 3, insufficient.Requested)
	assert.Empty(t, env.sales.sales)
}

func TestProcessSaleSnapshotsLineItems(t *testing.T) {
	env := newTestEnv()
	svc := newSaleService(env)
	widget := env.seedProduct("PROD-001", "Widget", 500, 20)
	gadget := env.seedProduct("PROD-002", "Gadget", 1200, 20)
	userID := uuid.New()

	result, err := svc.ProcessSale(context.Background(), ProcessSaleInput{
		Items: []SaleLineInput{
			{SKU: "PROD-001", Quantity: 2},
			{SKU: "PROD-002", Quantity: 1},
		},
		PaymentMethod: model.PaymentCard,
		UserID:        userID,
	})
	require.NoError(t, err)

	require.Len(t, result.Items, 2)
	assert.Equal(t, "Widget", result.Items[0].ProductName)
	assert.Equal(t, int64(1000), result.Items[0].Subtotal)
	assert.Equal(t, "Gadget", result.Items[1].ProductName)
	assert.Equal(t, int64(1200), result.Items[1].Subtotal)
	assert.Equal(t, int64(2200), result.Sale.TotalAmount)

	// One negative ledger posting per line, back-referencing the sale.
	entries, _ := env.ledger.FindBySaleID(result.Sale.ID)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, model.TxSale, e.Type)
		assert.Negative(t, e.Quantity)
	}
	widgetStock, _ := env.ledger.GetCurrentStock(widget.ID)
	gadgetStock, _ := env.ledger.GetCurrentStock(gadget.ID)
	assert.Equal(t, 18, widgetStock)
	assert.Equal(t, 19, gadgetStock)
}

func TestCancelSaleRestoresStock(t *testing.T) {
	env := newTestEnv()
	svc := newSaleService(env)
	product := env.seedProduct("PROD-001", "Widget", 500, 10)
	userID := uuid.New()

	result, err := svc.ProcessSale(context.Background(), ProcessSaleInput{
		Items:         []SaleLineInput{{SKU: "PROD-001", Quantity: 4}},
		PaymentMethod: model.PaymentCash,
		UserID:        userID,
	})
	require.NoError(t, err)
	stock, _ := env.ledger.GetCurrentStock(product.ID)
	require.Equal(t, 6, stock)

	require.NoError(t, svc.CancelSale(context.Background(), result.Sale.ID, userID))

	stock, _ = env.ledger.GetCurrentStock(product.ID)
	assert.Equal(t, 10, stock)

	sale, err := svc.GetSale(result.Sale.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SaleCancelled, sale.Status)

	// Exactly one compensating return entry per line item.
	entries, _ := env.ledger.FindBySaleID(result.Sale.ID)
	returns := 0
	for _, e := range entries {
		if e.Type == model.TxReturn {
			returns++
			assert.Equal(t, 4, e.Quantity)
		}
	}
	assert.Equal(t, 1, returns)

	// Cancelling again must fail and post nothing further.
	err = svc.CancelSale(context.Background(), result.Sale.ID, userID)
	var already *domain.SaleAlreadyCancelledError
	require.ErrorAs(t, err, &already)
	stock, _ = env.ledger.GetCurrentStock(product.ID)
	assert.Equal(t, 10, stock)
}

func TestCancelSaleNotFound(t *testing.T) {
	env := newTestEnv()
	svc := newSaleService(env)

	err := svc.CancelSale(context.Background(), uuid.New(), uuid.New())
	var notFound *domain.SaleNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestProcessSaleOnCredit(t *testing.T) {
	env := newTestEnv()
	svc := newSaleService(env)
	env.seedProduct("PROD-001", "Widget", 500, 20)
	userID := uuid.New()

	customer := &model.Customer{Name: "Acme", CreditLimit: 2000, CurrentDebt: 500}
	require.NoError(t, env.customers.Create(customer))

	// Within the limit: debt is debited by the sale total.
	result, err := svc.ProcessSale(context.Background(), ProcessSaleInput{
		Items:         []SaleLineInput{{SKU: "PROD-001", Quantity: 2}},
		PaymentMethod: model.PaymentCash,
		UserID:        userID,
		CustomerID:    &customer.ID,
	})
	require.NoError(t, err)
	updated, _ := env.customers.FindByID(customer.ID)
	assert.Equal(t, int64(1500), updated.CurrentDebt)

	// Beyond the limit: rejected, debt untouched.
	_, err = svc.ProcessSale(context.Background(), ProcessSaleInput{
		Items:         []SaleLineInput{{SKU: "PROD-001", Quantity: 2}},
		PaymentMethod: model.PaymentCash,
		UserID:        userID,
		CustomerID:    &customer.ID,
	})
	var exceeded *domain.CreditLimitExceededError
	require.ErrorAs(t, err, &exceeded)
	assert.Equal(t, int64(2000), exceeded.Limit)
	assert.Equal(t, int64(2500), exceeded.Attempted)
	updated, _ = env.customers.FindByID(customer.ID)
	assert.Equal(t, int64(1500), updated.CurrentDebt)

	// Cancellation restores the debt symmetrically.
	require.NoError(t, svc.CancelSale(context.Background(), result.Sale.ID, userID))
	updated, _ = env.customers.FindByID(customer.ID)
	assert.Equal(t, int64(500), updated.CurrentDebt)
}

func TestProcessSaleCardPaymentSkipsCredit(t *testing.T) {
	env := newTestEnv()
	svc := newSaleService(env)
	env.seedProduct("PROD-001", "Widget", 500, 20)

	customer := &model.Customer{Name: "Acme", CreditLimit: 100, CurrentDebt: 0}
	require.NoError(t, env.customers.Create(customer))

	// Card payments settle immediately; the credit limit does not apply.
	_, err := svc.ProcessSale(context.Background(), ProcessSaleInput{
		Items:         []SaleLineInput{{SKU: "PROD-001", Quantity: 2}},
		PaymentMethod: model.PaymentCard,
		UserID:        uuid.New(),
		CustomerID:    &customer.ID,
	})
	require.NoError(t, err)
	updated, _ := env.customers.FindByID(customer.ID)
	assert.Equal(t, int64(0), updated.CurrentDebt)
}

func TestProcessSaleUnknownCustomer(t *testing.T) {
	env := newTestEnv()
	svc := newSaleService(env)
	env.seedProduct("PROD-001", "Widget", 500, 20)
	ghost := uuid.New()

	_, err := svc.ProcessSale(context.Background(), ProcessSaleInput{
		Items:         []SaleLineInput{{SKU: "PROD-001", Quantity: 1}},
		PaymentMethod: model.PaymentCash,
		UserID:        uuid.New(),
		CustomerID:    &ghost,
	})
	var notFound *domain.CustomerNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestGetSaleByNumber(t *testing.T) {
	env := newTestEnv()
	svc := newSaleService(env)
	env.seedProduct("PROD-001", "Widget", 500, 20)

	result, err := svc.ProcessSale(context.Background(), ProcessSaleInput{
		Items:         []SaleLineInput{{SKU: "PROD-001", Quantity: 1}},
		PaymentMethod: model.PaymentTransfer,
		UserID:        uuid.New(),
	})
	require.NoError(t, err)

	sale, err := svc.GetSaleByNumber(result.Sale.SaleNumber)
	require.NoError(t, err)
	assert.Equal(t, result.Sale.ID, sale.ID)

	_, err = svc.GetSaleByNumber("V19990101-0001")
	var notFound *domain.SaleNotFoundError
	require.ErrorAs(t, err, &notFound)
}
