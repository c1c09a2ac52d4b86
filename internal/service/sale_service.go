package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-pos-backend/internal/domain"
	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SaleLineInput is one cart line: a SKU and how many of it.
type SaleLineInput struct {
	SKU      string `json:"sku" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

type ProcessSaleInput struct {
	Items         []SaleLineInput     `json:"items"`
	PaymentMethod model.PaymentMethod `json:"payment_method"`
	UserID        uuid.UUID           `json:"user_id"`
	CustomerID    *uuid.UUID          `json:"customer_id,omitempty"`
	Notes         string              `json:"notes,omitempty"`
}

type ProcessSaleResult struct {
	Sale  *model.Sale      `json:"sale"`
	Items []model.SaleItem `json:"items"`
}

type SaleService interface {
	// ProcessSale turns a cart into a committed sale, its line items and
	// the matching ledger deductions, atomically. Any validation failure
	// leaves no trace.
	ProcessSale(ctx context.Context, input ProcessSaleInput) (*ProcessSaleResult, error)
	// CancelSale reverses a sale: one compensating return posting per line
	// item, status flipped to cancelled, credit debt restored. Cancelling a
	// cancelled sale is an error.
	CancelSale(ctx context.Context, saleID, userID uuid.UUID) error
	GetSale(id uuid.UUID) (*model.Sale, error)
	GetSaleByNumber(saleNumber string) (*model.Sale, error)
	ListSales(filters repository.SaleFilters) ([]model.Sale, error)
	GetTodayStats() (*repository.SaleStats, error)
	GetDateRangeStats(start, end time.Time) (*repository.SaleStats, error)
}

type saleService struct {
	sales repository.SaleRepository
	tm    repository.TxManager
	hub   Broadcaster
	now   func() time.Time
}

func NewSaleService(sales repository.SaleRepository, tm repository.TxManager, hub Broadcaster) SaleService {
	return &saleService{sales: sales, tm: tm, hub: hub, now: time.Now}
}

func (s *saleService) ProcessSale(ctx context.Context, input ProcessSaleInput) (*ProcessSaleResult, error) {
	if len(input.Items) == 0 {
		return nil, &domain.EmptySaleError{}
	}
	switch input.PaymentMethod {
	case model.PaymentCash, model.PaymentCard, model.PaymentTransfer, model.PaymentMixed:
	default:
		return nil, &domain.ValidationError{Field: "payment_method", Tag: "oneof"}
	}
	for _, line := range input.Items {
		if line.Quantity <= 0 {
			return nil, &domain.ValidationError{Field: "quantity", Tag: "gt"}
		}
	}

	var result *ProcessSaleResult
	var stockEvents []map[string]interface{}

	err := s.tm.Do(ctx, func(r *repository.Repos) error {
		now := s.now()

		// Resolve and lock the customer first so the credit check and the
		// debt update below see the same row.
		var customer *model.Customer
		if input.CustomerID != nil {
			var err error
			customer, err = r.Customers.FindByIDForUpdate(*input.CustomerID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &domain.CustomerNotFoundError{ID: input.CustomerID.String()}
			}
			if err != nil {
				return err
			}
		}

		// Resolve, lock and stock-check every cart line. The row lock
		// serializes the fold-then-deduct sequence per product against
		// concurrent sales. requested tracks earlier lines of this cart
		// for the same product, so duplicate SKUs cannot jointly oversell.
		type resolvedLine struct {
			product *model.Product
			qty     int
		}
		lines := make([]resolvedLine, 0, len(input.Items))
		requested := make(map[uuid.UUID]int)
		var totalAmount int64

		for _, line := range input.Items {
			product, err := r.Products.FindBySKUForUpdate(line.SKU)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &domain.ProductNotFoundError{Ref: line.SKU}
			}
			if err != nil {
				return err
			}

			current, err := r.StockTransactions.GetCurrentStock(product.ID)
			if err != nil {
				return err
			}
			available := current - requested[product.ID]
			if available < line.Quantity {
				return &domain.InsufficientStockError{
					ProductName: product.Name,
					Available:   available,
					Requested:   line.Quantity,
				}
			}
			requested[product.ID] += line.Quantity
			totalAmount += int64(line.Quantity) * product.UnitPrice
			lines = append(lines, resolvedLine{product: product, qty: line.Quantity})
		}

		onCredit := customer != nil && input.PaymentMethod == model.PaymentCash
		if onCredit {
			projected := customer.CurrentDebt + totalAmount
			if projected > customer.CreditLimit {
				return &domain.CreditLimitExceededError{
					CustomerName: customer.Name,
					Limit:        customer.CreditLimit,
					Attempted:    projected,
				}
			}
		}

		saleNumber, err := r.Sales.GenerateSaleNumber(now)
		if err != nil {
			return err
		}

		sale := &model.Sale{
			SaleNumber:    saleNumber,
			UserID:        input.UserID,
			CustomerID:    input.CustomerID,
			TotalAmount:   totalAmount,
			PaymentMethod: input.PaymentMethod,
			Status:        model.SaleCompleted,
			Notes:         input.Notes,
			CompletedAt:   &now,
		}
		sale.CreatedBy = input.UserID.String()
		sale.UpdatedBy = input.UserID.String()
		if err := r.Sales.Create(sale); err != nil {
			return err
		}

		items := make([]model.SaleItem, 0, len(lines))
		entries := make([]model.StockTransaction, 0, len(lines))
		for _, line := range lines {
			items = append(items, model.SaleItem{
				SaleID:      sale.ID,
				ProductID:   line.product.ID,
				SKU:         line.product.SKU,
				ProductName: line.product.Name,
				Quantity:    line.qty,
				UnitPrice:   line.product.UnitPrice,
				Subtotal:    int64(line.qty) * line.product.UnitPrice,
			})
			entries = append(entries, model.StockTransaction{
				ProductID: line.product.ID,
				Type:      model.TxSale,
				Quantity:  -line.qty,
				Reason:    fmt.Sprintf("Sale %s", saleNumber),
				UserID:    input.UserID,
				SaleID:    &sale.ID,
			})
		}
		if err := r.SaleItems.CreateBatch(items); err != nil {
			return err
		}
		if err := r.StockTransactions.CreateBatch(entries); err != nil {
			return err
		}

		if onCredit {
			if err := r.Customers.AddDebt(customer.ID, totalAmount); err != nil {
				return err
			}
		}

		stockEvents = stockEvents[:0]
		deducted := make(map[uuid.UUID]bool)
		for _, line := range lines {
			if deducted[line.product.ID] {
				continue
			}
			deducted[line.product.ID] = true
			stock, err := r.StockTransactions.GetCurrentStock(line.product.ID)
			if err != nil {
				return err
			}
			stockEvents = append(stockEvents, map[string]interface{}{
				"product_id": line.product.ID,
				"sku":        line.product.SKU,
				"new_stock":  stock,
			})
		}

		result = &ProcessSaleResult{Sale: sale, Items: items}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.BroadcastJSON(map[string]interface{}{
		"type":        "stock_update",
		"action":      "sale_completed",
		"sale_number": result.Sale.SaleNumber,
		"total":       result.Sale.TotalAmount,
		"products":    stockEvents,
	})
	return result, nil
}

func (s *saleService) CancelSale(ctx context.Context, saleID, userID uuid.UUID) error {
	var saleNumber string

	err := s.tm.Do(ctx, func(r *repository.Repos) error {
		// Lock the header row: the terminal-state check below must not
		// race a concurrent cancellation of the same sale.
		sale, err := r.Sales.FindByIDForUpdate(saleID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &domain.SaleNotFoundError{Ref: saleID.String()}
		}
		if err != nil {
			return err
		}
		if sale.Status == model.SaleCancelled {
			return &domain.SaleAlreadyCancelledError{SaleNumber: sale.SaleNumber}
		}
		saleNumber = sale.SaleNumber

		items, err := r.SaleItems.FindBySaleID(saleID)
		if err != nil {
			return err
		}

		reversals := make([]model.StockTransaction, 0, len(items))
		for _, item := range items {
			reversals = append(reversals, model.StockTransaction{
				ProductID: item.ProductID,
				Type:      model.TxReturn,
				Quantity:  item.Quantity, // positive: restores stock
				Reason:    fmt.Sprintf("Cancellation of sale %s", sale.SaleNumber),
				UserID:    userID,
				SaleID:    &sale.ID,
			})
		}
		if err := r.StockTransactions.CreateBatch(reversals); err != nil {
			return err
		}

		if err := r.Sales.Cancel(saleID); err != nil {
			return err
		}

		// Restore the credit debited when the sale was processed.
		if sale.CustomerID != nil && sale.PaymentMethod == model.PaymentCash {
			if err := r.Customers.AddDebt(*sale.CustomerID, -sale.TotalAmount); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.hub.BroadcastJSON(map[string]interface{}{
		"type":        "stock_update",
		"action":      "sale_cancelled",
		"sale_number": saleNumber,
	})
	return nil
}

func (s *saleService) GetSale(id uuid.UUID) (*model.Sale, error) {
	sale, err := s.sales.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &domain.SaleNotFoundError{Ref: id.String()}
	}
	return sale, err
}

func (s *saleService) GetSaleByNumber(saleNumber string) (*model.Sale, error) {
	sale, err := s.sales.FindBySaleNumber(saleNumber)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &domain.SaleNotFoundError{Ref: saleNumber}
	}
	return sale, err
}

func (s *saleService) ListSales(filters repository.SaleFilters) ([]model.Sale, error) {
	return s.sales.FindAll(filters)
}

func (s *saleService) GetTodayStats() (*repository.SaleStats, error) {
	return s.sales.GetTodayStats(s.now())
}

func (s *saleService) GetDateRangeStats(start, end time.Time) (*repository.SaleStats, error) {
	return s.sales.GetDateRangeStats(start, end)
}
