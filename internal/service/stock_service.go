package service

import (
	"context"
	"errors"
	"time"

	"go-pos-backend/internal/domain"
	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdjustStockInput is a manual, non-sale ledger posting (purchase,
// correction, return).
type AdjustStockInput struct {
	ProductID       uuid.UUID             `json:"product_id"`
	Type            model.TransactionType `json:"type"`
	Quantity        int                   `json:"quantity"` // signed
	Reason          string                `json:"reason"`
	UserID          uuid.UUID             `json:"user_id"`
	ReferenceNumber string                `json:"reference_number,omitempty"`
}

type StockService interface {
	GetCurrentStock(productID uuid.UUID) (int, error)
	GetCurrentStockBatch(productIDs []uuid.UUID) (map[uuid.UUID]int, error)
	LedgerByProduct(productID uuid.UUID) ([]model.StockTransaction, error)
	LedgerBySale(saleID uuid.UUID) ([]model.StockTransaction, error)
	LedgerByDateRange(start, end time.Time) ([]model.StockTransaction, error)
	GetStockMovement(start, end time.Time) ([]repository.StockMovementData, error)
	AdjustStock(ctx context.Context, input AdjustStockInput) (*model.StockTransaction, error)
}

type stockService struct {
	ledger repository.StockTransactionRepository
	tm     repository.TxManager
	hub    Broadcaster
}

func NewStockService(ledger repository.StockTransactionRepository, tm repository.TxManager, hub Broadcaster) StockService {
	return &stockService{ledger: ledger, tm: tm, hub: hub}
}

func (s *stockService) GetCurrentStock(productID uuid.UUID) (int, error) {
	return s.ledger.GetCurrentStock(productID)
}

func (s *stockService) GetCurrentStockBatch(productIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	return s.ledger.GetCurrentStockBatch(productIDs)
}

func (s *stockService) LedgerByProduct(productID uuid.UUID) ([]model.StockTransaction, error) {
	return s.ledger.FindByProductID(productID)
}

func (s *stockService) LedgerBySale(saleID uuid.UUID) ([]model.StockTransaction, error) {
	return s.ledger.FindBySaleID(saleID)
}

func (s *stockService) LedgerByDateRange(start, end time.Time) ([]model.StockTransaction, error) {
	return s.ledger.FindByDateRange(start, end)
}

func (s *stockService) GetStockMovement(start, end time.Time) ([]repository.StockMovementData, error) {
	return s.ledger.GetStockMovement(start, end)
}

func (s *stockService) AdjustStock(ctx context.Context, input AdjustStockInput) (*model.StockTransaction, error) {
	if input.Quantity == 0 {
		return nil, &domain.InvalidAdjustmentError{Reason: "quantity cannot be zero"}
	}
	switch input.Type {
	case model.TxPurchase, model.TxAdjustment, model.TxReturn:
	default:
		return nil, &domain.ValidationError{Field: "type", Tag: "oneof"}
	}

	var entry *model.StockTransaction
	var newStock int

	err := s.tm.Do(ctx, func(r *repository.Repos) error {
		// Lock the product row so the fold below cannot race a concurrent
		// sale or adjustment on the same product.
		product, err := r.Products.FindByIDForUpdate(input.ProductID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &domain.ProductNotFoundError{Ref: input.ProductID.String()}
		}
		if err != nil {
			return err
		}

		current, err := r.StockTransactions.GetCurrentStock(product.ID)
		if err != nil {
			return err
		}
		if input.Quantity < 0 && current+input.Quantity < 0 {
			return &domain.InvalidAdjustmentError{
				Reason:       "stock would go negative",
				CurrentStock: current,
				Requested:    input.Quantity,
			}
		}

		entry = &model.StockTransaction{
			ProductID:       product.ID,
			Type:            input.Type,
			Quantity:        input.Quantity,
			Reason:          input.Reason,
			UserID:          input.UserID,
			ReferenceNumber: input.ReferenceNumber,
		}
		if err := r.StockTransactions.Create(entry); err != nil {
			return err
		}
		newStock = current + input.Quantity
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.BroadcastJSON(map[string]interface{}{
		"type":   "stock_update",
		"action": "stock_adjusted",
		"transaction": map[string]interface{}{
			"id":         entry.ID,
			"product_id": entry.ProductID,
			"tx_type":    entry.Type,
			"quantity":   entry.Quantity,
			"new_stock":  newStock,
		},
	})
	return entry, nil
}
