package repository

import (
	"time"

	"go-pos-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockMovementData aggregates ledger quantities per day for charting.
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

// StockTransactionRepository is the append-only stock ledger. Entries are
// never updated or deleted; current stock is the sum of signed quantities.
// The ledger itself does not validate non-negativity — that is the calling
// workflow's job, under a product row lock.
type StockTransactionRepository interface {
	Create(entry *model.StockTransaction) error
	CreateBatch(entries []model.StockTransaction) error
	// GetCurrentStock returns 0 for a product with no history; it never
	// fails on an unknown product.
	GetCurrentStock(productID uuid.UUID) (int, error)
	// GetCurrentStockBatch returns an entry (possibly 0) for every
	// requested id, including ids with no transactions.
	GetCurrentStockBatch(productIDs []uuid.UUID) (map[uuid.UUID]int, error)
	FindByProductID(productID uuid.UUID) ([]model.StockTransaction, error)
	FindBySaleID(saleID uuid.UUID) ([]model.StockTransaction, error)
	FindByDateRange(start, end time.Time) ([]model.StockTransaction, error)
	ExistsByProductID(productID uuid.UUID) (bool, error)
	GetStockMovement(start, end time.Time) ([]StockMovementData, error)
}

type stockTransactionRepo struct {
	db *gorm.DB
}

func NewStockTransactionRepo(db *gorm.DB) StockTransactionRepository {
	return &stockTransactionRepo{db}
}

func (r *stockTransactionRepo) Create(entry *model.StockTransaction) error {
	return r.db.Create(entry).Error
}

func (r *stockTransactionRepo) CreateBatch(entries []model.StockTransaction) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.Create(&entries).Error
}

func (r *stockTransactionRepo) GetCurrentStock(productID uuid.UUID) (int, error) {
	var total int
	err := r.db.Model(&model.StockTransaction{}).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	return total, err
}

func (r *stockTransactionRepo) GetCurrentStockBatch(productIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	stocks := make(map[uuid.UUID]int, len(productIDs))
	if len(productIDs) == 0 {
		return stocks, nil
	}

	rows, err := r.db.Model(&model.StockTransaction{}).
		Select("product_id, COALESCE(SUM(quantity), 0) as total").
		Where("product_id IN ?", productIDs).
		Group("product_id").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var total int
		if err := rows.Scan(&id, &total); err != nil {
			return nil, err
		}
		stocks[id] = total
	}

	// Products with no history read as zero stock.
	for _, id := range productIDs {
		if _, ok := stocks[id]; !ok {
			stocks[id] = 0
		}
	}
	return stocks, nil
}

func (r *stockTransactionRepo) FindByProductID(productID uuid.UUID) ([]model.StockTransaction, error) {
	var entries []model.StockTransaction
	err := r.db.Where("product_id = ?", productID).Order("created_at DESC").Find(&entries).Error
	return entries, err
}

func (r *stockTransactionRepo) FindBySaleID(saleID uuid.UUID) ([]model.StockTransaction, error) {
	var entries []model.StockTransaction
	err := r.db.Where("sale_id = ?", saleID).Order("created_at DESC").Find(&entries).Error
	return entries, err
}

func (r *stockTransactionRepo) FindByDateRange(start, end time.Time) ([]model.StockTransaction, error) {
	var entries []model.StockTransaction
	err := r.db.Preload("Product").
		Where("created_at BETWEEN ? AND ?", start, end).
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}

func (r *stockTransactionRepo) ExistsByProductID(productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&model.StockTransaction{}).Where("product_id = ?", productID).Count(&count).Error
	return count > 0, err
}

func (r *stockTransactionRepo) GetStockMovement(start, end time.Time) ([]StockMovementData, error) {
	var results []StockMovementData

	rows, err := r.db.Model(&model.StockTransaction{}).
		Select(`
			DATE(created_at) as date,
			COALESCE(SUM(CASE WHEN quantity > 0 THEN quantity ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN quantity < 0 THEN -quantity ELSE 0 END), 0) as outbound
		`).
		Where("created_at BETWEEN ? AND ?", start, end).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data StockMovementData
		if err := rows.Scan(&data.Date, &data.Inbound, &data.Outbound); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, nil
}
