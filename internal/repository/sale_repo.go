package repository

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go-pos-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SaleFilters narrows FindAll results.
type SaleFilters struct {
	StartDate  *time.Time
	EndDate    *time.Time
	Status     model.SaleStatus
	UserID     *uuid.UUID
	CustomerID *uuid.UUID
}

// SaleStats summarizes completed sales over a period. Amounts in cents.
type SaleStats struct {
	TotalAmount     int64            `json:"total_amount"`
	TotalSales      int64            `json:"total_sales"`
	AverageTicket   int64            `json:"average_ticket"`
	ByPaymentMethod map[string]int64 `json:"by_payment_method,omitempty"`
}

type SaleRepository interface {
	Create(sale *model.Sale) error
	FindByID(id uuid.UUID) (*model.Sale, error)
	// FindByIDForUpdate locks the sale header row; used by cancellation to
	// guard the terminal-state check against concurrent double-cancel.
	FindByIDForUpdate(id uuid.UUID) (*model.Sale, error)
	FindBySaleNumber(saleNumber string) (*model.Sale, error)
	FindAll(filters SaleFilters) ([]model.Sale, error)
	Update(sale *model.Sale) error
	Cancel(id uuid.UUID) error
	// GenerateSaleNumber returns the next V<YYYYMMDD>-<seq> number for the
	// given day. Generation is serialized per day prefix; must run inside
	// a transaction.
	GenerateSaleNumber(day time.Time) (string, error)
	GetTodayStats(now time.Time) (*SaleStats, error)
	GetDateRangeStats(start, end time.Time) (*SaleStats, error)
}

type saleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) SaleRepository {
	return &saleRepo{db}
}

func (r *saleRepo) Create(sale *model.Sale) error {
	return r.db.Create(sale).Error
}

func (r *saleRepo) FindByID(id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.Preload("Items").Preload("Customer").First(&sale, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepo) FindByIDForUpdate(id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&sale, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepo) FindBySaleNumber(saleNumber string) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.Preload("Items").First(&sale, "sale_number = ?", saleNumber).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepo) FindAll(filters SaleFilters) ([]model.Sale, error) {
	var sales []model.Sale
	q := r.db.Preload("Items").Order("created_at DESC")
	if filters.StartDate != nil {
		q = q.Where("created_at >= ?", *filters.StartDate)
	}
	if filters.EndDate != nil {
		q = q.Where("created_at <= ?", *filters.EndDate)
	}
	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}
	if filters.UserID != nil {
		q = q.Where("user_id = ?", *filters.UserID)
	}
	if filters.CustomerID != nil {
		q = q.Where("customer_id = ?", *filters.CustomerID)
	}
	err := q.Find(&sales).Error
	return sales, err
}

func (r *saleRepo) Update(sale *model.Sale) error {
	return r.db.Save(sale).Error
}

func (r *saleRepo) Cancel(id uuid.UUID) error {
	return r.db.Model(&model.Sale{}).
		Where("id = ?", id).
		Update("status", model.SaleCancelled).Error
}

func (r *saleRepo) GenerateSaleNumber(day time.Time) (string, error) {
	prefix := "V" + day.Format("20060102")

	// Serialize generation per day prefix; the unique index on sale_number
	// is the backstop for anything that slips through.
	if err := r.db.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", prefix).Error; err != nil {
		return "", err
	}

	var last model.Sale
	err := r.db.Where("sale_number LIKE ?", prefix+"%").
		Order("sale_number DESC").
		First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Sprintf("%s-0001", prefix), nil
	}
	if err != nil {
		return "", err
	}

	seq, err := strconv.Atoi(strings.TrimPrefix(last.SaleNumber, prefix+"-"))
	if err != nil {
		return "", fmt.Errorf("malformed sale number %q: %w", last.SaleNumber, err)
	}
	return fmt.Sprintf("%s-%04d", prefix, seq+1), nil
}

func (r *saleRepo) GetTodayStats(now time.Time) (*SaleStats, error) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return r.GetDateRangeStats(start, now)
}

func (r *saleRepo) GetDateRangeStats(start, end time.Time) (*SaleStats, error) {
	stats := &SaleStats{ByPaymentMethod: map[string]int64{}}

	err := r.db.Model(&model.Sale{}).
		Where("created_at BETWEEN ? AND ? AND status = ?", start, end, model.SaleCompleted).
		Select("COALESCE(SUM(total_amount), 0) as total_amount, COUNT(*) as total_sales").
		Row().Scan(&stats.TotalAmount, &stats.TotalSales)
	if err != nil {
		return nil, err
	}
	if stats.TotalSales > 0 {
		stats.AverageTicket = stats.TotalAmount / stats.TotalSales
	}

	rows, err := r.db.Model(&model.Sale{}).
		Where("created_at BETWEEN ? AND ? AND status = ?", start, end, model.SaleCompleted).
		Select("payment_method, COALESCE(SUM(total_amount), 0)").
		Group("payment_method").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var method string
		var total int64
		if err := rows.Scan(&method, &total); err != nil {
			return nil, err
		}
		stats.ByPaymentMethod[method] = total
	}

	return stats, nil
}
