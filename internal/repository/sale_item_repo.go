package repository

import (
	"go-pos-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SaleItemRepository interface {
	CreateBatch(items []model.SaleItem) error
	FindBySaleID(saleID uuid.UUID) ([]model.SaleItem, error)
	DeleteBySaleID(saleID uuid.UUID) error
	ExistsByProductID(productID uuid.UUID) (bool, error)
}

type saleItemRepo struct {
	db *gorm.DB
}

func NewSaleItemRepo(db *gorm.DB) SaleItemRepository {
	return &saleItemRepo{db}
}

func (r *saleItemRepo) CreateBatch(items []model.SaleItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.Create(&items).Error
}

func (r *saleItemRepo) FindBySaleID(saleID uuid.UUID) ([]model.SaleItem, error) {
	var items []model.SaleItem
	err := r.db.Where("sale_id = ?", saleID).Order("created_at ASC").Find(&items).Error
	return items, err
}

func (r *saleItemRepo) DeleteBySaleID(saleID uuid.UUID) error {
	return r.db.Delete(&model.SaleItem{}, "sale_id = ?", saleID).Error
}

func (r *saleItemRepo) ExistsByProductID(productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&model.SaleItem{}).Where("product_id = ?", productID).Count(&count).Error
	return count > 0, err
}
