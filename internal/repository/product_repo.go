package repository

import (
	"go-pos-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductFilters narrows FindAll results.
type ProductFilters struct {
	Category string
	Search   string // matches name or SKU, case-insensitive
}

type ProductRepository interface {
	Create(product *model.Product) error
	FindAll(filters ProductFilters) ([]model.Product, error)
	FindByID(id uuid.UUID) (*model.Product, error)
	FindBySKU(sku string) (*model.Product, error)
	// FindBySKUForUpdate locks the product row until the surrounding
	// transaction commits. Only meaningful on a tx-scoped bundle.
	FindBySKUForUpdate(sku string) (*model.Product, error)
	FindByIDForUpdate(id uuid.UUID) (*model.Product, error)
	Update(product *model.Product) error
	Delete(id uuid.UUID) error
	Exists(id uuid.UUID) (bool, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(product *model.Product) error {
	return r.db.Create(product).Error
}

func (r *productRepo) FindAll(filters ProductFilters) ([]model.Product, error) {
	var products []model.Product
	q := r.db.Order("name ASC")
	if filters.Category != "" {
		q = q.Where("category = ?", filters.Category)
	}
	if filters.Search != "" {
		like := "%" + filters.Search + "%"
		q = q.Where("name ILIKE ? OR sku ILIKE ?", like, like)
	}
	err := q.Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindBySKU(sku string) (*model.Product, error) {
	var product model.Product
	err := r.db.First(&product, "sku = ?", sku).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindBySKUForUpdate(sku string) (*model.Product, error) {
	var product model.Product
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, "sku = ?", sku).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindByIDForUpdate(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) Update(product *model.Product) error {
	return r.db.Save(product).Error
}

func (r *productRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&model.Product{}, "id = ?", id).Error
}

func (r *productRepo) Exists(id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&model.Product{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
