package repository

import (
	"go-pos-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CustomerRepository interface {
	Create(customer *model.Customer) error
	FindAll() ([]model.Customer, error)
	FindByID(id uuid.UUID) (*model.Customer, error)
	FindByIDForUpdate(id uuid.UUID) (*model.Customer, error)
	Update(customer *model.Customer) error
	Delete(id uuid.UUID) error
	// AddDebt applies a signed delta to current_debt. Positive debits
	// (sale on credit), negative restores (cancellation).
	AddDebt(id uuid.UUID, delta int64) error
}

type customerRepo struct {
	db *gorm.DB
}

func NewCustomerRepo(db *gorm.DB) CustomerRepository {
	return &customerRepo{db}
}

func (r *customerRepo) Create(customer *model.Customer) error {
	return r.db.Create(customer).Error
}

func (r *customerRepo) FindAll() ([]model.Customer, error) {
	var customers []model.Customer
	err := r.db.Order("name ASC").Find(&customers).Error
	return customers, err
}

func (r *customerRepo) FindByID(id uuid.UUID) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.First(&customer, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepo) FindByIDForUpdate(id uuid.UUID) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&customer, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepo) Update(customer *model.Customer) error {
	return r.db.Save(customer).Error
}

func (r *customerRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&model.Customer{}, "id = ?", id).Error
}

func (r *customerRepo) AddDebt(id uuid.UUID, delta int64) error {
	return r.db.Model(&model.Customer{}).
		Where("id = ?", id).
		Update("current_debt", gorm.Expr("current_debt + ?", delta)).Error
}
