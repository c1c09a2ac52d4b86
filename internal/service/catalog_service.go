package service

import (
	"errors"

	"go-pos-backend/internal/domain"
	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"
	"go-pos-backend/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UpdateProductInput carries a partial update; nil fields are left untouched.
// SKU changes are allowed but must not collide with another product.
type UpdateProductInput struct {
	SKU          *string            `json:"sku,omitempty"`
	Name         *string            `json:"name,omitempty"`
	Description  *string            `json:"description,omitempty"`
	Category     *string            `json:"category,omitempty"`
	Unit         *model.ProductUnit `json:"unit,omitempty"`
	UnitPrice    *int64             `json:"unit_price,omitempty"`
	MinStock     *int               `json:"min_stock,omitempty"`
	ReorderPoint *int               `json:"reorder_point,omitempty"`
}

// LowStockProduct pairs a product with its live ledger-derived stock.
type LowStockProduct struct {
	model.Product
	CurrentStock int `json:"current_stock"`
}

type CatalogService interface {
	CreateProduct(req *model.Product, userID string) error
	UpdateProduct(id uuid.UUID, input UpdateProductInput, userID string) (*model.Product, error)
	DeleteProduct(id uuid.UUID) error
	GetProduct(id uuid.UUID) (*model.Product, error)
	GetProductBySKU(sku string) (*model.Product, error)
	GetProducts(filters repository.ProductFilters) ([]model.Product, error)
	// FindLowStock returns products whose live stock is at or below their
	// reorder point.
	FindLowStock() ([]LowStockProduct, error)
}

type catalogService struct {
	productRepo repository.ProductRepository
	saleItems   repository.SaleItemRepository
	ledger      repository.StockTransactionRepository
	hub         Broadcaster
}

func NewCatalogService(
	productRepo repository.ProductRepository,
	saleItems repository.SaleItemRepository,
	ledger repository.StockTransactionRepository,
	hub Broadcaster,
) CatalogService {
	return &catalogService{
		productRepo: productRepo,
		saleItems:   saleItems,
		ledger:      ledger,
		hub:         hub,
	}
}

func (s *catalogService) CreateProduct(req *model.Product, userID string) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return &domain.ValidationError{Field: errs[0].FailedField, Tag: errs[0].Tag}
	}

	if existing, err := s.productRepo.FindBySKU(req.SKU); err == nil && existing != nil {
		return &domain.DuplicateSKUError{SKU: req.SKU}
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	req.CreatedBy = userID
	req.UpdatedBy = userID

	if err := s.productRepo.Create(req); err != nil {
		return err
	}

	s.hub.BroadcastJSON(map[string]interface{}{
		"type":   "stock_update",
		"action": "product_created",
		"product": map[string]interface{}{
			"id":   req.ID,
			"sku":  req.SKU,
			"name": req.Name,
		},
	})
	return nil
}

func (s *catalogService) UpdateProduct(id uuid.UUID, input UpdateProductInput, userID string) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &domain.ProductNotFoundError{Ref: id.String()}
	}
	if err != nil {
		return nil, err
	}

	if input.SKU != nil && *input.SKU != product.SKU {
		other, err := s.productRepo.FindBySKU(*input.SKU)
		if err == nil && other != nil && other.ID != id {
			return nil, &domain.DuplicateSKUError{SKU: *input.SKU}
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		product.SKU = *input.SKU
	}
	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.Unit != nil {
		product.Unit = *input.Unit
	}
	if input.UnitPrice != nil {
		product.UnitPrice = *input.UnitPrice
	}
	if input.MinStock != nil {
		product.MinStock = *input.MinStock
	}
	if input.ReorderPoint != nil {
		product.ReorderPoint = *input.ReorderPoint
	}
	product.UpdatedBy = userID

	if errs := validator.ValidateStruct(product); len(errs) > 0 {
		return nil, &domain.ValidationError{Field: errs[0].FailedField, Tag: errs[0].Tag}
	}

	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *catalogService) DeleteProduct(id uuid.UUID) error {
	product, err := s.productRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &domain.ProductNotFoundError{Ref: id.String()}
	}
	if err != nil {
		return err
	}

	// Sale items and ledger history reference the product by id; deleting
	// under them would orphan the audit trail.
	referenced, err := s.saleItems.ExistsByProductID(id)
	if err != nil {
		return err
	}
	if !referenced {
		referenced, err = s.ledger.ExistsByProductID(id)
		if err != nil {
			return err
		}
	}
	if referenced {
		return &domain.ProductInUseError{SKU: product.SKU}
	}

	return s.productRepo.Delete(id)
}

func (s *catalogService) GetProduct(id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &domain.ProductNotFoundError{Ref: id.String()}
	}
	return product, err
}

func (s *catalogService) GetProductBySKU(sku string) (*model.Product, error) {
	product, err := s.productRepo.FindBySKU(sku)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &domain.ProductNotFoundError{Ref: sku}
	}
	return product, err
}

func (s *catalogService) GetProducts(filters repository.ProductFilters) ([]model.Product, error) {
	return s.productRepo.FindAll(filters)
}

func (s *catalogService) FindLowStock() ([]LowStockProduct, error) {
	products, err := s.productRepo.FindAll(repository.ProductFilters{})
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	stocks, err := s.ledger.GetCurrentStockBatch(ids)
	if err != nil {
		return nil, err
	}

	var low []LowStockProduct
	for _, p := range products {
		if stocks[p.ID] <= p.ReorderPoint {
			low = append(low, LowStockProduct{Product: p, CurrentStock: stocks[p.ID]})
		}
	}
	return low, nil
}
