package service

import (
	"testing"

	"go-pos-backend/internal/domain"
	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogService(env *testEnv) CatalogService {
	return NewCatalogService(env.products, env.saleItems, env.ledger, NopBroadcaster)
}

func validProduct(sku, name string) *model.Product {
	return &model.Product{
		SKU:          sku,
		Name:         name,
		Category:     "general",
		Unit:         model.UnitPiece,
		UnitPrice:    500,
		ReorderPoint: 10,
	}
}

func TestCreateProduct(t *testing.T) {
	env := newTestEnv()
	svc := newCatalogService(env)

	product := validProduct("PROD-001", "Widget")
	require.NoError(t, svc.CreateProduct(product, "tester"))
	assert.NotEqual(t, uuid.Nil, product.ID)
	assert.Equal(t, "tester", product.CreatedBy)

	found, err := svc.GetProductBySKU("PROD-001")
	require.NoError(t, err)
	assert.Equal(t, "Widget", found.Name)
}

func TestCreateProductDuplicateSKU(t *testing.T) {
	env := newTestEnv()
	svc := newCatalogService(env)

	require.NoError(t, svc.CreateProduct(validProduct("PROD-001", "Widget"), "tester"))

	err := svc.CreateProduct(validProduct("PROD-001", "Other widget"), "tester")
	var dup *domain.DuplicateSKUError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "PROD-001", dup.SKU)
	assert.Len(t, env.products.products, 1)
}

func TestCreateProductInvalidSKUFormat(t *testing.T) {
	env := newTestEnv()
	svc := newCatalogService(env)

	err := svc.CreateProduct(validProduct("prod 001", "Widget"), "tester")
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Field, "SKU")
}

func TestUpdateProductPartial(t *testing.T) {
	env := newTestEnv()
	svc := newCatalogService(env)

	product := validProduct("PROD-001", "Widget")
	require.NoError(t, svc.CreateProduct(product, "tester"))

	newName := "Improved widget"
	newPrice := int64(750)
	updated, err := svc.UpdateProduct(product.ID, UpdateProductInput{
		Name:      &newName,
		UnitPrice: &newPrice,
	}, "editor")
	require.NoError(t, err)
	assert.Equal(t, "Improved widget", updated.Name)
	assert.Equal(t, int64(750), updated.UnitPrice)
	// Untouched fields survive.
	assert.Equal(t, "PROD-001", updated.SKU)
	assert.Equal(t, "general", updated.Category)
	assert.Equal(t, "editor", updated.UpdatedBy)
}

func TestUpdateProductSKUCollision(t *testing.T) {
	env := newTestEnv()
	svc := newCatalogService(env)

	require.NoError(t, svc.CreateProduct(validProduct("PROD-001", "Widget"), "tester"))
	other := validProduct("PROD-002", "Gadget")
	require.NoError(t, svc.CreateProduct(other, "tester"))

	taken := "PROD-001"
	_, err := svc.UpdateProduct(other.ID, UpdateProductInput{SKU: &taken}, "tester")
	var dup *domain.DuplicateSKUError
	require.ErrorAs(t, err, &dup)
}

func TestUpdateProductNotFound(t *testing.T) {
	env := newTestEnv()
	svc := newCatalogService(env)

	name := "Ghost"
	_, err := svc.UpdateProduct(uuid.New(), UpdateProductInput{Name: &name}, "tester")
	var notFound *domain.ProductNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestDeleteProductBlockedByHistory(t *testing.T) {
	env := newTestEnv()
	svc := newCatalogService(env)

	product := validProduct("PROD-001", "Widget")
	require.NoError(t, svc.CreateProduct(product, "tester"))
	require.NoError(t, env.ledger.Create(&model.StockTransaction{
		ProductID: product.ID,
		Type:      model.TxPurchase,
		Quantity:  5,
		UserID:    uuid.New(),
	}))

	err := svc.DeleteProduct(product.ID)
	var inUse *domain.ProductInUseError
	require.ErrorAs(t, err, &inUse)
	assert.Equal(t, "PROD-001", inUse.SKU)

	// Still in the catalog.
	_, err = svc.GetProduct(product.ID)
	require.NoError(t, err)
}

func TestDeleteProductWithoutHistory(t *testing.T) {
	env := newTestEnv()
	svc := newCatalogService(env)

	product := validProduct("PROD-001", "Widget")
	require.NoError(t, svc.CreateProduct(product, "tester"))
	require.NoError(t, svc.DeleteProduct(product.ID))

	_, err := svc.GetProduct(product.ID)
	var notFound *domain.ProductNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestFindLowStock(t *testing.T) {
	env := newTestEnv()
	svc := newCatalogService(env)

	// Reorder point 10: stock 5 is low, stock 15 is fine, no history is low.
	low := env.seedProduct("PROD-001", "Almost out", 500, 5)
	env.seedProduct("PROD-002", "Well stocked", 500, 15)
	empty := env.seedProduct("PROD-003", "Never stocked", 500, 0)

	result, err := svc.FindLowStock()
	require.NoError(t, err)
	require.Len(t, result, 2)

	byID := map[uuid.UUID]int{}
	for _, p := range result {
		byID[p.ID] = p.CurrentStock
	}
	assert.Equal(t, 5, byID[low.ID])
	assert.Equal(t, 0, byID[empty.ID])
}

func TestGetProductsFilters(t *testing.T) {
	env := newTestEnv()
	svc := newCatalogService(env)

	env.seedProduct("PROD-001", "Widget", 500, 0)
	drink := env.seedProduct("DRINK-001", "Cola", 300, 0)
	drink.Category = "drinks"
	require.NoError(t, env.products.Update(drink))

	products, err := svc.GetProducts(repository.ProductFilters{Category: "drinks"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "DRINK-001", products[0].SKU)

	products, err = svc.GetProducts(repository.ProductFilters{Search: "widg"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "PROD-001", products[0].SKU)
}
