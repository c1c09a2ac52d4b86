package handler

import (
	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"
	"go-pos-backend/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ProductHandler struct {
	catalog service.CatalogService
	stock   service.StockService
}

func NewProductHandler(catalog service.CatalogService, stock service.StockService) *ProductHandler {
	return &ProductHandler{catalog: catalog, stock: stock}
}

func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if product.ReorderPoint == 0 {
		product.ReorderPoint = 10
	}

	userID, _ := c.Locals("user_id").(string)
	if err := h.catalog.CreateProduct(&product, userID); err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(product)
}

func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var input service.UpdateProductInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	userID, _ := c.Locals("user_id").(string)
	product, err := h.catalog.UpdateProduct(id, input, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	if err := h.catalog.DeleteProduct(id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.catalog.GetProducts(repository.ProductFilters{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(products), "products": products})
}

func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	product, err := h.catalog.GetProduct(id)
	if err != nil {
		return respondError(c, err)
	}
	stock, err := h.stock.GetCurrentStock(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"product": product, "current_stock": stock})
}

func (h *ProductHandler) GetProductBySKU(c *fiber.Ctx) error {
	product, err := h.catalog.GetProductBySKU(c.Params("sku"))
	if err != nil {
		return respondError(c, err)
	}
	stock, err := h.stock.GetCurrentStock(product.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"product": product, "current_stock": stock})
}

func (h *ProductHandler) GetLowStock(c *fiber.Ctx) error {
	low, err := h.catalog.FindLowStock()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(low), "products": low})
}
