package handler

import (
	"go-pos-backend/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type StockHandler struct {
	stock service.StockService
}

func NewStockHandler(stock service.StockService) *StockHandler {
	return &StockHandler{stock: stock}
}

// GetCurrentStock returns the live, ledger-derived stock for a product.
func (h *StockHandler) GetCurrentStock(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	stock, err := h.stock.GetCurrentStock(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"product_id": id, "current_stock": stock})
}

// GetLedger lists ledger entries filtered by product, sale or date range.
func (h *StockHandler) GetLedger(c *fiber.Ctx) error {
	if raw := c.Query("product_id"); raw != "" {
		productID, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid product_id"})
		}
		entries, err := h.stock.LedgerByProduct(productID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"total": len(entries), "transactions": entries})
	}

	if raw := c.Query("sale_id"); raw != "" {
		saleID, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid sale_id"})
		}
		entries, err := h.stock.LedgerBySale(saleID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"total": len(entries), "transactions": entries})
	}

	start, end, err := parseDateRange(c)
	if err != nil {
		return err
	}
	entries, err := h.stock.LedgerByDateRange(start, end)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(entries), "transactions": entries})
}

// AdjustStock posts a manual stock movement (purchase, adjustment, return).
func (h *StockHandler) AdjustStock(c *fiber.Ctx) error {
	var input service.AdjustStockInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	input.UserID = userID

	entry, err := h.stock.AdjustStock(c.Context(), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(entry)
}

func (h *StockHandler) GetStockMovement(c *fiber.Ctx) error {
	start, end, err := parseDateRange(c)
	if err != nil {
		return err
	}
	movement, err := h.stock.GetStockMovement(start, end)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"movement": movement})
}
