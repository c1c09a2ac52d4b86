package handler

import (
	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"
	"go-pos-backend/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SaleHandler struct {
	sales service.SaleService
}

func NewSaleHandler(sales service.SaleService) *SaleHandler {
	return &SaleHandler{sales: sales}
}

func (h *SaleHandler) ProcessSale(c *fiber.Ctx) error {
	var req struct {
		Items         []service.SaleLineInput `json:"items"`
		PaymentMethod string                  `json:"payment_method"`
		CustomerID    *uuid.UUID              `json:"customer_id,omitempty"`
		Notes         string                  `json:"notes,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	result, err := h.sales.ProcessSale(c.Context(), service.ProcessSaleInput{
		Items:         req.Items,
		PaymentMethod: model.PaymentMethod(req.PaymentMethod),
		UserID:        userID,
		CustomerID:    req.CustomerID,
		Notes:         req.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(result)
}

func (h *SaleHandler) CancelSale(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid sale ID"})
	}

	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	if err := h.sales.CancelSale(c.Context(), id, userID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Sale cancelled"})
}

func (h *SaleHandler) GetSale(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid sale ID"})
	}
	sale, err := h.sales.GetSale(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sale)
}

func (h *SaleHandler) GetSaleByNumber(c *fiber.Ctx) error {
	sale, err := h.sales.GetSaleByNumber(c.Params("number"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sale)
}

func (h *SaleHandler) GetSales(c *fiber.Ctx) error {
	filters := repository.SaleFilters{
		Status: model.SaleStatus(c.Query("status")),
	}
	if raw := c.Query("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid user_id"})
		}
		filters.UserID = &id
	}
	if raw := c.Query("customer_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid customer_id"})
		}
		filters.CustomerID = &id
	}
	if c.Query("start_date") != "" || c.Query("end_date") != "" {
		start, end, err := parseDateRange(c)
		if err != nil {
			return err
		}
		filters.StartDate = &start
		filters.EndDate = &end
	}

	sales, err := h.sales.ListSales(filters)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(sales), "sales": sales})
}

func (h *SaleHandler) GetTodayStats(c *fiber.Ctx) error {
	stats, err := h.sales.GetTodayStats()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

func (h *SaleHandler) GetRangeStats(c *fiber.Ctx) error {
	start, end, err := parseDateRange(c)
	if err != nil {
		return err
	}
	stats, err := h.sales.GetDateRangeStats(start, end)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}
