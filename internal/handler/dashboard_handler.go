package handler

import (
	"go-pos-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	reporting service.ReportingService
}

func NewDashboardHandler(reporting service.ReportingService) *DashboardHandler {
	return &DashboardHandler{reporting: reporting}
}

func (h *DashboardHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.reporting.GetDashboardStats()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

func (h *DashboardHandler) GetStockMovement(c *fiber.Ctx) error {
	start, end, err := parseDateRange(c)
	if err != nil {
		return err
	}
	movement, err := h.reporting.GetStockMovement(start, end)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"movement": movement})
}
