package handler

import (
	"errors"

	"go-pos-backend/internal/domain"

	"github.com/gofiber/fiber/v2"
)

// respondError maps domain errors onto HTTP statuses. Anything outside the
// domain taxonomy is an infrastructure failure and renders a generic 500
// without leaking internals.
func respondError(c *fiber.Ctx, err error) error {
	var (
		productNotFound   *domain.ProductNotFoundError
		duplicateSKU      *domain.DuplicateSKUError
		productInUse      *domain.ProductInUseError
		emptySale         *domain.EmptySaleError
		insufficientStock *domain.InsufficientStockError
		customerNotFound  *domain.CustomerNotFoundError
		creditExceeded    *domain.CreditLimitExceededError
		saleNotFound      *domain.SaleNotFoundError
		alreadyCancelled  *domain.SaleAlreadyCancelledError
		invalidAdjustment *domain.InvalidAdjustmentError
		validation        *domain.ValidationError
		convNotFound      *domain.ConversationNotFoundError
	)

	switch {
	case errors.As(err, &productNotFound),
		errors.As(err, &customerNotFound),
		errors.As(err, &saleNotFound),
		errors.As(err, &convNotFound):
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})

	case errors.As(err, &duplicateSKU), errors.As(err, &productInUse):
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})

	case errors.As(err, &validation):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})

	case errors.As(err, &insufficientStock):
		return c.Status(422).JSON(fiber.Map{
			"error":     err.Error(),
			"product":   insufficientStock.ProductName,
			"available": insufficientStock.Available,
			"requested": insufficientStock.Requested,
		})

	case errors.As(err, &creditExceeded):
		return c.Status(422).JSON(fiber.Map{
			"error":     err.Error(),
			"customer":  creditExceeded.CustomerName,
			"limit":     creditExceeded.Limit,
			"attempted": creditExceeded.Attempted,
		})

	case errors.As(err, &emptySale),
		errors.As(err, &alreadyCancelled),
		errors.As(err, &invalidAdjustment):
		return c.Status(422).JSON(fiber.Map{"error": err.Error()})

	default:
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
}
