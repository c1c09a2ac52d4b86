package handler

import (
	"errors"

	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CustomerHandler is plain CRUD over the customer book; debt movements
// happen only through sale processing and cancellation.
type CustomerHandler struct {
	customers repository.CustomerRepository
}

func NewCustomerHandler(customers repository.CustomerRepository) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

func (h *CustomerHandler) CreateCustomer(c *fiber.Ctx) error {
	var customer model.Customer
	if err := c.BodyParser(&customer); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if customer.Name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Customer name is required"})
	}
	customer.CurrentDebt = 0

	userID, _ := c.Locals("user_id").(string)
	customer.CreatedBy = userID
	customer.UpdatedBy = userID

	if err := h.customers.Create(&customer); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create customer"})
	}
	return c.Status(201).JSON(customer)
}

func (h *CustomerHandler) GetCustomers(c *fiber.Ctx) error {
	customers, err := h.customers.FindAll()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch customers"})
	}
	return c.JSON(fiber.Map{"total": len(customers), "customers": customers})
}

func (h *CustomerHandler) GetCustomer(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid customer ID"})
	}
	customer, err := h.customers.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "Customer not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch customer"})
	}
	return c.JSON(customer)
}

func (h *CustomerHandler) UpdateCustomer(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid customer ID"})
	}
	customer, err := h.customers.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "Customer not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch customer"})
	}

	var req struct {
		Name        *string `json:"name,omitempty"`
		Phone       *string `json:"phone,omitempty"`
		Email       *string `json:"email,omitempty"`
		Address     *string `json:"address,omitempty"`
		CreditLimit *int64  `json:"credit_limit,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.Phone != nil {
		customer.Phone = *req.Phone
	}
	if req.Email != nil {
		customer.Email = *req.Email
	}
	if req.Address != nil {
		customer.Address = *req.Address
	}
	if req.CreditLimit != nil {
		customer.CreditLimit = *req.CreditLimit
	}
	customer.UpdatedBy, _ = c.Locals("user_id").(string)

	if err := h.customers.Update(customer); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update customer"})
	}
	return c.JSON(customer)
}

func (h *CustomerHandler) DeleteCustomer(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid customer ID"})
	}
	customer, err := h.customers.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "Customer not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch customer"})
	}
	if customer.CurrentDebt != 0 {
		return c.Status(422).JSON(fiber.Map{"error": "Customer has outstanding debt"})
	}
	if err := h.customers.Delete(id); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to delete customer"})
	}
	return c.JSON(fiber.Map{"message": "Customer deleted"})
}
