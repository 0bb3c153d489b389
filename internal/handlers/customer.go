package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/angkor-pos/internal/services"
	"github.com/example/angkor-pos/internal/utils"
)

// CustomerHandler manages customer endpoints.
type CustomerHandler struct {
	customers *services.CustomerService
}

// NewCustomerHandler constructs CustomerHandler.
func NewCustomerHandler(customers *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

// ListCustomers returns customers, newest first. Pass active=true to hide
// soft-deleted records.
func (h *CustomerHandler) ListCustomers(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	activeOnly := c.Query("active") == "true"

	customers, total, err := h.customers.List(activeOnly, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"count":   total,
		"data":    customers,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetCustomer returns one customer.
func (h *CustomerHandler) GetCustomer(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	customer, err := h.customers.Get(id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": customer})
}

type updateCustomerRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// UpdateCustomer renames a customer and cascades the new identity into every
// matching order snapshot.
func (h *CustomerHandler) UpdateCustomer(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateCustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	customer, err := h.customers.Rename(id, req.Name, req.Phone)
	if err != nil {
		return err
	}

	utils.Logger.Infof("customer %s renamed to %q", id, customer.Name)
	return c.JSON(fiber.Map{"success": true, "data": customer})
}

// DeleteCustomer soft-deletes a customer and blanks their order snapshots.
func (h *CustomerHandler) DeleteCustomer(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.customers.SoftDelete(id); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "customer deactivated",
		"data":    fiber.Map{"id": id},
	})
}

// ReconcileCustomers rebuilds every customer's statistics from the order
// history. Admin-only; safe to run repeatedly.
func (h *CustomerHandler) ReconcileCustomers(c *fiber.Ctx) error {
	result, err := h.customers.ReconcileAll()
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": result})
}
