package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/angkor-pos/internal/middleware"
	"github.com/example/angkor-pos/internal/services"
	"github.com/example/angkor-pos/internal/utils"
)

// OrderHandler manages order endpoints.
type OrderHandler struct {
	orders *services.OrderService
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(orders *services.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// CreateOrder opens a new order for the acting staff member.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var input services.OrderInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var staffID *uuid.UUID
	var staffName string
	if staff, ok := middleware.GetCurrentStaff(c); ok {
		id := staff.ID
		staffID = &id
		staffName = staff.Name
	}

	order, err := h.orders.Create(input, staffID, staffName)
	if err != nil {
		return err
	}

	utils.Logger.Infof("order %s created by %s (total %.0f riel)", order.ID, staffName, order.Bills.TotalAfterDiscount)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": order})
}

// ListOrders returns orders newest first, optionally filtered by status.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	orders, total, err := h.orders.List(c.Query("status"), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"count":   total,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetOrder returns a single order with its items.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	order, err := h.orders.Get(id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// UpdateOrder merges a patch into an order; paying, completing, or cancelling
// releases the bound table.
func (h *OrderHandler) UpdateOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var patch services.OrderPatch
	if err := c.BodyParser(&patch); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	order, err := h.orders.Update(id, patch)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// DeleteOrder removes an order after reversing its customer and table effects.
func (h *OrderHandler) DeleteOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.orders.Delete(id); err != nil {
		return err
	}

	utils.Logger.Infof("order %s deleted", id)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "order deleted",
		"data":    fiber.Map{"id": id},
	})
}

type cashPaymentRequest struct {
	CashReceived float64 `json:"cash_received"`
}

// PayOrderCash settles an order in cash and quotes the change due at the
// register.
func (h *OrderHandler) PayOrderCash(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req cashPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	order, payment, err := h.orders.PayCash(id, req.CashReceived)
	if err != nil {
		return err
	}

	utils.Logger.Infof("order %s paid in cash (change due %.0f riel)", id, payment.ChangeDue)
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"order":   order,
			"payment": payment,
		},
	})
}

// SalesByStaff aggregates sales per staff member, highest first.
func (h *OrderHandler) SalesByStaff(c *fiber.Ctx) error {
	stats, err := h.orders.SalesStatsByStaff()
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "count": len(stats), "data": stats})
}
