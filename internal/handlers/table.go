package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/angkor-pos/internal/models"
	"github.com/example/angkor-pos/internal/services"
	"github.com/example/angkor-pos/internal/utils"
)

// TableHandler manages table endpoints.
type TableHandler struct {
	tables *services.TableService
}

// NewTableHandler constructs TableHandler.
func NewTableHandler(tables *services.TableService) *TableHandler {
	return &TableHandler{tables: tables}
}

type createTableRequest struct {
	TableNumber int `json:"table_number"`
	Seats       int `json:"seats"`
}

// CreateTable registers a new physical table.
func (h *TableHandler) CreateTable(c *fiber.Ctx) error {
	var req createTableRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	table, err := h.tables.Create(req.TableNumber, req.Seats)
	if err != nil {
		return err
	}

	utils.Logger.Infof("table %d created (%d seats)", table.TableNumber, table.Seats)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": table})
}

// ListTables returns every table ordered by table number.
func (h *TableHandler) ListTables(c *fiber.Ctx) error {
	tables, err := h.tables.List()
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "count": len(tables), "data": tables})
}

// ListAvailableTables streams the free tables in table-number order.
func (h *TableHandler) ListAvailableTables(c *fiber.Ctx) error {
	tables := make([]models.Table, 0)
	for table, err := range h.tables.Available() {
		if err != nil {
			return err
		}
		tables = append(tables, table)
	}

	return c.JSON(fiber.Map{"success": true, "count": len(tables), "data": tables})
}

// GetTable returns one table.
func (h *TableHandler) GetTable(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	table, err := h.tables.Get(id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": table})
}

type updateTableStatusRequest struct {
	Status  string     `json:"status"`
	OrderID *uuid.UUID `json:"order_id"`
}

// UpdateTableStatus applies a manual status change; moving to available
// always drops the bound order.
func (h *TableHandler) UpdateTableStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateTableStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	table, err := h.tables.UpdateStatus(id, req.Status, req.OrderID)
	if err != nil {
		return err
	}

	utils.Logger.Infof("table %d status changed to %s", table.TableNumber, table.Status)
	return c.JSON(fiber.Map{"success": true, "data": table})
}

// ReleaseTable frees a table regardless of which order held it.
func (h *TableHandler) ReleaseTable(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.tables.Release(id); err != nil {
		return err
	}

	table, err := h.tables.Get(id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "table released", "data": table})
}

// DeleteTable removes an unoccupied table.
func (h *TableHandler) DeleteTable(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.tables.Delete(id); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "table deleted",
		"data":    fiber.Map{"id": id},
	})
}
