package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/angkor-pos/internal/currency"
	"github.com/example/angkor-pos/internal/models"
	"github.com/example/angkor-pos/internal/utils"
)

// MenuHandler manages menu categories and items.
type MenuHandler struct {
	db   *gorm.DB
	conv *currency.Converter
}

// NewMenuHandler constructs MenuHandler.
func NewMenuHandler(db *gorm.DB, conv *currency.Converter) *MenuHandler {
	return &MenuHandler{db: db, conv: conv}
}

// ListCategories returns all categories with their items.
func (h *MenuHandler) ListCategories(c *fiber.Ctx) error {
	var categories []models.MenuCategory
	if err := h.db.Preload("Items").Order("name asc").Find(&categories).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "count": len(categories), "data": categories})
}

type categoryRequest struct {
	Name string `json:"name"`
}

// CreateCategory persists a new category. Category names are unique.
func (h *MenuHandler) CreateCategory(c *fiber.Ctx) error {
	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Name) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "category name is required")
	}

	var count int64
	if err := h.db.Model(&models.MenuCategory{}).
		Where("LOWER(name) = LOWER(?)", req.Name).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fiber.NewError(fiber.StatusConflict, "category name already exists")
	}

	category := models.MenuCategory{Name: strings.TrimSpace(req.Name)}
	if err := h.db.Create(&category).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": category})
}

// DeleteCategory removes a category and its items.
func (h *MenuHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var category models.MenuCategory
	if err := h.db.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "category not found")
		}
		return err
	}

	if err := h.db.Where("category_id = ?", id).Delete(&models.MenuItem{}).Error; err != nil {
		return err
	}
	if err := h.db.Delete(&category).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "category deleted", "data": fiber.Map{"id": id}})
}

type menuItemRequest struct {
	CategoryID uuid.UUID `json:"category_id"`
	Name       string    `json:"name"`
	Price      float64   `json:"price"`
	Available  *bool     `json:"available"`
}

// CreateMenuItem persists a new dish under a category, deriving the USD
// mirror price at the fixed rate.
func (h *MenuHandler) CreateMenuItem(c *fiber.Ctx) error {
	var req menuItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Name) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "item name is required")
	}
	if req.Price < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "price cannot be negative")
	}
	if req.CategoryID == uuid.Nil {
		return fiber.NewError(fiber.StatusBadRequest, "category_id is required")
	}

	var category models.MenuCategory
	if err := h.db.First(&category, "id = ?", req.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "category not found")
		}
		return err
	}

	item := models.MenuItem{
		CategoryID: req.CategoryID,
		Name:       strings.TrimSpace(req.Name),
		Price:      req.Price,
		PriceUSD:   h.conv.ToUSD(req.Price),
		Available:  true,
	}
	if req.Available != nil {
		item.Available = *req.Available
	}

	if err := h.db.Create(&item).Error; err != nil {
		return err
	}

	utils.Logger.Infof("menu item %q added to %q at %.0f riel", item.Name, category.Name, item.Price)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": item})
}

// UpdateMenuItem edits a dish; price changes refresh the USD mirror.
func (h *MenuHandler) UpdateMenuItem(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var item models.MenuItem
	if err := h.db.First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "menu item not found")
		}
		return err
	}

	var req menuItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if strings.TrimSpace(req.Name) != "" {
		item.Name = strings.TrimSpace(req.Name)
	}
	if req.Price > 0 {
		item.Price = req.Price
		item.PriceUSD = h.conv.ToUSD(req.Price)
	}
	if req.Available != nil {
		item.Available = *req.Available
	}

	if err := h.db.Save(&item).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": item})
}

// DeleteMenuItem removes a dish.
func (h *MenuHandler) DeleteMenuItem(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Delete(&models.MenuItem{}, "id = ?", id).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "menu item deleted", "data": fiber.Map{"id": id}})
}
