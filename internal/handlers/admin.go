package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/angkor-pos/internal/currency"
	"github.com/example/angkor-pos/internal/models"
)

// AdminHandler manages admin-only reporting endpoints.
type AdminHandler struct {
	db   *gorm.DB
	conv *currency.Converter
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(db *gorm.DB, conv *currency.Converter) *AdminHandler {
	return &AdminHandler{db: db, conv: conv}
}

// DashboardStats returns aggregate statistics for the admin dashboard.
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	var totalOrders int64
	if err := h.db.Model(&models.Order{}).Count(&totalOrders).Error; err != nil {
		return err
	}

	type statusCount struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}
	var statusCounts []statusCount
	if err := h.db.Model(&models.Order{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return err
	}

	ordersByStatus := make(map[string]int64)
	for _, sc := range statusCounts {
		ordersByStatus[sc.Status] = sc.Count
	}

	// Revenue excludes cancelled orders; discounted totals fall back to the
	// subtotal when no discount was recorded.
	var totalRevenue float64
	if err := h.db.Model(&models.Order{}).
		Where("status != ?", models.StatusCancelled).
		Select("COALESCE(SUM(CASE WHEN bill_total_after_discount > 0 THEN bill_total_after_discount ELSE bill_subtotal END), 0)").
		Scan(&totalRevenue).Error; err != nil {
		return err
	}

	var tableCounts []statusCount
	if err := h.db.Model(&models.Table{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&tableCounts).Error; err != nil {
		return err
	}

	tablesByStatus := make(map[string]int64)
	for _, tc := range tableCounts {
		tablesByStatus[tc.Status] = tc.Count
	}

	var activeCustomers int64
	if err := h.db.Model(&models.Customer{}).Where("is_active = ?", true).Count(&activeCustomers).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total_orders":      totalOrders,
			"orders_by_status":  ordersByStatus,
			"total_revenue":     totalRevenue,
			"total_revenue_usd": h.conv.ToUSD(totalRevenue),
			"tables_by_status":  tablesByStatus,
			"active_customers":  activeCustomers,
		},
	})
}
