package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/angkor-pos/internal/config"
	"github.com/example/angkor-pos/internal/currency"
	"github.com/example/angkor-pos/internal/handlers"
	"github.com/example/angkor-pos/internal/middleware"
	"github.com/example/angkor-pos/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	conv := currency.NewConverter(cfg.ExchangeRate)

	tableService := services.NewTableService(db)
	customerService := services.NewCustomerService(db, conv)
	orderService := services.NewOrderService(db, conv, tableService, customerService)

	authHandler := handlers.NewAuthHandler(db, cfg)
	orderHandler := handlers.NewOrderHandler(orderService)
	tableHandler := handlers.NewTableHandler(tableService)
	customerHandler := handlers.NewCustomerHandler(customerService)
	menuHandler := handlers.NewMenuHandler(db, conv)
	adminHandler := handlers.NewAdminHandler(db, conv)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	// Protected routes: staff identity is attached before any mutation runs.
	protected := api.Group("", middleware.AuthMiddleware(cfg, db))

	orders := protected.Group("/orders")
	orders.Post("/", orderHandler.CreateOrder)
	orders.Get("/", orderHandler.ListOrders)
	orders.Get("/sales-by-staff", orderHandler.SalesByStaff)
	orders.Get("/:id", orderHandler.GetOrder)
	orders.Patch("/:id", orderHandler.UpdateOrder)
	orders.Post("/:id/pay-cash", orderHandler.PayOrderCash)
	orders.Delete("/:id", orderHandler.DeleteOrder)

	tables := protected.Group("/tables")
	tables.Post("/", tableHandler.CreateTable)
	tables.Get("/", tableHandler.ListTables)
	tables.Get("/available", tableHandler.ListAvailableTables)
	tables.Get("/:id", tableHandler.GetTable)
	tables.Patch("/:id/status", tableHandler.UpdateTableStatus)
	tables.Post("/:id/release", tableHandler.ReleaseTable)
	tables.Delete("/:id", tableHandler.DeleteTable)

	customers := protected.Group("/customers")
	customers.Get("/", customerHandler.ListCustomers)
	customers.Get("/:id", customerHandler.GetCustomer)
	customers.Patch("/:id", customerHandler.UpdateCustomer)

	menu := protected.Group("/menu")
	menu.Get("/categories", menuHandler.ListCategories)
	menu.Post("/categories", menuHandler.CreateCategory)
	menu.Delete("/categories/:id", menuHandler.DeleteCategory)
	menu.Post("/items", menuHandler.CreateMenuItem)
	menu.Patch("/items/:id", menuHandler.UpdateMenuItem)
	menu.Delete("/items/:id", menuHandler.DeleteMenuItem)

	// Admin-only routes
	admin := protected.Group("", middleware.RequireAdmin())
	admin.Post("/customers/reconcile", customerHandler.ReconcileCustomers)
	admin.Delete("/customers/:id", customerHandler.DeleteCustomer)
	admin.Get("/staff", authHandler.ListStaff)
	admin.Delete("/staff/:id", authHandler.DeleteStaff)
	admin.Get("/dashboard", adminHandler.DashboardStats)
}
