package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/angkor-pos/internal/currency"
	"github.com/example/angkor-pos/internal/models"
	"github.com/example/angkor-pos/internal/utils"
)

// CustomerService owns customer records and their spending statistics.
// Statistics are maintained incrementally per order and can be rebuilt from
// the order history with ReconcileAll.
type CustomerService struct {
	db   *gorm.DB
	conv *currency.Converter
}

// NewCustomerService constructs a CustomerService.
func NewCustomerService(db *gorm.DB, conv *currency.Converter) *CustomerService {
	return &CustomerService{db: db, conv: conv}
}

// Find looks up an active customer by case-insensitive name or exact phone.
// When several match, the most recently created wins.
func (s *CustomerService) Find(name, phone string) (*models.Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" && phone == "" {
		return nil, validationf("customer name or phone is required")
	}

	query := s.db.Where("is_active = ?", true)
	if phone != "" {
		query = query.Where("LOWER(name) = LOWER(?) OR phone = ?", name, phone)
	} else {
		query = query.Where("LOWER(name) = LOWER(?)", name)
	}

	var customer models.Customer
	if err := query.Order("created_at desc").First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("customer %q not found", name)
		}
		return nil, err
	}
	return &customer, nil
}

// ResolveOrCreate returns the matching active customer, creating a fresh
// record with zeroed statistics when none exists.
func (s *CustomerService) ResolveOrCreate(name, phone string) (*models.Customer, error) {
	customer, err := s.Find(name, phone)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	fresh := models.Customer{
		Name:     strings.TrimSpace(name),
		Phone:    phone,
		IsActive: true,
	}
	if err := s.db.Create(&fresh).Error; err != nil {
		return nil, err
	}
	return &fresh, nil
}

// Get loads a customer by id.
func (s *CustomerService) Get(id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := s.db.First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("customer %s not found", id)
		}
		return nil, err
	}
	return &customer, nil
}

// List returns customers, optionally restricted to active ones.
func (s *CustomerService) List(activeOnly bool, limit, offset int) ([]models.Customer, int64, error) {
	query := s.db.Model(&models.Customer{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var customers []models.Customer
	if err := query.Order("created_at desc").
		Limit(limit).Offset(offset).
		Find(&customers).Error; err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

// ApplyOrderDelta adjusts a customer's totals by the given deltas. Increments
// are atomic at the row level; totals that would go negative are silently
// clamped at zero rather than failing. lastOrderDate moves only when the
// delta represents a new order.
func (s *CustomerService) ApplyOrderDelta(customerID uuid.UUID, amountDelta float64, orderCountDelta int) error {
	updates := map[string]any{
		"total_orders": gorm.Expr(
			"CASE WHEN total_orders + ? < 0 THEN 0 ELSE total_orders + ? END",
			orderCountDelta, orderCountDelta),
		"total_spent": gorm.Expr(
			"CASE WHEN total_spent + ? < 0 THEN 0 ELSE total_spent + ? END",
			amountDelta, amountDelta),
	}
	if orderCountDelta > 0 {
		updates["last_order_date"] = time.Now()
	}

	result := s.db.Model(&models.Customer{}).
		Where("id = ?", customerID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFoundf("customer %s not found", customerID)
	}

	// The USD mirror is recomputed from a fresh read. Under concurrent deltas
	// it may briefly lag the atomic totals until the next write lands.
	var customer models.Customer
	if err := s.db.First(&customer, "id = ?", customerID).Error; err != nil {
		return err
	}
	return s.db.Model(&customer).
		UpdateColumn("total_spent_usd", s.conv.ToUSD(customer.TotalSpent)).Error
}

// RenameCascade propagates a new name and phone onto every order whose
// customer snapshot matches oldName case-insensitively. Both the flat and the
// nested snapshot copies are rewritten.
func (s *CustomerService) RenameCascade(oldName, newName, newPhone string) error {
	return s.db.Model(&models.Order{}).
		Where("LOWER(customer_name) = LOWER(?)", oldName).
		Updates(map[string]any{
			"customer_name":  newName,
			"customer_phone": newPhone,
			"detail_name":    newName,
			"detail_phone":   newPhone,
		}).Error
}

// Rename updates a customer's identity and cascades the change into order
// snapshots.
func (s *CustomerService) Rename(customerID uuid.UUID, newName, newPhone string) (*models.Customer, error) {
	if strings.TrimSpace(newName) == "" {
		return nil, validationf("customer name is required")
	}

	customer, err := s.Get(customerID)
	if err != nil {
		return nil, err
	}

	oldName := customer.Name
	customer.Name = strings.TrimSpace(newName)
	customer.Phone = newPhone
	if err := s.db.Save(customer).Error; err != nil {
		return nil, err
	}

	if err := s.RenameCascade(oldName, customer.Name, newPhone); err != nil {
		return nil, err
	}
	return customer, nil
}

// SoftDelete deactivates a customer and blanks the customer snapshot on every
// order that still references the name. Orders are otherwise untouched.
func (s *CustomerService) SoftDelete(customerID uuid.UUID) error {
	customer, err := s.Get(customerID)
	if err != nil {
		return err
	}

	if err := s.db.Model(customer).Update("is_active", false).Error; err != nil {
		return err
	}

	return s.db.Model(&models.Order{}).
		Where("LOWER(customer_name) = LOWER(?)", customer.Name).
		Updates(map[string]any{
			"customer_name":  "",
			"customer_phone": "",
			"detail_name":    "",
			"detail_phone":   "",
		}).Error
}

// ReconcileResult summarizes a reconciliation pass.
type ReconcileResult struct {
	OrdersScanned    int `json:"orders_scanned"`
	CustomersUpdated int `json:"customers_updated"`
	CustomersCreated int `json:"customers_created"`
}

type customerGroup struct {
	name  string
	phone string
	count int
	total float64
	last  time.Time
}

// ReconcileAll rebuilds every customer's statistics from the order history.
// This is the recovery path for drift left behind by the non-atomic
// incremental updates; running it twice without intervening order changes
// produces identical totals.
func (s *CustomerService) ReconcileAll() (*ReconcileResult, error) {
	var orders []models.Order
	if err := s.db.Where("customer_name <> ''").
		Order("created_at asc").
		Find(&orders).Error; err != nil {
		return nil, err
	}

	groups := make(map[string]*customerGroup)
	for _, order := range orders {
		key := strings.ToLower(order.CustomerName)
		group := groups[key]
		if group == nil {
			group = &customerGroup{name: order.CustomerName}
			groups[key] = group
		}

		group.count++
		total := order.Bills.TotalAfterDiscount
		if total == 0 {
			total = order.Bills.Subtotal
		}
		group.total += total

		if group.phone == "" && order.CustomerPhone != "" {
			group.phone = order.CustomerPhone
		}
		if order.CreatedAt.After(group.last) {
			group.last = order.CreatedAt
		}
	}

	result := &ReconcileResult{OrdersScanned: len(orders)}
	for _, group := range groups {
		if err := s.reconcileGroup(group, result); err != nil {
			return nil, err
		}
	}

	utils.Logger.Infof("reconciliation: %d orders scanned, %d customers updated, %d created",
		result.OrdersScanned, result.CustomersUpdated, result.CustomersCreated)
	return result, nil
}

func (s *CustomerService) reconcileGroup(group *customerGroup, result *ReconcileResult) error {
	query := s.db.Model(&models.Customer{})
	if group.phone != "" {
		query = query.Where("LOWER(name) = LOWER(?) OR phone = ?", group.name, group.phone)
	} else {
		query = query.Where("LOWER(name) = LOWER(?)", group.name)
	}

	last := group.last
	var customer models.Customer
	err := query.Order("created_at desc").First(&customer).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		fresh := models.Customer{
			Name:          group.name,
			Phone:         group.phone,
			TotalOrders:   group.count,
			TotalSpent:    group.total,
			TotalSpentUSD: s.conv.ToUSD(group.total),
			LastOrderDate: &last,
			IsActive:      true,
		}
		if err := s.db.Create(&fresh).Error; err != nil {
			return err
		}
		result.CustomersCreated++
		return nil
	case err != nil:
		return err
	}

	updates := map[string]any{
		"total_orders":    group.count,
		"total_spent":     group.total,
		"total_spent_usd": s.conv.ToUSD(group.total),
		"last_order_date": last,
	}
	if group.phone != "" {
		updates["phone"] = group.phone
	}
	if err := s.db.Model(&customer).Updates(updates).Error; err != nil {
		return err
	}
	result.CustomersUpdated++
	return nil
}
