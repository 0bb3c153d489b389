package services

import (
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/angkor-pos/internal/currency"
	"github.com/example/angkor-pos/internal/models"
	"github.com/example/angkor-pos/internal/utils"
)

// OrderService is the orchestration point of the order lifecycle. Each
// mutation runs as a sequence of independently-committing steps (order, then
// customer statistics, then table occupancy); there is no cross-entity
// transaction, and a failure after the order write leaves the order in place.
// CustomerService.ReconcileAll and a manual table release are the repair
// paths.
type OrderService struct {
	db        *gorm.DB
	conv      *currency.Converter
	tables    *TableService
	customers *CustomerService
	policy    TransitionPolicy
}

// NewOrderService constructs an OrderService with its collaborators.
func NewOrderService(db *gorm.DB, conv *currency.Converter, tables *TableService, customers *CustomerService) *OrderService {
	return &OrderService{
		db:        db,
		conv:      conv,
		tables:    tables,
		customers: customers,
		policy:    PermissivePolicy{},
	}
}

// SetTransitionPolicy swaps the status-transition rule set.
func (s *OrderService) SetTransitionPolicy(policy TransitionPolicy) {
	s.policy = policy
}

// OrderItemInput is one requested line item. When MenuItemID is set, name and
// unit price are filled in from the menu; the stored line stays a snapshot.
// LineTotal defaults to quantity x unit price when omitted.
type OrderItemInput struct {
	MenuItemID *uuid.UUID `json:"menu_item_id"`
	Name       string     `json:"name"`
	Quantity   int        `json:"quantity"`
	UnitPrice  float64    `json:"unit_price"`
	LineTotal  float64    `json:"line_total"`
}

// OrderInput is the canonical create request. The customer may arrive either
// as flat fields or as the nested details object; snapshot() folds both into
// one shape at the boundary.
type OrderInput struct {
	CustomerName    string                  `json:"customer_name"`
	CustomerPhone   string                  `json:"customer_phone"`
	Guests          int                     `json:"guests"`
	CustomerDetails *models.CustomerDetails `json:"customer_details"`
	TableID         *uuid.UUID              `json:"table_id"`
	Items           []OrderItemInput        `json:"items"`
	DiscountPercent float64                 `json:"discount_percent"`
	DiscountAmount  float64                 `json:"discount_amount"`
	PaymentType     string                  `json:"payment_type"`
	Status          string                  `json:"status"`
}

func (in *OrderInput) snapshot() models.CustomerDetails {
	snap := models.CustomerDetails{
		Name:   strings.TrimSpace(in.CustomerName),
		Phone:  in.CustomerPhone,
		Guests: in.Guests,
	}
	if in.CustomerDetails != nil {
		if snap.Name == "" {
			snap.Name = strings.TrimSpace(in.CustomerDetails.Name)
		}
		if snap.Phone == "" {
			snap.Phone = in.CustomerDetails.Phone
		}
		if snap.Guests == 0 {
			snap.Guests = in.CustomerDetails.Guests
		}
	}
	if snap.Guests <= 0 {
		snap.Guests = 1
	}
	return snap
}

func (s *OrderService) buildItems(inputs []OrderItemInput) ([]models.OrderItem, float64, error) {
	if len(inputs) == 0 {
		return nil, 0, validationf("at least one item is required")
	}

	items := make([]models.OrderItem, 0, len(inputs))
	var subtotal float64
	for i, input := range inputs {
		if input.MenuItemID != nil {
			var dish models.MenuItem
			if err := s.db.First(&dish, "id = ?", *input.MenuItemID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, 0, validationf("item %d: menu item %s not found", i+1, input.MenuItemID)
				}
				return nil, 0, err
			}
			if !dish.Available {
				return nil, 0, conflictf("item %d: %q is not available", i+1, dish.Name)
			}
			if strings.TrimSpace(input.Name) == "" {
				input.Name = dish.Name
			}
			if input.UnitPrice == 0 {
				input.UnitPrice = dish.Price
			}
		}
		if strings.TrimSpace(input.Name) == "" {
			return nil, 0, validationf("item %d: name is required", i+1)
		}
		if input.Quantity <= 0 {
			return nil, 0, validationf("item %d: quantity must be a positive integer", i+1)
		}
		if input.UnitPrice < 0 {
			return nil, 0, validationf("item %d: unit_price cannot be negative", i+1)
		}

		lineTotal := input.LineTotal
		if lineTotal == 0 {
			lineTotal = float64(input.Quantity) * input.UnitPrice
		}
		subtotal += lineTotal

		items = append(items, models.OrderItem{
			Name:      strings.TrimSpace(input.Name),
			Quantity:  input.Quantity,
			UnitPrice: input.UnitPrice,
			LineTotal: lineTotal,
		})
	}
	return items, subtotal, nil
}

func (s *OrderService) buildBills(subtotal, discountAmount, discountPercent float64) (models.Bills, error) {
	if discountPercent < 0 || discountPercent > 100 {
		return models.Bills{}, validationf("discount_percent must be between 0 and 100")
	}
	if discountAmount < 0 {
		return models.Bills{}, validationf("discount_amount cannot be negative")
	}
	if discountAmount == 0 && discountPercent > 0 {
		discountAmount = subtotal * discountPercent / 100
	}

	total := subtotal - discountAmount
	return models.Bills{
		Subtotal:              subtotal,
		SubtotalUSD:           s.conv.ToUSD(subtotal),
		DiscountAmount:        discountAmount,
		DiscountPercent:       discountPercent,
		TotalAfterDiscount:    total,
		TotalAfterDiscountUSD: s.conv.ToUSD(total),
	}, nil
}

// Create validates the request, derives bills and USD mirrors, persists the
// order, then applies the customer and table side effects in that order.
func (s *OrderService) Create(input OrderInput, staffID *uuid.UUID, staffName string) (*models.Order, error) {
	items, subtotal, err := s.buildItems(input.Items)
	if err != nil {
		return nil, err
	}

	bills, err := s.buildBills(subtotal, input.DiscountAmount, input.DiscountPercent)
	if err != nil {
		return nil, err
	}

	snap := input.snapshot()

	if input.PaymentType != "" && !validPaymentType(input.PaymentType) {
		return nil, validationf("unknown payment type %q", input.PaymentType)
	}

	status := input.Status
	if status == "" {
		status = models.StatusInProgress
		if input.PaymentType != "" {
			status = models.StatusPreparing
		}
	} else if !validOrderStatus(status) {
		return nil, validationf("unknown order status %q", status)
	}

	order := models.Order{
		CustomerName:    snap.Name,
		CustomerPhone:   snap.Phone,
		Guests:          snap.Guests,
		CustomerDetails: snap,
		Items:           items,
		Bills:           bills,
		PaymentType:     input.PaymentType,
		Status:          status,
		StaffID:         staffID,
		StaffName:       staffName,
	}

	// Lenient table resolution: an unknown table id drops the binding instead
	// of failing the sale.
	if input.TableID != nil {
		table, err := s.tables.Get(*input.TableID)
		switch {
		case err == nil:
			order.TableID = input.TableID
			order.TableNumber = strconv.Itoa(table.TableNumber)
		case errors.Is(err, ErrNotFound):
			utils.Logger.Warnf("create order: table %s not found, continuing without a table", input.TableID)
		default:
			return nil, err
		}
	}

	// Step 1: persist the order. Steps 2 and 3 commit independently; if one of
	// them fails the order stays and the error surfaces to the caller.
	if err := s.db.Create(&order).Error; err != nil {
		return nil, err
	}

	// Step 2: customer statistics.
	if order.CustomerName != "" {
		customer, err := s.customers.ResolveOrCreate(order.CustomerName, order.CustomerPhone)
		if err != nil {
			return nil, err
		}
		if err := s.customers.ApplyOrderDelta(customer.ID, order.Bills.TotalAfterDiscount, 1); err != nil {
			return nil, err
		}
	}

	// Step 3: table occupancy.
	if order.TableID != nil {
		if err := s.tables.Assign(*order.TableID, order.ID, order.CustomerName, order.CustomerPhone, order.Guests); err != nil {
			return nil, err
		}
	}

	return &order, nil
}

// OrderPatch carries the editable order fields; nil pointers are left as-is.
// Amount edits deliberately do not touch customer statistics — that drift is
// what ReconcileAll repairs.
type OrderPatch struct {
	Status          *string                 `json:"status"`
	PaymentType     *string                 `json:"payment_type"`
	CustomerName    *string                 `json:"customer_name"`
	CustomerPhone   *string                 `json:"customer_phone"`
	Guests          *int                    `json:"guests"`
	Items           []OrderItemInput        `json:"items"`
	DiscountPercent *float64                `json:"discount_percent"`
	DiscountAmount  *float64                `json:"discount_amount"`
}

// clearsTable reports whether an order in this status has left its table.
func clearsTable(status string) bool {
	switch status {
	case models.StatusPaid, models.StatusCompleted, models.StatusCancelled:
		return true
	}
	return false
}

func validOrderStatus(status string) bool {
	switch status {
	case models.StatusInProgress, models.StatusPreparing, models.StatusCompleted,
		models.StatusPaid, models.StatusCancelled:
		return true
	}
	return false
}

func validPaymentType(payment string) bool {
	switch payment {
	case models.PaymentCash, models.PaymentOnline:
		return true
	}
	return false
}

// Update merges the patch into the order. When the status transitions into
// paid/completed/cancelled the bound table is released exactly once.
func (s *OrderService) Update(orderID uuid.UUID, patch OrderPatch) (*models.Order, error) {
	order, err := s.Get(orderID)
	if err != nil {
		return nil, err
	}
	prevStatus := order.Status

	if patch.Status != nil && *patch.Status != order.Status {
		if !validOrderStatus(*patch.Status) {
			return nil, validationf("unknown order status %q", *patch.Status)
		}
		if !s.policy.Allowed(order.Status, *patch.Status) {
			return nil, conflictf("status change %s -> %s is not allowed", order.Status, *patch.Status)
		}
		order.Status = *patch.Status
	}
	if patch.PaymentType != nil {
		if *patch.PaymentType != "" && !validPaymentType(*patch.PaymentType) {
			return nil, validationf("unknown payment type %q", *patch.PaymentType)
		}
		order.PaymentType = *patch.PaymentType
	}
	if patch.CustomerName != nil {
		order.CustomerName = strings.TrimSpace(*patch.CustomerName)
		order.CustomerDetails.Name = order.CustomerName
	}
	if patch.CustomerPhone != nil {
		order.CustomerPhone = *patch.CustomerPhone
		order.CustomerDetails.Phone = *patch.CustomerPhone
	}
	if patch.Guests != nil && *patch.Guests > 0 {
		order.Guests = *patch.Guests
		order.CustomerDetails.Guests = *patch.Guests
	}

	rebill := false
	if patch.Items != nil {
		items, _, err := s.buildItems(patch.Items)
		if err != nil {
			return nil, err
		}
		if err := s.db.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return nil, err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		order.Items = items
		// A percent discount is re-derived from the new subtotal unless the
		// patch pins an explicit amount.
		if patch.DiscountAmount == nil && order.Bills.DiscountPercent > 0 {
			order.Bills.DiscountAmount = 0
		}
		rebill = true
	}
	if patch.DiscountPercent != nil {
		order.Bills.DiscountPercent = *patch.DiscountPercent
		order.Bills.DiscountAmount = 0
		rebill = true
	}
	if patch.DiscountAmount != nil {
		order.Bills.DiscountAmount = *patch.DiscountAmount
		rebill = true
	}

	if rebill {
		var subtotal float64
		for _, item := range order.Items {
			subtotal += item.LineTotal
		}
		bills, err := s.buildBills(subtotal, order.Bills.DiscountAmount, order.Bills.DiscountPercent)
		if err != nil {
			return nil, err
		}
		order.Bills = bills
	}

	if err := s.db.Save(order).Error; err != nil {
		return nil, err
	}

	// Release fires only on the transition into a cleared status, so repeated
	// updates of an already-paid order do not touch the table again.
	if order.TableID != nil && clearsTable(order.Status) && !clearsTable(prevStatus) {
		if err := s.tables.Release(*order.TableID); err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	return order, nil
}

// CashPayment quotes a cash settlement at the register. AmountDue is the bill
// total rounded to the nearest 100 riel note; the stored bill total itself is
// never cash-rounded.
type CashPayment struct {
	AmountDue    float64 `json:"amount_due"`
	CashReceived float64 `json:"cash_received"`
	ChangeDue    float64 `json:"change_due"`
}

// PayCash settles an order in cash: quotes the rounded amount due and the
// change, then marks the order paid, releasing its table.
func (s *OrderService) PayCash(orderID uuid.UUID, cashReceived float64) (*models.Order, *CashPayment, error) {
	order, err := s.Get(orderID)
	if err != nil {
		return nil, nil, err
	}
	if clearsTable(order.Status) {
		return nil, nil, conflictf("order %s is already %s", order.ID, order.Status)
	}

	amountDue := s.conv.RoundToCash(order.Bills.TotalAfterDiscount)
	if cashReceived < amountDue {
		return nil, nil, validationf("cash received %.0f is less than the %.0f due", cashReceived, amountDue)
	}

	paid := models.StatusPaid
	cash := models.PaymentCash
	updated, err := s.Update(orderID, OrderPatch{Status: &paid, PaymentType: &cash})
	if err != nil {
		return nil, nil, err
	}

	return updated, &CashPayment{
		AmountDue:    amountDue,
		CashReceived: cashReceived,
		ChangeDue:    cashReceived - amountDue,
	}, nil
}

// Get loads an order with its items.
func (s *OrderService) Get(orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("order %s not found", orderID)
		}
		return nil, err
	}
	return &order, nil
}

// List returns orders newest first, optionally filtered by status.
func (s *OrderService) List(status string, limit, offset int) ([]models.Order, int64, error) {
	query := s.db.Model(&models.Order{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := query.Preload("Items").
		Order("created_at desc").
		Limit(limit).Offset(offset).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Delete removes an order, first reversing its effect on the matched customer
// and releasing its table.
func (s *OrderService) Delete(orderID uuid.UUID) error {
	order, err := s.Get(orderID)
	if err != nil {
		return err
	}

	if order.CustomerName != "" {
		customer, err := s.customers.Find(order.CustomerName, order.CustomerPhone)
		switch {
		case err == nil:
			if err := s.customers.ApplyOrderDelta(customer.ID, -order.Bills.TotalAfterDiscount, -1); err != nil {
				return err
			}
		case errors.Is(err, ErrNotFound):
			utils.Logger.Warnf("delete order %s: no customer matches %q, skipping stats reversal", order.ID, order.CustomerName)
		default:
			return err
		}
	}

	if order.TableID != nil {
		if err := s.tables.Release(*order.TableID); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}

	if err := s.db.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
		return err
	}
	return s.db.Delete(order).Error
}

// StaffSales aggregates one staff member's sales.
type StaffSales struct {
	StaffID           *uuid.UUID `json:"staff_id"`
	StaffName         string     `json:"staff_name"`
	OrderCount        int64      `json:"order_count"`
	TotalSales        float64    `json:"total_sales"`
	TotalSalesUSD     float64    `json:"total_sales_usd"`
	AverageOrderValue float64    `json:"average_order_value"`
}

// SalesStatsByStaff aggregates order counts and sales per creating staff
// member, highest sales first. Orders with a zero discounted total fall back
// to their subtotal.
func (s *OrderService) SalesStatsByStaff() ([]StaffSales, error) {
	var stats []StaffSales
	if err := s.db.Model(&models.Order{}).
		Select(`staff_id, staff_name, COUNT(*) as order_count,
			SUM(CASE WHEN bill_total_after_discount > 0 THEN bill_total_after_discount ELSE bill_subtotal END) as total_sales`).
		Group("staff_id").Group("staff_name").
		Order("total_sales desc").
		Scan(&stats).Error; err != nil {
		return nil, err
	}

	for i := range stats {
		if stats[i].OrderCount > 0 {
			stats[i].AverageOrderValue = stats[i].TotalSales / float64(stats[i].OrderCount)
		}
		stats[i].TotalSalesUSD = s.conv.ToUSD(stats[i].TotalSales)
	}
	return stats, nil
}
