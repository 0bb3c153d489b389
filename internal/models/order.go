package models

import (
	"github.com/google/uuid"
)

// Payment types.
const (
	PaymentCash   = "cash"
	PaymentOnline = "online"
)

// Order statuses.
const (
	StatusInProgress = "in_progress"
	StatusPreparing  = "preparing"
	StatusCompleted  = "completed"
	StatusPaid       = "paid"
	StatusCancelled  = "cancelled"
)

// CustomerDetails is the nested duplicate of the flat customer snapshot.
// Older clients read this shape, so both copies are written on every mutation.
type CustomerDetails struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Guests int    `json:"guests"`
}

// Bills carries the order totals in riel, each mirrored in USD at the fixed
// register rate.
type Bills struct {
	Subtotal              float64 `json:"subtotal"`
	SubtotalUSD           float64 `json:"subtotal_usd"`
	DiscountAmount        float64 `json:"discount_amount"`
	DiscountPercent       float64 `json:"discount_percent"`
	TotalAfterDiscount    float64 `json:"total_after_discount"`
	TotalAfterDiscountUSD float64 `json:"total_after_discount_usd"`
}

// Order is one dine-in transaction. Customer and staff fields are snapshots
// taken at creation time; the customer record itself is matched by name/phone.
type Order struct {
	BaseModel
	CustomerName    string          `json:"customer_name"`
	CustomerPhone   string          `json:"customer_phone"`
	Guests          int             `json:"guests"`
	CustomerDetails CustomerDetails `gorm:"embedded;embeddedPrefix:detail_" json:"customer_details"`
	TableID         *uuid.UUID      `gorm:"type:uuid;index" json:"table_id"`
	TableNumber     string          `json:"table_number"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	Bills           Bills           `gorm:"embedded;embeddedPrefix:bill_" json:"bills"`
	PaymentType     string          `json:"payment_type"`
	Status          string          `gorm:"index" json:"status"`
	StaffID         *uuid.UUID      `gorm:"type:uuid;index" json:"staff_id"`
	StaffName       string          `json:"staff_name"`
}

// OrderItem is one line on the bill. Prices are riel.
type OrderItem struct {
	BaseModel
	OrderID   uuid.UUID `gorm:"type:uuid;index" json:"order_id"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
	LineTotal float64   `json:"line_total"`
}
