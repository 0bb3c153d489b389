package models

import "time"

// Customer is one distinct patron, resolved by case-insensitive name or exact
// phone. Totals are maintained incrementally on every order and rebuilt from
// the order history by reconciliation.
type Customer struct {
	BaseModel
	Name          string     `gorm:"index" json:"name"`
	Phone         string     `gorm:"index" json:"phone"`
	TotalOrders   int        `json:"total_orders"`
	TotalSpent    float64    `json:"total_spent"`
	TotalSpentUSD float64    `json:"total_spent_usd"`
	LastOrderDate *time.Time `json:"last_order_date"`
	IsActive      bool       `gorm:"default:true" json:"is_active"`
}
