package models

import "github.com/google/uuid"

// Table statuses. A table is available exactly when no order occupies it.
const (
	TableAvailable  = "available"
	TableInProgress = "in_progress"
	TableReserved   = "reserved"
)

// Table is one physical table in the dining room. The customer fields are a
// snapshot of whoever currently occupies it and are cleared on release.
type Table struct {
	BaseModel
	TableNumber    int        `gorm:"uniqueIndex" json:"table_number"`
	Seats          int        `json:"seats"`
	Status         string     `gorm:"default:available" json:"status"`
	CurrentOrderID *uuid.UUID `gorm:"type:uuid" json:"current_order_id"`
	CustomerName   string     `json:"customer_name"`
	CustomerPhone  string     `json:"customer_phone"`
	Guests         int        `json:"guests"`
}
