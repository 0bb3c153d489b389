package models

import "github.com/google/uuid"

// MenuCategory groups menu items. Category names are unique.
type MenuCategory struct {
	BaseModel
	Name  string     `gorm:"uniqueIndex" json:"name"`
	Items []MenuItem `gorm:"foreignKey:CategoryID" json:"items,omitempty"`
}

// MenuItem is a sellable dish. Price is riel; the USD mirror is derived at the
// fixed rate whenever the price changes.
type MenuItem struct {
	BaseModel
	CategoryID uuid.UUID `gorm:"type:uuid;index" json:"category_id"`
	Name       string    `json:"name"`
	Price      float64   `json:"price"`
	PriceUSD   float64   `json:"price_usd"`
	Available  bool      `gorm:"default:true" json:"available"`
}
