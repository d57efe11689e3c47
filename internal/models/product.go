package models

import "time"

// Sentinel is stored in place of null for optional text fields.
const Sentinel = "none"

// Product represents a product in the store.
// SKU is unique unless it holds the sentinel value.
type Product struct {
	ID             string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name           string    `json:"name" gorm:"type:varchar(200);not null"`
	SKU            string    `json:"sku" gorm:"type:varchar(100);not null;uniqueIndex:idx_products_sku,where:sku <> 'none'"`
	Price          float64   `json:"price" gorm:"not null"`
	Stock          float64   `json:"stock" gorm:"not null"`
	Description    string    `json:"description" gorm:"type:varchar(500)"`
	OriginalWeight string    `json:"original_weight" gorm:"type:varchar(50)"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
