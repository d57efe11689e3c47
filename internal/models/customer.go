package models

import "time"

// WalkInCustomerName is used when an order is created without naming a customer.
const WalkInCustomerName = "walk-in customer"

// Customer is a buyer. Orders keep their own copy of the contact fields.
type Customer struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" gorm:"type:varchar(200);not null"`
	Phone     string    `json:"phone" gorm:"type:varchar(50)"`
	Address   string    `json:"address" gorm:"type:varchar(300)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
