package models

import "time"

// Unit is how an order item is counted.
type Unit string

const (
	UnitPiece Unit = "piece"
	// UnitWeight items are sold by weight and never move unit stock.
	UnitWeight Unit = "weight-based"
)

// Valid reports whether u is one of the recognized units.
func (u Unit) Valid() bool {
	return u == UnitPiece || u == UnitWeight
}

// CountsStock reports whether items in this unit are drawn from Product.Stock.
func (u Unit) CountsStock() bool {
	return u == UnitPiece
}

// PaymentStatus is the payment state of an order.
type PaymentStatus string

const (
	StatusUnpaid PaymentStatus = "unpaid"
	StatusPaid   PaymentStatus = "paid"
)

// Toggled returns the other payment state.
func (s PaymentStatus) Toggled() PaymentStatus {
	if s == StatusPaid {
		return StatusUnpaid
	}
	return StatusPaid
}

// OrderItem represents a single line within an order.
// ProductName and UnitPrice are copied from the product when the line is created.
type OrderItem struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID     string    `json:"order_id" gorm:"type:varchar(36);index;not null"`
	Line        int       `json:"line" gorm:"not null"`
	ProductID   string    `json:"product_id" gorm:"type:varchar(36);index;not null"`
	ProductName string    `json:"product_name" gorm:"type:varchar(200);not null"`
	UnitPrice   float64   `json:"unit_price" gorm:"not null"`
	Quantity    float64   `json:"quantity" gorm:"not null"`
	Unit        Unit      `json:"unit" gorm:"type:varchar(20);not null"`
	Subtotal    float64   `json:"subtotal" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
}

// Order represents a customer order.
// The customer fields are a snapshot taken when the order was written.
type Order struct {
	ID              string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CustomerID      *string       `json:"customer_id" gorm:"type:varchar(36);index"`
	CustomerName    string        `json:"customer_name" gorm:"type:varchar(200)"`
	CustomerPhone   string        `json:"customer_phone" gorm:"type:varchar(50)"`
	CustomerAddress string        `json:"customer_address" gorm:"type:varchar(300)"`
	TotalAmount     float64       `json:"total_amount" gorm:"not null"`
	Status          PaymentStatus `json:"status" gorm:"type:varchar(20);not null"`
	Items           []OrderItem   `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}
