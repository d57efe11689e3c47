package repositories

import (
	"context"

	"inventory/internal/models"
)

// OrderRepository defines the interface for order data access.
// Orders are always returned with their items, ordered by line.
type OrderRepository interface {
	GetAll(ctx context.Context) ([]models.Order, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetForUpdate(ctx context.Context, id string) (*models.Order, error)
	// Create inserts the order together with its items.
	Create(ctx context.Context, order *models.Order) error
	// Update writes the order's own columns. Items are left alone.
	Update(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id string) error

	AddItem(ctx context.Context, item *models.OrderItem) error
	GetItem(ctx context.Context, orderID, itemID string) (*models.OrderItem, error)
	DeleteItem(ctx context.Context, orderID, itemID string) error
	DeleteItems(ctx context.Context, orderID string) error

	// DetachCustomer clears the customer reference on every order of a customer.
	DetachCustomer(ctx context.Context, customerID string) error
}
