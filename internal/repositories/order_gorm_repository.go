package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inventory/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("line ASC")
	})
}

// GetAll retrieves all orders with their items, newest first.
func (r *GORMOrderRepository) GetAll(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := preloadItems(r.db.WithContext(ctx)).Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	return orders, nil
}

// GetByID retrieves an order and its items.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	return r.first(preloadItems(r.db.WithContext(ctx)), id)
}

// GetForUpdate retrieves an order and its items, locking the order row.
func (r *GORMOrderRepository) GetForUpdate(ctx context.Context, id string) (*models.Order, error) {
	return r.first(preloadItems(r.db.WithContext(ctx)).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GORMOrderRepository) first(db *gorm.DB, id string) (*models.Order, error) {
	var order models.Order
	if err := db.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("order", id)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// Create inserts the order and its items. Missing IDs are generated.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// Update writes the customer snapshot, total and status of an order.
func (r *GORMOrderRepository) Update(ctx context.Context, order *models.Order) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
		"customer_id":      order.CustomerID,
		"customer_name":    order.CustomerName,
		"customer_phone":   order.CustomerPhone,
		"customer_address": order.CustomerAddress,
		"total_amount":     order.TotalAmount,
		"status":           order.Status,
		"updated_at":       time.Now(),
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update order %s: %w", order.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return NotFound("order", order.ID)
	}
	return nil
}

// Delete removes an order and its items.
func (r *GORMOrderRepository) Delete(ctx context.Context, id string) error {
	if err := r.DeleteItems(ctx, id); err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Delete(&models.Order{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return NotFound("order", id)
	}
	return nil
}

// AddItem inserts a single item for an existing order.
func (r *GORMOrderRepository) AddItem(ctx context.Context, item *models.OrderItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to add item to order %s: %w", item.OrderID, err)
	}
	return nil
}

// GetItem retrieves an item, scoped to its order.
func (r *GORMOrderRepository) GetItem(ctx context.Context, orderID, itemID string) (*models.OrderItem, error) {
	var item models.OrderItem
	if err := r.db.WithContext(ctx).First(&item, "id = ? AND order_id = ?", itemID, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("order item", itemID)
		}
		return nil, fmt.Errorf("failed to get item %s of order %s: %w", itemID, orderID, err)
	}
	return &item, nil
}

// DeleteItem removes one item of an order.
func (r *GORMOrderRepository) DeleteItem(ctx context.Context, orderID, itemID string) error {
	res := r.db.WithContext(ctx).Delete(&models.OrderItem{}, "id = ? AND order_id = ?", itemID, orderID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete item %s of order %s: %w", itemID, orderID, res.Error)
	}
	if res.RowsAffected == 0 {
		return NotFound("order item", itemID)
	}
	return nil
}

// DeleteItems removes every item of an order.
func (r *GORMOrderRepository) DeleteItems(ctx context.Context, orderID string) error {
	if err := r.db.WithContext(ctx).Delete(&models.OrderItem{}, "order_id = ?", orderID).Error; err != nil {
		return fmt.Errorf("failed to delete items of order %s: %w", orderID, err)
	}
	return nil
}

// DetachCustomer clears customer_id on the customer's orders. Snapshots are kept.
func (r *GORMOrderRepository) DetachCustomer(ctx context.Context, customerID string) error {
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("customer_id = ?", customerID).
		Update("customer_id", nil).Error
	if err != nil {
		return fmt.Errorf("failed to detach customer %s from orders: %w", customerID, err)
	}
	return nil
}
