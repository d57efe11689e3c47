package repositories

import (
	"context"
	"sort"
	"time"

	"inventory/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	acc memAccess
}

// GetAll returns all orders with their items, newest first.
func (r *MockOrderRepository) GetAll(ctx context.Context) ([]models.Order, error) {
	var orderList []models.Order
	r.acc.read(func(st *memState) {
		orderList = make([]models.Order, 0, len(st.orders))
		for id := range st.orders {
			order, _ := st.orderWithItems(id)
			orderList = append(orderList, order)
		}
	})
	sort.Slice(orderList, func(i, j int) bool {
		return orderList[i].CreatedAt.After(orderList[j].CreatedAt)
	})
	return orderList, nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var (
		order models.Order
		ok    bool
	)
	r.acc.read(func(st *memState) {
		order, ok = st.orderWithItems(id)
	})
	if !ok {
		return nil, NotFound("order", id)
	}
	return &order, nil
}

// GetForUpdate is GetByID; the store already serializes transactions.
func (r *MockOrderRepository) GetForUpdate(ctx context.Context, id string) (*models.Order, error) {
	return r.GetByID(ctx, id)
}

// Create adds a new order and its items.
func (r *MockOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	now := time.Now()
	order.CreatedAt, order.UpdatedAt = now, now
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
		order.Items[i].CreatedAt = now
	}
	return r.acc.write(func(st *memState) error {
		stored := *order
		stored.Items = nil
		st.orders[order.ID] = stored
		for _, item := range order.Items {
			st.items[item.ID] = item
		}
		return nil
	})
}

// Update writes the order's own fields.
func (r *MockOrderRepository) Update(ctx context.Context, order *models.Order) error {
	return r.acc.write(func(st *memState) error {
		existing, ok := st.orders[order.ID]
		if !ok {
			return NotFound("order", order.ID)
		}
		existing.CustomerID = order.CustomerID
		existing.CustomerName = order.CustomerName
		existing.CustomerPhone = order.CustomerPhone
		existing.CustomerAddress = order.CustomerAddress
		existing.TotalAmount = order.TotalAmount
		existing.Status = order.Status
		existing.UpdatedAt = time.Now()
		st.orders[order.ID] = existing
		return nil
	})
}

// Delete removes an order and its items.
func (r *MockOrderRepository) Delete(ctx context.Context, id string) error {
	return r.acc.write(func(st *memState) error {
		if _, ok := st.orders[id]; !ok {
			return NotFound("order", id)
		}
		deleteItems(st, id)
		delete(st.orders, id)
		return nil
	})
}

// AddItem appends an item to an existing order.
func (r *MockOrderRepository) AddItem(ctx context.Context, item *models.OrderItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	item.CreatedAt = time.Now()
	return r.acc.write(func(st *memState) error {
		if _, ok := st.orders[item.OrderID]; !ok {
			return NotFound("order", item.OrderID)
		}
		st.items[item.ID] = *item
		return nil
	})
}

// GetItem returns an item of the given order.
func (r *MockOrderRepository) GetItem(ctx context.Context, orderID, itemID string) (*models.OrderItem, error) {
	var (
		item models.OrderItem
		ok   bool
	)
	r.acc.read(func(st *memState) {
		item, ok = st.items[itemID]
	})
	if !ok || item.OrderID != orderID {
		return nil, NotFound("order item", itemID)
	}
	return &item, nil
}

// DeleteItem removes one item of an order.
func (r *MockOrderRepository) DeleteItem(ctx context.Context, orderID, itemID string) error {
	return r.acc.write(func(st *memState) error {
		item, ok := st.items[itemID]
		if !ok || item.OrderID != orderID {
			return NotFound("order item", itemID)
		}
		delete(st.items, itemID)
		return nil
	})
}

// DeleteItems removes all items of an order.
func (r *MockOrderRepository) DeleteItems(ctx context.Context, orderID string) error {
	return r.acc.write(func(st *memState) error {
		deleteItems(st, orderID)
		return nil
	})
}

// DetachCustomer clears the customer reference of the customer's orders.
func (r *MockOrderRepository) DetachCustomer(ctx context.Context, customerID string) error {
	return r.acc.write(func(st *memState) error {
		for id, order := range st.orders {
			if order.CustomerID != nil && *order.CustomerID == customerID {
				order.CustomerID = nil
				st.orders[id] = order
			}
		}
		return nil
	})
}

func deleteItems(st *memState, orderID string) {
	for id, item := range st.items {
		if item.OrderID == orderID {
			delete(st.items, id)
		}
	}
}
