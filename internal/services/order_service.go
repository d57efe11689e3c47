package services

import (
	"context"

	"inventory/internal/models"
	"inventory/internal/repositories"

	"github.com/rs/zerolog/log"
)

// OrderService keeps product stock and order totals consistent while orders
// and their items change. Every mutation runs in a single unit of work.
type OrderService struct {
	store     repositories.Store
	publisher EventPublisher
	cache     ProductCacheInvalidator
}

// NewOrderService creates a new OrderService. publisher and cache may be nil.
func NewOrderService(store repositories.Store, publisher EventPublisher, cache ProductCacheInvalidator) *OrderService {
	return &OrderService{
		store:     store,
		publisher: publisher,
		cache:     cache,
	}
}

// GetAllOrders retrieves all orders.
func (s *OrderService) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	return s.store.Repos().Orders.GetAll(ctx)
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	return s.store.Repos().Orders.GetByID(ctx, id)
}

// CreateOrder draws stock for every piece item, snapshots product and
// customer data and stores the order. Nothing is written if any item fails.
func (s *OrderService) CreateOrder(ctx context.Context, req OrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, repositories.Invalid("order", "", "an order must contain at least one item")
	}

	order := &models.Order{Status: models.StatusUnpaid}
	err := s.store.Do(ctx, func(tx repositories.Repos) error {
		items, err := takeLines(ctx, tx.Products, req.Items, 1)
		if err != nil {
			return err
		}
		order.Items = items
		if err := attachCustomer(ctx, tx.Customers, order, req); err != nil {
			return err
		}
		order.TotalAmount = sumSubtotals(order.Items)
		return tx.Orders.Create(ctx, order)
	})
	if err != nil {
		log.Warn().Err(err).Msg("order creation rejected")
		return nil, err
	}

	created, err := s.GetOrderByID(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	log.Info().Str("order_id", created.ID).Float64("total", created.TotalAmount).Int("items", len(created.Items)).Msg("order created")
	s.invalidate(ctx, productIDs(created.Items))
	s.publish(EventOrderCreated, created)
	return created, nil
}

// ReplaceOrder swaps every item of an order. Stock of the old piece items is
// returned before the new items are drawn, all in one transaction, so a
// failing new item leaves the order and stock exactly as they were.
func (s *OrderService) ReplaceOrder(ctx context.Context, id string, req OrderRequest) (*models.Order, error) {
	var touched []string
	err := s.store.Do(ctx, func(tx repositories.Repos) error {
		order, err := tx.Orders.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if len(req.Items) == 0 {
			return repositories.Invalid("order", id, "an order must contain at least one item")
		}

		for _, item := range order.Items {
			if err := returnLine(ctx, tx.Products, item); err != nil {
				return err
			}
		}
		if err := tx.Orders.DeleteItems(ctx, id); err != nil {
			return err
		}
		if err := reattachCustomer(ctx, tx.Customers, order, req); err != nil {
			return err
		}

		items, err := takeLines(ctx, tx.Products, req.Items, 1)
		if err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = id
			if err := tx.Orders.AddItem(ctx, &items[i]); err != nil {
				return err
			}
		}
		touched = productIDs(order.Items, items)
		order.Items = items
		order.TotalAmount = sumSubtotals(items)
		return tx.Orders.Update(ctx, order)
	})
	if err != nil {
		log.Warn().Err(err).Str("order_id", id).Msg("order replacement rejected")
		return nil, err
	}

	replaced, err := s.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	log.Info().Str("order_id", id).Float64("total", replaced.TotalAmount).Int("items", len(replaced.Items)).Msg("order replaced")
	s.invalidate(ctx, touched)
	s.publish(EventOrderReplaced, replaced)
	return replaced, nil
}

// AddItem appends one item to an order and recomputes its total from all items.
func (s *OrderService) AddItem(ctx context.Context, orderID string, req ItemRequest) (*models.Order, error) {
	err := s.store.Do(ctx, func(tx repositories.Repos) error {
		order, err := tx.Orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		item, err := takeLine(ctx, tx.Products, req, nextLine(order.Items))
		if err != nil {
			return err
		}
		item.OrderID = orderID
		if err := tx.Orders.AddItem(ctx, &item); err != nil {
			return err
		}
		order.Items = append(order.Items, item)
		order.TotalAmount = sumSubtotals(order.Items)
		return tx.Orders.Update(ctx, order)
	})
	if err != nil {
		log.Warn().Err(err).Str("order_id", orderID).Str("product_id", req.ProductID).Msg("order item rejected")
		return nil, err
	}

	order, err := s.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	log.Info().Str("order_id", orderID).Str("product_id", req.ProductID).Msg("order item added")
	s.invalidate(ctx, []string{req.ProductID})
	s.publish(EventOrderItemAdded, order)
	return order, nil
}

// RemoveItem deletes one item of an order, returning piece stock to its product.
func (s *OrderService) RemoveItem(ctx context.Context, orderID, itemID string) (*models.Order, error) {
	var productID string
	err := s.store.Do(ctx, func(tx repositories.Repos) error {
		order, err := tx.Orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		item, err := tx.Orders.GetItem(ctx, orderID, itemID)
		if err != nil {
			return err
		}
		productID = item.ProductID
		if err := returnLine(ctx, tx.Products, *item); err != nil {
			return err
		}
		if err := tx.Orders.DeleteItem(ctx, orderID, itemID); err != nil {
			return err
		}

		remaining := order.Items[:0]
		for _, it := range order.Items {
			if it.ID != itemID {
				remaining = append(remaining, it)
			}
		}
		order.Items = remaining
		order.TotalAmount = sumSubtotals(remaining)
		return tx.Orders.Update(ctx, order)
	})
	if err != nil {
		log.Warn().Err(err).Str("order_id", orderID).Str("item_id", itemID).Msg("order item removal rejected")
		return nil, err
	}

	order, err := s.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	log.Info().Str("order_id", orderID).Str("item_id", itemID).Msg("order item removed")
	s.invalidate(ctx, []string{productID})
	s.publish(EventOrderItemRemoved, order)
	return order, nil
}

// TogglePaymentStatus flips an order between unpaid and paid.
func (s *OrderService) TogglePaymentStatus(ctx context.Context, id string) (*models.Order, error) {
	err := s.store.Do(ctx, func(tx repositories.Repos) error {
		order, err := tx.Orders.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		order.Status = order.Status.Toggled()
		return tx.Orders.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	order, err := s.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	log.Info().Str("order_id", id).Str("status", string(order.Status)).Msg("order payment status changed")
	s.publish(EventOrderStatusChanged, order)
	return order, nil
}

// DeleteOrder removes an order and its items, returning piece stock.
func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	var deleted *models.Order
	err := s.store.Do(ctx, func(tx repositories.Repos) error {
		order, err := tx.Orders.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		for _, item := range order.Items {
			if err := returnLine(ctx, tx.Products, item); err != nil {
				return err
			}
		}
		deleted = order
		return tx.Orders.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	log.Info().Str("order_id", id).Msg("order deleted")
	s.invalidate(ctx, productIDs(deleted.Items))
	s.publish(EventOrderDeleted, deleted)
	return nil
}
