package services_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"inventory/internal/models"
	"inventory/internal/repositories"
	"inventory/internal/services"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ignoreItemIdentity = cmpopts.IgnoreFields(models.OrderItem{}, "ID", "OrderID", "CreatedAt")

func TestOrderService_StockLifecycle(t *testing.T) {
	eachStore(t, func(t *testing.T, store repositories.Store) {
		ctx := context.Background()
		svc := services.NewOrderService(store, nil, nil)
		p1 := seedProduct(t, store, "P1", 5.0, 10)

		order, err := svc.CreateOrder(ctx, services.OrderRequest{Items: []services.ItemRequest{item(p1.ID, 3)}})
		require.NoError(t, err)
		assert.Equal(t, 15.0, order.TotalAmount)
		assert.Equal(t, 7.0, stockOf(t, store, p1.ID))
		require.Len(t, order.Items, 1)

		_, err = svc.AddItem(ctx, order.ID, item(p1.ID, 20))
		assert.ErrorIs(t, err, repositories.ErrConflict)
		assert.Equal(t, 7.0, stockOf(t, store, p1.ID))

		order, err = svc.RemoveItem(ctx, order.ID, order.Items[0].ID)
		require.NoError(t, err)
		assert.Equal(t, 10.0, stockOf(t, store, p1.ID))
		assert.Equal(t, 0.0, order.TotalAmount)
		assert.Empty(t, order.Items)
	})
}

func TestOrderService_CreateOrderSnapshotsAndTotals(t *testing.T) {
	eachStore(t, func(t *testing.T, store repositories.Store) {
		ctx := context.Background()
		svc := services.NewOrderService(store, nil, nil)
		bread := seedProduct(t, store, "Bread", 2.5, 10)
		cheese := seedProduct(t, store, "Cheese", 12.0, 1)
		override := 1.1

		order, err := svc.CreateOrder(ctx, services.OrderRequest{
			CustomerName: "Ana",
			Items: []services.ItemRequest{
				item(bread.ID, 4),
				weighed(cheese.ID, 0.25),
				{ProductID: bread.ID, Quantity: 3, UnitPrice: &override},
			},
		})
		require.NoError(t, err)

		want := []models.OrderItem{
			{Line: 1, ProductID: bread.ID, ProductName: "Bread", UnitPrice: 2.5, Quantity: 4, Unit: models.UnitPiece, Subtotal: 10},
			{Line: 2, ProductID: cheese.ID, ProductName: "Cheese", UnitPrice: 12, Quantity: 0.25, Unit: models.UnitWeight, Subtotal: 3},
			{Line: 3, ProductID: bread.ID, ProductName: "Bread", UnitPrice: 1.1, Quantity: 3, Unit: models.UnitPiece, Subtotal: 3.3},
		}
		if diff := cmp.Diff(want, order.Items, ignoreItemIdentity); diff != "" {
			t.Errorf("items mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, 16.3, order.TotalAmount)
		assert.Equal(t, models.StatusUnpaid, order.Status)
		assert.Equal(t, 3.0, stockOf(t, store, bread.ID))
		assert.Equal(t, 1.0, stockOf(t, store, cheese.ID), "weight-based items never move stock")

		// Later product changes do not reach the snapshot.
		newName := "Sourdough"
		_, err = services.NewProductService(store, store.Repos().Products, nil).UpdateProduct(ctx, bread.ID, services.ProductPatch{Name: &newName})
		require.NoError(t, err)
		reloaded, err := svc.GetOrderByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, "Bread", reloaded.Items[0].ProductName)
	})
}

func TestOrderService_CreateOrderWalkInCustomer(t *testing.T) {
	eachStore(t, func(t *testing.T, store repositories.Store) {
		ctx := context.Background()
		svc := services.NewOrderService(store, nil, nil)
		p := seedProduct(t, store, "P", 1, 5)

		order, err := svc.CreateOrder(ctx, services.OrderRequest{Items: []services.ItemRequest{item(p.ID, 1)}})
		require.NoError(t, err)
		require.NotNil(t, order.CustomerID)
		assert.Equal(t, models.WalkInCustomerName, order.CustomerName)
		assert.Equal(t, models.Sentinel, order.CustomerPhone)

		customer, err := store.Repos().Customers.GetByID(ctx, *order.CustomerID)
		require.NoError(t, err)
		assert.Equal(t, models.WalkInCustomerName, customer.Name)
	})
}

func TestOrderService_CreateOrderWithExistingCustomer(t *testing.T) {
	eachStore(t, func(t *testing.T, store repositories.Store) {
		ctx := context.Background()
		svc := services.NewOrderService(store, nil, nil)
		p := seedProduct(t, store, "P", 1, 5)
		customer := &models.Customer{Name: "Budi", Phone: "0812", Address: "Jl. Merdeka 1"}
		require.NoError(t, services.NewCustomerService(store).CreateCustomer(ctx, customer))

		order, err := svc.CreateOrder(ctx, services.OrderRequest{
			CustomerID:    &customer.ID,
			CustomerPhone: "0999",
			Items:         []services.ItemRequest{item(p.ID, 1)},
		})
		require.NoError(t, err)
		assert.Equal(t, customer.ID, *order.CustomerID)
		assert.Equal(t, "Budi", order.CustomerName)
		assert.Equal(t, "0999", order.CustomerPhone, "inline fields win over the customer record")
		assert.Equal(t, "Jl. Merdeka 1", order.CustomerAddress)

		customers, err := store.Repos().Customers.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, customers, 1)

		missing := "missing"
		_, err = svc.CreateOrder(ctx, services.OrderRequest{CustomerID: &missing, Items: []services.ItemRequest{item(p.ID, 1)}})
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		assert.Equal(t, 4.0, stockOf(t, store, p.ID))
	})
}

func TestOrderService_CreateOrderRejections(t *testing.T) {
	eachStore(t, func(t *testing.T, store repositories.Store) {
		ctx := context.Background()
		svc := services.NewOrderService(store, nil, nil)
		p := seedProduct(t, store, "P", 1, 5)
		bad := "box"

		cases := []struct {
			name  string
			items []services.ItemRequest
			want  error
		}{
			{"no items", nil, repositories.ErrValidation},
			{"zero quantity", []services.ItemRequest{item(p.ID, 0)}, repositories.ErrValidation},
			{"unknown unit", []services.ItemRequest{{ProductID: p.ID, Quantity: 1, Unit: &bad}}, repositories.ErrValidation},
			{"unknown product", []services.ItemRequest{item("nope", 1)}, repositories.ErrNotFound},
			{"insufficient stock", []services.ItemRequest{item(p.ID, 6)}, repositories.ErrConflict},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := svc.CreateOrder(ctx, services.OrderRequest{Items: tc.items})
				assert.ErrorIs(t, err, tc.want)
			})
		}

		assert.Equal(t, 5.0, stockOf(t, store, p.ID))
		orders, err := svc.GetAllOrders(ctx)
		require.NoError(t, err)
		assert.Empty(t, orders)
	})
}

func TestOrderService_CreateOrderIsAtomic(t *testing.T) {
	eachStore(t, func(t *testing.T, store repositories.Store) {
		ctx := context.Background()
		svc := services.NewOrderService(store, nil, nil)
		a := seedProduct(t, store, "A", 1, 10)
		b := seedProduct(t, store, "B", 1, 1)

		_, err := svc.CreateOrder(ctx, services.OrderRequest{
			CustomerName: "Someone",
			Items:        []services.ItemRequest{item(a.ID, 4), item(b.ID, 2)},
		})
		require.ErrorIs(t, err, repositories.ErrConflict)
		assert.Contains(t, err.Error(), "insufficient stock for B")

		assert.Equal(t, 10.0, stockOf(t, store, a.ID))
		assert.Equal(t, 1.0, stockOf(t, store, b.ID))
		customers, err := store.Repos().Customers.GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, customers, "walk-in customer must roll back with the order")
	})
}

func TestOrderService_ReplaceOrder(t *testing.T) {
	eachStore(t, func(t *testing.T, store repositories.Store) {
		ctx := context.Background()
		svc := services.NewOrderService(store, nil, nil)
		p1 := seedProduct(t, store, "P1", 5, 10)
		p2 := seedProduct(t, store, "P2", 2, 4)

		order, err := svc.CreateOrder(ctx, services.OrderRequest{Items: []services.ItemRequest{item(p1.ID, 3)}})
		require.NoError(t, err)
		require.Equal(t, 7.0, stockOf(t, store, p1.ID))

		replaced, err := svc.ReplaceOrder(ctx, order.ID, services.OrderRequest{
			CustomerName: "Replaced",
			Items:        []services.ItemRequest{item(p1.ID, 5), weighed(p2.ID, 1.5)},
		})
		require.NoError(t, err)
		assert.Equal(t, 5.0, stockOf(t, store, p1.ID), "restore 3 then take 5")
		assert.Equal(t, 4.0, stockOf(t, store, p2.ID))
		assert.Equal(t, 28.0, replaced.TotalAmount)
		assert.Len(t, replaced.Items, 2)
		assert.Nil(t, replaced.CustomerID, "replacement never creates a customer")
		assert.Equal(t, "Replaced", replaced.CustomerName)
		assert.Equal(t, order.ID, replaced.ID)
	})
}

func TestOrderService_ReplaceWithSameItemsKeepsStock(t *testing.T) {
	eachStore(t, func(t *testing.T, store repositories.Store) {
		ctx := context.Background()
		svc := services.NewOrderService(store, nil, nil)
		p1 := seedProduct(t, store, "P1", 3, 5)
		p2 := seedProduct(t, store, "P2", 4, 8)
		items := []services.ItemRequest{item(p1.ID, 5), item(p2.ID, 2), weighed(p2.ID, 0.5)}

		order, err := svc.CreateOrder(ctx, services.OrderRequest{Items: items})
		require.NoError(t, err)
		before := []float64{stockOf(t, store, p1.ID), stockOf(t, store, p2.ID)}

		// p1 is fully drawn; this only succeeds if old stock is returned first.
		replaced, err := svc.ReplaceOrder(ctx, order.ID, services.OrderRequest{Items: items})
		require.NoError(t, err)
		assert.Equal(t, before, []float64{stockOf(t, store, p1.ID), stockOf(t, store, p2.ID)})
		assert.Equal(t, order.TotalAmount, replaced.TotalAmount)
	})
}

func TestOrderService_ReplaceOrderFailureLeavesOrderIntact(t *testing.T) {
	eachStore(t, func(t *testing.T, store repositories.Store) {
		ctx := context.Background()
		svc := services.NewOrderService(store, nil, nil)
		p := seedProduct(t, store, "P", 5, 10)

		order, err := svc.CreateOrder(ctx, services.OrderRequest{CustomerName: "Keep", Items: []services.ItemRequest{item(p.ID, 3)}})
		require.NoError(t, err)

		_, err = svc.ReplaceOrder(ctx, order.ID, services.OrderRequest{Items: []services.ItemRequest{item(p.ID, 11)}})
		assert.ErrorIs(t, err, repositories.ErrConflict)

		_, err = svc.ReplaceOrder(ctx, order.ID, services.OrderRequest{})
		assert.ErrorIs(t, err, repositories.ErrValidation)

		_, err = svc.ReplaceOrder(ctx, "missing", services.OrderRequest{Items: []services.ItemRequest{item(p.ID, 1)}})
		assert.ErrorIs(t, err, repositories.ErrNotFound)

		current, err := svc.GetOrderByID(ctx, order.ID)
		require.NoError(t, err)
		if diff := cmp.Diff(order.Items, current.Items); diff != "" {
			t.Errorf("items changed (-before +after):\n%s", diff)
		}
		assert.Equal(t, "Keep", current.CustomerName)
		assert.Equal(t, 7.0, stockOf(t, store, p.ID))
	})
}

func TestOrderService_AddAndRemoveItems(t *testing.T) {
	eachStore(t, func(t *testing.T, store repositories.Store) {
		ctx := context.Background()
		svc := services.NewOrderService(store, nil, nil)
		p := seedProduct(t, store, "P", 2, 10)
		w := seedProduct(t, store, "W", 8, 3)

		order, err := svc.CreateOrder(ctx, services.OrderRequest{Items: []services.ItemRequest{item(p.ID, 1)}})
		require.NoError(t, err)

		order, err = svc.AddItem(ctx, order.ID, weighed(w.ID, 0.5))
		require.NoError(t, err)
		order, err = svc.AddItem(ctx, order.ID, item(p.ID, 2))
		require.NoError(t, err)
		require.Len(t, order.Items, 3)
		assert.Equal(t, []int{1, 2, 3}, []int{order.Items[0].Line, order.Items[1].Line, order.Items[2].Line})
		assert.Equal(t, 10.0, order.TotalAmount)
		assert.Equal(t, 7.0, stockOf(t, store, p.ID))

		weightItem := order.Items[1]
		order, err = svc.RemoveItem(ctx, order.ID, weightItem.ID)
		require.NoError(t, err)
		assert.Equal(t, 3.0, stockOf(t, store, w.ID))
		assert.Equal(t, 6.0, order.TotalAmount)

		var sum float64
		for _, it := range order.Items {
			assert.InDelta(t, it.UnitPrice*it.Quantity, it.Subtotal, 1e-9)
			sum += it.Subtotal
		}
		assert.InDelta(t, sum, order.TotalAmount, 1e-9)

		_, err = svc.AddItem(ctx, "missing", item(p.ID, 1))
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		_, err = svc.RemoveItem(ctx, order.ID, "missing")
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}

func TestOrderService_RemoveItemIsScopedToOrder(t *testing.T) {
	eachStore(t, func(t *testing.T, store repositories.Store) {
		ctx := context.Background()
		svc := services.NewOrderService(store, nil, nil)
		p := seedProduct(t, store, "P", 1, 10)

		first, err := svc.CreateOrder(ctx, services.OrderRequest{Items: []services.ItemRequest{item(p.ID, 1)}})
		require.NoError(t, err)
		second, err := svc.CreateOrder(ctx, services.OrderRequest{Items: []services.ItemRequest{item(p.ID, 2)}})
		require.NoError(t, err)

		_, err = svc.RemoveItem(ctx, first.ID, second.Items[0].ID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		assert.Equal(t, 7.0, stockOf(t, store, p.ID))
	})
}

func TestOrderService_TogglePaymentStatus(t *testing.T) {
	eachStore(t, func(t *testing.T, store repositories.Store) {
		ctx := context.Background()
		svc := services.NewOrderService(store, nil, nil)
		p := seedProduct(t, store, "P", 4, 10)

		order, err := svc.CreateOrder(ctx, services.OrderRequest{Items: []services.ItemRequest{item(p.ID, 2)}})
		require.NoError(t, err)

		paid, err := svc.TogglePaymentStatus(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPaid, paid.Status)

		unpaid, err := svc.TogglePaymentStatus(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusUnpaid, unpaid.Status)
		assert.Equal(t, order.TotalAmount, unpaid.TotalAmount)
		assert.Equal(t, 8.0, stockOf(t, store, p.ID))

		_, err = svc.TogglePaymentStatus(ctx, "missing")
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}

func TestOrderService_DeleteOrderRestoresStock(t *testing.T) {
	eachStore(t, func(t *testing.T, store repositories.Store) {
		ctx := context.Background()
		svc := services.NewOrderService(store, nil, nil)
		p := seedProduct(t, store, "P", 1, 10)
		w := seedProduct(t, store, "W", 1, 2)

		order, err := svc.CreateOrder(ctx, services.OrderRequest{Items: []services.ItemRequest{item(p.ID, 4), weighed(w.ID, 1)}})
		require.NoError(t, err)

		require.NoError(t, svc.DeleteOrder(ctx, order.ID))
		assert.Equal(t, 10.0, stockOf(t, store, p.ID))
		assert.Equal(t, 2.0, stockOf(t, store, w.ID))

		_, err = svc.GetOrderByID(ctx, order.ID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		assert.ErrorIs(t, svc.DeleteOrder(ctx, order.ID), repositories.ErrNotFound)
	})
}

func TestOrderService_ConcurrentOrdersNeverOversell(t *testing.T) {
	eachStore(t, func(t *testing.T, store repositories.Store) {
		ctx := context.Background()
		svc := services.NewOrderService(store, nil, nil)
		p := seedProduct(t, store, "Scarce", 1, 5)

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			succeeded int
		)
		for i := 0; i < 12; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.CreateOrder(ctx, services.OrderRequest{CustomerName: "c", Items: []services.ItemRequest{item(p.ID, 1)}})
				if err == nil {
					mu.Lock()
					succeeded++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 5, succeeded)
		assert.Equal(t, 0.0, stockOf(t, store, p.ID))
	})
}

func TestOrderService_PublishesEventsAndInvalidatesCache(t *testing.T) {
	store := repositories.NewMemoryStore()
	ctx := context.Background()
	publisher := &recordingPublisher{}
	cache := &recordingInvalidator{}
	svc := services.NewOrderService(store, publisher, cache)
	p := seedProduct(t, store, "P", 1, 10)

	order, err := svc.CreateOrder(ctx, services.OrderRequest{Items: []services.ItemRequest{item(p.ID, 1)}})
	require.NoError(t, err)
	order, err = svc.AddItem(ctx, order.ID, item(p.ID, 1))
	require.NoError(t, err)
	_, err = svc.RemoveItem(ctx, order.ID, order.Items[0].ID)
	require.NoError(t, err)
	_, err = svc.ReplaceOrder(ctx, order.ID, services.OrderRequest{Items: []services.ItemRequest{item(p.ID, 2)}})
	require.NoError(t, err)
	_, err = svc.TogglePaymentStatus(ctx, order.ID)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteOrder(ctx, order.ID))

	// Rejected changes publish nothing.
	_, err = svc.CreateOrder(ctx, services.OrderRequest{Items: []services.ItemRequest{item(p.ID, 100)}})
	require.Error(t, err)

	assert.Equal(t, []string{
		services.EventOrderCreated,
		services.EventOrderItemAdded,
		services.EventOrderItemRemoved,
		services.EventOrderReplaced,
		services.EventOrderStatusChanged,
		services.EventOrderDeleted,
	}, publisher.keys)

	var event services.OrderEvent
	require.NoError(t, json.Unmarshal(publisher.bodies[0], &event))
	assert.Equal(t, services.EventOrderCreated, event.Type)
	assert.Equal(t, order.ID, event.OrderID)
	assert.Equal(t, 1, event.ItemCount)

	assert.NotEmpty(t, cache.ids)
	for _, id := range cache.ids {
		assert.Equal(t, p.ID, id)
	}
}

func TestOrderService_FractionalPieceStock(t *testing.T) {
	eachStore(t, func(t *testing.T, store repositories.Store) {
		ctx := context.Background()
		service := services.NewOrderService(store, nil, nil)
		rice := seedProduct(t, store, "Rice", 10, 0.3)

		var orderIDs []string
		for i := 0; i < 3; i++ {
			order, err := service.CreateOrder(ctx, services.OrderRequest{Items: []services.ItemRequest{item(rice.ID, 0.1)}})
			require.NoError(t, err, "order %d", i+1)
			assert.Equal(t, 1.0, order.TotalAmount)
			orderIDs = append(orderIDs, order.ID)
		}
		assert.Equal(t, 0.0, stockOf(t, store, rice.ID))

		_, err := service.CreateOrder(ctx, services.OrderRequest{Items: []services.ItemRequest{item(rice.ID, 0.1)}})
		assert.ErrorIs(t, err, repositories.ErrConflict)

		for _, id := range orderIDs {
			require.NoError(t, service.DeleteOrder(ctx, id))
		}
		assert.Equal(t, 0.3, stockOf(t, store, rice.ID))
	})
}
