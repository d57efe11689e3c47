package repositories

import (
	"context"
	"sort"
	"sync"

	"inventory/internal/models"
)

type memState struct {
	products  map[string]models.Product
	customers map[string]models.Customer
	orders    map[string]models.Order
	items     map[string]models.OrderItem
	users     map[string]models.User
}

func newMemState() *memState {
	return &memState{
		products:  make(map[string]models.Product),
		customers: make(map[string]models.Customer),
		orders:    make(map[string]models.Order),
		items:     make(map[string]models.OrderItem),
		users:     make(map[string]models.User),
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	return c
}

// orderWithItems returns a copy of the stored order with its items attached.
func (s *memState) orderWithItems(id string) (models.Order, bool) {
	order, ok := s.orders[id]
	if !ok {
		return models.Order{}, false
	}
	order.Items = []models.OrderItem{}
	for _, item := range s.items {
		if item.OrderID == id {
			order.Items = append(order.Items, item)
		}
	}
	sort.Slice(order.Items, func(i, j int) bool { return order.Items[i].Line < order.Items[j].Line })
	return order, true
}

// memAccess is how the in-memory repositories reach their data: either
// through the store lock or, inside Do, directly on the working copy.
type memAccess interface {
	read(fn func(st *memState))
	write(fn func(st *memState) error) error
}

// MemoryStore is an in-memory implementation of Store. Transactions are
// serialized and applied copy-on-write.
type MemoryStore struct {
	mu    sync.RWMutex
	state *memState
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newMemState()}
}

func (s *MemoryStore) read(fn func(st *memState)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.state)
}

func (s *MemoryStore) write(fn func(st *memState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.state.clone()
	if err := fn(work); err != nil {
		return err
	}
	s.state = work
	return nil
}

// Do runs fn against a private copy of the data and publishes the copy only
// if fn succeeds.
func (s *MemoryStore) Do(ctx context.Context, fn func(tx Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.write(func(st *memState) error {
		return fn(memRepos(memTx{st: st}))
	})
}

// Repos returns repositories where every call is its own transaction.
func (s *MemoryStore) Repos() Repos {
	return memRepos(s)
}

// Users returns the user repository.
func (s *MemoryStore) Users() UserRepository {
	return &MockUserRepository{acc: s}
}

type memTx struct {
	st *memState
}

func (t memTx) read(fn func(st *memState)) {
	fn(t.st)
}

func (t memTx) write(fn func(st *memState) error) error {
	return fn(t.st)
}

func memRepos(acc memAccess) Repos {
	return Repos{
		Products:  &MockProductRepository{acc: acc},
		Customers: &MockCustomerRepository{acc: acc},
		Orders:    &MockOrderRepository{acc: acc},
	}
}
