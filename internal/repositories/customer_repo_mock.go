package repositories

import (
	"context"
	"sort"
	"time"

	"inventory/internal/models"

	"github.com/google/uuid"
)

// MockCustomerRepository is an in-memory implementation of CustomerRepository.
type MockCustomerRepository struct {
	acc memAccess
}

func (r *MockCustomerRepository) GetAll(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	r.acc.read(func(st *memState) {
		customers = make([]models.Customer, 0, len(st.customers))
		for _, c := range st.customers {
			customers = append(customers, c)
		}
	})
	sort.Slice(customers, func(i, j int) bool {
		return customers[i].CreatedAt.After(customers[j].CreatedAt)
	})
	return customers, nil
}

func (r *MockCustomerRepository) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	var (
		customer models.Customer
		ok       bool
	)
	r.acc.read(func(st *memState) {
		customer, ok = st.customers[id]
	})
	if !ok {
		return nil, NotFound("customer", id)
	}
	return &customer, nil
}

func (r *MockCustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	if customer.ID == "" {
		customer.ID = uuid.New().String()
	}
	now := time.Now()
	customer.CreatedAt, customer.UpdatedAt = now, now
	return r.acc.write(func(st *memState) error {
		st.customers[customer.ID] = *customer
		return nil
	})
}

func (r *MockCustomerRepository) Update(ctx context.Context, customer *models.Customer) error {
	return r.acc.write(func(st *memState) error {
		existing, ok := st.customers[customer.ID]
		if !ok {
			return NotFound("customer", customer.ID)
		}
		customer.CreatedAt = existing.CreatedAt
		customer.UpdatedAt = time.Now()
		st.customers[customer.ID] = *customer
		return nil
	})
}

func (r *MockCustomerRepository) Delete(ctx context.Context, id string) error {
	return r.acc.write(func(st *memState) error {
		if _, ok := st.customers[id]; !ok {
			return NotFound("customer", id)
		}
		delete(st.customers, id)
		return nil
	})
}
