package services

import (
	"context"

	"inventory/internal/models"
	"inventory/internal/repositories"
)

// CustomerService manages customer records.
type CustomerService struct {
	store repositories.Store
}

// NewCustomerService creates a new CustomerService.
func NewCustomerService(store repositories.Store) *CustomerService {
	return &CustomerService{store: store}
}

func (s *CustomerService) GetAllCustomers(ctx context.Context) ([]models.Customer, error) {
	return s.store.Repos().Customers.GetAll(ctx)
}

func (s *CustomerService) GetCustomerByID(ctx context.Context, id string) (*models.Customer, error) {
	return s.store.Repos().Customers.GetByID(ctx, id)
}

// CreateCustomer stores a customer. An empty phone becomes the sentinel.
func (s *CustomerService) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	if customer.Name == "" {
		return repositories.Invalid("customer", "", "name is required")
	}
	if customer.Phone == "" {
		customer.Phone = models.Sentinel
	}
	return s.store.Repos().Customers.Create(ctx, customer)
}

// UpdateCustomer applies the fields present in patch.
func (s *CustomerService) UpdateCustomer(ctx context.Context, id string, patch CustomerPatch) (*models.Customer, error) {
	customers := s.store.Repos().Customers
	customer, err := customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		if *patch.Name == "" {
			return nil, repositories.Invalid("customer", id, "name is required")
		}
		customer.Name = *patch.Name
	}
	if patch.Phone != nil {
		customer.Phone = *patch.Phone
	}
	if patch.Address != nil {
		customer.Address = *patch.Address
	}
	if customer.Phone == "" {
		customer.Phone = models.Sentinel
	}
	if err := customers.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// DeleteCustomer removes a customer. Its orders lose the reference but keep
// the customer snapshot taken when they were written.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id string) error {
	return s.store.Do(ctx, func(tx repositories.Repos) error {
		if _, err := tx.Customers.GetByID(ctx, id); err != nil {
			return err
		}
		if err := tx.Orders.DetachCustomer(ctx, id); err != nil {
			return err
		}
		return tx.Customers.Delete(ctx, id)
	})
}
