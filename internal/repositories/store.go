package repositories

import "context"

// Repos groups the repositories that take part in one unit of work.
type Repos struct {
	Products  ProductRepository
	Customers CustomerRepository
	Orders    OrderRepository
}

// UnitOfWork runs fn inside a single transaction. The Repos handed to fn are
// bound to that transaction; if fn returns an error nothing it wrote is kept.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(tx Repos) error) error
}

// Store is the persistence gateway used by the services.
type Store interface {
	UnitOfWork
	// Repos returns repositories that run each call in its own transaction.
	Repos() Repos
	Users() UserRepository
}
