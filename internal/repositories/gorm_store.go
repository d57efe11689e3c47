package repositories

import (
	"context"
	"fmt"

	"inventory/internal/models"

	"gorm.io/gorm"
)

// GORMStore is the GORM implementation of Store.
type GORMStore struct {
	db *gorm.DB
}

// NewGORMStore creates a new instance of GORMStore.
func NewGORMStore(db *gorm.DB) *GORMStore {
	return &GORMStore{db: db}
}

// Migrate creates or updates the tables of every model.
func (s *GORMStore) Migrate() error {
	if err := s.db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}

// Do runs fn in a database transaction. Returning an error from fn rolls it back.
func (s *GORMStore) Do(ctx context.Context, fn func(tx Repos) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(gormRepos(tx))
	})
}

// Repos returns repositories bound to the shared connection pool.
func (s *GORMStore) Repos() Repos {
	return gormRepos(s.db)
}

// Users returns the user repository.
func (s *GORMStore) Users() UserRepository {
	return NewGORMUserRepository(s.db)
}

func gormRepos(db *gorm.DB) Repos {
	return Repos{
		Products:  NewGORMProductRepository(db),
		Customers: NewGORMCustomerRepository(db),
		Orders:    NewGORMOrderRepository(db),
	}
}
