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

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves all products, newest first.
func (r *GORMProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	return r.first(r.db.WithContext(ctx), id)
}

// GetForUpdate retrieves a product and holds a row lock on it.
// SQLite has no row locks and ignores the clause; its writers are serialized instead.
func (r *GORMProductRepository) GetForUpdate(ctx context.Context, id string) (*models.Product, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GORMProductRepository) first(db *gorm.DB, id string) (*models.Product, error) {
	var product models.Product
	if err := db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("product", id)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		if isUniqueViolation(err) {
			return Conflict("product", product.ID, fmt.Sprintf("sku %q already in use", product.SKU))
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update writes the named columns of an existing product.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product, fields ...string) error {
	values, err := productValues(product, fields)
	if err != nil {
		return err
	}
	values["updated_at"] = time.Now()
	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", product.ID).Updates(values)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return Conflict("product", product.ID, fmt.Sprintf("sku %q already in use", product.SKU))
		}
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return NotFound("product", product.ID)
	}
	return nil
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return NotFound("product", id)
	}
	return nil
}

// stockRetries bounds how often a stock change is retried after losing a
// race with another writer.
const stockRetries = 5

// DecrementStock takes quantity out of stock. The new level is computed in
// decimal and written only if the stored level is still the one that was read.
func (r *GORMProductRepository) DecrementStock(ctx context.Context, id string, quantity float64) error {
	return r.swapStock(ctx, id, func(product *models.Product) (float64, error) {
		next, ok := takeStock(product.Stock, quantity)
		if !ok {
			return 0, insufficientStock(product, quantity)
		}
		return next, nil
	})
}

// IncrementStock puts quantity back into stock.
func (r *GORMProductRepository) IncrementStock(ctx context.Context, id string, quantity float64) error {
	return r.swapStock(ctx, id, func(product *models.Product) (float64, error) {
		return putStock(product.Stock, quantity), nil
	})
}

func (r *GORMProductRepository) swapStock(ctx context.Context, id string, next func(*models.Product) (float64, error)) error {
	for attempt := 0; attempt < stockRetries; attempt++ {
		product, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		stock, err := next(product)
		if err != nil {
			return err
		}
		res := r.db.WithContext(ctx).Model(&models.Product{}).
			Where("id = ? AND stock = ?", id, product.Stock).
			Updates(map[string]interface{}{
				"stock":      stock,
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to change stock of product %s: %w", id, res.Error)
		}
		if res.RowsAffected == 1 {
			return nil
		}
	}
	return Conflict("product", id, "stock changed concurrently, try again")
}

func insufficientStock(product *models.Product, requested float64) error {
	return Conflict("product", product.ID, fmt.Sprintf("insufficient stock for %s (requested: %g, available: %g)", product.Name, requested, product.Stock))
}
