package repositories

import (
	"context"
	"fmt"
	"sort"
	"time"

	"inventory/internal/models"

	"github.com/google/uuid"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
type MockProductRepository struct {
	acc memAccess
}

// GetAll returns all products, newest first.
func (r *MockProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	var productList []models.Product
	r.acc.read(func(st *memState) {
		productList = make([]models.Product, 0, len(st.products))
		for _, p := range st.products {
			productList = append(productList, p)
		}
	})
	sort.Slice(productList, func(i, j int) bool {
		return productList[i].CreatedAt.After(productList[j].CreatedAt)
	})
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var (
		product models.Product
		ok      bool
	)
	r.acc.read(func(st *memState) {
		product, ok = st.products[id]
	})
	if !ok {
		return nil, NotFound("product", id)
	}
	return &product, nil
}

// GetForUpdate is GetByID; the store already serializes transactions.
func (r *MockProductRepository) GetForUpdate(ctx context.Context, id string) (*models.Product, error) {
	return r.GetByID(ctx, id)
}

// Create adds a new product.
func (r *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now()
	product.CreatedAt, product.UpdatedAt = now, now
	return r.acc.write(func(st *memState) error {
		if err := skuTaken(st, product); err != nil {
			return err
		}
		st.products[product.ID] = *product
		return nil
	})
}

// Update copies the named columns of product onto the stored one.
func (r *MockProductRepository) Update(ctx context.Context, product *models.Product, fields ...string) error {
	values, err := productValues(product, fields)
	if err != nil {
		return err
	}
	return r.acc.write(func(st *memState) error {
		existing, ok := st.products[product.ID]
		if !ok {
			return NotFound("product", product.ID)
		}
		if _, ok := values[ProductSKU]; ok {
			if err := skuTaken(st, product); err != nil {
				return err
			}
		}
		for field, value := range values {
			switch field {
			case ProductName:
				existing.Name = value.(string)
			case ProductSKU:
				existing.SKU = value.(string)
			case ProductPrice:
				existing.Price = value.(float64)
			case ProductStock:
				existing.Stock = value.(float64)
			case ProductDescription:
				existing.Description = value.(string)
			case ProductOriginalWeight:
				existing.OriginalWeight = value.(string)
			}
		}
		existing.UpdatedAt = time.Now()
		st.products[product.ID] = existing
		return nil
	})
}

// Delete removes a product by its ID.
func (r *MockProductRepository) Delete(ctx context.Context, id string) error {
	return r.acc.write(func(st *memState) error {
		if _, ok := st.products[id]; !ok {
			return NotFound("product", id)
		}
		delete(st.products, id)
		return nil
	})
}

// DecrementStock takes quantity out of stock.
func (r *MockProductRepository) DecrementStock(ctx context.Context, id string, quantity float64) error {
	return r.acc.write(func(st *memState) error {
		product, ok := st.products[id]
		if !ok {
			return NotFound("product", id)
		}
		next, ok := takeStock(product.Stock, quantity)
		if !ok {
			return insufficientStock(&product, quantity)
		}
		product.Stock = next
		product.UpdatedAt = time.Now()
		st.products[id] = product
		return nil
	})
}

// IncrementStock puts quantity back into stock.
func (r *MockProductRepository) IncrementStock(ctx context.Context, id string, quantity float64) error {
	return r.acc.write(func(st *memState) error {
		product, ok := st.products[id]
		if !ok {
			return NotFound("product", id)
		}
		product.Stock = putStock(product.Stock, quantity)
		product.UpdatedAt = time.Now()
		st.products[id] = product
		return nil
	})
}

func skuTaken(st *memState, product *models.Product) error {
	if product.SKU == models.Sentinel {
		return nil
	}
	for id, p := range st.products {
		if id != product.ID && p.SKU == product.SKU {
			return Conflict("product", product.ID, fmt.Sprintf("sku %q already in use", product.SKU))
		}
	}
	return nil
}
