package repositories

import (
	"context"
	"fmt"

	"inventory/internal/models"
)

// Product columns that Update can write.
const (
	ProductName           = "name"
	ProductSKU            = "sku"
	ProductPrice          = "price"
	ProductStock          = "stock"
	ProductDescription    = "description"
	ProductOriginalWeight = "original_weight"
)

// ProductColumns lists every column Update writes when no fields are named.
var ProductColumns = []string{ProductName, ProductSKU, ProductPrice, ProductStock, ProductDescription, ProductOriginalWeight}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	// GetForUpdate reads a product and locks it until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	// Update writes the named columns of product, or all of ProductColumns
	// when none are named. Columns left out keep their stored value.
	Update(ctx context.Context, product *models.Product, fields ...string) error
	Delete(ctx context.Context, id string) error
	// DecrementStock fails with ErrConflict instead of taking stock below zero.
	DecrementStock(ctx context.Context, id string, quantity float64) error
	IncrementStock(ctx context.Context, id string, quantity float64) error
}

// productValues maps the requested columns to their values in product.
func productValues(product *models.Product, fields []string) (map[string]interface{}, error) {
	if len(fields) == 0 {
		fields = ProductColumns
	}
	values := make(map[string]interface{}, len(fields))
	for _, field := range fields {
		switch field {
		case ProductName:
			values[field] = product.Name
		case ProductSKU:
			values[field] = product.SKU
		case ProductPrice:
			values[field] = product.Price
		case ProductStock:
			values[field] = product.Stock
		case ProductDescription:
			values[field] = product.Description
		case ProductOriginalWeight:
			values[field] = product.OriginalWeight
		default:
			return nil, fmt.Errorf("unknown product column %q", field)
		}
	}
	return values, nil
}
