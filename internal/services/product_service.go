package services

import (
	"context"

	"inventory/internal/models"
	"inventory/internal/repositories"
)

// ProductService handles business logic related to products.
// Reads and single-statement writes go through repo, which may be cached;
// updates run in a unit of work on store.
type ProductService struct {
	store repositories.Store
	repo  repositories.ProductRepository
	cache ProductCacheInvalidator
}

// NewProductService creates a new ProductService. cache may be nil.
func NewProductService(store repositories.Store, repo repositories.ProductRepository, cache ProductCacheInvalidator) *ProductService {
	return &ProductService{
		store: store,
		repo:  repo,
		cache: cache,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateProduct fills sentinel defaults, validates and stores a product.
func (s *ProductService) CreateProduct(ctx context.Context, product *models.Product) error {
	applyProductDefaults(product)
	if err := validateProduct(product); err != nil {
		return err
	}
	return s.repo.Create(ctx, product)
}

// UpdateProduct applies the fields present in patch. The product row is
// locked for the read and only the patched columns are written, so a
// concurrent stock change is never overwritten.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, patch ProductPatch) (*models.Product, error) {
	var product *models.Product
	err := s.store.Do(ctx, func(tx repositories.Repos) error {
		current, err := tx.Products.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		fields := patch.apply(current)
		applyProductDefaults(current)
		if err := validateProduct(current); err != nil {
			return err
		}
		if len(fields) > 0 {
			if err := tx.Products.Update(ctx, current, fields...); err != nil {
				return err
			}
		}
		product, err = tx.Products.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, id)
	}
	return product, nil
}

// DeleteProduct deletes a product by its ID. Order items keep their snapshot.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func applyProductDefaults(product *models.Product) {
	if product.SKU == "" {
		product.SKU = models.Sentinel
	}
	if product.OriginalWeight == "" {
		product.OriginalWeight = models.Sentinel
	}
}

func validateProduct(product *models.Product) error {
	switch {
	case product.Name == "":
		return repositories.Invalid("product", product.ID, "name is required")
	case product.Price < 0:
		return repositories.Invalid("product", product.ID, "price cannot be negative")
	case product.Stock < 0:
		return repositories.Invalid("product", product.ID, "stock cannot be negative")
	}
	return nil
}

// apply copies the present fields onto product and names the columns it changed.
func (p ProductPatch) apply(product *models.Product) []string {
	var fields []string
	if p.Name != nil {
		product.Name = *p.Name
		fields = append(fields, repositories.ProductName)
	}
	if p.SKU != nil {
		product.SKU = *p.SKU
		fields = append(fields, repositories.ProductSKU)
	}
	if p.Price != nil {
		product.Price = *p.Price
		fields = append(fields, repositories.ProductPrice)
	}
	if p.Stock != nil {
		product.Stock = *p.Stock
		fields = append(fields, repositories.ProductStock)
	}
	if p.Description != nil {
		product.Description = *p.Description
		fields = append(fields, repositories.ProductDescription)
	}
	if p.OriginalWeight != nil {
		product.OriginalWeight = *p.OriginalWeight
		fields = append(fields, repositories.ProductOriginalWeight)
	}
	return fields
}
