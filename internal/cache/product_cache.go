package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"inventory/internal/models"
	"inventory/internal/repositories"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	allProductsKey = "products:all"
	notFoundMarker = "notfound"
	notFoundTTL    = time.Minute

	// invalidatedMarker replaces an entry on invalidation. While it lives,
	// reads go to the database and may not repopulate the key, so a reader
	// that loaded a row before the write cannot put it back afterwards.
	invalidatedMarker = "invalidated"
	invalidatedTTL    = 5 * time.Second
)

func productKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

// CachedProductRepository serves product reads from redis and drops the
// cached entries whenever a product changes. Redis failures are logged and
// the call falls through to the wrapped repository.
type CachedProductRepository struct {
	realRepo repositories.ProductRepository
	redis    *redis.Client
	ttl      time.Duration
}

// NewCachedProductRepository wraps realRepo. A non-positive ttl means five minutes.
func NewCachedProductRepository(realRepo repositories.ProductRepository, rdb *redis.Client, ttl time.Duration) *CachedProductRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedProductRepository{
		realRepo: realRepo,
		redis:    rdb,
		ttl:      ttl,
	}
}

func (c *CachedProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	key := productKey(id)

	data, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		switch string(data) {
		case notFoundMarker:
			return nil, repositories.NotFound("product", id)
		case invalidatedMarker:
			return c.realRepo.GetByID(ctx, id)
		}
		var product models.Product
		if err := json.Unmarshal(data, &product); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to unmarshal cached product, continuing with database")
			c.redis.Del(ctx, key)
			break
		}
		return &product, nil
	case errors.Is(err, redis.Nil):
	default:
		log.Warn().Err(err).Str("key", key).Msg("redis error, continuing with database")
	}

	product, err := c.realRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			if setErr := c.redis.SetNX(ctx, key, notFoundMarker, notFoundTTL).Err(); setErr != nil {
				log.Warn().Err(setErr).Str("key", key).Msg("failed to cache missing product")
			}
		}
		return nil, err
	}
	c.store(ctx, key, product)
	return product, nil
}

func (c *CachedProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	data, err := c.redis.Get(ctx, allProductsKey).Bytes()
	if err == nil && string(data) == invalidatedMarker {
		return c.realRepo.GetAll(ctx)
	}
	if err == nil {
		var products []models.Product
		if err := json.Unmarshal(data, &products); err == nil {
			return products, nil
		}
		log.Warn().Err(err).Msg("failed to unmarshal cached product list, continuing with database")
		c.redis.Del(ctx, allProductsKey)
	} else if !errors.Is(err, redis.Nil) {
		log.Warn().Err(err).Msg("redis error, continuing with database")
	}

	products, err := c.realRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, allProductsKey, products)
	return products, nil
}

// GetForUpdate always reads the wrapped repository.
func (c *CachedProductRepository) GetForUpdate(ctx context.Context, id string) (*models.Product, error) {
	return c.realRepo.GetForUpdate(ctx, id)
}

func (c *CachedProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := c.realRepo.Create(ctx, product); err != nil {
		return err
	}
	c.Invalidate(ctx, product.ID)
	return nil
}

func (c *CachedProductRepository) Update(ctx context.Context, product *models.Product, fields ...string) error {
	defer c.Invalidate(ctx, product.ID)
	return c.realRepo.Update(ctx, product, fields...)
}

func (c *CachedProductRepository) Delete(ctx context.Context, id string) error {
	defer c.Invalidate(ctx, id)
	return c.realRepo.Delete(ctx, id)
}

func (c *CachedProductRepository) DecrementStock(ctx context.Context, id string, quantity float64) error {
	defer c.Invalidate(ctx, id)
	return c.realRepo.DecrementStock(ctx, id, quantity)
}

func (c *CachedProductRepository) IncrementStock(ctx context.Context, id string, quantity float64) error {
	defer c.Invalidate(ctx, id)
	return c.realRepo.IncrementStock(ctx, id, quantity)
}

// Invalidate marks the cached entries of the given products and the product
// list as invalidated. Reads bypass them until the marker expires.
func (c *CachedProductRepository) Invalidate(ctx context.Context, productIDs ...string) {
	keys := make([]string, 0, len(productIDs)+1)
	keys = append(keys, allProductsKey)
	for _, id := range productIDs {
		keys = append(keys, productKey(id))
	}
	_, err := c.redis.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range keys {
			pipe.Set(ctx, key, invalidatedMarker, invalidatedTTL)
		}
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Strs("keys", keys).Msg("failed to invalidate product cache")
	}
}

// store fills an empty key. A key holding any marker is left alone.
func (c *CachedProductRepository) store(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to marshal product cache entry")
		return
	}
	if err := c.redis.SetNX(ctx, key, data, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to cache product")
	}
}
