package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"inventory/internal/models"
	"inventory/internal/repositories"
	"inventory/internal/services"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	goleak.VerifyTestMain(m)
}

// newSQLiteStore opens a private in-memory SQLite database.
func newSQLiteStore(t *testing.T) repositories.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	store := repositories.NewGORMStore(db)
	require.NoError(t, store.Migrate())
	return store
}

// eachStore runs fn once per Store implementation.
func eachStore(t *testing.T, fn func(t *testing.T, store repositories.Store)) {
	t.Run("gorm-sqlite", func(t *testing.T) { fn(t, newSQLiteStore(t)) })
	t.Run("memory", func(t *testing.T) { fn(t, repositories.NewMemoryStore()) })
}

func seedProduct(t *testing.T, store repositories.Store, name string, price, stock float64) *models.Product {
	t.Helper()
	product := &models.Product{Name: name, Price: price, Stock: stock}
	require.NoError(t, services.NewProductService(store, store.Repos().Products, nil).CreateProduct(context.Background(), product))
	return product
}

func stockOf(t *testing.T, store repositories.Store, id string) float64 {
	t.Helper()
	product, err := store.Repos().Products.GetByID(context.Background(), id)
	require.NoError(t, err)
	return product.Stock
}

type recordingPublisher struct {
	mu     sync.Mutex
	keys   []string
	bodies [][]byte
}

func (p *recordingPublisher) Publish(routingKey string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, routingKey)
	p.bodies = append(p.bodies, body)
	return nil
}

type recordingInvalidator struct {
	mu  sync.Mutex
	ids []string
}

func (c *recordingInvalidator) Invalidate(ctx context.Context, productIDs ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = append(c.ids, productIDs...)
}

func item(productID string, quantity float64) services.ItemRequest {
	return services.ItemRequest{ProductID: productID, Quantity: quantity}
}

func weighed(productID string, quantity float64) services.ItemRequest {
	unit := string(models.UnitWeight)
	return services.ItemRequest{ProductID: productID, Quantity: quantity, Unit: &unit}
}
