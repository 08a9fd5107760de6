package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiankay999/Kay-Birks-website/internal/catalog"
	"github.com/tiankay999/Kay-Birks-website/internal/storage"
)

func setupTestDB(t *testing.T) *catalog.Repository {
	// Use in-memory database for tests
	db, err := storage.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, storage.RunMigrations(db, "../../migrations"))

	return catalog.NewRepository(db)
}

func TestGetAllProducts_ReturnsSeededCatalog(t *testing.T) {
	repo := setupTestDB(t)

	products, err := repo.GetAllProducts(context.Background())
	require.NoError(t, err)

	require.Len(t, products, 5)
	assert.Equal(t, "Arizona", products[0].Name)
	assert.InDelta(t, 50.00, products[0].Price, 0.001)
	assert.Equal(t, "#8B4513", products[0].DefaultColor)
	assert.Contains(t, products[0].Colors, "#000000")
}

func TestGetProduct_ReturnsProduct(t *testing.T) {
	repo := setupTestDB(t)

	product, err := repo.GetProduct(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, int64(1), product.ID)
	assert.Equal(t, "Arizona", product.Name)
}

func TestGetProduct_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	product, err := repo.GetProduct(context.Background(), 999)

	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
	assert.Nil(t, product)
}

func TestGetAllProducts_CancelledContext(t *testing.T) {
	repo := setupTestDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.GetAllProducts(ctx)
	assert.Error(t, err)
}
