package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"

	"github.com/tiankay999/Kay-Birks-website/internal/domain"
)

func setupTestMongo(t *testing.T) (*MongoRepository, func()) {
	if testing.Short() {
		t.Skip("skipping MongoDB integration test in short mode")
	}

	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := ConnectMongoDB(ctx, uri, "testdb")
	require.NoError(t, err)

	cleanup := func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return NewMongoRepository(db), cleanup
}

func TestMongoRepository_LoadMissing(t *testing.T) {
	repo, cleanup := setupTestMongo(t)
	defer cleanup()

	items, err := repo.Load(context.Background())
	assert.ErrorIs(t, err, ErrCartNotFound)
	assert.Nil(t, items)
}

func TestMongoRepository_RoundTrip(t *testing.T) {
	repo, cleanup := setupTestMongo(t)
	defer cleanup()

	ctx := context.Background()
	items := []domain.LineItem{
		{ID: "a", Name: "Arizona", UnitPrice: 50.00, ColorTag: "#8B4513", Quantity: 2},
		{ID: "b", Name: "Madrid", UnitPrice: 44.99, ColorTag: "#FFFFFF", Quantity: 1},
	}

	require.NoError(t, repo.Save(ctx, items))

	restored, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, items, restored)
}

func TestMongoRepository_SaveReplacesExisting(t *testing.T) {
	repo, cleanup := setupTestMongo(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, []domain.LineItem{{ID: "a", Name: "Arizona", Quantity: 1}}))
	require.NoError(t, repo.Save(ctx, []domain.LineItem{{ID: "b", Name: "Boston", Quantity: 4}}))

	restored, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, restored, 1)
	assert.Equal(t, "Boston", restored[0].Name)
}

func TestMongoRepository_Clear(t *testing.T) {
	repo, cleanup := setupTestMongo(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, []domain.LineItem{{ID: "a", Quantity: 1}}))
	require.NoError(t, repo.Clear(ctx))

	_, err := repo.Load(ctx)
	assert.ErrorIs(t, err, ErrCartNotFound)
}
