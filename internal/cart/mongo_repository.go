package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tiankay999/Kay-Birks-website/internal/domain"
)

// ConnectMongoDB opens a MongoDB database handle for the Mongo-backed cart
// repository (CART_BACKEND=mongo).
func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: db.Collection("carts")}
}

// MongoRepository keeps the cart as a single document keyed by CartKey.
type MongoRepository struct {
	collection *mongo.Collection
}

type cartDocument struct {
	ID        string            `bson:"_id"`
	Items     []domain.LineItem `bson:"items"`
	UpdatedAt time.Time         `bson:"updated_at"`
}

func (m *MongoRepository) Load(ctx context.Context) ([]domain.LineItem, error) {
	var doc cartDocument

	filter := bson.M{"_id": CartKey}
	err := m.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("failed to load cart: %w", err)
		}
		// Anything else the driver cannot decode counts as corrupt state.
		return nil, fmt.Errorf("%w: %v", ErrCorruptCart, err)
	}

	return doc.Items, nil
}

func (m *MongoRepository) Save(ctx context.Context, items []domain.LineItem) error {
	doc := cartDocument{
		ID:        CartKey,
		Items:     items,
		UpdatedAt: time.Now(),
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := m.collection.ReplaceOne(ctx, bson.M{"_id": CartKey}, doc, opts); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (m *MongoRepository) Clear(ctx context.Context) error {
	if _, err := m.collection.DeleteOne(ctx, bson.M{"_id": CartKey}); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
