package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shoppyglobe/backend/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) CartRepository {
	return &mongoRepository{
		collection: db.Collection("carts"),
	}
}

func (m mongoRepository) FindByOwner(ctx context.Context, ownerID string) (*domain.Cart, error) {
	var cart domain.Cart
	filter := bson.M{"user_id": ownerID}

	err := m.collection.FindOne(ctx, filter).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return &cart, nil
}

// Save writes the whole document. Concurrent saves for the same owner are
// last-write-wins.
func (m mongoRepository) Save(ctx context.Context, cart *domain.Cart) (*domain.Cart, error) {
	doc := *cart
	doc.ID = "" // _id is immutable; the existing one is kept on replace
	if doc.Items == nil {
		doc.Items = []domain.CartItem{}
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = doc.CreatedAt
	}

	filter := bson.M{"user_id": doc.OwnerID}
	opts := options.Replace().SetUpsert(true)

	res, err := m.collection.ReplaceOne(ctx, filter, doc, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}

	doc.ID = cart.ID
	if oid, ok := res.UpsertedID.(primitive.ObjectID); ok {
		doc.ID = oid.Hex()
	}
	return &doc, nil
}
