package stock

import (
	"context"
	"errors"
	"fmt"

	"vitrine/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore wraps the products collection; the ledger shares it with
// the catalog but only ever touches the stock field.
func NewMongoStore(coll *mongo.Collection) Store {
	return &mongoStore{coll: coll}
}

func (m *mongoStore) FindProduct(ctx context.Context, productID string) (models.Product, error) {
	var p models.Product
	err := m.coll.FindOne(ctx, bson.M{"productId": productID}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Product{}, fmt.Errorf("product %w", models.ErrNotFound)
	}
	return p, err
}

func (m *mongoStore) IncStock(ctx context.Context, productID string, qty int) (int, error) {
	var p models.Product
	err := m.coll.FindOneAndUpdate(ctx,
		bson.M{"productId": productID},
		bson.M{"$inc": bson.M{"stock": qty}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, fmt.Errorf("product %w", models.ErrNotFound)
	}
	if err != nil {
		return 0, err
	}
	return p.Stock, nil
}

func (m *mongoStore) DecStock(ctx context.Context, productID string, qty int) (int, bool, error) {
	// The stock >= qty guard makes the decrement conditional: two racing
	// requests serialize inside the store and the loser matches nothing.
	var p models.Product
	err := m.coll.FindOneAndUpdate(ctx,
		bson.M{"productId": productID, "stock": bson.M{"$gte": qty}},
		bson.M{"$inc": bson.M{"stock": -qty}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return p.Stock, true, nil
}
