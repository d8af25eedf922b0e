package catalog

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

// NewMongoStore wraps the products collection.
func NewMongoStore(coll *mongo.Collection) Store {
	return &mongoStore{coll: coll}
}

func (m *mongoStore) Insert(ctx context.Context, p models.Product) error {
	_, err := m.coll.InsertOne(ctx, p)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("product %w", models.ErrConflict)
	}
	return err
}

func (m *mongoStore) FindByID(ctx context.Context, id string) (models.Product, error) {
	var p models.Product
	err := m.coll.FindOne(ctx, bson.M{"productId": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Product{}, fmt.Errorf("product %w", models.ErrNotFound)
	}
	return p, err
}

func (m *mongoStore) FindByName(ctx context.Context, name string) (models.Product, error) {
	var p models.Product
	err := m.coll.FindOne(ctx, bson.M{"name": name}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Product{}, fmt.Errorf("product %w", models.ErrNotFound)
	}
	return p, err
}

func (m *mongoStore) FindPage(ctx context.Context, q ListQuery) ([]models.Product, int64, error) {
	filter := bson.M{}
	if q.Category != "" {
		filter["category"] = q.Category
	}
	if q.Search != "" {
		filter["name"] = bson.M{"$regex": q.Search, "$options": "i"}
	}
	price := bson.M{}
	if q.MinPrice != nil {
		price["$gte"] = *q.MinPrice
	}
	if q.MaxPrice != nil {
		price["$lte"] = *q.MaxPrice
	}
	if len(price) > 0 {
		filter["finalPrice"] = price
	}

	total, err := m.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((q.Page - 1) * q.Limit)).
		SetLimit(int64(q.Limit))

	cursor, err := m.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var items []models.Product
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (m *mongoStore) Replace(ctx context.Context, p models.Product) error {
	res, err := m.coll.ReplaceOne(ctx, bson.M{"productId": p.ProductID}, p)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("product %w", models.ErrConflict)
		}
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("product %w", models.ErrNotFound)
	}
	return nil
}

func (m *mongoStore) Delete(ctx context.Context, id string) error {
	res, err := m.coll.DeleteOne(ctx, bson.M{"productId": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("product %w", models.ErrNotFound)
	}
	return nil
}
