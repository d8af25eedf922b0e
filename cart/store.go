package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vitrine/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(coll *mongo.Collection) Store {
	return &mongoStore{coll: coll}
}

func (m *mongoStore) FindByUser(ctx context.Context, userID string) (models.Cart, error) {
	var c models.Cart
	err := m.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Cart{}, fmt.Errorf("cart %w", models.ErrNotFound)
	}
	return c, err
}

func (m *mongoStore) Insert(ctx context.Context, c models.Cart) error {
	_, err := m.coll.InsertOne(ctx, c)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("cart %w", models.ErrConflict)
	}
	return err
}

func (m *mongoStore) IncLineQuantity(ctx context.Context, userID, lineID string, delta int) (bool, error) {
	res, err := m.coll.UpdateOne(ctx,
		bson.M{"userId": userID, "lines.lineId": lineID},
		bson.M{
			"$inc": bson.M{"lines.$.quantity": delta},
			"$set": bson.M{"updatedAt": time.Now()},
		})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (m *mongoStore) SetLine(ctx context.Context, userID, lineID string, quantity int, price float64) (bool, error) {
	res, err := m.coll.UpdateOne(ctx,
		bson.M{"userId": userID, "lines.lineId": lineID},
		bson.M{"$set": bson.M{
			"lines.$.quantity": quantity,
			"lines.$.price":    price,
			"updatedAt":        time.Now(),
		}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (m *mongoStore) PushLine(ctx context.Context, userID string, line models.CartLine) (bool, error) {
	res, err := m.coll.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{
			"$push": bson.M{"lines": line},
			"$set":  bson.M{"updatedAt": time.Now()},
		})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (m *mongoStore) PullLine(ctx context.Context, userID, lineID string) (bool, error) {
	res, err := m.coll.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{
			"$pull": bson.M{"lines": bson.M{"lineId": lineID}},
			"$set":  bson.M{"updatedAt": time.Now()},
		})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (m *mongoStore) ClearLines(ctx context.Context, userID string) error {
	_, err := m.coll.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"lines": []models.CartLine{}, "updatedAt": time.Now()}})
	return err
}
