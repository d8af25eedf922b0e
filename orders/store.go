package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vitrine/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(coll *mongo.Collection) Store {
	return &mongoStore{coll: coll}
}

func (m *mongoStore) Insert(ctx context.Context, order models.Order) error {
	_, err := m.coll.InsertOne(ctx, order)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("order %w", models.ErrConflict)
	}
	return err
}

func (m *mongoStore) FindByID(ctx context.Context, orderID string) (models.Order, error) {
	var order models.Order
	err := m.coll.FindOne(ctx, bson.M{"orderId": orderID}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Order{}, fmt.Errorf("order %w", models.ErrNotFound)
	}
	return order, err
}

func (m *mongoStore) FindPage(ctx context.Context, userID string, skip, limit int64) ([]models.Order, int64, error) {
	filter := bson.M{}
	if userID != "" {
		filter["userId"] = userID
	}

	total, err := m.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)
	cursor, err := m.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// pendingFilter matches only an order no concurrent settlement has
// touched yet; admin writes race the webhook on this precondition.
func pendingFilter(orderID string) bson.M {
	return bson.M{
		"orderId":     orderID,
		"orderStatus": models.OrderPending,
		"paid":        false,
	}
}

func (m *mongoStore) SetStatus(ctx context.Context, orderID string, status models.OrderStatus) (models.Order, bool, error) {
	var order models.Order
	err := m.coll.FindOneAndUpdate(ctx,
		pendingFilter(orderID),
		bson.M{"$set": bson.M{"orderStatus": status, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Order{}, false, nil
	}
	if err != nil {
		return models.Order{}, false, err
	}
	return order, true, nil
}

func (m *mongoStore) SetContact(ctx context.Context, orderID string, patch ContactPatch) (models.Order, bool, error) {
	set := bson.M{"updatedAt": time.Now()}
	if patch.Username != nil {
		set["username"] = *patch.Username
	}
	if patch.Phone != nil {
		set["phone"] = *patch.Phone
	}
	if patch.Address != nil {
		set["address"] = *patch.Address
	}

	var order models.Order
	err := m.coll.FindOneAndUpdate(ctx,
		pendingFilter(orderID),
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Order{}, false, nil
	}
	if err != nil {
		return models.Order{}, false, err
	}
	return order, true, nil
}

func (m *mongoStore) SetInvoice(ctx context.Context, orderID, filename string) error {
	_, err := m.coll.UpdateOne(ctx,
		bson.M{"orderId": orderID},
		bson.M{"$set": bson.M{"invoice": filename, "updatedAt": time.Now()}})
	return err
}

func (m *mongoStore) Delete(ctx context.Context, orderID string) (bool, error) {
	res, err := m.coll.DeleteOne(ctx, bson.M{"orderId": orderID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// SettleCard is the idempotency point for card settlement. The filter
// only matches a still-unpaid card order, so a second delivery of the
// same event matches nothing.
func (m *mongoStore) SettleCard(ctx context.Context, orderID, paymentIntent string) (models.Order, bool, error) {
	filter := bson.M{
		"orderId":       orderID,
		"paid":          false,
		"paymentMethod": models.PaymentCard,
	}
	update := bson.M{"$set": bson.M{
		"paid":           true,
		"orderStatus":    models.OrderCompleted,
		"payment_intent": paymentIntent,
		"updatedAt":      time.Now(),
	}}

	var order models.Order
	err := m.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Order{}, false, nil
	}
	if err != nil {
		return models.Order{}, false, err
	}
	return order, true, nil
}
