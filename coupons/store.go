package coupons

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

func NewMongoStore(coll *mongo.Collection) Store {
	return &mongoStore{coll: coll}
}

func (m *mongoStore) Insert(ctx context.Context, c models.Coupon) error {
	_, err := m.coll.InsertOne(ctx, c)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("coupon code %w", models.ErrConflict)
	}
	return err
}

func (m *mongoStore) FindByCode(ctx context.Context, code string) (models.Coupon, error) {
	var c models.Coupon
	err := m.coll.FindOne(ctx, bson.M{"code": code}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Coupon{}, fmt.Errorf("coupon %w", models.ErrNotFound)
	}
	return c, err
}

func (m *mongoStore) FindAll(ctx context.Context) ([]models.Coupon, error) {
	cursor, err := m.coll.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var coupons []models.Coupon
	if err := cursor.All(ctx, &coupons); err != nil {
		return nil, err
	}
	return coupons, nil
}

func (m *mongoStore) Update(ctx context.Context, couponID string, patch CouponPatch) (models.Coupon, error) {
	set := bson.M{}
	if patch.Value != nil {
		set["value"] = *patch.Value
	}
	if patch.IsActive != nil {
		set["isActive"] = *patch.IsActive
	}
	if patch.ExpiryDate != nil {
		set["expiryDate"] = *patch.ExpiryDate
	}
	if patch.MaxUsage != nil {
		set["maxUsage"] = *patch.MaxUsage
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if len(set) == 0 {
		return m.findByID(ctx, couponID)
	}

	var c models.Coupon
	err := m.coll.FindOneAndUpdate(ctx,
		bson.M{"couponId": couponID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Coupon{}, fmt.Errorf("coupon %w", models.ErrNotFound)
	}
	return c, err
}

func (m *mongoStore) findByID(ctx context.Context, couponID string) (models.Coupon, error) {
	var c models.Coupon
	err := m.coll.FindOne(ctx, bson.M{"couponId": couponID}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Coupon{}, fmt.Errorf("coupon %w", models.ErrNotFound)
	}
	return c, err
}

func (m *mongoStore) Delete(ctx context.Context, couponID string) error {
	res, err := m.coll.DeleteOne(ctx, bson.M{"couponId": couponID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("coupon %w", models.ErrNotFound)
	}
	return nil
}

func (m *mongoStore) IncUsage(ctx context.Context, code string) (bool, error) {
	// Either the coupon is unlimited (maxUsage 0) or there is headroom;
	// the filtered $inc cannot push usageCount past maxUsage.
	filter := bson.M{
		"code": code,
		"$or": []bson.M{
			{"maxUsage": 0},
			{"$expr": bson.M{"$lt": []string{"$usageCount", "$maxUsage"}}},
		},
	}
	res, err := m.coll.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"usageCount": 1}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}
