package db

import (
	"context"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	Client            *mongo.Client
	ProductCollection *mongo.Collection
	CartCollection    *mongo.Collection
	OrderCollection   *mongo.Collection
	CouponCollection  *mongo.Collection
)

// Init connects to MongoDB and binds the collection handles. Call once
// from main before any store is constructed.
func Init(ctx context.Context) error {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "vitrinedb"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return err
	}
	Client = client

	database := client.Database(dbName)
	ProductCollection = database.Collection("products")
	CartCollection = database.Collection("carts")
	OrderCollection = database.Collection("orders")
	CouponCollection = database.Collection("coupons")

	ensureIndexes(ctx)
	return nil
}

// Close disconnects the client during shutdown.
func Close() {
	if Client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Client.Disconnect(ctx); err != nil {
		log.Println("mongo disconnect:", err)
	}
}

func ensureIndexes(ctx context.Context) {
	unique := func(coll *mongo.Collection, key string) {
		_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: key, Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			log.Printf("index %s.%s: %v", coll.Name(), key, err)
		}
	}

	unique(ProductCollection, "name")
	unique(ProductCollection, "productId")
	unique(CouponCollection, "code")
	unique(CartCollection, "userId")
	unique(OrderCollection, "orderId")
}
