package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	UserCollection   *mongo.Collection
	PhotosCollection *mongo.Collection
	Client           *mongo.Client
)

// Connect dials MongoDB and binds the wall collections. The URI and database
// name come from configuration so deployments can point elsewhere without a
// rebuild.
func Connect(ctx context.Context, uri, dbName string) error {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("ping MongoDB: %w", err)
	}

	Client = client
	UserCollection = client.Database(dbName).Collection("users")
	PhotosCollection = client.Database(dbName).Collection("photos")
	return nil
}

func Close(ctx context.Context) error {
	if Client == nil {
		return nil
	}
	return Client.Disconnect(ctx)
}
