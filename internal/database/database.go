// internal/database/database.go
package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoDB struct {
	Client      *mongo.Client
	Users       *mongo.Collection
	Communities *mongo.Collection
	Categories  *mongo.Collection
	Posts       *mongo.Collection
}

func NewMongoDB(uri string, dbName string) (*MongoDB, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %v", err)
	}

	// Ping the database to verify connection
	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %v", err)
	}

	log.Println("Successfully connected to MongoDB!")

	db := client.Database(dbName)
	return &MongoDB{
		Client:      client,
		Users:       db.Collection("users"),
		Communities: db.Collection("communities"),
		Categories:  db.Collection("categories"),
		Posts:       db.Collection("posts"),
	}, nil
}

// EnsureIndexes creates every unique and query index the collections rely
// on: username/email on users, name/slug on communities, the composite
// (name, community) on categories and the post listing indexes.
func (m *MongoDB) EnsureIndexes(ctx context.Context) error {
	if err := m.EnsureUserIndexes(ctx); err != nil {
		return err
	}
	if err := m.EnsureCommunityIndexes(ctx); err != nil {
		return err
	}
	if err := m.EnsureCategoryIndexes(ctx); err != nil {
		return err
	}
	return m.EnsurePostIndexes(ctx)
}

func (m *MongoDB) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
