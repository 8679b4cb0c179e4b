// Package mongo implementa el almacén de registros sobre MongoDB.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/litio-erp/pkg/config"
)

const (
	recordsCollection     = "records"
	collectionsCollection = "collections"
	countersCollection    = "counters"
)

// Connect abre el cliente y devuelve la base configurada.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("conectar mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, client.Database(cfg.DBName), nil
}

// EnsureIndexes crea el índice único (collection, id) y el de orden por seq.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := db.Collection(recordsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "collection", Value: 1}, {Key: "id", Value: 1}},
			Options: options.Index().SetName("collection_id_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "collection", Value: 1}, {Key: "seq", Value: 1}},
			Options: options.Index().SetName("collection_seq"),
		},
	})
	if err != nil {
		return fmt.Errorf("crear índices: %w", err)
	}
	return nil
}
