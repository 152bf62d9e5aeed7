// Package mongostore keeps a snapshot in the "fighters" and "events"
// collections of a MongoDB database.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"fightstats-backend/lib/records"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const DefaultDatabase = "ufc-data"

type Config struct {
	Uri      string `json:"uri"`
	Database string `json:"database"`
}

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

func Open(ctx context.Context, config Config) (Store, error) {
	if config.Uri == "" {
		return Store{}, fmt.Errorf("mongostore: a uri was not specified")
	}
	if config.Database == "" {
		config.Database = DefaultDatabase
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.Uri))
	if err != nil {
		return Store{}, fmt.Errorf("mongostore: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	err = client.Ping(pingCtx, nil)
	if err != nil {
		client.Disconnect(context.Background())
		return Store{}, fmt.Errorf("mongostore: ping: %w", err)
	}

	return Store{
		client: client,
		db:     client.Database(config.Database),
	}, nil
}

// loadCollection reads the documents in insertion order, object ids are
// generated by the client in increasing order.
func loadCollection[T any](ctx context.Context, coll *mongo.Collection) ([]T, error) {
	cursor, err := coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var out []T
	err = cursor.All(ctx, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// replaceCollection empties a collection and inserts the batch.
func replaceCollection[T any](ctx context.Context, coll *mongo.Collection, items []T) error {
	_, err := coll.DeleteMany(ctx, bson.D{})
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	docs := make([]any, len(items))
	for i, item := range items {
		docs[i] = item
	}
	_, err = coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	return err
}

func (s Store) Load(ctx context.Context) (records.Snapshot, error) {
	fighters, err := loadCollection[records.Fighter](ctx, s.db.Collection("fighters"))
	if err != nil {
		return records.Snapshot{}, fmt.Errorf("mongostore: load fighters: %w", err)
	}
	events, err := loadCollection[records.Event](ctx, s.db.Collection("events"))
	if err != nil {
		return records.Snapshot{}, fmt.Errorf("mongostore: load events: %w", err)
	}
	return records.Snapshot{Fighters: fighters, Events: events}, nil
}

func (s Store) Save(ctx context.Context, snapshot records.Snapshot, which records.Collections) error {
	if which.Has(records.CollectionFighters) {
		err := replaceCollection(ctx, s.db.Collection("fighters"), snapshot.Fighters)
		if err != nil {
			return fmt.Errorf("mongostore: save fighters: %w", err)
		}
	}
	if which.Has(records.CollectionEvents) {
		err := replaceCollection(ctx, s.db.Collection("events"), snapshot.Events)
		if err != nil {
			return fmt.Errorf("mongostore: save events: %w", err)
		}
	}
	return nil
}

func (s Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
