// Package store opens the persistence adapter named by the configuration.
package store

import (
	"context"
	"fmt"

	"fightstats-backend/lib/records"
	"fightstats-backend/lib/store/jsonstore"
	"fightstats-backend/lib/store/mdstore"
	"fightstats-backend/lib/store/mongostore"
	"fightstats-backend/lib/store/sqlstore"
)

// Store loads and saves the whole snapshot. A store that was never written
// to loads as an empty snapshot.
type Store interface {
	Load(ctx context.Context) (records.Snapshot, error)
	// Save replaces the selected collections, the others are left as they are.
	Save(ctx context.Context, snapshot records.Snapshot, which records.Collections) error
	Close() error
}

const (
	KindJson     = "json"
	KindSql      = "sql"
	KindMongo    = "mongo"
	KindMarkdown = "markdown"
)

type Config struct {
	// Kind is one of json (the default), sql, mongo or markdown.
	Kind string `json:"kind"`
	// Dir is the directory of the json and markdown stores.
	Dir   string            `json:"dir"`
	Sql   sqlstore.Config   `json:"sql"`
	Mongo mongostore.Config `json:"mongo"`
}

func Open(ctx context.Context, config Config) (Store, error) {
	switch config.Kind {
	case "", KindJson:
		return jsonstore.New(config.Dir)
	case KindMarkdown:
		return mdstore.New(config.Dir)
	case KindSql:
		return sqlstore.Open(ctx, config.Sql)
	case KindMongo:
		return mongostore.Open(ctx, config.Mongo)
	}
	return nil, fmt.Errorf("unknown store kind %q", config.Kind)
}
