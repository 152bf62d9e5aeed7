// Package sqlstore keeps a snapshot in a SQLite file or a remote libsql
// database, one row per record holding its JSON document.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"fightstats-backend/lib/records"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

const schema = `
create table if not exists fighters (
	position integer primary key,
	slug text not null,
	doc text not null
);

create table if not exists events (
	position integer primary key,
	slug text not null,
	doc text not null
);

create index if not exists fighters_slug on fighters(slug);
create index if not exists events_slug on events(slug);
`

// Config selects a local SQLite file, or a remote libsql database when Url is set.
type Config struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func wrapOpenDB(err error) error {
	return fmt.Errorf("open db: %w", err)
}

// OpenDB opens the configured database without touching its schema.
func (config Config) OpenDB() (*sql.DB, error) {
	if config.Url != "" {
		dbUrl, err := url.Parse(config.Url)
		if err != nil {
			return nil, wrapOpenDB(err)
		}
		if config.AuthToken != "" {
			query := dbUrl.Query()
			query.Set("authToken", config.AuthToken)
			dbUrl.RawQuery = query.Encode()
		}
		db, err := sql.Open("libsql", dbUrl.String())
		if err != nil {
			return nil, wrapOpenDB(err)
		}
		return db, nil
	}

	if config.File == "" {
		return nil, wrapOpenDB(fmt.Errorf("a path was not specified"))
	}
	if config.File != ":memory:" {
		err := os.MkdirAll(filepath.Dir(config.File), 0777)
		if err != nil {
			return nil, wrapOpenDB(err)
		}
	}

	db, err := sql.Open("sqlite", config.File)
	if err != nil {
		return nil, wrapOpenDB(err)
	}
	// sqlite only allows a single writer.
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		db.Close()
		return nil, wrapOpenDB(err)
	}
	return db, nil
}

type Store struct {
	db *sql.DB
}

// Open opens the database and creates the tables when they are missing.
func Open(ctx context.Context, config Config) (Store, error) {
	db, err := config.OpenDB()
	if err != nil {
		return Store{}, fmt.Errorf("sqlstore: %w", err)
	}
	store, err := New(ctx, db)
	if err != nil {
		db.Close()
		return Store{}, err
	}
	return store, nil
}

// New wraps an already open database.
func New(ctx context.Context, db *sql.DB) (Store, error) {
	_, err := db.ExecContext(ctx, schema)
	if err != nil {
		return Store{}, fmt.Errorf("sqlstore: create schema: %w", err)
	}
	return Store{db: db}, nil
}

func loadTable[T any](ctx context.Context, db *sql.DB, table string) ([]T, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("select doc from %s order by position", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var doc string
		err = rows.Scan(&doc)
		if err != nil {
			return nil, err
		}
		var item T
		err = json.Unmarshal([]byte(doc), &item)
		if err != nil {
			return nil, fmt.Errorf("decode %s row %d: %w", table, len(out), err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func replaceTable[T any](ctx context.Context, tx *sql.Tx, table string, items []T, slug func(T) string) error {
	_, err := tx.ExecContext(ctx, fmt.Sprintf("delete from %s", table))
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("insert into %s (position, slug, doc) values (?, ?, ?)", table))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, item := range items {
		doc, err := json.Marshal(item)
		if err != nil {
			return err
		}
		_, err = stmt.ExecContext(ctx, i, slug(item), string(doc))
		if err != nil {
			return err
		}
	}
	return nil
}

func (s Store) Load(ctx context.Context) (records.Snapshot, error) {
	fighters, err := loadTable[records.Fighter](ctx, s.db, "fighters")
	if err != nil {
		return records.Snapshot{}, fmt.Errorf("sqlstore: load fighters: %w", err)
	}
	events, err := loadTable[records.Event](ctx, s.db, "events")
	if err != nil {
		return records.Snapshot{}, fmt.Errorf("sqlstore: load events: %w", err)
	}
	return records.Snapshot{Fighters: fighters, Events: events}, nil
}

// Save replaces the selected tables inside a single transaction.
func (s Store) Save(ctx context.Context, snapshot records.Snapshot, which records.Collections) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlstore: %w", err)
	}
	defer tx.Rollback()

	if which.Has(records.CollectionFighters) {
		err = replaceTable(ctx, tx, "fighters", snapshot.Fighters, func(f records.Fighter) string { return f.Slug })
		if err != nil {
			return fmt.Errorf("sqlstore: save fighters: %w", err)
		}
	}
	if which.Has(records.CollectionEvents) {
		err = replaceTable(ctx, tx, "events", snapshot.Events, func(e records.Event) string { return e.Slug })
		if err != nil {
			return fmt.Errorf("sqlstore: save events: %w", err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("sqlstore: %w", err)
	}
	return nil
}

func (s Store) Close() error {
	return s.db.Close()
}
