// Package jsonstore keeps a snapshot as two indented JSON arrays,
// fighters.json and events.json, inside one directory.
package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fightstats-backend/lib/records"
)

const (
	FightersFile = "fighters.json"
	EventsFile   = "events.json"
)

type Store struct {
	dir string
}

func New(dir string) (Store, error) {
	if dir == "" {
		return Store{}, fmt.Errorf("jsonstore: a directory was not specified")
	}
	err := os.MkdirAll(dir, 0777)
	if err != nil {
		return Store{}, fmt.Errorf("jsonstore: %w", err)
	}
	return Store{dir: dir}, nil
}

// readCollection decodes one file, a missing file is an empty collection.
func readCollection[T any](path string) ([]T, error) {
	contents, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var out []T
	err = json.Unmarshal(contents, &out)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return out, nil
}

// writeCollection replaces a file through a temporary file so readers never
// observe a half written collection.
func writeCollection[T any](path string, items []T) error {
	if items == nil {
		items = []T{}
	}
	contents, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	err = os.WriteFile(tmp, contents, 0666)
	if err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (s Store) Load(ctx context.Context) (records.Snapshot, error) {
	fighters, err := readCollection[records.Fighter](filepath.Join(s.dir, FightersFile))
	if err != nil {
		return records.Snapshot{}, fmt.Errorf("jsonstore: load fighters: %w", err)
	}
	events, err := readCollection[records.Event](filepath.Join(s.dir, EventsFile))
	if err != nil {
		return records.Snapshot{}, fmt.Errorf("jsonstore: load events: %w", err)
	}
	return records.Snapshot{Fighters: fighters, Events: events}, nil
}

func (s Store) Save(ctx context.Context, snapshot records.Snapshot, which records.Collections) error {
	if which.Has(records.CollectionFighters) {
		err := writeCollection(filepath.Join(s.dir, FightersFile), snapshot.Fighters)
		if err != nil {
			return fmt.Errorf("jsonstore: save fighters: %w", err)
		}
	}
	if which.Has(records.CollectionEvents) {
		err := writeCollection(filepath.Join(s.dir, EventsFile), snapshot.Events)
		if err != nil {
			return fmt.Errorf("jsonstore: save events: %w", err)
		}
	}
	return nil
}

func (s Store) Close() error {
	return nil
}
