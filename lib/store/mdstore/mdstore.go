// Package mdstore keeps a snapshot as Markdown documents with YAML front
// matter, one document per record:
//
//	<dir>/fighters/<slug>.md
//	<dir>/events/<slug>.md
//
// A fighter's bio is the body of its document. Each collection directory also
// holds an _index.yaml listing the slugs in collection order.
package mdstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fightstats-backend/lib/records"

	"gopkg.in/yaml.v3"
)

const indexFile = "_index.yaml"

var delimiter = []byte("---\n")

type Store struct {
	dir string
}

func New(dir string) (Store, error) {
	if dir == "" {
		return Store{}, fmt.Errorf("mdstore: a directory was not specified")
	}
	for _, sub := range []string{"fighters", "events"} {
		err := os.MkdirAll(filepath.Join(dir, sub), 0777)
		if err != nil {
			return Store{}, fmt.Errorf("mdstore: %w", err)
		}
	}
	return Store{dir: dir}, nil
}

// Encode renders front matter followed by the body.
func Encode(matter any, body string) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(delimiter)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	err := enc.Encode(matter)
	if err != nil {
		return nil, err
	}
	err = enc.Close()
	if err != nil {
		return nil, err
	}
	buf.Write(delimiter)
	if body != "" {
		buf.WriteString(body)
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

// Decode reads the front matter of a document into matter and returns its body.
func Decode(doc []byte, matter any) (string, error) {
	doc = bytes.ReplaceAll(doc, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(doc, delimiter) {
		return "", fmt.Errorf("document does not start with front matter")
	}
	rest := doc[len(delimiter):]

	var front, body []byte
	end := bytes.Index(rest, append([]byte("\n"), delimiter...))
	switch {
	case bytes.HasPrefix(rest, delimiter):
		body = rest[len(delimiter):]
	case end >= 0:
		front = rest[:end+1]
		body = rest[end+1+len(delimiter):]
	default:
		return "", fmt.Errorf("front matter is not terminated")
	}

	err := yaml.Unmarshal(front, matter)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(string(body), "\n"), nil
}

func validSlug(slug string) error {
	if slug == "" || slug == "." || slug == ".." || strings.ContainsAny(slug, `/\`) {
		return fmt.Errorf("slug %q cannot be used as a file name", slug)
	}
	return nil
}

type collection[T any] struct {
	dir     string
	slug    func(T) string
	body    func(T) string
	setBody func(*T, string)
}

func (c collection[T]) readIndex() ([]string, error) {
	contents, err := os.ReadFile(filepath.Join(c.dir, indexFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var slugs []string
	err = yaml.Unmarshal(contents, &slugs)
	return slugs, err
}

// load follows the index, documents missing from it come last in name order.
func (c collection[T]) load() ([]T, error) {
	slugs, err := c.readIndex()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, err
	}
	var unlisted []string
	listed := make(map[string]struct{}, len(slugs))
	for _, slug := range slugs {
		listed[slug] = struct{}{}
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".md") {
			continue
		}
		slug := strings.TrimSuffix(name, ".md")
		if _, ok := listed[slug]; !ok {
			unlisted = append(unlisted, slug)
		}
	}
	sort.Strings(unlisted)

	var out []T
	seen := make(map[string]struct{})
	for _, slug := range append(slugs, unlisted...) {
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}

		path := filepath.Join(c.dir, slug+".md")
		doc, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}

		var item T
		body, err := Decode(doc, &item)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if c.setBody != nil {
			c.setBody(&item, body)
		}
		out = append(out, item)
	}
	return out, nil
}

// save replaces every document of the collection.
func (c collection[T]) save(items []T) error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		err = os.Remove(filepath.Join(c.dir, entry.Name()))
		if err != nil {
			return err
		}
	}

	slugs := make([]string, 0, len(items))
	for _, item := range items {
		slug := c.slug(item)
		err = validSlug(slug)
		if err != nil {
			return err
		}

		var body string
		if c.body != nil {
			body = c.body(item)
		}
		doc, err := Encode(item, body)
		if err != nil {
			return fmt.Errorf("encode %s: %w", slug, err)
		}
		err = os.WriteFile(filepath.Join(c.dir, slug+".md"), doc, 0666)
		if err != nil {
			return err
		}
		slugs = append(slugs, slug)
	}

	index, err := yaml.Marshal(slugs)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, indexFile), index, 0666)
}

func (s Store) fighters() collection[records.Fighter] {
	return collection[records.Fighter]{
		dir:     filepath.Join(s.dir, "fighters"),
		slug:    func(f records.Fighter) string { return f.Slug },
		body:    func(f records.Fighter) string { return f.Bio },
		setBody: func(f *records.Fighter, body string) { f.Bio = body },
	}
}

func (s Store) events() collection[records.Event] {
	return collection[records.Event]{
		dir:  filepath.Join(s.dir, "events"),
		slug: func(e records.Event) string { return e.Slug },
	}
}

func (s Store) Load(ctx context.Context) (records.Snapshot, error) {
	fighters, err := s.fighters().load()
	if err != nil {
		return records.Snapshot{}, fmt.Errorf("mdstore: load fighters: %w", err)
	}
	events, err := s.events().load()
	if err != nil {
		return records.Snapshot{}, fmt.Errorf("mdstore: load events: %w", err)
	}
	return records.Snapshot{Fighters: fighters, Events: events}, nil
}

// Save writes the selected collections. Records sharing a slug share a
// document, the last one wins.
func (s Store) Save(ctx context.Context, snapshot records.Snapshot, which records.Collections) error {
	if which.Has(records.CollectionFighters) {
		err := s.fighters().save(snapshot.Fighters)
		if err != nil {
			return fmt.Errorf("mdstore: save fighters: %w", err)
		}
	}
	if which.Has(records.CollectionEvents) {
		err := s.events().save(snapshot.Events)
		if err != nil {
			return fmt.Errorf("mdstore: save events: %w", err)
		}
	}
	return nil
}

func (s Store) Close() error {
	return nil
}
