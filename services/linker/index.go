package linker

import (
	"fightstats-backend/lib/records"
	"fightstats-backend/lib/textutil"
)

// Entry is one linkable record: its slug, its display name and any other
// names it may be referred to by.
type Entry struct {
	Slug    string
	Name    string
	Aliases []string
}

// Keys returns the searchable names of the entry, the display name first.
func (e Entry) Keys() []string {
	keys := make([]string, 0, 1+len(e.Aliases))
	if e.Name != "" {
		keys = append(keys, e.Name)
	}
	for _, alias := range e.Aliases {
		if alias != "" {
			keys = append(keys, alias)
		}
	}
	return keys
}

// FighterEntries makes fighters searchable by name and nickname.
func FighterEntries(fighters []records.Fighter) []Entry {
	entries := make([]Entry, len(fighters))
	for i, f := range fighters {
		entries[i] = Entry{Slug: f.Slug, Name: f.Name}
		if f.Nickname != "" {
			entries[i].Aliases = []string{f.Nickname}
		}
	}
	return entries
}

// EventEntries makes events searchable by name.
func EventEntries(events []records.Event) []Entry {
	entries := make([]Entry, len(events))
	for i, e := range events {
		entries[i] = Entry{Slug: e.Slug, Name: e.Name}
	}
	return entries
}

// NameIndex is an exact display name to slug lookup. Names are compared
// after case and whitespace folding.
//
// A name shared by two different slugs is ambiguous: it resolves to nothing
// instead of to whichever record came last.
type NameIndex struct {
	slugs     map[string]string
	ambiguous map[string]struct{}
}

func BuildNameIndex(entries []Entry) NameIndex {
	idx := NameIndex{
		slugs:     make(map[string]string, len(entries)),
		ambiguous: make(map[string]struct{}),
	}
	for _, e := range entries {
		if e.Slug == "" || e.Name == "" {
			continue
		}
		key := textutil.FoldName(e.Name)
		existing, ok := idx.slugs[key]
		if ok && existing != e.Slug {
			idx.ambiguous[key] = struct{}{}
			continue
		}
		idx.slugs[key] = e.Slug
	}
	for key := range idx.ambiguous {
		delete(idx.slugs, key)
	}
	return idx
}

// Lookup returns the slug of the record with exactly the given name.
func (idx NameIndex) Lookup(name string) (string, bool) {
	slug, ok := idx.slugs[textutil.FoldName(name)]
	return slug, ok
}

// Ambiguous reports whether more than one record carries the given name.
func (idx NameIndex) Ambiguous(name string) bool {
	_, ok := idx.ambiguous[textutil.FoldName(name)]
	return ok
}

func (idx NameIndex) Len() int {
	return len(idx.slugs)
}
