package linker

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"fightstats-backend/lib/textutil"

	"github.com/antzucaro/matchr"
)

// DefaultMaxDistance is the loosest distance a fuzzy candidate may have,
// on a scale of 0 (identical) to 1 (nothing in common).
const DefaultMaxDistance = 0.3

// Candidate is a fuzzy search result.
type Candidate struct {
	Slug string
	// Key is the name or alias of the record that matched best.
	Key      string
	Distance float64
}

// Matcher finds the records whose names resemble a query, best first.
// An empty result means nothing is within the matcher's threshold.
type Matcher interface {
	Search(query string) []Candidate
}

// MatcherFactory builds a Matcher over a set of entries.
type MatcherFactory func(entries []Entry, maxDistance float64) Matcher

type foldedEntry struct {
	slug   string
	keys   []string
	folded []string
}

// Levenshtein is a Matcher scoring names by edit distance. The distance is
// divided by the length of the longer name minus the words both names share,
// so a common prefix like "UFC Fight Night:" does not make two different
// cards look alike.
type Levenshtein struct {
	entries     []foldedEntry
	maxDistance float64
}

func NewLevenshtein(entries []Entry, maxDistance float64) Matcher {
	if maxDistance <= 0 {
		maxDistance = DefaultMaxDistance
	}

	folded := make([]foldedEntry, 0, len(entries))
	for _, e := range entries {
		keys := e.Keys()
		if e.Slug == "" || len(keys) == 0 {
			continue
		}
		fe := foldedEntry{
			slug:   e.Slug,
			keys:   keys,
			folded: make([]string, len(keys)),
		}
		for i, k := range keys {
			fe.folded[i] = textutil.FoldName(k)
		}
		folded = append(folded, fe)
	}

	return Levenshtein{
		entries:     folded,
		maxDistance: maxDistance,
	}
}

// sharedLength is the rune length of the words a and b have in common.
func sharedLength(a, b string) int {
	counts := make(map[string]int)
	for _, word := range strings.Fields(a) {
		counts[word]++
	}
	shared := 0
	for _, word := range strings.Fields(b) {
		if counts[word] > 0 {
			counts[word]--
			shared += utf8.RuneCountInString(word)
		}
	}
	return shared
}

// distance scores two folded names from 0 (identical) to 1 (nothing in common).
func distance(a, b string) float64 {
	edits := matchr.Levenshtein(a, b)
	if edits == 0 {
		return 0
	}
	differing := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b)) - sharedLength(a, b)
	if differing <= edits {
		return 1
	}
	return float64(edits) / float64(differing)
}

func (m Levenshtein) Search(query string) []Candidate {
	query = textutil.FoldName(query)
	if query == "" {
		return nil
	}

	var result []Candidate
	for _, e := range m.entries {
		closest := math.Inf(1)
		var closestKey string
		for i, key := range e.folded {
			d := distance(query, key)
			if d < closest {
				closest = d
				closestKey = e.keys[i]
			}
		}

		if closest > m.maxDistance {
			continue
		}
		result = append(result, Candidate{
			Slug:     e.slug,
			Key:      closestKey,
			Distance: closest,
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Distance < result[j].Distance
	})
	return result
}
