package linker

// RefKind is the kind of record a name refers to.
type RefKind string

const (
	RefFighter RefKind = "fighter"
	RefEvent   RefKind = "event"
)

// Reference is a free-text name found on a record. Owner is the slug of the
// event (for bout participants) or of the fighter (for history entries).
type Reference struct {
	Kind  RefKind
	Owner string
	Name  string
}

// FuzzyLink is a reference that was resolved by similarity rather than by
// an exact name.
type FuzzyLink struct {
	Reference
	Best Candidate
	// RunnerUp is the best candidate with another slug, its Slug is empty
	// when there was none.
	RunnerUp Candidate
}

// Report describes what a linking run did.
type Report struct {
	BoutsLinked       int
	HistoryLinked     int
	ResultsBackfilled int

	Fuzzy      []FuzzyLink
	Unresolved []Reference
	Ambiguous  []Reference
}

func (r *Report) record(ref Reference, res Resolution) {
	switch res.Kind {
	case MatchFuzzy:
		r.Fuzzy = append(r.Fuzzy, FuzzyLink{
			Reference: ref,
			Best:      res.Best,
			RunnerUp:  res.RunnerUp,
		})
	case MatchAmbiguous:
		r.Ambiguous = append(r.Ambiguous, ref)
	case MatchNone:
		r.Unresolved = append(r.Unresolved, ref)
	}
}

// LowConfidence returns the fuzzy links with a distance of at least minDistance.
func (r Report) LowConfidence(minDistance float64) []FuzzyLink {
	var out []FuzzyLink
	for _, f := range r.Fuzzy {
		if f.Best.Distance >= minDistance {
			out = append(out, f)
		}
	}
	return out
}
