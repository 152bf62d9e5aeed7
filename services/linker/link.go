package linker

import (
	"context"
	"time"

	"fightstats-backend/internal/assert"
	"fightstats-backend/lib/chrono"
	"fightstats-backend/lib/records"
	"fightstats-backend/lib/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("fightstats.services.linker")

const (
	report_linker_bouts    = "linker.bouts"
	report_linker_history  = "linker.history"
	report_linker_results  = "linker.results"
	report_linker_fuzzy    = "linker.fuzzy"
	report_linker_missing  = "linker.unresolved"
	report_linker_conflict = "linker.ambiguous"
)

// Resolver turns a display name into a slug, trying the exact index first
// and the fuzzy matcher after.
type Resolver struct {
	index   NameIndex
	matcher Matcher
}

func NewResolver(entries []Entry, maxDistance float64, newMatcher MatcherFactory) Resolver {
	if newMatcher == nil {
		newMatcher = NewLevenshtein
	}
	matcher := newMatcher(entries, maxDistance)
	assert.NotNil(matcher)
	return Resolver{
		index:   BuildNameIndex(entries),
		matcher: matcher,
	}
}

// MatchKind is how a name was resolved.
type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchExact
	MatchFuzzy
	MatchAmbiguous
)

// Resolution is the outcome of resolving one name.
type Resolution struct {
	Kind MatchKind
	Slug string
	// Best and RunnerUp are only set for fuzzy matches, RunnerUp may be empty.
	Best     Candidate
	RunnerUp Candidate
}

func (r Resolver) Resolve(name string) Resolution {
	slug, ok := r.index.Lookup(name)
	if ok {
		return Resolution{Kind: MatchExact, Slug: slug}
	}
	if r.index.Ambiguous(name) {
		return Resolution{Kind: MatchAmbiguous}
	}

	candidates := r.matcher.Search(name)
	if len(candidates) == 0 {
		return Resolution{Kind: MatchNone}
	}
	res := Resolution{
		Kind: MatchFuzzy,
		Slug: candidates[0].Slug,
		Best: candidates[0],
	}
	for _, c := range candidates[1:] {
		if c.Slug != res.Slug {
			res.RunnerUp = c
			break
		}
	}
	// a near miss of a shared name, or a tie between two records, has no
	// single answer either
	if r.index.Ambiguous(res.Best.Key) ||
		(res.RunnerUp.Slug != "" && res.RunnerUp.Distance == res.Best.Distance) {
		return Resolution{Kind: MatchAmbiguous}
	}
	return res
}

// Indices are the resolvers a linking run works with. They are built fresh
// for every run and discarded after it.
type Indices struct {
	Fighters Resolver
	Events   Resolver
}

func NewIndices(fighters []records.Fighter, events []records.Event, maxDistance float64, newMatcher MatcherFactory) Indices {
	return Indices{
		Fighters: NewResolver(FighterEntries(fighters), maxDistance, newMatcher),
		Events:   NewResolver(EventEntries(events), maxDistance, newMatcher),
	}
}

// Options configures a Linker.
type Options struct {
	// MaxDistance defaults to DefaultMaxDistance.
	MaxDistance float64 `json:"max_distance"`
	// NewMatcher defaults to NewLevenshtein.
	NewMatcher MatcherFactory `json:"-"`
	// Clock decides which events are in the past, it defaults to a clock in
	// chrono.DefaultLocation.
	Clock chrono.API `json:"-"`
	// Tel defaults to a SlogAPI.
	Tel telemetry.API `json:"-"`
}

type Linker struct {
	maxDistance float64
	newMatcher  MatcherFactory
	clock       chrono.API
	tel         telemetry.API
}

func NewLinker(opts Options) (Linker, error) {
	if opts.MaxDistance <= 0 {
		opts.MaxDistance = DefaultMaxDistance
	}
	if opts.NewMatcher == nil {
		opts.NewMatcher = NewLevenshtein
	}
	if opts.Clock == nil {
		clock, err := chrono.NewStandardImpl("")
		if err != nil {
			return Linker{}, err
		}
		opts.Clock = clock
	}
	if opts.Tel == nil {
		opts.Tel = telemetry.SlogAPI{}
	}
	return Linker{
		maxDistance: opts.MaxDistance,
		newMatcher:  opts.NewMatcher,
		clock:       opts.Clock,
		tel:         opts.Tel,
	}, nil
}

// Run resolves every name reference across both collections in place:
// bout participants, then history events and opponents, then bout results.
// It never fails, names it cannot resolve are left unset and reported.
func (l Linker) Run(ctx context.Context, fighters []records.Fighter, events []records.Event) Report {
	_, span := tracer.Start(ctx, "linker.Run")
	defer span.End()

	indices := NewIndices(fighters, events, l.maxDistance, l.newMatcher)

	var report Report
	LinkBouts(events, indices, &report)
	LinkHistory(fighters, indices, &report)
	BackfillResults(fighters, events, l.clock.Now(), &report)

	span.SetAttributes(
		attribute.Int("fighters", len(fighters)),
		attribute.Int("events", len(events)),
		attribute.Int("bouts_linked", report.BoutsLinked),
		attribute.Int("history_linked", report.HistoryLinked),
		attribute.Int("results", report.ResultsBackfilled),
	)
	l.tel.ReportCount(report_linker_bouts, int64(report.BoutsLinked))
	l.tel.ReportCount(report_linker_history, int64(report.HistoryLinked))
	l.tel.ReportCount(report_linker_results, int64(report.ResultsBackfilled))
	l.tel.ReportCount(report_linker_fuzzy, int64(len(report.Fuzzy)))
	l.tel.ReportCount(report_linker_missing, int64(len(report.Unresolved)))
	l.tel.ReportCount(report_linker_conflict, int64(len(report.Ambiguous)))

	return report
}

// resolveInto sets *field when it is still empty and the name resolves,
// already resolved fields are never touched again.
func resolveInto(field *string, name string, r Resolver, ref Reference, report *Report) bool {
	if *field != "" || name == "" {
		return false
	}
	res := r.Resolve(name)
	report.record(ref, res)
	if res.Slug == "" {
		return false
	}
	*field = res.Slug
	return true
}

// LinkBouts resolves the participants of every bout on every card and
// marks bouts with no result as TBD.
func LinkBouts(events []records.Event, indices Indices, report *Report) {
	for i := range events {
		event := &events[i]
		for _, card := range event.Cards() {
			for j := range card {
				bout := &card[j]
				ref := Reference{Kind: RefFighter, Owner: event.Slug}

				ref.Name = bout.Fighter1
				if resolveInto(&bout.Fighter1Slug, bout.Fighter1, indices.Fighters, ref, report) {
					report.BoutsLinked++
				}
				ref.Name = bout.Fighter2
				if resolveInto(&bout.Fighter2Slug, bout.Fighter2, indices.Fighters, ref, report) {
					report.BoutsLinked++
				}

				if bout.Result == "" {
					bout.Result = records.ResultTBD
				}
			}
		}
	}
}

// LinkHistory resolves the event and the opponent of every history entry.
func LinkHistory(fighters []records.Fighter, indices Indices, report *Report) {
	for i := range fighters {
		fighter := &fighters[i]
		for j := range fighter.FightsHistory {
			entry := &fighter.FightsHistory[j]

			eventRef := Reference{Kind: RefEvent, Owner: fighter.Slug, Name: entry.Event}
			if resolveInto(&entry.EventSlug, entry.Event, indices.Events, eventRef, report) {
				report.HistoryLinked++
			}
			opponentRef := Reference{Kind: RefFighter, Owner: fighter.Slug, Name: entry.Opponent}
			if resolveInto(&entry.OpponentSlug, entry.Opponent, indices.Fighters, opponentRef, report) {
				report.HistoryLinked++
			}
		}
	}
}

// findHistory returns fighter1's entry for the bout at the given event. The
// opponent is matched by slug, or by name when the entry has no opponent slug.
func findHistory(fighter *records.Fighter, eventSlug string, bout records.Bout) (records.HistoryEntry, bool) {
	for _, entry := range fighter.FightsHistory {
		if entry.EventSlug != eventSlug {
			continue
		}
		if entry.OpponentSlug == bout.Fighter2Slug ||
			(entry.OpponentSlug == "" && entry.Opponent == bout.Fighter2) {
			return entry, true
		}
	}
	return records.HistoryEntry{}, false
}

// BackfillResults fills the result of pending, fully linked bouts of events
// that have started by now, using the history of the bout's first fighter.
// Events that have not started are left untouched.
func BackfillResults(fighters []records.Fighter, events []records.Event, now time.Time, report *Report) {
	bySlug := make(map[string]*records.Fighter, len(fighters))
	for i := range fighters {
		bySlug[fighters[i].Slug] = &fighters[i]
	}

	for i := range events {
		event := &events[i]
		if !chrono.Started(event.Date, now) {
			continue
		}
		for _, card := range event.Cards() {
			for j := range card {
				bout := &card[j]
				if !bout.Pending() || bout.Fighter1Slug == "" || bout.Fighter2Slug == "" {
					continue
				}
				fighter, ok := bySlug[bout.Fighter1Slug]
				if !ok {
					continue
				}
				entry, ok := findHistory(fighter, event.Slug, *bout)
				if !ok {
					continue
				}
				outcome := Outcome(*bout, entry)
				if outcome == "" {
					continue
				}
				bout.Result = outcome
				report.ResultsBackfilled++
			}
		}
	}
}

// Reset clears every resolved slug and every TBD result so the collections
// can be linked again from scratch. Results derived from history are kept.
func Reset(fighters []records.Fighter, events []records.Event) {
	for i := range events {
		for _, card := range events[i].Cards() {
			for j := range card {
				card[j].Fighter1Slug = ""
				card[j].Fighter2Slug = ""
				if card[j].Result == records.ResultTBD {
					card[j].Result = ""
				}
			}
		}
	}
	for i := range fighters {
		for j := range fighters[i].FightsHistory {
			fighters[i].FightsHistory[j].EventSlug = ""
			fighters[i].FightsHistory[j].OpponentSlug = ""
		}
	}
}
