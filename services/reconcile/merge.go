// Package reconcile merges a freshly scraped batch into the previously
// persisted snapshot.
//
// Fighters are fully refreshed on every scrape, past events are kept forever.
// In both cases ids are inherited by slug so they never change once assigned.
package reconcile

import (
	"context"
	"fmt"
	"sort"

	"fightstats-backend/internal/assert"
	"fightstats-backend/lib/chrono"
	"fightstats-backend/lib/records"
	"fightstats-backend/lib/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("fightstats.services.reconcile")

const (
	report_merge_duplicate = "merge.duplicate-slug"
	report_merge_fighters  = "merge.fighters"
	report_merge_events    = "merge.events"
	report_merge_retained  = "merge.retained-events"
)

type Merger struct {
	clock chrono.API
	tel   telemetry.API
}

func NewMerger(clock chrono.API, tel telemetry.API) Merger {
	return Merger{clock: clock, tel: tel}
}

// ids hands out ids, inheriting them by slug and otherwise counting up from
// the largest id ever seen.
type ids struct {
	bySlug map[string]int
	max    int
}

func newIds(n int) *ids {
	return &ids{bySlug: make(map[string]int, n)}
}

func (i *ids) remember(slug string, id int) {
	i.bySlug[slug] = id
	if id > i.max {
		i.max = id
	}
}

func (i *ids) assign(slug string) int {
	assert.NotEmptyStr(slug)
	id, ok := i.bySlug[slug]
	if ok {
		return id
	}
	i.max++
	i.bySlug[slug] = i.max
	return i.max
}

// dedupe keeps the last record of every slug at the position of its first
// occurrence, reporting every slug that occurred more than once.
func dedupe[T any](items []T, slug func(T) string, tel telemetry.API) []T {
	out := make([]T, 0, len(items))
	position := make(map[string]int, len(items))
	for _, item := range items {
		s := slug(item)
		i, ok := position[s]
		if ok {
			tel.ReportWarning(report_merge_duplicate, s)
			out[i] = item
			continue
		}
		position[s] = len(out)
		out = append(out, item)
	}
	return out
}

// Fighters replaces the previous fighters with the fresh batch, keeping the
// ids of fighters that were already known.
func (m Merger) Fighters(ctx context.Context, previous, fresh []records.Fighter) ([]records.Fighter, error) {
	_, span := tracer.Start(ctx, "Fighters")
	defer span.End()

	err := records.ValidateFighters(fresh)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("fresh fighters: %w", err)
	}

	known := newIds(len(previous))
	for _, f := range previous {
		known.remember(f.Slug, f.ID)
	}

	merged := dedupe(fresh, func(f records.Fighter) string { return f.Slug }, m.tel)
	for i := range merged {
		merged[i].ID = known.assign(merged[i].Slug)
	}

	span.SetAttributes(attribute.Int("fighters", len(merged)))
	m.tel.ReportCount(report_merge_fighters, int64(len(merged)))
	return merged, nil
}

// Events merges the fresh events into the previous ones.
//
// Previous events dated before today are carried over unchanged. Every other
// fresh event replaces its previous copy, with the previous id. The result is
// sorted by date.
func (m Merger) Events(ctx context.Context, previous, fresh []records.Event) ([]records.Event, error) {
	_, span := tracer.Start(ctx, "Events")
	defer span.End()

	err := records.ValidateEvents(fresh)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("fresh events: %w", err)
	}
	err = records.ValidateEvents(previous)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("previous events: %w", err)
	}

	known := newIds(len(previous))
	retained := make(map[string]struct{})
	for _, e := range previous {
		known.remember(e.Slug, e.ID)
		if chrono.BeforeToday(e.Date, m.clock) {
			retained[e.Slug] = struct{}{}
		}
	}

	merged := make([]records.Event, 0, len(fresh)+len(retained))
	emitted := make(map[string]struct{}, len(fresh)+len(retained))
	for _, e := range dedupe(fresh, func(e records.Event) string { return e.Slug }, m.tel) {
		_, isRetained := retained[e.Slug]
		if isRetained && chrono.BeforeToday(e.Date, m.clock) {
			continue
		}
		e.ID = known.assign(e.Slug)
		merged = append(merged, e)
		emitted[e.Slug] = struct{}{}
	}

	var retainedCount int
	for _, e := range previous {
		_, isRetained := retained[e.Slug]
		_, isEmitted := emitted[e.Slug]
		if !isRetained || isEmitted {
			continue
		}
		merged = append(merged, e)
		emitted[e.Slug] = struct{}{}
		retainedCount++
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Date < merged[j].Date
	})

	span.SetAttributes(
		attribute.Int("events", len(merged)),
		attribute.Int("retained", retainedCount),
	)
	m.tel.ReportCount(report_merge_events, int64(len(merged)))
	m.tel.ReportCount(report_merge_retained, int64(retainedCount))
	return merged, nil
}
