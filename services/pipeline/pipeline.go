// Package pipeline runs a full refresh of the dataset: it loads the last
// snapshot, scrapes the selected collections, merges them in, links the
// result and saves it back.
package pipeline

import (
	"context"
	"fmt"

	"fightstats-backend/lib/chrono"
	"fightstats-backend/lib/records"
	"fightstats-backend/lib/store"
	"fightstats-backend/lib/telemetry"
	"fightstats-backend/services/linker"
	"fightstats-backend/services/reconcile"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("fightstats.services.pipeline")

const (
	report_pipeline_event    = "pipeline.parse-event"
	report_pipeline_fighter  = "pipeline.parse-fighter"
	report_pipeline_events   = "pipeline.events"
	report_pipeline_fighters = "pipeline.fighters"
)

// Scraper is the source of fresh records.
type Scraper interface {
	EventLinks(ctx context.Context) ([]string, error)
	ParseEvent(ctx context.Context, url string) (records.Event, error)
	FighterLinks(ctx context.Context) ([]string, error)
	ParseFighter(ctx context.Context, url string) (records.Fighter, error)
	EventDelay(ctx context.Context) error
	FighterDelay(ctx context.Context) error
}

// Mode selects which collections a run scrapes.
type Mode string

const (
	ModeBoth     Mode = "both"
	ModeFighters Mode = "fighters"
	ModeEvents   Mode = "events"
)

// ParseMode turns the command line switches into a mode, asking for
// neither collection means both.
func ParseMode(fighters, events bool) Mode {
	switch {
	case fighters && !events:
		return ModeFighters
	case events && !fighters:
		return ModeEvents
	}
	return ModeBoth
}

func (m Mode) Collections() records.Collections {
	switch m {
	case ModeFighters:
		return records.CollectionFighters
	case ModeEvents:
		return records.CollectionEvents
	}
	return records.CollectionAll
}

type Options struct {
	Store   store.Store
	Scraper Scraper
	Clock   chrono.API
	Linker  linker.Options
	Tel     telemetry.API
}

type Pipeline struct {
	store   store.Store
	scraper Scraper
	clock   chrono.API
	linker  linker.Options
	tel     telemetry.API
}

func New(opts Options) (Pipeline, error) {
	if opts.Store == nil {
		return Pipeline{}, fmt.Errorf("pipeline: a store is required")
	}
	if opts.Clock == nil {
		clock, err := chrono.NewStandardImpl("")
		if err != nil {
			return Pipeline{}, err
		}
		opts.Clock = clock
	}
	if opts.Tel == nil {
		opts.Tel = telemetry.SlogAPI{}
	}
	return Pipeline{
		store:   opts.Store,
		scraper: opts.Scraper,
		clock:   opts.Clock,
		linker:  opts.Linker,
		tel:     opts.Tel,
	}, nil
}

// Result is what a run produced.
type Result struct {
	RunId    string
	Snapshot records.Snapshot
	Report   linker.Report
	// Skipped counts the pages that failed to parse.
	Skipped int
}

// run carries the per run telemetry, every report of a run is scoped by its id.
type run struct {
	id     string
	tel    telemetry.API
	linker linker.Linker
	merger reconcile.Merger
}

func (p Pipeline) newRun() (run, error) {
	id := uuid.NewString()
	tel := telemetry.NewScopedAPI(fmt.Sprintf("run %s", id), p.tel)

	opts := p.linker
	opts.Clock = p.clock
	opts.Tel = tel
	l, err := linker.NewLinker(opts)
	if err != nil {
		return run{}, err
	}
	return run{
		id:     id,
		tel:    tel,
		linker: l,
		merger: reconcile.NewMerger(p.clock, tel),
	}, nil
}

func (p Pipeline) scrapeEvents(ctx context.Context, r run) ([]records.Event, int, error) {
	links, err := p.scraper.EventLinks(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("event links: %w", err)
	}

	var events []records.Event
	skipped := 0
	for i, link := range links {
		if i > 0 {
			err = p.scraper.EventDelay(ctx)
			if err != nil {
				return nil, skipped, err
			}
		}
		event, err := p.scraper.ParseEvent(ctx, link)
		if err != nil {
			if ctx.Err() != nil {
				return nil, skipped, ctx.Err()
			}
			r.tel.ReportWarning(report_pipeline_event, link, err)
			skipped++
			continue
		}
		events = append(events, event)
	}
	r.tel.ReportCount(report_pipeline_events, int64(len(events)))
	return events, skipped, nil
}

func (p Pipeline) scrapeFighters(ctx context.Context, r run) ([]records.Fighter, int, error) {
	links, err := p.scraper.FighterLinks(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("fighter links: %w", err)
	}

	var fighters []records.Fighter
	skipped := 0
	for i, link := range links {
		if i > 0 {
			err = p.scraper.FighterDelay(ctx)
			if err != nil {
				return nil, skipped, err
			}
		}
		fighter, err := p.scraper.ParseFighter(ctx, link)
		if err != nil {
			if ctx.Err() != nil {
				return nil, skipped, ctx.Err()
			}
			r.tel.ReportWarning(report_pipeline_fighter, link, err)
			skipped++
			continue
		}
		fighters = append(fighters, fighter)
	}
	r.tel.ReportCount(report_pipeline_fighters, int64(len(fighters)))
	return fighters, skipped, nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// Run scrapes the collections selected by mode and merges them into the
// stored snapshot. Collections that are not scraped are carried over from
// the stored snapshot and linked against, only the scraped ones are saved.
//
// A page that fails to parse is reported and skipped. Failing to list the
// pages at all aborts the run before anything is saved.
func (p Pipeline) Run(ctx context.Context, mode Mode) (Result, error) {
	ctx, span := tracer.Start(ctx, "pipeline.Run")
	defer span.End()

	if p.scraper == nil {
		return Result{}, fail(span, fmt.Errorf("pipeline: a scraper is required to run"))
	}
	r, err := p.newRun()
	if err != nil {
		return Result{}, fail(span, err)
	}
	span.SetAttributes(
		attribute.String("run_id", r.id),
		attribute.String("mode", string(mode)),
	)
	r.tel.ReportDebug("starting run", string(mode))

	previous, err := p.store.Load(ctx)
	if err != nil {
		return Result{}, fail(span, fmt.Errorf("load snapshot: %w", err))
	}

	result := Result{
		RunId:    r.id,
		Snapshot: previous,
	}
	which := mode.Collections()

	if which.Has(records.CollectionEvents) {
		fresh, skipped, err := p.scrapeEvents(ctx, r)
		result.Skipped += skipped
		if err != nil {
			return result, fail(span, err)
		}
		result.Snapshot.Events, err = r.merger.Events(ctx, previous.Events, fresh)
		if err != nil {
			return result, fail(span, err)
		}
	}
	if which.Has(records.CollectionFighters) {
		fresh, skipped, err := p.scrapeFighters(ctx, r)
		result.Skipped += skipped
		if err != nil {
			return result, fail(span, err)
		}
		result.Snapshot.Fighters, err = r.merger.Fighters(ctx, previous.Fighters, fresh)
		if err != nil {
			return result, fail(span, err)
		}
	}

	result.Report = r.linker.Run(ctx, result.Snapshot.Fighters, result.Snapshot.Events)

	err = p.store.Save(ctx, result.Snapshot, which)
	if err != nil {
		return result, fail(span, fmt.Errorf("save snapshot: %w", err))
	}
	span.SetAttributes(attribute.Int("skipped", result.Skipped))
	return result, nil
}

// Relink links the stored snapshot again without scraping. With reset every
// previously resolved slug and every TBD result is cleared first.
func (p Pipeline) Relink(ctx context.Context, reset bool) (Result, error) {
	ctx, span := tracer.Start(ctx, "pipeline.Relink")
	defer span.End()

	r, err := p.newRun()
	if err != nil {
		return Result{}, fail(span, err)
	}
	span.SetAttributes(
		attribute.String("run_id", r.id),
		attribute.Bool("reset", reset),
	)

	snapshot, err := p.store.Load(ctx)
	if err != nil {
		return Result{}, fail(span, fmt.Errorf("load snapshot: %w", err))
	}
	err = snapshot.Validate()
	if err != nil {
		return Result{}, fail(span, err)
	}

	if reset {
		linker.Reset(snapshot.Fighters, snapshot.Events)
	}
	result := Result{
		RunId:    r.id,
		Snapshot: snapshot,
		Report:   r.linker.Run(ctx, snapshot.Fighters, snapshot.Events),
	}

	err = p.store.Save(ctx, snapshot, records.CollectionAll)
	if err != nil {
		return result, fail(span, fmt.Errorf("save snapshot: %w", err))
	}
	return result, nil
}
