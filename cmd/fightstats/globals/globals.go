package globals

import (
	"context"

	"fightstats-backend/lib/chrono"
	"fightstats-backend/lib/pagecache"
	"fightstats-backend/lib/scrapers/gidstats"
	"fightstats-backend/lib/store"
	"fightstats-backend/lib/telemetry"
	"fightstats-backend/services/linker"
)

type Config struct {
	Store   store.Config     `json:"store"`
	Scraper gidstats.Options `json:"scraper"`
	Cache   pagecache.Config `json:"cache"`
	Linker  linker.Options   `json:"linker"`
	// Timezone decides when an event day has started, it defaults to the
	// timezone of the scraped site.
	Timezone  string           `json:"timezone"`
	Telemetry telemetry.Config `json:"telemetry"`
}

func (c *Config) SetDefaults() {
	if c.Store.Dir == "" {
		c.Store.Dir = "data"
	}
}

type ctxKey struct{}

type Value struct {
	Config Config
	Clock  chrono.API
	Tel    telemetry.API
}

func Set(ctx context.Context, value *Value) context.Context {
	return context.WithValue(ctx, ctxKey{}, value)
}

func Get(ctx context.Context) *Value {
	return ctx.Value(ctxKey{}).(*Value)
}

// Linker returns the configured linker options bound to the clock and telemetry.
func (v *Value) Linker() linker.Options {
	opts := v.Config.Linker
	opts.Clock = v.Clock
	opts.Tel = v.Tel
	return opts
}
