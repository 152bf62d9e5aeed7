package commands

import (
	"fmt"

	"fightstats-backend/cmd/fightstats/globals"
	"fightstats-backend/lib/pagecache"
	"fightstats-backend/lib/scrapers/gidstats"
	"fightstats-backend/lib/store"
	"fightstats-backend/services/pipeline"

	"github.com/spf13/cobra"
)

var (
	scrapeFighters bool
	scrapeEvents   bool
)

func init() {
	scrapeCmd.Flags().BoolVar(&scrapeFighters, "fighters", false, "scrape fighters")
	scrapeCmd.Flags().BoolVar(&scrapeEvents, "events", false, "scrape events")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--fighters] [--events]",
	Short: "Scrape gidstats.com, merge the result into the store and link it. Without flags both collections are scraped.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		g := globals.Get(ctx)

		cache, closeCache, err := pagecache.Open(ctx, g.Config.Cache, g.Tel)
		if err != nil {
			return fmt.Errorf("open page cache: %w", err)
		}
		defer closeCache()

		opts := g.Config.Scraper
		opts.Cache = cache
		opts.Tel = g.Tel
		client := gidstats.NewClient(opts)

		s, err := store.Open(ctx, g.Config.Store)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer s.Close()

		p, err := pipeline.New(pipeline.Options{
			Store:   s,
			Scraper: client,
			Clock:   g.Clock,
			Linker:  g.Config.Linker,
			Tel:     g.Tel,
		})
		if err != nil {
			return err
		}

		result, err := p.Run(ctx, pipeline.ParseMode(scrapeFighters, scrapeEvents))
		if err != nil {
			return err
		}
		printSummary(result)
		return nil
	},
}
