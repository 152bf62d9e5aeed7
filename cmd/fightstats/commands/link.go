package commands

import (
	"fmt"

	"fightstats-backend/cmd/fightstats/globals"
	"fightstats-backend/lib/store"
	"fightstats-backend/services/pipeline"

	"github.com/spf13/cobra"
)

var linkReset bool

func init() {
	linkCmd.Flags().BoolVar(&linkReset, "reset", false, "clear every resolved slug and pending result before linking")
	rootCmd.AddCommand(linkCmd)
}

var linkCmd = &cobra.Command{
	Use:   "link [--reset]",
	Short: "Link the stored fighters and events again without scraping.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		g := globals.Get(ctx)

		s, err := store.Open(ctx, g.Config.Store)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer s.Close()

		p, err := pipeline.New(pipeline.Options{
			Store:  s,
			Clock:  g.Clock,
			Linker: g.Config.Linker,
			Tel:    g.Tel,
		})
		if err != nil {
			return err
		}

		result, err := p.Relink(ctx, linkReset)
		if err != nil {
			return err
		}
		printSummary(result)
		return nil
	},
}
