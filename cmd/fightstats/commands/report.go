package commands

import (
	"fmt"

	"fightstats-backend/cmd/fightstats/globals"
	"fightstats-backend/lib/store"
	"fightstats-backend/services/linker"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var reportMinDistance float64

func init() {
	reportCmd.Flags().Float64Var(&reportMinDistance, "min-distance", 0, "only list fuzzy links at least this far from their name")
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report [--min-distance d]",
	Short: "List fuzzy links, unresolved references and ambiguous names of the stored snapshot without changing it.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		g := globals.Get(ctx)

		s, err := store.Open(ctx, g.Config.Store)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer s.Close()

		snapshot, err := s.Load(ctx)
		if err != nil {
			return err
		}
		err = snapshot.Validate()
		if err != nil {
			return err
		}

		l, err := linker.NewLinker(g.Linker())
		if err != nil {
			return err
		}
		report := l.Run(ctx, snapshot.Fighters, snapshot.Events)

		fuzzy := NewTable()
		fuzzy.SetTitle("Fuzzy links")
		fuzzy.AppendHeader(table.Row{"Kind", "On", "Name", "Linked to", "Matched key", "Distance", "Runner-up", "Distance"})
		for _, f := range report.LowConfidence(reportMinDistance) {
			runnerUp, runnerUpDistance := "-", "-"
			if f.RunnerUp.Slug != "" {
				runnerUp = f.RunnerUp.Slug
				runnerUpDistance = fmt.Sprintf("%.3f", f.RunnerUp.Distance)
			}
			fuzzy.AppendRow(table.Row{
				f.Kind, f.Owner, f.Name,
				f.Best.Slug, f.Best.Key, fmt.Sprintf("%.3f", f.Best.Distance),
				runnerUp, runnerUpDistance,
			})
		}
		fuzzy.Render()

		references := func(title string, refs []linker.Reference) {
			t := NewTable()
			t.SetTitle(title)
			t.AppendHeader(table.Row{"Kind", "On", "Name"})
			for _, ref := range refs {
				t.AppendRow(table.Row{ref.Kind, ref.Owner, ref.Name})
			}
			t.Render()
		}
		references("Unresolved", report.Unresolved)
		references("Ambiguous", report.Ambiguous)
		return nil
	},
}
