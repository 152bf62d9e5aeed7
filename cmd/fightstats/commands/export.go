package commands

import (
	"fmt"

	"fightstats-backend/cmd/fightstats/globals"
	"fightstats-backend/lib/configutil"
	"fightstats-backend/lib/records"
	"fightstats-backend/lib/store"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var exportTo string

func init() {
	exportCmd.Flags().StringVar(&exportTo, "to", "", "configuration file naming the destination store")
	exportCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export --to <config>",
	Short: "Copy the stored snapshot into the store of another configuration file.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		g := globals.Get(ctx)

		destConfig, err := configutil.ReadConfig[globals.Config](exportTo)
		if err != nil {
			return fmt.Errorf("read config %s: %w", exportTo, err)
		}
		destConfig.SetDefaults()

		src, err := store.Open(ctx, g.Config.Store)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer src.Close()
		dest, err := store.Open(ctx, destConfig.Store)
		if err != nil {
			return fmt.Errorf("open destination store: %w", err)
		}
		defer dest.Close()

		snapshot, err := src.Load(ctx)
		if err != nil {
			return err
		}
		err = dest.Save(ctx, snapshot, records.CollectionAll)
		if err != nil {
			return err
		}

		t := NewTable()
		t.SetTitle("Exported")
		t.AppendRow(table.Row{"Fighters", len(snapshot.Fighters)})
		t.AppendRow(table.Row{"Events", len(snapshot.Events)})
		t.Render()
		return nil
	},
}
