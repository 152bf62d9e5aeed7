package commands

import (
	"os"

	"fightstats-backend/services/pipeline"

	"github.com/jedib0t/go-pretty/v6/table"
)

func NewTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func printSummary(result pipeline.Result) {
	t := NewTable()
	t.SetTitle("Run " + result.RunId)
	t.AppendRows([]table.Row{
		{"Fighters", len(result.Snapshot.Fighters)},
		{"Events", len(result.Snapshot.Events)},
		{"Pages skipped", result.Skipped},
		{"Bouts linked", result.Report.BoutsLinked},
		{"History entries linked", result.Report.HistoryLinked},
		{"Results backfilled", result.Report.ResultsBackfilled},
		{"Fuzzy links", len(result.Report.Fuzzy)},
		{"Unresolved", len(result.Report.Unresolved)},
		{"Ambiguous", len(result.Report.Ambiguous)},
	})
	t.Render()
}
