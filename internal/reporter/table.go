package reporter

import (
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ppiankov/dirsort/internal/organizer"
)

// RenderTable renders the per-extension counts of res as a rounded table
// with a totals footer.
func RenderTable(res *organizer.Result) string {
	tw := table.NewWriter()
	style := table.StyleRounded
	style.Format.Header = text.FormatDefault
	style.Format.Footer = text.FormatDefault
	tw.SetStyle(style)
	tw.AppendHeader(table.Row{"Extension", "Files"})

	for _, tag := range SortedTags(res.Counts) {
		tw.AppendRow(table.Row{"." + tag, strconv.Itoa(res.Counts[tag])})
	}

	label := "Moved"
	if res.DryRun {
		label = "Planned"
	}
	tw.AppendFooter(table.Row{label + " (" + humanize.Bytes(uint64(res.Bytes)) + ")", strconv.Itoa(res.Moved)})

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft, AlignFooter: text.AlignRight},
	})

	return tw.Render()
}
