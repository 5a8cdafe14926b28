package runner

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Belphemur/SubGrab/internal/models"
)

// summaryStatuses is the order statuses appear in the totals line.
var summaryStatuses = []models.Status{
	models.StatusAutoDownloaded,
	models.StatusManualDownloaded,
	models.StatusDeclined,
	models.StatusNoCandidates,
	models.StatusFailed,
	models.StatusSkipped,
}

// WriteSummary prints one row per file that reached a lookup or was skipped
// for a reason other than its extension, then the totals per status.
func WriteSummary(w io.Writer, results []models.Result) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Footer = text.FormatDefault
	tw.AppendHeader(table.Row{"File", "Outcome", "Subtitle", "Detail"})

	counts := make(map[models.Status]int, len(summaryStatuses))
	for _, res := range results {
		counts[res.Status]++
		if res.Status == models.StatusSkipped && res.SkipReason == models.SkipWrongExtension {
			continue
		}
		tw.AppendRow(table.Row{filepath.Base(res.Path), res.Status.String(), version(res), detail(res)})
	}

	footer := table.Row{"Total " + strconv.Itoa(len(results)), "", "", ""}
	line := ""
	for _, s := range summaryStatuses {
		if counts[s] == 0 {
			continue
		}
		if line != "" {
			line += ", "
		}
		line += fmt.Sprintf("%s %d", s, counts[s])
	}
	footer[1] = line
	tw.AppendFooter(footer)

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMax: 60},
		{Number: 3, WidthMax: 40},
		{Number: 4, WidthMax: 60, Align: text.AlignLeft},
	})

	tw.Render()
}

func version(res models.Result) string {
	if res.Candidate == nil {
		return ""
	}
	return res.Candidate.Version
}

func detail(res models.Result) string {
	switch {
	case res.Err != nil:
		return res.Err.Error()
	case res.Status == models.StatusSkipped:
		return res.SkipReason.String()
	case res.WrittenPath != "":
		return filepath.Base(res.WrittenPath)
	default:
		return ""
	}
}
