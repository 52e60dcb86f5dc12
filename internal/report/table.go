package report

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/hamed0406/probeharness/internal/probe"
)

// Table renders every recorded probe with its status, then a totals footer.
func Table(w io.Writer, res *probe.Result, took time.Duration) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("Probe Results (%s)", formatDuration(took)))

	t.AppendHeader(table.Row{"Probe", "Duration", "Status", "Message"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Probe", WidthMax: 60},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Message", WidthMax: 60},
	})

	passed := 0
	for _, e := range res.Entries {
		if e.Status == probe.StatusPass {
			passed++
		}
		t.AppendRow(table.Row{e.ID, formatDuration(e.Duration), statusString(e.Status), firstLine(e.Message)})
	}

	switch {
	case !res.WasSuccessful():
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	case len(res.Skipped) > 0:
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	}

	t.AppendFooter(table.Row{
		fmt.Sprintf("TOTAL %d", len(res.Entries)),
		formatDuration(took),
		fmt.Sprintf("%d passed", passed),
		fmt.Sprintf("%d failed, %d errors, %d skipped", len(res.Failures), len(res.Errors), len(res.Skipped)),
	})
	t.Render()
}

func statusString(s probe.Status) string {
	switch s {
	case probe.StatusPass:
		return "✓ pass"
	case probe.StatusSkip:
		return "- skip"
	case probe.StatusError:
		return "✗ error"
	default:
		return "✗ fail"
	}
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
