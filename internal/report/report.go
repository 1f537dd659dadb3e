// Package report renders devices and benchmark results for the terminal.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/common-nighthawk/go-figure"
	"github.com/fxnlabs/accelbench/internal/gpu"
	"github.com/fxnlabs/accelbench/internal/results"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	errorStyle  = cellStyle.Foreground(lipgloss.Color("9"))
	failStyle   = cellStyle.Foreground(lipgloss.Color("11"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	titleStyle  = lipgloss.NewStyle().Bold(true).MarginTop(1)
)

// Banner returns the ASCII art title printed before a run.
func Banner() string {
	return figure.NewFigure("accelbench", "", true).String()
}

// Devices renders one row per device profile.
func Devices(profiles []gpu.Profile) string {
	rows := make([][]string, 0, len(profiles))
	for _, p := range profiles {
		rows = append(rows, []string{
			fmt.Sprint(p.Index),
			p.Name,
			string(p.Class),
			p.Backend,
			fmt.Sprint(p.ComputeUnits),
			fmt.Sprint(p.MaxThreadsPerGroup),
			formatBytes(p.MaxSharedMemoryPerGroup),
			formatBytes(p.TotalMemory),
		})
	}
	return newTable(nil).
		Headers("#", "Name", "Class", "Backend", "Units", "Threads/Group", "Shared/Group", "Memory").
		Rows(rows...).
		Render()
}

// Results renders the results grouped by suite, in emission order.
func Results(rs []results.BenchmarkResult) string {
	var suites []string
	bySuite := make(map[string][]results.BenchmarkResult)
	for _, r := range rs {
		if _, ok := bySuite[r.Suite]; !ok {
			suites = append(suites, r.Suite)
		}
		bySuite[r.Suite] = append(bySuite[r.Suite], r)
	}

	var b strings.Builder
	for _, s := range suites {
		b.WriteString(titleStyle.Render(strings.ToUpper(s)))
		b.WriteString("\n")
		b.WriteString(suiteTable(bySuite[s]))
		b.WriteString("\n")
	}
	return b.String()
}

func suiteTable(rs []results.BenchmarkResult) string {
	rows := make([][]string, 0, len(rs))
	for _, r := range rs {
		if !r.OK() {
			rows = append(rows, []string{r.Benchmark, r.Device, r.Label, "-", "-", "-", "-", r.Unit, "error: " + r.Error})
			continue
		}
		rows = append(rows, []string{
			r.Benchmark,
			r.Device,
			r.Label,
			formatValue(r.Best),
			formatValue(r.Average),
			formatValue(r.Worst),
			formatValue(r.StdDev),
			r.Unit,
			string(r.Verification),
		})
	}
	style := func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		r := rs[row]
		switch {
		case !r.OK():
			return errorStyle
		case r.Verification == results.StatusFailed && col == 8:
			return failStyle
		}
		return cellStyle
	}
	return newTable(style).
		Headers("Benchmark", "Device", "Size", "Best", "Avg", "Worst", "StdDev", "Unit", "Verification").
		Rows(rows...).
		Render()
}

// Totals counts completed, failed and mismatching results.
type Totals struct {
	Completed  int
	Errors     int
	Mismatches int
}

func Count(rs []results.BenchmarkResult) Totals {
	var t Totals
	for _, r := range rs {
		switch {
		case !r.OK():
			t.Errors++
		case r.Verification == results.StatusFailed:
			t.Completed++
			t.Mismatches++
		default:
			t.Completed++
		}
	}
	return t
}

func (t Totals) String() string {
	return fmt.Sprintf("%d completed, %d errors, %d verification mismatches", t.Completed, t.Errors, t.Mismatches)
}

func newTable(style func(row, col int) lipgloss.Style) *table.Table {
	if style == nil {
		style = func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(style)
}

func formatValue(v float64) string {
	switch {
	case v == 0:
		return "0"
	case v >= 100:
		return fmt.Sprintf("%.1f", v)
	case v >= 1:
		return fmt.Sprintf("%.2f", v)
	}
	return fmt.Sprintf("%.4f", v)
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
