// Package report formats benchmark results into fixed-width comparison
// tables, one per figure.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"
	"github.com/weiihann/pdqbench/experiment"
	"github.com/weiihann/pdqbench/harness"
)

const (
	configWidth = 13
	columnWidth = 14
	bannerWidth = 78
)

// tableWidth is the width of the config column plus five data columns,
// each preceded by a space.
const tableWidth = configWidth + 1 + (columnWidth+1)*5

var (
	timingHeader = []string{"Match (s)", "Mask (s)", "RS (s)", "Comp (s)", "Decomp (ms)"}
	sizeHeader   = []string{"Digest (KB)", "Query (MB)", "EvalKey (MB)", "RotKey (MB)", "SwKey (MB)"}
)

// Generate writes the timing tables of every figure followed by the
// communication cost tables of every figure. Figures without any
// successful experiment are omitted.
func Generate(w io.Writer, figures []experiment.Figure, results harness.Results) {
	writeBanner(w, "TIMING RESULTS")

	for _, fig := range figures {
		if names := present(fig, results); len(names) > 0 {
			fmt.Fprintf(w, "\n[%s]\n", fig.Name)
			TimingTable(w, results, names)
		}
	}

	writeBanner(w, "COMMUNICATION COSTS")

	for _, fig := range figures {
		if names := present(fig, results); len(names) > 0 {
			fmt.Fprintf(w, "\n[%s]\n", fig.Name)
			SizeTable(w, results, names)
		}
	}
}

// TimingTable writes the mean and standard deviation of every timing
// metric, one row per experiment in names. Experiments missing from
// results are skipped.
func TimingTable(w io.Writer, results harness.Results, names []string) {
	writeHeader(w, timingHeader)

	for _, name := range names {
		r, ok := results[name]
		if !ok {
			continue
		}

		cells := lo.Map(harness.TimingFields, func(f harness.Field, _ int) string {
			return formatStats(r.Timing[f.Metric])
		})
		writeRow(w, name, cells)
	}
}

// SizeTable writes the communication sizes, one row per experiment in
// names. Digest is shown in KB, the other sizes in MB. Unreported sizes
// are shown as zero.
func SizeTable(w io.Writer, results harness.Results, names []string) {
	writeHeader(w, sizeHeader)

	for _, name := range names {
		r, ok := results[name]
		if !ok {
			continue
		}

		cells := lo.Map(harness.SizeFields, func(f harness.Field, _ int) string {
			if f.Metric == harness.Digest {
				return formatKB(r.Size(f.Metric))
			}

			return formatMB(r.Size(f.Metric))
		})
		writeRow(w, name, cells)
	}
}

func present(fig experiment.Figure, results harness.Results) []string {
	return lo.Filter(fig.Experiments, func(name string, _ int) bool {
		return results.Has(name)
	})
}

func writeBanner(w io.Writer, title string) {
	rule := strings.Repeat("=", bannerWidth)

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, rule)
}

func writeHeader(w io.Writer, columns []string) {
	fmt.Fprintln(w)
	writeRow(w, "(N, s)", columns)
	fmt.Fprintln(w, strings.Repeat("-", tableWidth))
}

func writeRow(w io.Writer, label string, cells []string) {
	var b strings.Builder

	fmt.Fprintf(&b, "%-*s", configWidth, label)

	for _, c := range cells {
		fmt.Fprintf(&b, " %*s", columnWidth, c)
	}

	fmt.Fprintln(w, b.String())
}

func formatStats(s harness.Stats) string {
	return fmt.Sprintf("%.2f ± %.2f", s.Mean, s.Std)
}

func formatKB(kb float64) string {
	return fmt.Sprintf("%.0f", kb)
}

func formatMB(kb float64) string {
	return fmt.Sprintf("%.1f", kb/1024)
}
