package report

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiihann/pdqbench/experiment"
	"github.com/weiihann/pdqbench/harness"
)

func testResults() harness.Results {
	return harness.Results{
		"(16384, 8)": {
			Experiment: experiment.Experiment{Name: "(16384, 8)", N: 16384, S: 8},
			Timing: map[harness.Metric]harness.Stats{
				harness.Match:      {Mean: 1, Std: 0},
				harness.Mask:       {Mean: 2, Std: 0.125},
				harness.RingSwitch: {Mean: 0.5, Std: 0},
				harness.Compress:   {Mean: 3, Std: 0},
				harness.Decompress: {Mean: 10, Std: 1.234},
			},
			Sizes: map[harness.Metric]float64{
				harness.Digest:    5,
				harness.Query:     2048,
				harness.EvalKey:   1536,
				harness.RotKey:    100,
				harness.SwitchKey: 51,
			},
		},
		"(16384, 16)": {
			Experiment: experiment.Experiment{Name: "(16384, 16)", N: 16384, S: 16},
			Timing: map[harness.Metric]harness.Stats{
				harness.Match:      {Mean: 12.346, Std: 0.5},
				harness.Mask:       {Mean: 2, Std: 0},
				harness.RingSwitch: {Mean: 0.5, Std: 0},
				harness.Compress:   {Mean: 3, Std: 0},
				harness.Decompress: {Mean: 10, Std: 0},
			},
			Sizes: map[harness.Metric]float64{harness.Digest: 7},
		},
	}
}

func row(label string, cells ...string) string {
	var b strings.Builder
	b.WriteString(label + strings.Repeat(" ", 13-utf8.RuneCountInString(label)))
	for _, c := range cells {
		b.WriteString(" " + strings.Repeat(" ", 14-utf8.RuneCountInString(c)) + c)
	}
	return b.String()
}

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

func TestTimingTable(t *testing.T) {
	var buf bytes.Buffer
	TimingTable(&buf, testResults(), []string{"(16384, 8)", "(16384, 16)"})

	got := lines(buf.String())
	require.Len(t, got, 5)

	assert.Equal(t, "", got[0])
	assert.Equal(t,
		row("(N, s)", "Match (s)", "Mask (s)", "RS (s)", "Comp (s)", "Decomp (ms)"),
		got[1],
	)
	assert.Equal(t, strings.Repeat("-", 89), got[2])
	assert.Equal(t,
		row("(16384, 8)", "1.00 ± 0.00", "2.00 ± 0.12", "0.50 ± 0.00", "3.00 ± 0.00", "10.00 ± 1.23"),
		got[3],
	)
	assert.Equal(t,
		row("(16384, 16)", "12.35 ± 0.50", "2.00 ± 0.00", "0.50 ± 0.00", "3.00 ± 0.00", "10.00 ± 0.00"),
		got[4],
	)

	// Rows line up with the separator.
	assert.Equal(t, 89, utf8.RuneCountInString(got[3]))
}

func TestTimingTableSkipsMissing(t *testing.T) {
	var buf bytes.Buffer
	TimingTable(&buf, testResults(), []string{"(16384, 16)", "(16384, 32)", "(16384, 8)"})

	got := lines(buf.String())
	require.Len(t, got, 5, "missing experiment adds no row")
	assert.True(t, strings.HasPrefix(got[3], "(16384, 16) "))
	assert.True(t, strings.HasPrefix(got[4], "(16384, 8) "))
}

func TestSizeTable(t *testing.T) {
	var buf bytes.Buffer
	SizeTable(&buf, testResults(), []string{"(16384, 8)", "(16384, 16)"})

	got := lines(buf.String())
	require.Len(t, got, 5)

	assert.Equal(t,
		row("(N, s)", "Digest (KB)", "Query (MB)", "EvalKey (MB)", "RotKey (MB)", "SwKey (MB)"),
		got[1],
	)
	assert.Equal(t, strings.Repeat("-", 89), got[2])
	// 100/1024 = 0.0977 and 51/1024 = 0.0498.
	assert.Equal(t, row("(16384, 8)", "5", "2.0", "1.5", "0.1", "0.0"), got[3])
	// Unreported sizes render as zero.
	assert.Equal(t, row("(16384, 16)", "7", "0.0", "0.0", "0.0", "0.0"), got[4])
}

func TestGenerate(t *testing.T) {
	figures := []experiment.Figure{
		{Name: "Vary s", Experiments: []string{"(16384, 8)", "(16384, 16)"}},
		{Name: "All failed", Experiments: []string{"(8192, 16)"}},
		{Name: "Vary N", Experiments: []string{"(8192, 16)", "(16384, 16)"}},
	}

	var buf bytes.Buffer
	Generate(&buf, figures, testResults())
	output := buf.String()

	timingAt := strings.Index(output, "TIMING RESULTS")
	commAt := strings.Index(output, "COMMUNICATION COSTS")
	require.GreaterOrEqual(t, timingAt, 0)
	require.Greater(t, commAt, timingAt)

	timing, comm := output[timingAt:commAt], output[commAt:]

	for _, phase := range []string{timing, comm} {
		assert.Contains(t, phase, "\n[Vary s]\n")
		assert.Contains(t, phase, "\n[Vary N]\n")
		assert.NotContains(t, phase, "All failed")
		assert.Less(t, strings.Index(phase, "[Vary s]"), strings.Index(phase, "[Vary N]"))
	}

	assert.Contains(t, timing, "Decomp (ms)")
	assert.NotContains(t, timing, "Digest (KB)")
	assert.Contains(t, comm, "Digest (KB)")
	assert.NotContains(t, comm, "Decomp (ms)")

	rule := strings.Repeat("=", 78)
	assert.Contains(t, output, "\n"+rule+"\nTIMING RESULTS\n"+rule+"\n")
	assert.Contains(t, output, "\n"+rule+"\nCOMMUNICATION COSTS\n"+rule+"\n")
}

func TestGenerateNoResults(t *testing.T) {
	var buf bytes.Buffer
	Generate(&buf, experiment.Default().Figures, harness.Results{})

	output := buf.String()
	assert.Contains(t, output, "TIMING RESULTS")
	assert.Contains(t, output, "COMMUNICATION COSTS")
	assert.NotContains(t, output, "[")
}

func TestFormatMB(t *testing.T) {
	tests := []struct {
		kb   float64
		want string
	}{
		{0, "0.0"},
		{1024, "1.0"},
		{1536, "1.5"},
		{40960, "40.0"},
		{102.4, "0.1"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatMB(tt.kb), "formatMB(%v)", tt.kb)
	}
}
