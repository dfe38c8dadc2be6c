package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTimings(t *testing.T) {
	values, err := ExtractTimings(passingOutput)
	require.NoError(t, err)

	assert.Equal(t, map[Metric]float64{
		Match:      1.0,
		Mask:       2.0,
		RingSwitch: 0.5,
		Compress:   3.0,
		Decompress: 10.0,
	}, values)
}

func TestExtractTimingsMissing(t *testing.T) {
	_, err := ExtractTimings("Match time: 1.00sec\nVerification: PASSED\n")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExtraction)
	assert.Contains(t, err.Error(), `"Mask"`)
}

func TestFieldExtract(t *testing.T) {
	tests := []struct {
		name   string
		field  Field
		output string
		want   float64
		wantOK bool
	}{
		{"seconds", TimingFields[0], "Match time: 12.345sec", 12.345, true},
		{"no space", TimingFields[0], "Match time:0.5sec", 0.5, true},
		{"exponent", TimingFields[0], "Match time: 1.5e-05sec", 1.5e-05, true},
		{"trailing dot", TimingFields[0], "Match time: 5.sec", 5, true},
		{"trailing dot exponent", TimingFields[2], "RingSwitch time: 2.e-3sec", 2e-3, true},
		{"leading dot", TimingFields[4], "Decompress time: .25ms", 0.25, true},
		{"zero", TimingFields[1], "Mask time: 0sec", 0, true},
		{"first match wins", TimingFields[0], "Match time: 1sec\nMatch time: 2sec", 1, true},
		{"wrong unit", TimingFields[4], "Decompress time: 3.2sec", 0, false},
		{"milliseconds", TimingFields[4], "Decompress time: 3.2ms", 3.2, true},
		{"case sensitive label", TimingFields[3], "Decompress time: 3.2sec", 0, false},
		{"size", SizeFields[0], "Digest size: 5 KB", 5, true},
		{"size no space", SizeFields[2], "EvalKey size: 1024.5KB", 1024.5, true},
		{"size absent", SizeFields[4], "Digest size: 5 KB", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.field.Extract(tt.output)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractSizesPartial(t *testing.T) {
	output := "Digest size: 5 KB\nRotKey size: 40960 KB\n"

	assert.Equal(t,
		map[Metric]float64{Digest: 5, RotKey: 40960},
		ExtractSizes(output),
	)
	assert.Empty(t, ExtractSizes(passingOutput))
}

func TestFieldOrder(t *testing.T) {
	var timing, size []Metric
	for _, f := range TimingFields {
		timing = append(timing, f.Metric)
	}
	for _, f := range SizeFields {
		size = append(size, f.Metric)
	}

	assert.Equal(t, []Metric{Match, Mask, RingSwitch, Compress, Decompress}, timing)
	assert.Equal(t, []Metric{Digest, Query, EvalKey, RotKey, SwitchKey}, size)
	assert.Equal(t, "ms", TimingFields[4].Unit)
}
