package harness

import (
	"fmt"
	"regexp"
	"strconv"
)

// Metric names a numeric field reported by the target binary.
type Metric string

// Timing metrics.
const (
	Match      Metric = "Match"
	Mask       Metric = "Mask"
	RingSwitch Metric = "RingSwitch"
	Compress   Metric = "Compress"
	Decompress Metric = "Decompress"
)

// Size metrics.
const (
	Digest    Metric = "Digest"
	Query     Metric = "Query"
	EvalKey   Metric = "EvalKey"
	RotKey    Metric = "RotKey"
	SwitchKey Metric = "SwitchKey"
)

// VerificationMarker must appear in the output of every successful run.
const VerificationMarker = "Verification: PASSED"

// number matches a decimal, possibly with a trailing dot, and an
// optional exponent as printed by iostreams for very small or large
// values.
const number = `((?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][-+]?[0-9]+)?)`

// Field is one labeled value in the target's output grammar.
type Field struct {
	Metric Metric
	// Unit is the unit the target prints the value in. Values are never
	// converted.
	Unit    string
	pattern *regexp.Regexp
}

func timingField(m Metric, unit string) Field {
	return Field{
		Metric:  m,
		Unit:    unit,
		pattern: regexp.MustCompile(regexp.QuoteMeta(string(m)) + ` time:\s*` + number + regexp.QuoteMeta(unit)),
	}
}

func sizeField(m Metric) Field {
	return Field{
		Metric:  m,
		Unit:    "KB",
		pattern: regexp.MustCompile(regexp.QuoteMeta(string(m)) + ` size:\s*` + number + `\s*KB`),
	}
}

// TimingFields are required in the output of every run, in report order.
// Decompress is reported in milliseconds, the rest in seconds.
var TimingFields = []Field{
	timingField(Match, "sec"),
	timingField(Mask, "sec"),
	timingField(RingSwitch, "sec"),
	timingField(Compress, "sec"),
	timingField(Decompress, "ms"),
}

// SizeFields are optional communication sizes, in report order.
var SizeFields = []Field{
	sizeField(Digest),
	sizeField(Query),
	sizeField(EvalKey),
	sizeField(RotKey),
	sizeField(SwitchKey),
}

// Extract returns the first value of f in output. No range checks are
// applied.
func (f Field) Extract(output string) (float64, bool) {
	m := f.pattern.FindStringSubmatch(output)
	if m == nil {
		return 0, false
	}

	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}

	return v, true
}

// ExtractTimings returns every timing field from output. A missing field
// is an ErrExtraction error.
func ExtractTimings(output string) (map[Metric]float64, error) {
	values := make(map[Metric]float64, len(TimingFields))

	for _, f := range TimingFields {
		v, ok := f.Extract(output)
		if !ok {
			return nil, fmt.Errorf("%w: %q not found in output", ErrExtraction, f.Metric)
		}

		values[f.Metric] = v
	}

	return values, nil
}

// ExtractSizes returns the size fields present in output.
func ExtractSizes(output string) map[Metric]float64 {
	values := make(map[Metric]float64, len(SizeFields))

	for _, f := range SizeFields {
		if v, ok := f.Extract(output); ok {
			values[f.Metric] = v
		}
	}

	return values
}
