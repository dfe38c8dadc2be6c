// Package experiment defines the (N, s) configurations benchmarked by
// pdqbench and the figures that group them for reporting.
package experiment

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Experiment is one parameter configuration of the target binary.
type Experiment struct {
	Name string `yaml:"name"`
	// N is the number of records.
	N int `yaml:"n"`
	// S is the number of matching records.
	S int `yaml:"s"`
}

// Args returns the positional arguments passed to the target binary.
func (e Experiment) Args() []string {
	return []string{strconv.Itoa(e.N), strconv.Itoa(e.S)}
}

// Figure is a named, ordered group of experiments sharing a varied axis.
type Figure struct {
	Name        string   `yaml:"name"`
	Experiments []string `yaml:"experiments"`
}

// Registry holds the experiments in sweep order and the figures built
// over them.
type Registry struct {
	Experiments []Experiment `yaml:"experiments"`
	Figures     []Figure     `yaml:"figures"`
}

// DefaultName returns the display name used for an (N, s) pair.
func DefaultName(n, s int) string {
	return fmt.Sprintf("(%d, %d)", n, s)
}

func newExperiment(n, s int) Experiment {
	return Experiment{Name: DefaultName(n, s), N: n, S: s}
}

// Default returns the built-in registry: one sweep over the number of
// matches at N=16384 and one over the number of records at s=16.
func Default() Registry {
	return Registry{
		Experiments: []Experiment{
			// Varying num_matching (N=16384).
			newExperiment(16384, 8),
			newExperiment(16384, 16),
			newExperiment(16384, 32),
			newExperiment(16384, 64),
			newExperiment(16384, 128),

			// Varying num_records (s=16).
			newExperiment(8192, 16),
			newExperiment(32768, 16),
			newExperiment(65536, 16),
			newExperiment(131072, 16),
			newExperiment(262144, 16),
			newExperiment(524288, 16),
		},
		Figures: []Figure{
			{
				Name: "Vary num_matching (N=16384)",
				Experiments: []string{
					"(16384, 8)", "(16384, 16)", "(16384, 32)",
					"(16384, 64)", "(16384, 128)",
				},
			},
			{
				Name: "Vary num_records (s=16)",
				Experiments: []string{
					"(8192, 16)", "(16384, 16)", "(32768, 16)",
					"(65536, 16)", "(131072, 16)", "(262144, 16)",
					"(524288, 16)",
				},
			},
		},
	}
}

// Load reads and validates a registry from a YAML file.
func Load(path string) (Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return Registry{}, fmt.Errorf("open registry %s: %w", path, err)
	}
	defer f.Close()

	reg, err := Parse(f)
	if err != nil {
		return Registry{}, fmt.Errorf("registry %s: %w", path, err)
	}

	return reg, nil
}

// Parse decodes a YAML registry from r and validates it. Experiments
// without a name are named after their (N, s) pair.
func Parse(r io.Reader) (Registry, error) {
	var reg Registry

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&reg); err != nil {
		if errors.Is(err, io.EOF) {
			return Registry{}, fmt.Errorf("empty registry")
		}

		return Registry{}, fmt.Errorf("decode YAML: %w", err)
	}

	for i := range reg.Experiments {
		if reg.Experiments[i].Name == "" {
			e := reg.Experiments[i]
			reg.Experiments[i].Name = DefaultName(e.N, e.S)
		}
	}

	if err := reg.Validate(); err != nil {
		return Registry{}, err
	}

	return reg, nil
}

// Validate checks that the registry is internally consistent: names are
// unique, parameters are positive, and every figure references only
// declared experiments.
func (r Registry) Validate() error {
	if len(r.Experiments) == 0 {
		return fmt.Errorf("registry has no experiments")
	}

	names := lo.Map(r.Experiments, func(e Experiment, _ int) string {
		return e.Name
	})
	if dups := lo.FindDuplicates(names); len(dups) > 0 {
		return fmt.Errorf("duplicate experiment names: %q", dups)
	}

	for _, e := range r.Experiments {
		if e.N <= 0 || e.S <= 0 {
			return fmt.Errorf(
				"experiment %q: N and s must be positive, got N=%d s=%d",
				e.Name, e.N, e.S,
			)
		}
	}

	figNames := lo.Map(r.Figures, func(f Figure, _ int) string {
		return f.Name
	})
	if dups := lo.FindDuplicates(figNames); len(dups) > 0 {
		return fmt.Errorf("duplicate figure names: %q", dups)
	}

	for _, f := range r.Figures {
		missing := lo.Without(f.Experiments, names...)
		if len(missing) > 0 {
			return fmt.Errorf(
				"figure %q references unknown experiments: %q",
				f.Name, missing,
			)
		}
	}

	return nil
}

// Lookup returns the experiment with the given name.
func (r Registry) Lookup(name string) (Experiment, bool) {
	return lo.Find(r.Experiments, func(e Experiment) bool {
		return e.Name == name
	})
}

// Select returns the named experiments in registry order. An empty
// selection returns every experiment.
func (r Registry) Select(names []string) ([]Experiment, error) {
	if len(names) == 0 {
		return r.Experiments, nil
	}

	for _, name := range names {
		if _, ok := r.Lookup(name); !ok {
			return nil, fmt.Errorf("unknown experiment %q", name)
		}
	}

	return lo.Filter(r.Experiments, func(e Experiment, _ int) bool {
		return lo.Contains(names, e.Name)
	}), nil
}
