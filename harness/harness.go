package harness

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/weiihann/pdqbench/experiment"
)

// DefaultRuns is the number of times each experiment is executed.
const DefaultRuns = 5

// Runner launches the target binary repeatedly for one experiment at a
// time.
type Runner struct {
	BinaryPath string
	ExtraArgs  []string
	Env        []string
	// Dir is the working directory of the target. Empty means the
	// current directory.
	Dir string
	// Runs is the number of invocations per experiment.
	Runs int
	// Timeout bounds a single invocation. Zero means no limit.
	Timeout  time.Duration
	Progress io.Writer
	Logger   *slog.Logger
}

// NewRunner creates a Runner for the target binary. Progress lines are
// written to progress. A nil logger falls back to slog.Default.
func NewRunner(
	binaryPath string,
	runs int,
	progress io.Writer,
	logger *slog.Logger,
) *Runner {
	if runs <= 0 {
		runs = DefaultRuns
	}

	if progress == nil {
		progress = io.Discard
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Runner{
		BinaryPath: binaryPath,
		Runs:       runs,
		Progress:   progress,
		Logger:     logger.With(slog.String("binary", binaryPath)),
	}
}

// Run executes the experiment r.Runs times and aggregates the results.
// The first failing run aborts the experiment with a *RunError.
func (r *Runner) Run(ctx context.Context, exp experiment.Experiment) (*Result, error) {
	if r.Runs < 1 {
		return nil, fmt.Errorf("experiment %s: runs must be at least 1, got %d", exp.Name, r.Runs)
	}

	logger := r.logger().With(slog.String("experiment", exp.Name))
	progress := r.progress()

	samples := make(map[Metric][]float64, len(TimingFields))
	var sizes map[Metric]float64

	for run := 1; run <= r.Runs; run++ {
		fmt.Fprintf(progress, "    Run %d/%d... ", run, r.Runs)

		output, err := r.invoke(ctx, exp)
		if err != nil {
			fmt.Fprintln(progress)
			return nil, &RunError{Run: run, Err: err}
		}

		if !strings.Contains(output, VerificationMarker) {
			fmt.Fprintln(progress)
			return nil, &RunError{
				Run: run,
				Err: fmt.Errorf("%w: %q not in output", ErrVerification, VerificationMarker),
			}
		}

		timings, err := ExtractTimings(output)
		if err != nil {
			fmt.Fprintln(progress)
			return nil, &RunError{Run: run, Err: err}
		}

		for _, f := range TimingFields {
			samples[f.Metric] = append(samples[f.Metric], timings[f.Metric])
		}

		// Sizes are deterministic for a configuration, so only the first
		// run's are kept. Later runs are checked and drift is logged.
		if sizes == nil {
			sizes = ExtractSizes(output)
		} else if got := ExtractSizes(output); !maps.Equal(got, sizes) {
			logger.Warn("size metrics differ from first run",
				slog.Int("run", run),
				slog.Any("first", sizes),
				slog.Any("current", got),
			)
		}

		fmt.Fprintln(progress, "done")
	}

	result := &Result{
		Experiment: exp,
		Timing:     make(map[Metric]Stats, len(samples)),
		Sizes:      sizes,
	}

	for metric, values := range samples {
		result.Timing[metric] = ComputeStats(values)
	}

	logger.Debug("experiment finished",
		slog.Int("runs", r.Runs),
		slog.Any("timing", result.Timing),
	)

	return result, nil
}

// invoke runs the target once and returns its stdout.
func (r *Runner) invoke(ctx context.Context, exp experiment.Experiment) (string, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	args := make([]string, 0, len(r.ExtraArgs)+2)
	args = append(args, r.ExtraArgs...)
	args = append(args, exp.Args()...)

	cmd := exec.CommandContext(ctx, r.BinaryPath, args...)
	cmd.Dir = r.Dir

	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf(
			"%w: %s: %w\nstderr: %s",
			ErrProcess, r.BinaryPath, err, strings.TrimSpace(stderr.String()),
		)
	}

	r.logger().Debug("target finished",
		slog.String("experiment", exp.Name),
		slog.Duration("wall_time", time.Since(start)),
	)

	return stdout.String(), nil
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}

	return r.Logger
}

func (r *Runner) progress() io.Writer {
	if r.Progress == nil {
		return io.Discard
	}

	return r.Progress
}
