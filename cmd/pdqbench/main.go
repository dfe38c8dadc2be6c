// Package main provides the CLI entry point for pdqbench, a benchmark
// harness for the PDQ private-matching target binary.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/weiihann/pdqbench/config"
	"github.com/weiihann/pdqbench/experiment"
	"github.com/weiihann/pdqbench/harness"
	"github.com/weiihann/pdqbench/report"
)

func main() {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(logger, level)
	if err := root.ExecuteContext(ctx); err != nil {
		logger.Error("command failed", slog.String("error", err.Error()))
		stop()
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger, level *slog.LevelVar) *cobra.Command {
	root := &cobra.Command{
		Use:   "pdqbench",
		Short: "Benchmark harness for the PDQ target binary",
		Long: `pdqbench runs the PDQ target binary over a matrix of (N, s)
configurations, repeats every configuration to average out timing noise,
and prints timing and communication cost tables grouped by figure.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(logger, level))
	root.AddCommand(newListCmd())
	root.AddCommand(newBuildCmd(logger, level))

	return root
}

func newRunCmd(logger *slog.Logger, level *slog.LevelVar) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every experiment and print the result tables",
		Long: `Run the target binary for each experiment of the registry, then print
the timing tables and communication cost tables of every figure. A failing
experiment is reported and skipped; it does not stop the sweep.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}

			level.Set(cfg.LogLevel)

			return runBenchmark(cmd.Context(), logger, cmd.OutOrStdout(), cfg)
		},
	}

	config.RegisterFlags(cmd.Flags())

	return cmd
}

func newListCmd() *cobra.Command {
	var registryPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the experiments and figures of the registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := loadRegistry(registryPath)
			if err != nil {
				return err
			}

			printRegistry(cmd.OutOrStdout(), reg)

			return nil
		},
	}

	cmd.Flags().StringVar(&registryPath, config.FlagRegistry, "",
		"Path to a YAML experiment registry (default: built-in)")

	return cmd
}

func newBuildCmd(logger *slog.Logger, level *slog.LevelVar) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the target binary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}

			level.Set(cfg.LogLevel)

			binPath, err := harness.Build(cmd.Context(), logger, cfg.BuildConfig())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), binPath)

			return nil
		},
	}

	config.RegisterBuildFlags(cmd.Flags())

	return cmd
}

func runBenchmark(
	ctx context.Context,
	logger *slog.Logger,
	out io.Writer,
	cfg config.Config,
) error {
	// Step 1: Load the experiment registry.
	reg, err := loadRegistry(cfg.Registry)
	if err != nil {
		return err
	}

	experiments, err := reg.Select(cfg.Only)
	if err != nil {
		return err
	}

	// Step 2: Build the target (if --build).
	binPath := cfg.Binary

	if cfg.Build {
		binPath, err = harness.Build(ctx, logger, cfg.BuildConfig())
		if err != nil {
			return fmt.Errorf("build target: %w", err)
		}
	}

	binPath, err = filepath.Abs(binPath)
	if err != nil {
		return fmt.Errorf("resolve binary: %w", err)
	}

	logger.InfoContext(ctx, "starting benchmark",
		slog.String("binary", binPath),
		slog.Int("experiments", len(experiments)),
		slog.Int("runs", cfg.Runs),
	)

	// Step 3: Run each experiment sequentially.
	runner := harness.NewRunner(binPath, cfg.Runs, out, logger)
	runner.ExtraArgs = cfg.Args
	runner.Env = cfg.Env
	runner.Dir = cfg.WorkDir
	runner.Timeout = cfg.Timeout

	fmt.Fprintf(out, "Running %d experiments with %d runs each...\n\n",
		len(experiments), cfg.Runs)

	results := harness.Sweep(ctx, runner, experiments)

	// Step 4: Generate report.
	report.Generate(out, reg.Figures, results)

	logger.InfoContext(ctx, "benchmark complete",
		slog.Int("succeeded", len(results)),
		slog.Int("failed", len(experiments)-len(results)),
	)

	return nil
}

func loadRegistry(path string) (experiment.Registry, error) {
	if path == "" {
		return experiment.Default(), nil
	}

	return experiment.Load(path)
}

func printRegistry(w io.Writer, reg experiment.Registry) {
	fmt.Fprintln(w, "Experiments:")

	for _, e := range reg.Experiments {
		fmt.Fprintf(w, "  %-15s N=%-8d s=%d\n", e.Name, e.N, e.S)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Figures:")

	for _, f := range reg.Figures {
		fmt.Fprintf(w, "  [%s]\n", f.Name)

		for _, name := range f.Experiments {
			fmt.Fprintf(w, "    %s\n", name)
		}
	}
}
