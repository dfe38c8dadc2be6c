package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fatih/color"
	"github.com/weiihann/pdqbench/experiment"
)

var errorColor = color.New(color.FgRed)

// Sweep runs every experiment in order and returns the successful
// results. A failing experiment is reported on the progress writer and
// skipped; it never stops the sweep. A cancelled context stops the sweep
// before the next experiment starts.
func Sweep(
	ctx context.Context,
	r *Runner,
	experiments []experiment.Experiment,
) Results {
	results := make(Results, len(experiments))

	for _, exp := range experiments {
		if err := ctx.Err(); err != nil {
			r.logger().Warn("sweep interrupted",
				slog.String("next", exp.Name),
				slog.String("error", err.Error()),
			)

			break
		}

		fmt.Fprintf(r.progress(), "  N=%d, s=%d:\n", exp.N, exp.S)

		result, err := r.Run(ctx, exp)
		if err != nil {
			errorColor.Fprintf(r.progress(), "    ERROR: %v\n", err)
			r.logger().Error("experiment failed",
				slog.String("experiment", exp.Name),
				slog.String("error", err.Error()),
			)

			continue
		}

		results[exp.Name] = result
	}

	return results
}
