package harness

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
)

// DefaultBinary is the path of the target binary produced by its build.
const DefaultBinary = "./test"

// BuildConfig describes how to build the target binary.
type BuildConfig struct {
	SourceDir string
	// Command is the build command, run inside SourceDir.
	Command []string
	// BinaryPath is where the build leaves the target. Relative paths
	// are resolved against SourceDir.
	BinaryPath string
}

// ResolveBinary returns the absolute path of the built target.
func (c BuildConfig) ResolveBinary() string {
	path := c.BinaryPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.SourceDir, path)
	}

	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}

	return path
}

// Build compiles the target binary and returns its path.
func Build(ctx context.Context, logger *slog.Logger, cfg BuildConfig) (string, error) {
	if len(cfg.Command) == 0 {
		return "", fmt.Errorf("empty build command")
	}

	binPath := cfg.ResolveBinary()

	logger.InfoContext(ctx, "building target",
		slog.String("source_dir", cfg.SourceDir),
		slog.Any("command", cfg.Command),
	)

	cmd := exec.CommandContext(ctx, cfg.Command[0], cfg.Command[1:]...)
	cmd.Dir = cfg.SourceDir
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("build target in %s: %w", cfg.SourceDir, err)
	}

	if _, err := os.Stat(binPath); err != nil {
		return "", fmt.Errorf("build target: binary not found at %s", binPath)
	}

	logger.InfoContext(ctx, "target built", slog.String("binary", binPath))

	return binPath, nil
}
