// Package config resolves pdqbench settings from command-line flags,
// PDQBENCH_* environment variables, an optional .env file and an
// optional config file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/weiihann/pdqbench/harness"
)

// EnvPrefix prefixes every environment variable read by pdqbench.
const EnvPrefix = "PDQBENCH"

// Flag names shared by the commands.
const (
	FlagConfig    = "config"
	FlagBinary    = "binary"
	FlagRuns      = "runs"
	FlagRegistry  = "registry"
	FlagOnly      = "only"
	FlagArg       = "arg"
	FlagEnv       = "env"
	FlagWorkDir   = "workdir"
	FlagTimeout   = "timeout"
	FlagBuild     = "build"
	FlagSourceDir = "source-dir"
	FlagBuildCmd  = "build-cmd"
	FlagLogLevel  = "log-level"
)

// Config holds the resolved settings of a benchmark run.
type Config struct {
	Binary    string
	Runs      int
	Registry  string
	Only      []string
	// Args are passed to the target before N and s.
	Args      []string
	// Env holds KEY=VALUE pairs added to the target's environment.
	Env       []string
	WorkDir   string
	Timeout   time.Duration
	Build     bool
	SourceDir string
	BuildCmd  []string
	LogLevel  slog.Level
}

// BuildConfig returns the settings of the target build step.
func (c Config) BuildConfig() harness.BuildConfig {
	return harness.BuildConfig{
		SourceDir:  c.SourceDir,
		Command:    c.BuildCmd,
		BinaryPath: c.Binary,
	}
}

// Defaults of settings that not every command registers a flag for.
const (
	DefaultSourceDir = "."
	DefaultBuildCmd  = "make"
	DefaultLogLevel  = "info"
)

// RegisterBuildFlags adds the flags shared by every command that touches
// the target binary.
func RegisterBuildFlags(flags *pflag.FlagSet) {
	flags.String(FlagConfig, "",
		"Path to a config file (yaml, toml or json)")
	flags.String(FlagBinary, harness.DefaultBinary,
		"Path to the target binary")
	flags.String(FlagSourceDir, DefaultSourceDir,
		"Source directory of the target")
	flags.String(FlagBuildCmd, DefaultBuildCmd,
		"Command that builds the target, run in --source-dir")
	flags.String(FlagLogLevel, DefaultLogLevel,
		"Log level: debug, info, warn, error")
}

// RegisterFlags adds the benchmark flags to flags.
func RegisterFlags(flags *pflag.FlagSet) {
	RegisterBuildFlags(flags)

	flags.Int(FlagRuns, harness.DefaultRuns,
		"Number of runs per experiment")
	flags.String(FlagRegistry, "",
		"Path to a YAML experiment registry (default: built-in)")
	flags.StringArray(FlagOnly, nil,
		`Run only the named experiment, e.g. --only "(16384, 8)" (repeatable)`)
	flags.StringArray(FlagArg, nil,
		"Extra argument passed to the target before N and s (repeatable)")
	flags.StringArray(FlagEnv, nil,
		"Extra KEY=VALUE environment variable for the target (repeatable)")
	flags.String(FlagWorkDir, "",
		"Working directory of the target (default: current directory)")
	flags.Duration(FlagTimeout, 0,
		"Timeout of a single target invocation (0 = none)")
	flags.Bool(FlagBuild, false,
		"Build the target before running")
}

// Load resolves the configuration for flags registered by RegisterFlags
// or RegisterBuildFlags. Flags that were not set on the command line fall
// back to the environment, then to the config file, then to their
// defaults. Settings without a registered flag keep their defaults.
func Load(flags *pflag.FlagSet) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetDefault(FlagBinary, harness.DefaultBinary)
	v.SetDefault(FlagRuns, harness.DefaultRuns)
	v.SetDefault(FlagSourceDir, DefaultSourceDir)
	v.SetDefault(FlagBuildCmd, DefaultBuildCmd)
	v.SetDefault(FlagLogLevel, DefaultLogLevel)

	if err := v.BindPFlags(flags); err != nil {
		return Config{}, fmt.Errorf("bind flags: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path := v.GetString(FlagConfig); path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	// Experiment names and target arguments may contain commas, so the
	// repeatable flags are read from the flag set directly instead of
	// through viper's comma splitting.
	only, err := stringArray(flags, FlagOnly)
	if err != nil {
		return Config{}, err
	}

	args, err := stringArray(flags, FlagArg)
	if err != nil {
		return Config{}, err
	}

	env, err := stringArray(flags, FlagEnv)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Binary:    v.GetString(FlagBinary),
		Runs:      v.GetInt(FlagRuns),
		Registry:  v.GetString(FlagRegistry),
		Only:      only,
		Args:      args,
		Env:       env,
		WorkDir:   v.GetString(FlagWorkDir),
		Timeout:   v.GetDuration(FlagTimeout),
		Build:     v.GetBool(FlagBuild),
		SourceDir: v.GetString(FlagSourceDir),
		BuildCmd:  strings.Fields(v.GetString(FlagBuildCmd)),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString(FlagLogLevel))); err != nil {
		return Config{}, fmt.Errorf("invalid --%s: %w", FlagLogLevel, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the resolved settings.
func (c Config) Validate() error {
	if c.Binary == "" {
		return fmt.Errorf("--%s must not be empty", FlagBinary)
	}

	if c.Runs < 1 {
		return fmt.Errorf("--%s must be at least 1, got %d", FlagRuns, c.Runs)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("--%s must not be negative", FlagTimeout)
	}

	for _, kv := range c.Env {
		if key, _, ok := strings.Cut(kv, "="); !ok || key == "" {
			return fmt.Errorf("--%s %q: want KEY=VALUE", FlagEnv, kv)
		}
	}

	if c.Build && len(c.BuildCmd) == 0 {
		return fmt.Errorf("--%s must not be empty when --%s is set", FlagBuildCmd, FlagBuild)
	}

	return nil
}

func stringArray(flags *pflag.FlagSet, name string) ([]string, error) {
	if flags.Lookup(name) == nil {
		return nil, nil
	}

	values, err := flags.GetStringArray(name)
	if err != nil {
		return nil, fmt.Errorf("read --%s: %w", name, err)
	}

	return values, nil
}
