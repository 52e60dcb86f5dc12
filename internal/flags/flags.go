package flags

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

const EnvVarPrefix = "PROBE"

func prefixEnvVar(name string) []string {
	return []string{EnvVarPrefix + "_" + name}
}

var (
	NoInput = &cli.BoolFlag{
		Name:    "noinput",
		Usage:   "Do not prompt before running every probe",
		EnvVars: prefixEnvVar("NOINPUT"),
	}
	FailFast = &cli.BoolFlag{
		Name:    "failfast",
		Usage:   "Stop the run after the first failed or errored probe",
		EnvVars: prefixEnvVar("FAILFAST"),
	}
	Verbosity = &cli.IntFlag{
		Name:    "verbosity",
		Aliases: []string{"v"},
		Value:   1,
		Usage:   "Output verbosity: 0 silent, 1 progress dots, 2 one line per probe, 3 adds debug logs",
		EnvVars: prefixEnvVar("VERBOSITY"),
	}
	Apps = &cli.StringFlag{
		Name:    "apps",
		Value:   "probes.apps.yaml",
		Usage:   "Path to the application manifest",
		EnvVars: prefixEnvVar("APPS"),
	}
	Runner = &cli.StringFlag{
		Name:    "runner",
		Value:   "default",
		Usage:   "Name of the registered runner implementation",
		EnvVars: prefixEnvVar("RUNNER"),
	}
	LogDir = &cli.StringFlag{
		Name:    "log-dir",
		Value:   "logs",
		Usage:   "Directory for the rotating log file",
		EnvVars: prefixEnvVar("LOG_DIR"),
	}
	LogLevel = &cli.StringFlag{
		Name:    "log-level",
		Value:   "info",
		Usage:   "Log level (debug, info, warn, error)",
		EnvVars: prefixEnvVar("LOG_LEVEL"),
	}
	Table = &cli.BoolFlag{
		Name:    "table",
		Usage:   "Print a results table after the summary",
		EnvVars: prefixEnvVar("TABLE"),
	}
	DatabaseURL = &cli.StringFlag{
		Name:    "database-url",
		Usage:   "Record the run in this Postgres database",
		EnvVars: prefixEnvVar("DATABASE_URL"),
	}
)

var Flags = []cli.Flag{
	NoInput,
	FailFast,
	Verbosity,
	Apps,
	Runner,
	LogDir,
	LogLevel,
	Table,
	DatabaseURL,
}

// Check validates flag values that urfave/cli cannot.
func Check(ctx *cli.Context) error {
	if v := ctx.Int(Verbosity.Name); v < 0 || v > 3 {
		return fmt.Errorf("flag %s must be between 0 and 3, got %d", Verbosity.Name, v)
	}
	return nil
}
