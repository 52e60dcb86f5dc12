package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/hamed0406/probeharness/internal/exitcodes"
	"github.com/hamed0406/probeharness/internal/flags"
	"github.com/hamed0406/probeharness/internal/logging"
	"github.com/hamed0406/probeharness/internal/registry"
	"github.com/hamed0406/probeharness/internal/repo/postgres"
	"github.com/hamed0406/probeharness/internal/suite"
)

var Version = "v0.1.0"

func main() {
	app := cli.NewApp()
	app.Name = "probe"
	app.Version = Version
	app.Usage = "Run application probe suites"
	app.ArgsUsage = "[label ...]"
	app.Description = "Labels are app, app.Class or app.Class.method. No labels runs every registered application."
	app.Flags = flags.Flags
	app.Action = func(c *cli.Context) error {
		code, err := run(c, os.Stdin, os.Stderr)
		if err != nil {
			return cli.Exit(err.Error(), code)
		}
		if code != exitcodes.Success {
			return cli.Exit("", code)
		}
		return nil
	}

	if err := app.RunContext(context.Background(), os.Args); err != nil {
		var exitErr cli.ExitCoder
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(exitcodes.RuntimeErr)
		}
	}
}

// run returns the process exit code; a non-nil error is always paired with
// exitcodes.RuntimeErr.
func run(c *cli.Context, in io.Reader, out io.Writer) (int, error) {
	if err := flags.Check(c); err != nil {
		return exitcodes.RuntimeErr, err
	}

	level := c.String(flags.LogLevel.Name)
	if c.Int(flags.Verbosity.Name) >= 3 {
		level = "debug"
	}
	logger, err := logging.NewLogger(c.String(flags.LogDir.Name), level)
	if err != nil {
		return exitcodes.RuntimeErr, err
	}
	defer logger.Sync()

	apps, err := registry.LoadFile(c.String(flags.Apps.Name))
	if err != nil {
		return exitcodes.RuntimeErr, err
	}

	policy := suite.Policy{
		Verbosity:   c.Int(flags.Verbosity.Name),
		Interactive: !c.Bool(flags.NoInput.Name),
		FailFast:    c.Bool(flags.FailFast.Name),
	}
	opts := []suite.Option{
		suite.WithOutput(out),
		suite.WithDiag(out),
		suite.WithLogger(logger),
		suite.WithInterrupter(suite.SignalInterrupter{}),
		suite.WithTable(c.Bool(flags.Table.Name)),
	}

	if dsn := c.String(flags.DatabaseURL.Name); dsn != "" {
		store, err := postgres.New(c.Context, dsn, logger)
		if err != nil {
			return exitcodes.RuntimeErr, err
		}
		defer store.Close()
		if err := store.Migrate(c.Context); err != nil {
			return exitcodes.RuntimeErr, err
		}
		opts = append(opts, suite.WithRecorder(store))
	}

	labels := c.Args().Slice()
	if policy.Interactive && len(labels) == 0 {
		g, err := suite.NewRunner(policy, apps, opts...).BuildSuite(nil)
		if err != nil {
			return exitcodes.RuntimeErr, err
		}
		if !confirmRunAll(in, out, g.Count(), apps.Len()) {
			logger.Info("probe_run_declined")
			return exitcodes.Success, nil
		}
	}

	runner, err := suite.NewNamedRunner(c.String(flags.Runner.Name), policy, apps, opts...)
	if err != nil {
		return exitcodes.RuntimeErr, err
	}
	rep, err := runner.Execute(c.Context, labels)
	if err != nil {
		return exitcodes.RuntimeErr, err
	}
	if rep.Result.Interrupted {
		logger.Info("probe_run_incomplete", zap.Int("probes_run", rep.Result.ProbesRun))
	}
	return exitcodes.ForFailures(rep.Failures), nil
}
