// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command bits applies bitwise operations to the integers of a value stream
// read from stdin and writes the results to stdout.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jinzhu/copier"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/blinklabs-io/gobits/internal/config"
	"github.com/blinklabs-io/gobits/internal/logging"
	"github.com/blinklabs-io/gobits/value"
)

const programName = "bits"

// version is set at build time
var version = "dev"

type globalFlags struct {
	configFile      string
	logLevel        string
	logFormat       string
	workers         int
	metricsTextfile string
	input           string
	output          string
}

type app struct {
	flags  globalFlags
	line   *commandLine
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	cfg    *config.Config
	logger *zap.Logger
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{
		line:   newCommandLine(args),
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		logger: zap.NewNop(),
	}
	rootCmd := a.rootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	err = multierr.Append(err, logging.Sync(a.logger))
	if err != nil {
		a.reportError(err)
		return 1
	}
	return 0
}

func (a *app) rootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   programName,
		Short: "Bitwise operations on integer streams",
		Long: `bits reads a CBOR sequence or a stream of JSON values from stdin, applies a
bitwise operation to every integer and writes the results to stdout.

A single list on stdin is mapped element by element and written back as one
list. Elements that cannot be processed are replaced by inline error values.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.flags.configFile, "config", "", "path to YAML config file (default $"+config.EnvConfigFile+")")
	flags.StringVar(&a.flags.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flags.StringVar(&a.flags.logFormat, "log-format", logging.FormatConsole, "log format (console, json)")
	flags.IntVar(&a.flags.workers, "workers", 1, "number of mapping workers, 0 for one per CPU")
	flags.StringVar(&a.flags.metricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file on exit")
	flags.StringVar(&a.flags.input, "input", formatCbor, "input framing (cbor, json)")
	flags.StringVar(&a.flags.output, "output", formatCbor, "output framing (cbor, json)")

	rootCmd.AddCommand(
		a.rotateCommand(rotateLeft),
		a.rotateCommand(rotateRight),
		a.shiftLeftCommand(),
	)
	return rootCmd
}

// setup loads the config, applies flag overrides and builds the logger
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.flags.configFile)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = a.flags.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = a.flags.logFormat
	}
	if flags.Changed("workers") {
		cfg.Pipeline.Workers = a.flags.workers
	}
	if flags.Changed("metrics-textfile") {
		cfg.Metrics.Textfile = a.flags.metricsTextfile
	}
	if flags.Changed("input") {
		cfg.IO.Input = a.flags.input
	}
	if flags.Changed("output") {
		cfg.IO.Output = a.flags.output
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	logCfg := logging.DefaultConfig()
	if err := copier.Copy(&logCfg, &cfg.Log); err != nil {
		return fmt.Errorf("failed to copy log config: %w", err)
	}
	logger, err := logging.New(logCfg, a.stderr)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.logger = logger
	a.logger.Debug(
		"config loaded",
		zap.String("command", cmd.Name()),
		zap.String("input", cfg.IO.Input),
		zap.String("output", cfg.IO.Output),
		zap.Int("workers", cfg.Pipeline.Workers),
	)
	return nil
}

// reportError writes err to stderr, with a caret under the offending part of
// the command line when it has one.
func (a *app) reportError(err error) {
	var shellErr *value.ShellError
	if errors.As(err, &shellErr) {
		fmt.Fprint(a.stderr, shellErr.Render(a.line.source))
		return
	}
	fmt.Fprintf(a.stderr, "Error: %s\n", err)
}
