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

package main

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/jinzhu/copier"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/blinklabs-io/gobits/bits"
	"github.com/blinklabs-io/gobits/internal/telemetry"
	"github.com/blinklabs-io/gobits/pipeline"
	"github.com/blinklabs-io/gobits/value"
)

type rotateSpec struct {
	command   bits.Command
	direction bits.Direction
}

var (
	rotateLeft  = rotateSpec{command: bits.RotateLeftCommand, direction: bits.Left}
	rotateRight = rotateSpec{command: bits.RotateRightCommand, direction: bits.Right}
)

// rotateOptions are filled from the config's rotate section, then from flags
type rotateOptions struct {
	NumberBytes string
	Signed      bool
}

func (a *app) rotateCommand(spec rotateSpec) *cobra.Command {
	var flagOpts rotateOptions
	cmd := &cobra.Command{
		Use:     spec.command.Name + " <amount>",
		Aliases: spec.command.SearchTerms,
		Short:   spec.command.Usage,
		Long:    spec.command.Usage + "\n\n<amount> is the " + spec.command.AmountUsage + ".",
		Example: exampleText(spec.command),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rot, err := a.newRotation(cmd, spec.direction, args[0], flagOpts)
			if err != nil {
				return err
			}
			return a.runOperation(cmd, spec.command.Name, rot)
		},
	}
	cmd.Flags().BoolVarP(
		&flagOpts.Signed,
		"signed",
		"s",
		false,
		"always treat input number as a signed number",
	)
	cmd.Flags().StringVarP(
		&flagOpts.NumberBytes,
		"number-bytes",
		"n",
		bits.Auto.String(),
		"the word size in number of bytes: 1, 2, 4, 8 or auto",
	)
	return cmd
}

// newRotation builds the rotation for an invocation. Every argument problem is
// reported here, before any input is read.
func (a *app) newRotation(
	cmd *cobra.Command,
	dir bits.Direction,
	amountArg string,
	flagOpts rotateOptions,
) (bits.Rotation, error) {
	fs := cmd.Flags()
	amount, err := parseRotateAmount(amountArg, a.line.positional(fs, amountArg))
	if err != nil {
		return bits.Rotation{}, err
	}

	var opts rotateOptions
	if err := copier.Copy(&opts, &a.cfg.Rotate); err != nil {
		return bits.Rotation{}, fmt.Errorf("failed to copy rotate defaults: %w", err)
	}
	if fs.Changed("signed") {
		opts.Signed = flagOpts.Signed
	}
	numberBytes := &value.Spanned[string]{
		Item: opts.NumberBytes,
		Span: value.UnknownSpan,
	}
	if fs.Changed("number-bytes") {
		spanned, ok := a.line.flagValue("number-bytes", "n")
		if !ok || spanned.Item != flagOpts.NumberBytes {
			spanned = value.Spanned[string]{Item: flagOpts.NumberBytes, Span: value.UnknownSpan}
		}
		numberBytes = &spanned
	}

	return bits.NewRotation(
		amount,
		dir,
		opts.Signed,
		numberBytes,
		a.line.head(cmd.CalledAs()),
	)
}

func (a *app) shiftLeftCommand() *cobra.Command {
	spec := bits.ShiftLeftCommand
	return &cobra.Command{
		Use:     spec.Name + " <amount>",
		Aliases: spec.SearchTerms,
		Short:   spec.Usage,
		Long: spec.Usage + "\n\n<amount> is the " + spec.AmountUsage +
			". Negative amounts wrap around modulo 64; use -- before them.",
		Example: exampleText(spec),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			span := a.line.positional(cmd.Flags(), args[0])
			amount, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return &value.ShellError{
					Kind:  value.InvalidArgument,
					Msg:   "invalid shift amount",
					Label: "expected an integer",
					Span:  span,
					Cause: err,
				}
			}
			op := bits.ShiftLeft{
				Amount: amount,
				Head:   a.line.head(cmd.CalledAs()),
			}
			return a.runOperation(cmd, spec.Name, op)
		},
	}
}

// parseRotateAmount reads a rotate count. Values past 32 bits are truncated,
// which leaves the rotation unchanged for every width.
func parseRotateAmount(arg string, span value.Span) (uint32, error) {
	n, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || n < 0 {
		return 0, &value.ShellError{
			Kind:  value.InvalidArgument,
			Msg:   "invalid rotate amount",
			Label: "expected a non-negative integer",
			Span:  span,
			Cause: err,
		}
	}
	return uint32(n), nil // #nosec G115
}

// runOperation streams stdin through op to stdout
func (a *app) runOperation(cmd *cobra.Command, name string, op bits.Operation) error {
	ctx := cmd.Context()

	reader, err := newReader(a.cfg.IO.Input, a.stdin)
	if err != nil {
		return err
	}
	writer, err := newWriter(a.cfg.IO.Output, a.stdout)
	if err != nil {
		return err
	}

	var (
		pipelineMetrics *pipeline.Metrics
		metrics         *telemetry.Metrics
	)
	if a.cfg.Metrics.Textfile != "" {
		pipelineMetrics = pipeline.NewMetrics()
		metrics = telemetry.New(pipelineMetrics)
	}
	opts, err := a.pipelineOptions(pipelineMetrics)
	if err != nil {
		return err
	}

	in := &input{reader: reader}
	data, err := in.data()
	if err != nil {
		return err
	}

	var written int
	err = writeData(ctx, writer, data.Map(ctx, op.Apply, opts...), func(v value.Value) {
		written++
		if metrics != nil {
			metrics.RecordOutput(name, v)
		}
	})
	// The input is only drained, and its error safe to read, on success
	if err == nil {
		err = in.readError()
	}
	a.logger.Info(
		"finished",
		zap.String("command", name),
		zap.Int("elements", written),
		zap.Error(err),
	)
	if metrics != nil {
		if writeErr := metrics.WriteTextfile(a.cfg.Metrics.Textfile); writeErr != nil {
			err = multierr.Append(err, fmt.Errorf("failed to write metrics: %w", writeErr))
		}
	}
	return err
}

func (a *app) pipelineOptions(metrics *pipeline.Metrics) ([]pipeline.Option, error) {
	cfg := pipeline.DefaultConfig()
	if err := copier.Copy(&cfg, &a.cfg.Pipeline); err != nil {
		return nil, fmt.Errorf("failed to copy pipeline config: %w", err)
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	cfg.Metrics = metrics
	cfg.Logger = a.logger
	return []pipeline.Option{pipeline.WithConfig(cfg)}, nil
}

func exampleText(cmd bits.Command) string {
	lines := make([]string, 0, len(cmd.Examples)*3)
	for i, example := range cmd.Examples {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(
			lines,
			"  # "+example.Description,
			"  "+example.Example,
		)
	}
	return strings.Join(lines, "\n")
}
