package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/djcass44/go-utils/logging"
	"github.com/djcass44/pkgstats/cmd/cache"
	"github.com/djcass44/pkgstats/pkg/debian"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	ExitError         = 1
	ExitDecompression = 5
	ExitAcquisition   = 11
	ExitInvocation    = 22
)

var command = &cobra.Command{
	Use:   "pkgstats <architecture> [contents-url]",
	Short: "list the packages owning the most files",
	Long: `pkgstats downloads the Contents index of a Debian architecture and
prints the packages that own the most files.

The index is fetched from the default mirror unless an explicit
Contents index url is given as the second argument.`,
	Example: `  pkgstats amd64
  pkgstats amd64 http://ftp.uk.debian.org/debian/dists/stable/main/Contents-amd64.gz`,
	SilenceUsage: true,
	Args:         validateArgs,
	RunE:         statistics,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logLevel, _ := cmd.Flags().GetInt(flagLogLevel)

		zc := zap.NewProductionConfig()
		zc.Level = zap.NewAtomicLevelAt(zapcore.Level(logLevel * -1))

		_, ctx := logging.NewZap(cmd.Context(), zc)
		cmd.SetContext(ctx)
	},
}

const flagLogLevel = "v"

func init() {
	command.PersistentFlags().Int(flagLogLevel, 0, "log level. Higher is more")
	addStatisticsFlags(command)
	command.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return &usageError{cmd: c, err: err}
	})
	command.AddCommand(architecturesCmd, cache.Command)
}

func Execute(version string) {
	command.Version = version

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := command.ExecuteContext(ctx)
	cancel()
	if err != nil {
		var ue *usageError
		if errors.As(err, &ue) {
			_, _ = fmt.Fprint(os.Stderr, ue.cmd.UsageString())
		}
		os.Exit(exitCode(err))
	}
}

// usageError indicates that the command was invoked
// incorrectly.
type usageError struct {
	cmd *cobra.Command
	err error
}

func (e *usageError) Error() string {
	return e.err.Error()
}

func (e *usageError) Unwrap() error {
	return e.err
}

func exitCode(err error) int {
	var ue *usageError
	var ae *debian.AcquisitionError
	var de *debian.DecompressionError
	switch {
	case errors.As(err, &ue):
		return ExitInvocation
	case errors.As(err, &ae):
		return ExitAcquisition
	case errors.As(err, &de):
		return ExitDecompression
	default:
		return ExitError
	}
}
