package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/djcass44/pkgstats/cmd/cache"
	"github.com/djcass44/pkgstats/pkg/airutil"
	statsv1 "github.com/djcass44/pkgstats/pkg/api/v1"
	"github.com/djcass44/pkgstats/pkg/contents"
	"github.com/djcass44/pkgstats/pkg/debian"
	"github.com/djcass44/pkgstats/pkg/downloader"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
)

const (
	flagConfig    = "config"
	flagMirror    = "mirror"
	flagDist      = "dist"
	flagComponent = "component"
	flagCache     = "cache"
	flagCacheDir  = cache.FlagCacheDir
	flagTop       = "top"
	flagWidth     = "width"
	flagWorkers   = "workers"
	flagOutput    = "output"
)

const defaultTop = 10

func addStatisticsFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP(flagConfig, "c", "", "path to a configuration file")
	cmd.PersistentFlags().String(flagMirror, debian.DefaultMirror, "base url of the Debian archive")
	cmd.PersistentFlags().String(flagDist, debian.DefaultDist, "distribution to read the index from")
	cmd.PersistentFlags().String(flagComponent, debian.DefaultComponent, "archive component to read the index from")
	cmd.PersistentFlags().Bool(flagCache, false, "keep downloaded files in the cache directory")
	cmd.PersistentFlags().String(flagCacheDir, "", "cache directory, implies --cache (defaults to user cache dir)")

	cmd.Flags().IntP(flagTop, "k", defaultTop, "number of packages to print")
	cmd.Flags().Int(flagWidth, contents.DefaultWidth, "width of each output line")
	cmd.Flags().Int(flagWorkers, 1, "number of goroutines used to count the index")
	cmd.Flags().StringP(flagOutput, "o", string(statsv1.OutputText), "output format (text or json)")

	_ = cmd.MarkPersistentFlagFilename(flagConfig, ".yaml", ".yml", ".json")
	_ = cmd.MarkPersistentFlagDirname(flagCacheDir)
}

func validateArgs(cmd *cobra.Command, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return &usageError{cmd: cmd, err: fmt.Errorf("accepts an architecture and an optional contents index url, received %d arg(s)", len(args))}
	}
	if strings.TrimSpace(args[0]) == "" {
		return &usageError{cmd: cmd, err: errors.New("architecture must not be empty")}
	}
	if len(args) == 2 && strings.TrimSpace(args[1]) == "" {
		return &usageError{cmd: cmd, err: errors.New("contents index url must not be empty")}
	}
	return nil
}

// contentsURL returns the explicit url if one was given,
// otherwise the url of the architecture's index on the
// configured mirror.
func contentsURL(spec statsv1.StatisticsSpec, args []string) string {
	if len(args) == 2 {
		return airutil.ExpandEnv(strings.TrimSpace(args[1]))
	}
	return debian.ContentsURL(airutil.ExpandEnv(spec.Mirror), spec.Dist, spec.Component, strings.TrimSpace(args[0]))
}

func statistics(cmd *cobra.Command, args []string) error {
	spec, err := readSpec(cmd)
	if err != nil {
		return err
	}
	return runStatistics(cmd.Context(), cmd.OutOrStdout(), spec, contentsURL(spec, args))
}

// runStatistics downloads the Contents index at target and
// writes the ranking to out. Nothing is written unless the
// whole index was read successfully.
func runStatistics(ctx context.Context, out io.Writer, spec statsv1.StatisticsSpec, target string) error {
	log := logr.FromContextOrDiscard(ctx).WithValues("url", target)

	dl, err := downloader.NewDownloader(spec.CacheDir)
	if err != nil {
		return &debian.AcquisitionError{URL: target, Err: err}
	}

	idx, err := debian.NewContentsIndex(ctx, dl, target)
	if err != nil {
		return err
	}
	defer idx.Close()

	counts, err := idx.Count(ctx, spec.Workers)
	if err != nil {
		return err
	}
	entries := contents.Top(counts, spec.Top)
	log.Info("ranked packages", "packages", len(counts), "files", counts.Total(), "top", len(entries))

	switch spec.Output {
	case statsv1.OutputJSON:
		return contents.PrintJSON(out, entries)
	default:
		return contents.Print(out, entries, spec.Width)
	}
}
