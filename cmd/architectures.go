package cmd

import (
	"fmt"
	"strings"

	"github.com/djcass44/pkgstats/pkg/airutil"
	"github.com/djcass44/pkgstats/pkg/debian"
	"github.com/djcass44/pkgstats/pkg/downloader"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
)

var architecturesCmd = &cobra.Command{
	Use:     "architectures [architecture]",
	Aliases: []string{"archs"},
	Short:   "list the architectures published by the mirror",
	Long:    "list the architectures published by the mirror, or check that a single architecture is published",
	Args:    cobra.MaximumNArgs(1),
	RunE:    architectures,
}

func architectures(cmd *cobra.Command, args []string) error {
	log := logr.FromContextOrDiscard(cmd.Context())

	spec, err := readSpec(cmd)
	if err != nil {
		return err
	}
	target := debian.ReleaseURL(airutil.ExpandEnv(spec.Mirror), spec.Dist)

	dl, err := downloader.NewDownloader(spec.CacheDir)
	if err != nil {
		return &debian.AcquisitionError{URL: target, Err: err}
	}
	rel, err := debian.NewRelease(cmd.Context(), dl, target)
	if err != nil {
		return err
	}
	log.V(1).Info("found release", "suite", rel.Suite, "codename", rel.Codename)

	out := cmd.OutOrStdout()
	if len(args) == 1 {
		if !rel.HasArchitecture(args[0]) {
			return fmt.Errorf("architecture %s is not published by %s (%s)", args[0], rel.Suite, rel.Codename)
		}
		_, _ = fmt.Fprintf(out, "%s (%s): %s\n", rel.Suite, rel.Codename, args[0])
		return nil
	}
	_, _ = fmt.Fprintf(out, "%s (%s)\n", rel.Suite, rel.Codename)
	_, _ = fmt.Fprintf(out, "architectures: %s\n", strings.Join(rel.Architectures, " "))
	_, _ = fmt.Fprintf(out, "components:    %s\n", strings.Join(rel.Components, " "))
	return nil
}
