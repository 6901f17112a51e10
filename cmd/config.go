package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/djcass44/pkgstats/cmd/cache"
	statsv1 "github.com/djcass44/pkgstats/pkg/api/v1"
	"github.com/djcass44/pkgstats/pkg/contents"
	"github.com/djcass44/pkgstats/pkg/debian"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/util/yaml"
)

func defaultSpec() statsv1.StatisticsSpec {
	return statsv1.StatisticsSpec{
		Mirror:    debian.DefaultMirror,
		Dist:      debian.DefaultDist,
		Component: debian.DefaultComponent,
		Top:       defaultTop,
		Width:     contents.DefaultWidth,
		Workers:   1,
		Output:    statsv1.OutputText,
	}
}

// readSpec builds the effective configuration. Values from the
// configuration file override the defaults and flags given on
// the command line override both.
func readSpec(cmd *cobra.Command) (statsv1.StatisticsSpec, error) {
	log := logr.FromContextOrDiscard(cmd.Context())
	spec := defaultSpec()

	configPath, _ := cmd.Flags().GetString(flagConfig)
	if configPath != "" {
		cfg, err := readConfig(configPath)
		if err != nil {
			return statsv1.StatisticsSpec{}, fmt.Errorf("reading config %s: %w", configPath, err)
		}
		log.V(1).Info("read configuration file", "path", configPath, "name", cfg.Name)
		mergeSpec(&spec, cfg.Spec)
	}

	flags := cmd.Flags()
	if flags.Changed(flagMirror) {
		spec.Mirror, _ = flags.GetString(flagMirror)
	}
	if flags.Changed(flagDist) {
		spec.Dist, _ = flags.GetString(flagDist)
	}
	if flags.Changed(flagComponent) {
		spec.Component, _ = flags.GetString(flagComponent)
	}
	if flags.Changed(flagTop) {
		spec.Top, _ = flags.GetInt(flagTop)
	}
	if flags.Changed(flagWidth) {
		spec.Width, _ = flags.GetInt(flagWidth)
	}
	if flags.Changed(flagWorkers) {
		spec.Workers, _ = flags.GetInt(flagWorkers)
	}
	if flags.Changed(flagOutput) {
		output, _ := flags.GetString(flagOutput)
		spec.Output = statsv1.OutputFormat(output)
	}
	useCache, _ := flags.GetBool(flagCache)
	if flags.Changed(flagCacheDir) {
		spec.CacheDir, _ = flags.GetString(flagCacheDir)
		useCache = true
	}
	if useCache || spec.CacheDir != "" {
		spec.CacheDir = cache.Dir(spec.CacheDir)
	}

	if err := validateSpec(spec); err != nil {
		return statsv1.StatisticsSpec{}, &usageError{cmd: cmd, err: err}
	}
	log.V(2).Info("resolved configuration", "spec", spec)
	return spec, nil
}

// mergeSpec copies every value that is set in src into dst.
func mergeSpec(dst *statsv1.StatisticsSpec, src statsv1.StatisticsSpec) {
	if src.Mirror != "" {
		dst.Mirror = src.Mirror
	}
	if src.Dist != "" {
		dst.Dist = src.Dist
	}
	if src.Component != "" {
		dst.Component = src.Component
	}
	if src.Top != 0 {
		dst.Top = src.Top
	}
	if src.Width != 0 {
		dst.Width = src.Width
	}
	if src.Workers != 0 {
		dst.Workers = src.Workers
	}
	if src.Output != "" {
		dst.Output = src.Output
	}
	if src.CacheDir != "" {
		dst.CacheDir = src.CacheDir
	}
}

func validateSpec(spec statsv1.StatisticsSpec) error {
	switch {
	case spec.Top <= 0:
		return fmt.Errorf("--%s must be greater than zero, got %d", flagTop, spec.Top)
	case spec.Width <= 0:
		return fmt.Errorf("--%s must be greater than zero, got %d", flagWidth, spec.Width)
	case spec.Workers <= 0:
		return fmt.Errorf("--%s must be greater than zero, got %d", flagWorkers, spec.Workers)
	case spec.Mirror == "":
		return errors.New("mirror must not be empty")
	}
	switch spec.Output {
	case statsv1.OutputText, statsv1.OutputJSON:
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", spec.Output)
	}
}

func readConfig(s string) (statsv1.Statistics, error) {
	f, err := os.Open(s)
	if err != nil {
		return statsv1.Statistics{}, err
	}
	defer f.Close()

	var config statsv1.Statistics
	if err := yaml.NewYAMLOrJSONDecoder(f, 4).Decode(&config); err != nil {
		return statsv1.Statistics{}, err
	}
	return config, nil
}
