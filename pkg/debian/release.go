package debian

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/go-logr/logr"
	"pault.ag/go/debian/control"
)

// ReleaseURL returns the location of the unsigned Release file
// of a distribution.
func ReleaseURL(mirror, dist string) string {
	return fmt.Sprintf("%s/dists/%s/Release", strings.TrimSuffix(mirror, "/"), dist)
}

// NewRelease downloads and decodes the Release file at target.
func NewRelease(ctx context.Context, fetcher Fetcher, target string) (*Release, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("url", target)
	log.V(1).Info("downloading release file")

	path, err := fetcher.Download(ctx, target)
	if err != nil {
		return nil, &AcquisitionError{URL: target, Err: err}
	}
	defer fetcher.Release(ctx, path)

	rel, err := readRelease(path)
	if err != nil {
		return nil, fmt.Errorf("decoding release file: %w", err)
	}
	log.V(1).Info("successfully decoded release file", "suite", rel.Suite, "architectures", len(rel.Architectures))
	return rel, nil
}

func readRelease(path string) (*Release, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := control.NewDecoder(f, nil)
	if err != nil {
		return nil, err
	}
	var out Release
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// HasArchitecture reports whether the release publishes
// packages for arch.
func (r *Release) HasArchitecture(arch string) bool {
	return slices.Contains(r.Architectures, arch)
}
