package debian

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/djcass44/pkgstats/pkg/archiveutil"
	"github.com/djcass44/pkgstats/pkg/contents"
	"github.com/go-logr/logr"
)

const (
	DefaultMirror    = "http://ftp.uk.debian.org/debian"
	DefaultDist      = "stable"
	DefaultComponent = "main"
)

// ContentsURL returns the location of the Contents index for
// an architecture.
//
// https://wiki.debian.org/DebianRepository/Format#A.22Contents.22_indices
func ContentsURL(mirror, dist, component, arch string) string {
	return fmt.Sprintf("%s/dists/%s/%s/Contents-%s.gz", strings.TrimSuffix(mirror, "/"), dist, component, arch)
}

// NewContentsIndex downloads the Contents index at target and
// opens it for reading. The caller must Close the index.
func NewContentsIndex(ctx context.Context, fetcher Fetcher, target string) (*ContentsIndex, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("url", target)
	log.V(1).Info("downloading contents index")

	path, err := fetcher.Download(ctx, target)
	if err != nil {
		return nil, &AcquisitionError{URL: target, Err: err}
	}
	idx := &ContentsIndex{
		url:     target,
		path:    path,
		fetcher: fetcher,
	}

	f, err := os.Open(path)
	if err != nil {
		_ = idx.Close()
		return nil, &AcquisitionError{URL: target, Err: err}
	}
	idx.closers = append(idx.closers, f)

	dec, err := archiveutil.Decompress(ctx, f)
	if err != nil {
		log.V(1).Info("failed to open contents index", "path", path)
		_ = idx.Close()
		return nil, &DecompressionError{URL: target, Err: err}
	}
	idx.closers = append(idx.closers, dec)
	idx.Reader = dec

	log.V(1).Info("successfully opened contents index", "path", path)
	return idx, nil
}

// Count reads the whole index and returns the number of files
// owned by each package. Any read failure is reported as a
// DecompressionError.
func (idx *ContentsIndex) Count(ctx context.Context, workers int) (contents.Counts, error) {
	counts, err := contents.CountParallel(ctx, idx.Reader, workers)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &DecompressionError{URL: idx.url, Err: err}
	}
	return counts, nil
}

func (idx *ContentsIndex) URL() string {
	return idx.url
}

// Close releases the decompressor and the downloaded file.
func (idx *ContentsIndex) Close() error {
	var errs []error
	// close in reverse order of opening
	for i := len(idx.closers) - 1; i >= 0; i-- {
		errs = append(errs, idx.closers[i].Close())
	}
	idx.closers = nil
	if idx.path != "" {
		idx.fetcher.Release(context.Background(), idx.path)
		idx.path = ""
	}
	return errors.Join(errs...)
}
