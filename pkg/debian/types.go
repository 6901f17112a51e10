package debian

import (
	"context"
	"fmt"
	"io"
)

// Fetcher retrieves a remote file to a local path.
type Fetcher interface {
	Download(ctx context.Context, src string) (string, error)
	Release(ctx context.Context, path string)
}

// ContentsIndex is the decompressed content of a Contents
// index file.
type ContentsIndex struct {
	io.Reader

	url     string
	path    string
	closers []io.Closer
	fetcher Fetcher
}

// Release holds the fields of a repository Release file that
// describe what the release contains.
type Release struct {
	Origin        string
	Suite         string
	Codename      string
	Architectures []string `delim:" "`
	Components    []string `delim:" "`
}

// AcquisitionError indicates that a file could not be
// retrieved from the mirror.
type AcquisitionError struct {
	URL string
	Err error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("retrieving %s: %s", e.URL, e.Err)
}

func (e *AcquisitionError) Unwrap() error {
	return e.Err
}

// DecompressionError indicates that a retrieved file could
// not be decompressed.
type DecompressionError struct {
	URL string
	Err error
}

func (e *DecompressionError) Error() string {
	return fmt.Sprintf("decompressing %s: %s", e.URL, e.Err)
}

func (e *DecompressionError) Unwrap() error {
	return e.Err
}
