package archiveutil

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-logr/logr"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// sniffLen is the number of bytes inspected to detect the
// compression format.
const sniffLen = 3072

var ErrUnsupported = errors.New("unknown or unsupported compression format")

var (
	ContentTypesGzip = []string{
		"application/gzip",
		"application/x-gzip",
	}
	ContentTypesXZ = []string{
		"application/x-xz",
	}
	ContentTypesZstd = []string{
		"application/zstd",
	}
)

// Decompress detects the compression format of r from its
// leading bytes and returns a reader of the uncompressed data.
//
// gzip, xz and zstandard streams are supported. Anything
// else returns ErrUnsupported.
func Decompress(ctx context.Context, r io.Reader) (io.ReadCloser, error) {
	log := logr.FromContextOrDiscard(ctx)
	br := bufio.NewReaderSize(r, sniffLen)
	// a short read just means a small file, so
	// we detect on whatever we got
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	contentType := mimetype.Detect(head).String()
	log.V(2).Info("detected content type", "type", contentType, "bytes", len(head))

	switch {
	case isGzipped(contentType):
		log.V(3).Info("decompressing gzip stream")
		dec, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("opening gzip stream: %w", err)
		}
		return dec, nil
	case mimetype.EqualsAny(contentType, ContentTypesXZ...):
		log.V(3).Info("decompressing xz stream")
		dec, err := xz.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("opening xz stream: %w", err)
		}
		return io.NopCloser(dec), nil
	case mimetype.EqualsAny(contentType, ContentTypesZstd...):
		log.V(3).Info("decompressing zstandard stream")
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("opening zstandard stream: %w", err)
		}
		return dec.IOReadCloser(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, contentType)
	}
}

func isGzipped(s string) bool {
	return mimetype.EqualsAny(s, ContentTypesGzip...)
}
