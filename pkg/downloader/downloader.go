package downloader

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/hashicorp/go-getter"
)

type Downloader struct {
	cacheDir string
}

// NewDownloader creates a Downloader that stores files in
// cacheDir. If cacheDir is empty, files are written to the
// system temporary directory and should be removed with
// Release once they are no longer needed.
func NewDownloader(cacheDir string) (*Downloader, error) {
	if cacheDir != "" {
		if err := os.MkdirAll(cacheDir, 0755); err != nil {
			return nil, err
		}
	}
	return &Downloader{cacheDir: cacheDir}, nil
}

// Cached reports whether downloaded files are kept between runs.
func (d *Downloader) Cached() bool {
	return d.cacheDir != ""
}

func (d *Downloader) Download(ctx context.Context, src string) (string, error) {
	log := logr.FromContextOrDiscard(ctx)
	log.Info("downloading file", "src", src)

	uri, err := url.Parse(src)
	if err != nil {
		log.Error(err, "failed to parse url")
		return "", err
	}

	dst := d.destination(src, uri)
	// go-getter resumes into an existing file, so every download
	// starts from a fresh file and replaces the cached copy once
	// it is complete
	tmp := dst
	if d.Cached() {
		tmp = d.staging(uri)
	}
	log.V(1).Info("preparing to download file", "dst", dst, "tmp", tmp)

	ok := false
	defer func() {
		if !ok {
			_ = os.Remove(tmp)
		}
	}()

	client := &getter.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  tmp,
		Mode: getter.ClientModeFile,
		// the caller decides how to decompress
		// the file, so go-getter must not
		Decompressors:   map[string]getter.Decompressor{},
		DisableSymlinks: true,
	}
	if err := client.Get(); err != nil {
		log.Error(err, "failed to download file")
		return "", err
	}
	if err := os.Chmod(tmp, 0664); err != nil {
		log.Error(err, "failed to update file permissions", "file", tmp)
		return "", err
	}

	digest, err := Sha256(tmp)
	if err != nil {
		return "", fmt.Errorf("hashing download: %w", err)
	}
	if tmp != dst {
		if err := os.Rename(tmp, dst); err != nil {
			log.Error(err, "failed to move download into the cache", "file", tmp, "dst", dst)
			return "", err
		}
	}
	ok = true
	log.V(1).Info("downloaded file", "dst", dst, "sha256", digest)

	return dst, nil
}

// Release removes a file returned by Download, unless it
// belongs to the cache.
func (d *Downloader) Release(ctx context.Context, path string) {
	if d.Cached() {
		return
	}
	log := logr.FromContextOrDiscard(ctx)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Error(err, "failed to remove temporary file", "file", path)
		return
	}
	log.V(2).Info("removed temporary file", "file", path)
}

// destination returns a predictable location inside the cache
// so that repeated downloads of the same url land in the same
// file, or a unique temporary file when there is no cache.
func (d *Downloader) destination(src string, uri *url.URL) string {
	if !d.Cached() {
		return filepath.Join(os.TempDir(), fmt.Sprintf("%s-%s", uuid.NewString(), baseName(uri)))
	}
	return filepath.Join(d.cacheDir, fmt.Sprintf("%s-%s", HashString(src), baseName(uri)))
}

// staging returns a unique file next to the cached destination
// so that it can be renamed over it.
func (d *Downloader) staging(uri *url.URL) string {
	return filepath.Join(d.cacheDir, fmt.Sprintf(".%s-%s.part", uuid.NewString(), baseName(uri)))
}

func baseName(uri *url.URL) string {
	base := path.Base(uri.Path)
	if base == "." || base == "/" {
		return "download"
	}
	return base
}
