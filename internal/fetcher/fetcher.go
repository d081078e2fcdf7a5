// Package fetcher downloads remote datasets and streams CSV rows from them.
package fetcher

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to the given path. Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}

// IsRemote reports whether source is an http(s) URL rather than a local path.
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Open returns a reader for source, downloading it when it is an http(s) URL
// and opening it from disk otherwise. A "file://" prefix is accepted.
func Open(ctx context.Context, f Fetcher, source string) (io.ReadCloser, error) {
	if source == "" {
		return nil, eris.New("fetcher: empty source")
	}
	if IsRemote(source) {
		if f == nil {
			return nil, eris.Errorf("fetcher: no http fetcher for %s", source)
		}
		return f.Download(ctx, source)
	}

	file, err := os.Open(strings.TrimPrefix(source, "file://"))
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: open %s", source)
	}
	return file, nil
}
