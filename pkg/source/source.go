// Package source opens raw event record streams from local files or HTTP
// URLs, including the zipped daily-export form the upstream dataset ships.
package source

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/mdekker/subject-tally/pkg/caching"
)

// Source locates one stream of raw records. Opening it is fatal business:
// a source that cannot be read aborts the whole run.
type Source struct {
	location string
	client   *http.Client
	cache    *caching.Cache
}

// New returns a source for a local path or an http(s) URL. cache may be nil
// to disable download caching.
func New(location string, cache *caching.Cache) *Source {
	return &Source{
		location: location,
		client:   &http.Client{},
		cache:    cache,
	}
}

// Name returns the source location for logs and run history.
func (s *Source) Name() string { return s.location }

// Open returns a reader over the raw record lines. Zip archives are opened
// to their first entry (the daily export is a single CSV inside a zip).
func (s *Source) Open(ctx context.Context) (io.ReadCloser, error) {
	data, err := s.readAll(ctx)
	if err != nil {
		return nil, err
	}
	if isZip(data) {
		return firstZipEntry(data)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *Source) readAll(ctx context.Context) ([]byte, error) {
	if strings.HasPrefix(s.location, "http://") || strings.HasPrefix(s.location, "https://") {
		return s.fetch(ctx)
	}
	data, err := os.ReadFile(s.location)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return data, nil
}

func (s *Source) fetch(ctx context.Context) ([]byte, error) {
	if s.cache != nil {
		if data, ok := s.cache.Get(s.location); ok {
			return data, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.location, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch input, status code: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if s.cache != nil {
		// A failed cache write only costs a refetch next run.
		_ = s.cache.Set(s.location, data)
	}
	return data, nil
}

// isZip sniffs the zip local-file-header magic.
func isZip(data []byte) bool {
	return len(data) >= 4 && bytes.Equal(data[:4], []byte("PK\x03\x04"))
}

func firstZipEntry(data []byte) (io.ReadCloser, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open zip archive: %w", err)
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open zip entry %s: %w", f.Name, err)
		}
		return rc, nil
	}
	return nil, fmt.Errorf("zip archive has no file entries")
}
