// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire downloads manifest images into a local directory.
// Files that already exist are not fetched again; when a ledger is
// attached, existing files are also checked against the recorded hash.
package acquire

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/img2pdf/internal/httputil"
	"github.com/pdiddy/img2pdf/internal/ledger"
	"github.com/pdiddy/img2pdf/internal/logging"
	"github.com/pdiddy/img2pdf/pkg/types"
)

// Downloader fetches images according to Config. A nil Ledger disables
// hash verification.
type Downloader struct {
	Client *http.Client
	Config types.DownloadConfig
	Ledger *ledger.Ledger

	// Out receives progress lines.
	Out io.Writer

	mu sync.Mutex // serializes writes to Out
}

// Result is the outcome of one download.
type Result struct {
	URL      string
	FileName string
	Path     string
	Skipped  bool
	Size     int64
}

// BatchResult holds the outcome of a batch download run.
type BatchResult struct {
	Downloaded int
	Skipped    int
	// Paths lists the local path of every manifest URL, in manifest order.
	Paths   []string
	Results []Result
}

// Total returns the number of distinct files processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped
}

func (d *Downloader) dir() string {
	if d.Config.Dir == "" {
		return "."
	}
	return d.Config.Dir
}

func (d *Downloader) printf(format string, args ...any) {
	if d.Out == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.Out, format, args...)
}

// Download resolves rawURL to a local file and fetches it unless a usable
// copy is already on disk.
func (d *Downloader) Download(ctx context.Context, rawURL string) (Result, error) {
	name, err := FileName(rawURL)
	if err != nil {
		return Result{}, err
	}
	res := Result{URL: rawURL, FileName: name, Path: filepath.Join(d.dir(), name)}

	// stale is set when the file on disk no longer matches its ledger entry.
	stale := false
	if info, statErr := os.Stat(res.Path); statErr == nil {
		reuse, err := d.reusable(ctx, res.Path, name)
		if err != nil {
			return res, err
		}
		if reuse {
			d.printf("skipped: %s (already exists)\n", name)
			logging.Debug("download skipped", "file", name, "url", rawURL)
			res.Skipped = true
			res.Size = info.Size()
			return res, nil
		}
		stale = true
	}

	if err := os.MkdirAll(d.dir(), 0o755); err != nil {
		return res, fmt.Errorf("%w: creating directory %s: %w", types.ErrIO, d.dir(), err)
	}

	d.printf("downloading: %s (%s)\n", name, rawURL)
	start := time.Now()
	sum, size, err := d.fetch(ctx, rawURL, res.Path)
	if err != nil {
		if stale {
			d.forget(ctx, res.Path)
		}
		return res, fmt.Errorf("downloading %s: %w", name, err)
	}
	res.Size = size
	logging.Info("download complete", "file", name, "bytes", size, "elapsed", time.Since(start).String())

	if d.Ledger != nil {
		if err := d.Ledger.Record(ctx, ledger.Entry{
			Path:   res.Path,
			URL:    rawURL,
			SHA256: sum,
			Size:   size,
		}); err != nil {
			return res, fmt.Errorf("%w: %w", types.ErrIO, err)
		}
	}
	return res, nil
}

// reusable reports whether the existing file at path can stand in for a
// fresh download. Without a ledger entry the file is trusted as-is.
func (d *Downloader) reusable(ctx context.Context, path, name string) (bool, error) {
	if d.Ledger == nil {
		return true, nil
	}
	entry, found, err := d.Ledger.Lookup(ctx, path)
	if err != nil {
		return false, fmt.Errorf("%w: %w", types.ErrIO, err)
	}
	if !found {
		return true, nil
	}
	ok, err := entry.Verify(path)
	if err != nil {
		return false, fmt.Errorf("%w: verifying %s: %w", types.ErrIO, name, err)
	}
	if !ok {
		logging.Warn("existing file does not match ledger, fetching again", "file", name, "url", entry.URL)
	}
	return ok, nil
}

// forget drops the ledger entry for a file whose refetch failed, so the
// file left on disk is no longer vouched for.
func (d *Downloader) forget(ctx context.Context, path string) {
	if err := d.Ledger.Forget(context.WithoutCancel(ctx), path); err != nil {
		logging.Error("dropping stale ledger entry", "path", path, "error", err.Error())
	}
}

// fetch downloads rawURL into destPath through a temporary file in the same
// directory, returning the hex SHA-256 and byte count of the body.
func (d *Downloader) fetch(ctx context.Context, rawURL, destPath string) (string, int64, error) {
	resp, err := httputil.Get(ctx, d.Client, rawURL, d.Config.UserAgent, d.Config.Headers)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %w", types.ErrNetwork, err)
	}
	defer resp.Body.Close()

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".img2pdf-*.tmp")
	if err != nil {
		return "", 0, fmt.Errorf("%w: creating temp file: %w", types.ErrIO, err)
	}
	tmpPath := tmpFile.Name()

	h := sha256.New()
	n, copyErr := io.Copy(io.MultiWriter(tmpFile, h), resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return "", 0, fmt.Errorf("%w: writing download: %w", classifyCopyError(copyErr), copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return "", 0, fmt.Errorf("%w: closing temp file: %w", types.ErrIO, closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return "", 0, fmt.Errorf("%w: renaming temp file: %w", types.ErrIO, err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// classifyCopyError picks ErrNetwork for failures reading the response and
// ErrIO for failures writing the file.
func classifyCopyError(err error) error {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return types.ErrIO
	}
	return types.ErrNetwork
}

// DownloadAll downloads every URL and returns the local paths in manifest
// order. URLs that resolve to the same file name are fetched once. With
// Concurrency below 2 downloads run one after another; otherwise at most
// Concurrency run at a time. The first failure cancels the remaining work
// and is returned.
func (d *Downloader) DownloadAll(ctx context.Context, urls []string) (BatchResult, error) {
	names, err := FileNames(urls)
	if err != nil {
		return BatchResult{}, err
	}

	// First URL per file name, in manifest order.
	var unique []string
	firstIndex := make(map[string]int, len(names))
	for i, name := range names {
		if _, seen := firstIndex[name]; seen {
			logging.Warn("duplicate file name in manifest, reusing earlier download",
				"file", name, "url", urls[i])
			continue
		}
		firstIndex[name] = len(unique)
		unique = append(unique, urls[i])
	}

	results := make([]Result, len(unique))
	if d.Config.Concurrency < 2 {
		for i, u := range unique {
			res, err := d.Download(ctx, u)
			if err != nil {
				return BatchResult{}, err
			}
			results[i] = res
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(d.Config.Concurrency)
		for i, u := range unique {
			i, u := i, u
			g.Go(func() error {
				res, err := d.Download(gctx, u)
				if err != nil {
					return err
				}
				results[i] = res
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return BatchResult{}, err
		}
	}

	batch := BatchResult{Results: results, Paths: make([]string, len(urls))}
	for _, r := range results {
		if r.Skipped {
			batch.Skipped++
		} else {
			batch.Downloaded++
		}
	}
	for i, name := range names {
		batch.Paths[i] = results[firstIndex[name]].Path
	}

	d.printf("\nDownload summary: %d downloaded, %d skipped (total: %d)\n",
		batch.Downloaded, batch.Skipped, batch.Total())
	return batch, nil
}
