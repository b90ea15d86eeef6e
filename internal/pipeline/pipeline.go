// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs a manifest end to end: load it, download every
// image, then assemble the document the manifest names.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/pdiddy/img2pdf/internal/acquire"
	"github.com/pdiddy/img2pdf/internal/assemble"
	"github.com/pdiddy/img2pdf/internal/httputil"
	"github.com/pdiddy/img2pdf/internal/ledger"
	"github.com/pdiddy/img2pdf/internal/logging"
	"github.com/pdiddy/img2pdf/internal/manifest"
	"github.com/pdiddy/img2pdf/pkg/types"
)

// Options configures a run.
type Options struct {
	// ManifestPath is the manifest to load.
	ManifestPath string

	Download types.DownloadConfig
	Assembly types.AssemblyConfig

	// Client overrides the HTTP client built from Download.HTTPConfig.
	Client *http.Client
}

// Summary reports what a run did.
type Summary struct {
	Manifest *types.Manifest
	Batch    acquire.BatchResult
	Document *assemble.Result
}

// LedgerPath returns the ledger location for cfg, or "" when the ledger is
// disabled. Relative paths are resolved against the download directory.
func LedgerPath(cfg types.DownloadConfig) string {
	if cfg.Ledger == "" {
		return ""
	}
	if filepath.IsAbs(cfg.Ledger) {
		return cfg.Ledger
	}
	dir := cfg.Dir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, cfg.Ledger)
}

// Fetch loads the manifest and downloads its images without assembling.
func Fetch(ctx context.Context, opts Options, w io.Writer) (*types.Manifest, acquire.BatchResult, error) {
	m, err := manifest.Load(opts.ManifestPath)
	if err != nil {
		return nil, acquire.BatchResult{}, err
	}
	logging.Info("manifest loaded", "path", opts.ManifestPath, "output", m.FileName, "images", len(m.Images.URLs))

	d, closeLedger, err := newDownloader(opts, w)
	if err != nil {
		return m, acquire.BatchResult{}, err
	}
	defer closeLedger()

	batch, err := d.DownloadAll(ctx, m.Images.URLs)
	if err != nil {
		return m, acquire.BatchResult{}, err
	}
	return m, batch, nil
}

// Run executes the full pipeline. The first failure aborts the run and is
// returned; no document is written in that case.
func Run(ctx context.Context, opts Options, w io.Writer) (*Summary, error) {
	m, batch, err := Fetch(ctx, opts, w)
	if err != nil {
		return nil, err
	}

	doc, err := assemble.Assemble(m.FileName, batch.Paths, opts.Assembly)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "assembled: %s (%d pages)\n", doc.Path, len(doc.Pages))

	return &Summary{Manifest: m, Batch: batch, Document: doc}, nil
}

func newDownloader(opts Options, w io.Writer) (*acquire.Downloader, func(), error) {
	client := opts.Client
	if client == nil {
		client = httputil.NewClient(opts.Download.HTTPConfig)
	}
	d := &acquire.Downloader{Client: client, Config: opts.Download, Out: w}

	path := LedgerPath(opts.Download)
	if path == "" {
		return d, func() {}, nil
	}
	l, err := ledger.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", types.ErrIO, err)
	}
	d.Ledger = l
	logging.Debug("ledger open", "path", l.Path())
	return d, func() {
		if err := l.Close(); err != nil {
			logging.Error("closing ledger", "path", l.Path(), "error", err.Error())
		}
	}, nil
}
