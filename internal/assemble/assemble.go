// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assemble builds a multi-page PDF with one image per page.
//
// Each page is sized to an image's pixel dimensions converted to
// millimeters and the image covers the page completely. JPEG, GIF and
// 8-bit non-interlaced PNG are embedded as they are; any other decodable
// raster (BMP, TIFF, WebP, 16-bit or interlaced PNG) is re-encoded as
// 8-bit PNG first.
package assemble

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/jung-kurt/gofpdf"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/pdiddy/img2pdf/internal/logging"
	"github.com/pdiddy/img2pdf/pkg/types"
)

const creator = "img2pdf"

func mmPerPixel(v float64) float64 {
	if v <= 0 {
		return types.MMPerPixel
	}
	return v
}

// Page describes one page of an assembled document.
type Page struct {
	Source   string
	Format   string
	WidthPx  int
	HeightPx int
	Size     types.PageSize
}

// Result describes a written document.
type Result struct {
	Path  string
	Pages []Page
}

// source is an image ready to be embedded.
type source struct {
	page    Page
	data    []byte
	pdfType string
}

// Measure reads the image at path and returns its pixel dimensions and
// physical size at factor mm per pixel (types.MMPerPixel when zero).
func Measure(path string, factor float64) (Page, error) {
	src, err := load(path, factor, false)
	if err != nil {
		return Page{}, err
	}
	return src.page, nil
}

// Assemble writes a PDF to output with one page per image in paths, in
// order. Nothing is written unless every image decodes and the document
// serializes.
func Assemble(output string, paths []string, opts types.AssemblyConfig) (*Result, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: the manifest lists no images, refusing to write an empty %s",
			types.ErrNoImages, output)
	}
	if strings.TrimSpace(output) == "" {
		return nil, fmt.Errorf("%w: empty output path", types.ErrIO)
	}
	sizing := opts.PageSizing
	if sizing == "" {
		sizing = types.SizePerImage
	}
	if !sizing.Valid() {
		return nil, fmt.Errorf("unknown page sizing %q (want %s or %s)", sizing, types.SizePerImage, types.SizeFirstImage)
	}

	sources := make([]*source, len(paths))
	loaded := make(map[string]*source, len(paths))
	for i, p := range paths {
		if src, ok := loaded[p]; ok {
			sources[i] = src
			continue
		}
		src, err := load(p, opts.MMPerPixel, true)
		if err != nil {
			return nil, err
		}
		sources[i] = src
		loaded[p] = src
	}

	pages := make([]Page, len(sources))
	for i, src := range sources {
		pages[i] = src.page
		if sizing == types.SizeFirstImage {
			pages[i].Size = sources[0].page.Size
		}
	}

	doc, err := render(sources, pages, titleFor(output, opts.Title))
	if err != nil {
		return nil, err
	}
	if err := writeAtomic(output, doc); err != nil {
		return nil, err
	}

	logging.Info("document written", "file", output, "pages", len(pages), "sizing", string(sizing))
	return &Result{Path: output, Pages: pages}, nil
}

func titleFor(output, title string) string {
	if title != "" {
		return title
	}
	base := filepath.Base(output)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// load reads and decodes the image at path. When embed is false only the
// header is parsed.
func load(path string, mm float64, embed bool) (*source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading image %s: %w", types.ErrIO, path, err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", types.ErrDecode, path, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: %s: zero-sized image", types.ErrDecode, path)
	}

	src := &source{
		page: Page{
			Source:   path,
			Format:   format,
			WidthPx:  cfg.Width,
			HeightPx: cfg.Height,
			Size:     types.PageSizeFromPixels(cfg.Width, cfg.Height, mmPerPixel(mm)),
		},
		data: data,
	}
	if !embed {
		return src, nil
	}

	// A full decode catches truncated or corrupt pixel data that the
	// header parse above does not see.
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", types.ErrDecode, path, err)
	}

	src.pdfType = nativeType(format, data)
	if src.pdfType == "" {
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, imaging.Clone(img), imaging.PNG); err != nil {
			return nil, fmt.Errorf("%w: re-encoding %s: %w", types.ErrDecode, path, err)
		}
		logging.Debug("image re-encoded as png", "file", path, "format", format)
		src.data = buf.Bytes()
		src.pdfType = "PNG"
	}
	return src, nil
}

// nativeType returns the gofpdf image type for formats it can embed
// directly, or "" when the image must be re-encoded.
func nativeType(format string, data []byte) string {
	switch format {
	case "jpeg":
		return "JPG"
	case "gif":
		return "GIF"
	case "png":
		// IHDR: bit depth at byte 24, interlace method at byte 28.
		if len(data) > 28 && data[24] <= 8 && data[28] == 0 {
			return "PNG"
		}
	}
	return ""
}

// render lays out one page per source and returns the serialized PDF.
func render(sources []*source, pages []Page, title string) ([]byte, error) {
	first := pages[0].Size
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: first.WidthMM, Ht: first.HeightMM},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(title, true)
	pdf.SetCreator(creator, false)
	pdf.SetCreationDate(time.Now())

	for i, src := range sources {
		size := pages[i].Size
		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: size.WidthMM, Ht: size.HeightMM})

		opts := gofpdf.ImageOptions{ImageType: src.pdfType}
		name := src.page.Source
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(src.data))
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("%w: embedding %s: %w", types.ErrDecode, name, err)
		}
		pdf.ImageOptions(name, 0, 0, size.WidthMM, size.HeightMM, false, opts, 0, "")
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("placing %s on page %d: %w", name, i+1, err)
		}
	}

	if got := pdf.PageCount(); got != len(sources) {
		return nil, fmt.Errorf("document has %d pages, want %d", got, len(sources))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("serializing document: %w", err)
	}
	return buf.Bytes(), nil
}

// writeAtomic writes data to path through a temporary file in the same
// directory so that a failed run never leaves a partial document.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating directory %s: %w", types.ErrIO, dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".img2pdf-*.pdf")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %w", types.ErrIO, err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: writing %s: %w", types.ErrIO, path, writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: closing %s: %w", types.ErrIO, path, closeErr)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %w", types.ErrIO, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: renaming temp file: %w", types.ErrIO, err)
	}
	return nil
}
