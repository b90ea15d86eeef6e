// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/img2pdf/internal/manifest"
	"github.com/pdiddy/img2pdf/pkg/types"
)

// execute runs the CLI with args and returns what it printed. Flag values
// persist between calls, so every test sets the flags it relies on.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func servePNGs(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		img := image.NewNRGBA(image.Rect(0, 0, 30, 60))
		for i := range img.Pix {
			img.Pix[i] = 0xff
		}
		img.Set(0, 0, color.NRGBA{A: 255})
		png.Encode(w, img)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "img2pdf dev\n", out)
}

func TestInitWritesManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scans.yaml")

	out, err := execute(t, "init", "--json", path, "--output", "scans.pdf",
		"https://example.com/a.png", "https://example.com/b.png")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path+" (2 images)")

	m, err := manifest.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "scans.pdf", m.FileName)
	assert.Equal(t, 2, m.Images.ImageCount)
	assert.Equal(t, []string{"https://example.com/a.png", "https://example.com/b.png"}, m.Images.URLs)

	_, err = execute(t, "init", "--json", path, "https://example.com/c.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestInitRejectsInvalidURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.json")
	_, err := execute(t, "init", "--json", path, "not a url")
	require.ErrorIs(t, err, types.ErrInvalidURL)
	assert.NoFileExists(t, path)
}

func TestRootRunsPipelineAndInspect(t *testing.T) {
	srv := servePNGs(t)
	dir := t.TempDir()
	mpath := filepath.Join(dir, "default.json")
	out := filepath.Join(dir, "book.pdf")

	_, err := execute(t, "init", "--json", mpath, "--output", out, "--force",
		srv.URL+"/p/1.png", srv.URL+"/p/2.png")
	require.NoError(t, err)

	text, err := execute(t, "-j", mpath, "--dir", dir, "--ledger", "", "--concurrency", "2")
	require.NoError(t, err)
	assert.Contains(t, text, "downloading: 1.png")
	assert.Contains(t, text, "assembled: "+out+" (2 pages)")
	assert.FileExists(t, filepath.Join(dir, "2.png"))
	assert.NoFileExists(t, filepath.Join(dir, defaultLedger))

	text, err = execute(t, "inspect", out)
	require.NoError(t, err)
	assert.Contains(t, text, out+": 2 pages")
	assert.Contains(t, text, "page 2: 2.54 x 5.08 mm")

	text, err = execute(t, "measure", filepath.Join(dir, "1.png"))
	require.NoError(t, err)
	assert.Contains(t, text, "png 30x60 px, 2.54 x 5.08 mm")
}

func TestRootMissingManifest(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "-j", filepath.Join(dir, "missing.json"), "--dir", dir, "--ledger", "")
	require.ErrorIs(t, err, types.ErrIO)
}

func TestAssembleRequiresOutput(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "assemble", filepath.Join(dir, "page.png"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "output" not set`)
	assert.NoFileExists(t, filepath.Join(dir, "page.pdf"))
}

func TestAssembleCommand(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "page.png")
	f, err := os.Create(img)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewGray(image.Rect(0, 0, 30, 60))))
	require.NoError(t, f.Close())
	out := filepath.Join(dir, "page.pdf")
	t.Cleanup(func() {
		flag := assembleCmd.Flags().Lookup("output")
		flag.Value.Set("")
		flag.Changed = false
	})

	text, err := execute(t, "assemble", "-o", out, img, img)
	require.NoError(t, err)
	assert.Contains(t, text, "assembled: "+out+" (2 pages)")
	assert.FileExists(t, out)
}

func TestLoadConfigEnvironment(t *testing.T) {
	initConfig()
	t.Setenv("IMG2PDF_ASSEMBLE_PAGE_SIZE", "first-image")
	t.Setenv("IMG2PDF_HTTP_USER_AGENT", "custom/1.0")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, types.SizeFirstImage, cfg.Assembly.PageSizing)
	assert.Equal(t, "custom/1.0", cfg.Download.UserAgent)
}

func TestLoadConfigRejectsUnknownPageSize(t *testing.T) {
	initConfig()
	t.Setenv("IMG2PDF_ASSEMBLE_PAGE_SIZE", "letter")

	_, err := loadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "letter")
}

func TestLoadConfigUsesSecrets(t *testing.T) {
	loadedSecrets = map[string]string{"bearer-token": "tok"}
	t.Cleanup(func() { loadedSecrets = nil })

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", cfg.Download.Headers["Authorization"])
}

func TestResolveConcurrency(t *testing.T) {
	assert.Equal(t, 1, resolveConcurrency(1))
	assert.Equal(t, 5, resolveConcurrency(5))
	assert.Equal(t, -1, resolveConcurrency(-1))

	auto := resolveConcurrency(0)
	assert.GreaterOrEqual(t, auto, 1)
	assert.LessOrEqual(t, auto, maxAutoConcurrency)
	assert.LessOrEqual(t, auto, max(runtime.GOMAXPROCS(0)/2, 1))
}
