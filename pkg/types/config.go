package types

import "time"

// MMPerPixel converts image pixels to millimeters (300 DPI).
const MMPerPixel = 0.084666836

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero disables the timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "img2pdf/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// DownloadConfig holds settings for the download stage.
type DownloadConfig struct {
	HTTPConfig `yaml:",inline"`

	// Dir is the directory downloaded images are written to (default ".").
	Dir string `json:"dir" yaml:"dir"`

	// Concurrency bounds the number of downloads in flight. Values below 2
	// download one image at a time.
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// Ledger is the path of the SQLite download ledger. Relative paths are
	// resolved against Dir. Empty disables the ledger.
	Ledger string `json:"ledger" yaml:"ledger"`

	// Headers are extra request headers, typically derived from secrets.
	Headers map[string]string `json:"-" yaml:"-"`
}

// PageSizing selects how page dimensions are derived from images.
type PageSizing string

const (
	// SizePerImage sizes every page to its own image.
	SizePerImage PageSizing = "per-image"
	// SizeFirstImage sizes every page to the first image.
	SizeFirstImage PageSizing = "first-image"
)

// Valid reports whether s names a known sizing mode.
func (s PageSizing) Valid() bool {
	return s == SizePerImage || s == SizeFirstImage
}

// AssemblyConfig holds settings for the document assembler.
type AssemblyConfig struct {
	// PageSizing selects per-image or first-image page sizes (default per-image).
	PageSizing PageSizing `json:"page_size" yaml:"page_size"`

	// MMPerPixel overrides the pixel to millimeter factor. Zero uses MMPerPixel.
	MMPerPixel float64 `json:"mm_per_pixel" yaml:"mm_per_pixel"`

	// Title is the document title. Empty uses the output file's base name.
	Title string `json:"title" yaml:"title"`
}

// LogConfig holds diagnostic logging settings.
type LogConfig struct {
	// Level is a zerolog level name (debug, info, warn, error).
	Level string `json:"level" yaml:"level"`

	// File, when set, sends logs to a rotating file instead of stderr.
	File string `json:"file" yaml:"file"`

	MaxSizeMB  int  `json:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int  `json:"max_backups" yaml:"max_backups"`
	MaxAgeDays int  `json:"max_age_days" yaml:"max_age_days"`
	Compress   bool `json:"compress" yaml:"compress"`
}

// Config groups all settings for a run.
type Config struct {
	// Manifest is the path of the manifest file (default "default.json").
	Manifest string         `json:"json" yaml:"json"`
	Download DownloadConfig `json:"download" yaml:"download"`
	Assembly AssemblyConfig `json:"assemble" yaml:"assemble"`
	Log      LogConfig      `json:"log" yaml:"log"`
}
