// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Manifest names the output document and lists the images that make it up.
type Manifest struct {
	// FileName is the path of the PDF to write (e.g. "report.pdf").
	FileName string `json:"fileName" yaml:"fileName"`

	// Images holds the ordered image URLs.
	Images ImageList `json:"convertFileJson" yaml:"convertFileJson"`
}

// ImageList is the "convertFileJson" block of a manifest.
type ImageList struct {
	// ImageCount is the declared number of images. Zero means undeclared.
	ImageCount int `json:"imageCount,omitempty" yaml:"imageCount,omitempty"`

	// URLs lists image URLs in page order.
	URLs []string `json:"images" yaml:"images"`
}

// PageSize is a page's physical size in millimeters.
type PageSize struct {
	WidthMM  float64 `json:"width_mm" yaml:"width_mm"`
	HeightMM float64 `json:"height_mm" yaml:"height_mm"`
}

// PageSizeFromPixels converts pixel dimensions to millimeters.
func PageSizeFromPixels(width, height int, mmPerPixel float64) PageSize {
	return PageSize{
		WidthMM:  float64(width) * mmPerPixel,
		HeightMM: float64(height) * mmPerPixel,
	}
}
