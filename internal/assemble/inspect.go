// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assemble

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/pdiddy/img2pdf/pkg/types"
)

const mmPerPoint = 25.4 / 72

func init() {
	// Keep pdfcpu from creating a configuration directory under the
	// user's config home.
	model.ConfigPath = "disable"
}

// Inspect reads the PDF at path and returns the media box size of every
// page, in page order.
func Inspect(path string) ([]types.PageSize, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", types.ErrIO, path, err)
	}
	defer f.Close()

	dims, err := api.PageDims(f, model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("%w: reading pages of %s: %w", types.ErrDecode, path, err)
	}

	sizes := make([]types.PageSize, len(dims))
	for i, d := range dims {
		sizes[i] = types.PageSize{
			WidthMM:  d.Width * mmPerPoint,
			HeightMM: d.Height * mmPerPoint,
		}
	}
	return sizes, nil
}
