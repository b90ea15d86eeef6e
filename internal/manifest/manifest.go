// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package manifest loads the JSON or YAML manifest that drives a run.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/img2pdf/pkg/types"
)

// Format identifies the manifest serialization.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// FormatFor picks the decoder from the file extension. Anything that is not
// .yaml or .yml is treated as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// rawManifest mirrors types.Manifest with pointer fields so that missing
// keys can be told apart from zero values.
type rawManifest struct {
	FileName *string    `json:"fileName" yaml:"fileName"`
	Images   *rawImages `json:"convertFileJson" yaml:"convertFileJson"`
}

type rawImages struct {
	ImageCount *int      `json:"imageCount" yaml:"imageCount"`
	URLs       *[]string `json:"images" yaml:"images"`
}

// Load reads and parses the manifest at path.
func Load(path string) (*types.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading manifest %s: %w", types.ErrIO, path, err)
	}
	m, err := Parse(data, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse decodes manifest bytes in the given format and checks its shape.
func Parse(data []byte, format Format) (*types.Manifest, error) {
	var raw rawManifest
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	default:
		err = decodeJSON(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %w", types.ErrParse, format, err)
	}
	return raw.toManifest()
}

// decodeJSON fills raw from a single JSON document. Trailing data is an
// error and keys match exactly; encoding/json alone folds key case.
func decodeJSON(data []byte, raw *rawManifest) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return err
	}
	if v, ok := top["fileName"]; ok {
		if err := json.Unmarshal(v, &raw.FileName); err != nil {
			return fmt.Errorf("fileName: %w", err)
		}
	}
	v, ok := top["convertFileJson"]
	if !ok {
		return nil
	}
	var inner map[string]json.RawMessage
	if err := json.Unmarshal(v, &inner); err != nil {
		return fmt.Errorf("convertFileJson: %w", err)
	}
	if inner == nil {
		return nil
	}
	raw.Images = &rawImages{}
	if v, ok := inner["imageCount"]; ok {
		if err := json.Unmarshal(v, &raw.Images.ImageCount); err != nil {
			return fmt.Errorf("convertFileJson.imageCount: %w", err)
		}
	}
	if v, ok := inner["images"]; ok {
		if err := json.Unmarshal(v, &raw.Images.URLs); err != nil {
			return fmt.Errorf("convertFileJson.images: %w", err)
		}
	}
	return nil
}

func (r rawManifest) toManifest() (*types.Manifest, error) {
	switch {
	case r.FileName == nil:
		return nil, fmt.Errorf("%w: missing field \"fileName\"", types.ErrParse)
	case strings.TrimSpace(*r.FileName) == "":
		return nil, fmt.Errorf("%w: \"fileName\" is empty", types.ErrParse)
	case r.Images == nil:
		return nil, fmt.Errorf("%w: missing field \"convertFileJson\"", types.ErrParse)
	case r.Images.URLs == nil:
		return nil, fmt.Errorf("%w: missing field \"convertFileJson.images\"", types.ErrParse)
	}

	urls := *r.Images.URLs
	count := 0
	if r.Images.ImageCount != nil {
		count = *r.Images.ImageCount
		if count < 0 {
			return nil, fmt.Errorf("%w: \"imageCount\" is negative (%d)", types.ErrParse, count)
		}
		if count != 0 && count != len(urls) {
			return nil, fmt.Errorf("%w: \"imageCount\" is %d but %d images are listed",
				types.ErrParse, count, len(urls))
		}
	}

	return &types.Manifest{
		FileName: *r.FileName,
		Images: types.ImageList{
			ImageCount: count,
			URLs:       urls,
		},
	}, nil
}

// Write serializes m to path, choosing the format from the extension.
func Write(m *types.Manifest, path string) error {
	var data []byte
	var err error
	if FormatFor(path) == FormatYAML {
		data, err = yaml.Marshal(m)
	} else {
		data, err = json.MarshalIndent(m, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("%w: encoding manifest: %w", types.ErrParse, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: writing manifest %s: %w", types.ErrIO, path, err)
	}
	return nil
}
