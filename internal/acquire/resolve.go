// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pdiddy/img2pdf/pkg/types"
)

// FallbackName is used when a URL has no usable final path segment.
const FallbackName = "tmp.bin"

// FileName derives the local file name for rawURL from the last segment of
// its path. URLs without a usable segment (no path, a trailing slash, an
// opaque URL, or a segment that would escape the download directory) map
// to FallbackName.
func FileName(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", types.ErrInvalidURL, rawURL, err)
	}
	if u.Scheme == "" {
		return "", fmt.Errorf("%w: %q: missing scheme", types.ErrInvalidURL, rawURL)
	}
	if u.Opaque != "" {
		return FallbackName, nil
	}

	escaped := u.EscapedPath()
	seg := escaped[strings.LastIndex(escaped, "/")+1:]
	name, err := url.PathUnescape(seg)
	if err != nil {
		name = seg
	}

	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return FallbackName, nil
	}
	return name, nil
}

// FileNames resolves every URL, failing on the first invalid one.
func FileNames(urls []string) ([]string, error) {
	names := make([]string, len(urls))
	for i, u := range urls {
		name, err := FileName(u)
		if err != nil {
			return nil, err
		}
		names[i] = name
	}
	return names, nil
}
