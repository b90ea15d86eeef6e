// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads download credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Recognized key files: bearer-token, cookie, and header-<Name> for any other request header.
package secrets

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/img2pdf/internal/logging"
)

// Key file names.
const (
	BearerToken  = "bearer-token"
	Cookie       = "cookie"
	HeaderPrefix = "header-"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged and skipped.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logging.Warn("could not read secret", "name", name, "error", err.Error())
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Headers turns loaded secrets into HTTP request headers. Unrecognized keys
// are ignored. Header names are canonicalized; bearer-token and cookie take
// precedence over header-Authorization and header-Cookie.
func Headers(secrets map[string]string) map[string]string {
	headers := make(map[string]string)
	for key, value := range secrets {
		name, ok := strings.CutPrefix(key, HeaderPrefix)
		if !ok || name == "" {
			continue
		}
		headers[http.CanonicalHeaderKey(name)] = value
	}
	if v, ok := secrets[BearerToken]; ok {
		headers["Authorization"] = "Bearer " + v
	}
	if v, ok := secrets[Cookie]; ok {
		headers["Cookie"] = v
	}
	return headers
}
