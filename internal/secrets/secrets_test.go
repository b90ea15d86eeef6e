// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(t *testing.T) string
		want   map[string]string
		errMsg string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "bearer-token", "  tok_abc123  \n")
				writeFile(t, dir, "cookie", "session=xyz789")
				writeFile(t, dir, "header-x-api-key", "k\n")
				return dir
			},
			want: map[string]string{
				"bearer-token":     "tok_abc123",
				"cookie":           "session=xyz789",
				"header-x-api-key": "k",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "bearer-token", "valid-key")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: map[string]string{
				"bearer-token": "valid-key",
			},
		},
		{
			name: "skips dotfiles",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, "cookie", "c_real")
				return dir
			},
			want: map[string]string{
				"cookie": "c_real",
			},
		},
		{
			name: "skips subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "bearer-token", "t_123")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: map[string]string{
				"bearer-token": "t_123",
			},
		},
		{
			name: "returns empty map for empty directory",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.setup(t)
			got, err := Load(dir)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read any file")
	}
	dir := t.TempDir()
	writeFile(t, dir, "good-key", "value123")

	// Create a file then remove read permission.
	badPath := filepath.Join(dir, "bad-key")
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	got, err := Load(dir)
	require.NoError(t, err)
	// The good file should still be returned; the bad file is skipped with a warning.
	assert.Equal(t, "value123", got["good-key"])
	_, hasBad := got["bad-key"]
	assert.False(t, hasBad, "unreadable file should not appear in result")
}

func TestHeaders(t *testing.T) {
	tests := []struct {
		name    string
		secrets map[string]string
		want    map[string]string
	}{
		{
			name:    "empty",
			secrets: map[string]string{},
			want:    map[string]string{},
		},
		{
			name:    "bearer token and cookie",
			secrets: map[string]string{"bearer-token": "abc", "cookie": "sid=1"},
			want:    map[string]string{"Authorization": "Bearer abc", "Cookie": "sid=1"},
		},
		{
			name:    "custom headers are canonicalized",
			secrets: map[string]string{"header-x-api-key": "k1", "header-Referer": "https://example.com/"},
			want:    map[string]string{"X-Api-Key": "k1", "Referer": "https://example.com/"},
		},
		{
			name:    "bearer token wins over header-authorization",
			secrets: map[string]string{"bearer-token": "abc", "header-authorization": "Basic xyz"},
			want:    map[string]string{"Authorization": "Bearer abc"},
		},
		{
			name:    "unknown keys and empty header names are ignored",
			secrets: map[string]string{"api-key": "x", "header-": "y"},
			want:    map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Headers(tt.secrets))
		})
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
