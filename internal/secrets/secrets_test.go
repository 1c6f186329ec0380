// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/corpusgen/internal/logging"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  map[string]string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "openrouter-api-key", "  sk-or-abc123  \n")
				writeFile(t, dir, "other-key", "xyz789")
				return dir
			},
			want: map[string]string{
				"openrouter-api-key": "sk-or-abc123",
				"other-key":          "xyz789",
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
			name: "skips empty files and dotfiles",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "openrouter-api-key", "valid-key")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				writeFile(t, dir, ".gitkeep", "")
				return dir
			},
			want: map[string]string{
				"openrouter-api-key": "valid-key",
			},
		},
		{
			name: "skips subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "openrouter-api-key", "ak_123")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: map[string]string{
				"openrouter-api-key": "ak_123",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t), logging.Discard())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAPIKey(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		file    string
		want    string
		wantErr bool
	}{
		{name: "env wins", env: "sk-env", file: "sk-file", want: "sk-env"},
		{name: "falls back to secrets dir", file: "sk-file", want: "sk-file"},
		{name: "placeholder env falls back", env: Placeholder, file: "sk-file", want: "sk-file"},
		{name: "placeholder everywhere", env: Placeholder, file: Placeholder, wantErr: true},
		{name: "missing everywhere", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvAPIKey, tt.env)
			dir := t.TempDir()
			if tt.file != "" {
				writeFile(t, dir, FileAPIKey, tt.file)
			}

			got, err := APIKey(dir, logging.Discard())
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrAuth)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadDotenv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "CORPUSGEN_TEST_DOTENV=from-file\n")
	t.Setenv("CORPUSGEN_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("CORPUSGEN_TEST_DOTENV"))

	require.NoError(t, LoadDotenv(filepath.Join(dir, ".env")))
	assert.Equal(t, "from-file", os.Getenv("CORPUSGEN_TEST_DOTENV"))
}

func TestLoadDotenvMissingFile(t *testing.T) {
	assert.NoError(t, LoadDotenv(filepath.Join(t.TempDir(), ".env")))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
