// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets resolves the API credential for the generation endpoint.
//
// The key is looked up in the process environment (after loading a .env file
// when present) and then in a directory of plain-text files, where each
// filename is the key name and the trimmed contents are the value.
package secrets

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// EnvAPIKey is the environment variable holding the endpoint credential.
	EnvAPIKey = "OPENROUTER_API_KEY"

	// FileAPIKey is the secrets-directory file holding the same credential.
	FileAPIKey = "openrouter-api-key"

	// Placeholder is the value shipped in example .env files; it is never a real key.
	Placeholder = "YOUR_OPENROUTER_API_KEY_HERE"

	// DefaultDir is the secrets directory searched when the env var is unset.
	DefaultDir = ".secrets/"
)

// ErrAuth marks a missing or placeholder credential. It is fatal and
// reported before any generation starts.
var ErrAuth = errors.New("authentication error")

// LoadDotenv loads envFile into the process environment without overriding
// variables that are already set. A missing file is not an error.
func LoadDotenv(envFile string) error {
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("loading %s: %w", envFile, err)
	}
	return nil
}

// APIKey returns the endpoint credential from the environment or, failing
// that, from dir. Missing and placeholder values return an error wrapping ErrAuth.
func APIKey(dir string, log *slog.Logger) (string, error) {
	key := strings.TrimSpace(os.Getenv(EnvAPIKey))
	if usable(key) {
		return key, nil
	}

	loaded, err := Load(dir, log)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuth, err)
	}
	if v := loaded[FileAPIKey]; usable(v) {
		log.Info("API key loaded from secrets directory", "dir", dir)
		return v, nil
	}
	return "", fmt.Errorf("%w: %s not found or not set; add it to .env or %s%s", ErrAuth, EnvAPIKey, dir, FileAPIKey)
}

func usable(key string) bool {
	return key != "" && key != Placeholder
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged as warnings and skipped.
func Load(dir string, log *slog.Logger) (map[string]string, error) {
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
			log.Warn("could not read secret", "name", name, "error", err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}
