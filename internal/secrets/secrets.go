// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key
// name and the file contents (trimmed) are the value.
//
// Supported key files: figma-token.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// FigmaTokenKey names the file holding the design API access token.
const FigmaTokenKey = "figma-token"

// TokenEnvVars are consulted, in order, when no token file exists.
var TokenEnvVars = []string{"FIGMA_TOKEN", "FIGMA_ACCESS_TOKEN"}

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
			slog.Warn("could not read secret", "name", name, "error", err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Token resolves the design API credential. An explicit value wins, then
// the figma-token file in dir, then the first non-empty TokenEnvVars entry.
// An empty result is not an error here; the loader rejects it before any
// request is made.
func Token(explicit, dir string) (string, error) {
	if t := strings.TrimSpace(explicit); t != "" {
		return t, nil
	}
	loaded, err := Load(dir)
	if err != nil {
		return "", err
	}
	if t := loaded[FigmaTokenKey]; t != "" {
		return t, nil
	}
	for _, name := range TokenEnvVars {
		if t := strings.TrimSpace(os.Getenv(name)); t != "" {
			return t, nil
		}
	}
	return "", nil
}
