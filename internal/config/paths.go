// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatter Contributors

package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/samber/oops"
)

const appName = "chatter"

// Dir returns chatter's XDG config directory: $XDG_CONFIG_HOME/chatter,
// falling back to ~/.config/chatter.
func Dir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(base, appName)
}

// DefaultPath returns the config file read when no --config is given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// ResolvePath picks the config file to load. An explicit path always wins.
// Otherwise DefaultPath is used if it exists, and "" (no file) if not.
func ResolvePath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	path := DefaultPath()
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return path, nil
	case errors.Is(err, fs.ErrNotExist):
		return "", nil
	default:
		return "", oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
	}
}
