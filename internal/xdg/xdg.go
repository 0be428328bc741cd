// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package xdg provides XDG Base Directory paths for warden.
package xdg

import (
	"os"
	"path/filepath"

	"github.com/samber/oops"
)

const appName = "warden"

// ConfigFileName is the name of the configuration file inside ConfigDir.
const ConfigFileName = "config.yaml"

// DirectoryFileName is the name of the default directory document inside DataDir.
const DirectoryFileName = "directory.yaml"

// ConfigDir returns the XDG config directory for warden.
// Checks XDG_CONFIG_HOME first, falls back to ~/.config.
func ConfigDir() (string, error) {
	return dir("XDG_CONFIG_HOME", ".config")
}

// DataDir returns the XDG data directory for warden.
// Checks XDG_DATA_HOME first, falls back to ~/.local/share.
func DataDir() (string, error) {
	return dir("XDG_DATA_HOME", ".local", "share")
}

// ConfigFile returns the default configuration file path.
func ConfigFile() (string, error) {
	d, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, ConfigFileName), nil
}

// DirectoryFile returns the default directory document path.
func DirectoryFile() (string, error) {
	d, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, DirectoryFileName), nil
}

func dir(env string, fallback ...string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName), nil
	}
	home := os.Getenv("HOME")
	if home == "" {
		var err error
		home, err = os.UserHomeDir()
		if err != nil {
			return "", oops.Code("XDG_NO_HOME").With("env", env).Wrapf(err, "cannot determine home directory")
		}
	}
	parts := append([]string{home}, fallback...)
	return filepath.Join(append(parts, appName)...), nil
}
