// Package config provides run configuration and the global configuration
// directory for joinery.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Dir returns the joinery configuration directory.
//
// Resolution:
//   - $JOINERY_CONFIG_HOME if set (explicit override)
//   - $XDG_CONFIG_HOME/joinery if set (respects XDG on any platform)
//   - %AppData%/joinery on Windows
//   - ~/.config/joinery on macOS and Linux
func Dir() string {
	// Explicit override
	if dir := os.Getenv("JOINERY_CONFIG_HOME"); dir != "" {
		return dir
	}

	// XDG override (works on any platform)
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "joinery")
	}

	// Windows: use AppData
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "joinery")
		}
	}

	// macOS and Linux: ~/.config/joinery
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "joinery")
}
