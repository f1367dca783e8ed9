// Package config loads the churn configuration from viper keys, config
// files and the environment.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands environment variables and a leading ~ in path.
// A path whose home directory cannot be resolved is returned unchanged.
func ExpandPath(path string) string {
	path = os.ExpandEnv(path)

	rest, ok := strings.CutPrefix(path, "~")
	if !ok || (rest != "" && !os.IsPathSeparator(rest[0])) {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}
