package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath resolves ~ and $VAR / ${VAR} references in a local path
// from the config file (log_file, state_dir). Empty input stays empty;
// an unresolvable home directory leaves ~ untouched.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}
	path = os.ExpandEnv(path)
	return expandTilde(path)
}

// expandTilde replaces a leading ~ or ~/ with the user's home
// directory. ~username syntax is not supported.
func expandTilde(path string) string {
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
