package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ResolvePath applies CLI/XDG/home fallback rules for config.jsonc location.
func ResolvePath(explicit string) (string, error) {
	if strings.TrimSpace(explicit) != "" {
		return explicit, nil
	}

	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, "rapidwhisper", "config.jsonc"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("unable to resolve user home for config fallback")
	}

	return filepath.Join(home, ".config", "rapidwhisper", "config.jsonc"), nil
}

// StatisticsPath returns the statistics ledger location alongside the
// loaded config file: statistics.json in the config directory.
func StatisticsPath(loadedConfigPath string) string {
	return filepath.Join(filepath.Dir(loadedConfigPath), "statistics.json")
}

// RecordingsDir resolves where finalized WAV files are written: the
// configured override, or a temp directory alongside the lockfile when
// unset, resolving to a temp dir alongside the lockfile.
func RecordingsDir(behavior BehaviorConfig) string {
	if dir := strings.TrimSpace(behavior.RecordingsDir); dir != "" {
		return dir
	}
	return filepath.Join(os.TempDir(), "rapidwhisper-recordings")
}

// legacyPathFor returns the pre-JSONC key=value config path alongside
// resolvedPath; an explicit --config path has no legacy fallback, so callers
// only consult this when resolvedPath itself came from ResolvePath's
// default.
func legacyPathFor(resolvedPath string) string {
	return filepath.Join(filepath.Dir(resolvedPath), "config.conf")
}
