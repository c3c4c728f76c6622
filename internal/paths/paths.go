// Package paths resolves the server configuration file location.
package paths

import (
	"os"
	"path/filepath"
)

// ConfigFileName is the name of the TOML configuration file.
const ConfigFileName = "config.toml"

// EnvConfigFile overrides the configuration file location when set.
const EnvConfigFile = "TICKIT_SYNC_CONFIG"

// dockerConfigFile is checked so containerized deployments can mount their
// config under /data without extra wiring.
const dockerConfigFile = "/data/config.toml"

// platformDir holds platform-detection functions that can be overridden in
// tests.
var platformDir = struct {
	userConfigDir func() (string, error)
}{
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigFile returns the platform-specific configuration file path,
// e.g. ~/.config/tickit-sync/config.toml on Linux.
func DefaultConfigFile() (string, error) {
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tickit-sync", ConfigFileName), nil
}

// ResolveConfigFile returns the configuration file path following the
// precedence chain: flag > TICKIT_SYNC_CONFIG env > ./config.toml (if
// present) > /data/config.toml (if present) > DefaultConfigFile().
func ResolveConfigFile(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigFile); env != "" {
		return filepath.Abs(env)
	}
	if _, err := os.Stat(ConfigFileName); err == nil {
		return filepath.Abs(ConfigFileName)
	}
	if _, err := os.Stat(dockerConfigFile); err == nil {
		return dockerConfigFile, nil
	}
	return DefaultConfigFile()
}
