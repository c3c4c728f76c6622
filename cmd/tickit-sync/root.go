// Root command for the tickit-sync CLI.
package main

import (
	"github.com/spf13/cobra"

	"github.com/ricardodantas/tickit-sync/internal/config"
	"github.com/ricardodantas/tickit-sync/internal/paths"
)

// version is the reported build version.
const version = "0.1.0"

// flagConfigFile is set by the global --config flag.
var flagConfigFile string

var rootCmd = &cobra.Command{
	Use:          "tickit-sync",
	Short:        "Self-hosted sync backend for tickit",
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigFile, "config", "",
		"config file (default: $TICKIT_SYNC_CONFIG, ./config.toml, /data/config.toml, or the user config dir)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves the config file per the precedence chain and loads it,
// falling back to defaults when the file does not exist.
func loadConfig() (config.Config, string, error) {
	path, err := paths.ResolveConfigFile(flagConfigFile)
	if err != nil {
		return config.Config{}, "", err
	}
	cfg, err := config.Load(path)
	return cfg, path, err
}
