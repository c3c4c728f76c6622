// Init command: writes a starter config file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ricardodantas/tickit-sync/internal/config"
	"github.com/ricardodantas/tickit-sync/internal/paths"
)

var flagInitOutput string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	initCmd.Flags().StringVar(&flagInitOutput, "output", paths.ConfigFileName, "where to write the config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(flagInitOutput); err == nil {
		return fmt.Errorf("%s already exists; refusing to overwrite", flagInitOutput)
	}

	cfg := config.Default()
	if err := cfg.Save(flagInitOutput); err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n\n", flagInitOutput)
	fmt.Println("Next steps:")
	fmt.Println("  1. Generate a token:  tickit-sync token --name my-laptop")
	fmt.Println("  2. Start the server:  tickit-sync serve")
	return nil
}
