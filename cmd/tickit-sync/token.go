// Token command: generates, lists, and revokes API tokens.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ricardodantas/tickit-sync/internal/config"
)

var (
	flagTokenName   string
	flagTokenList   bool
	flagTokenRevoke string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage API tokens",
	Long: `Generate a new API token and store its hash in the config file,
list configured tokens, or revoke one by name. The plaintext token is
printed once at generation time and cannot be recovered afterwards.`,
	Args: cobra.NoArgs,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&flagTokenName, "name", "", "name for the new token (e.g. a device name)")
	tokenCmd.Flags().BoolVar(&flagTokenList, "list", false, "list configured tokens")
	tokenCmd.Flags().StringVar(&flagTokenRevoke, "revoke", "", "revoke the token with this name")
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, cfgPath, err := loadConfig()
	if err != nil {
		return err
	}

	switch {
	case flagTokenList:
		return listTokens(cfg)
	case flagTokenRevoke != "":
		return revokeToken(cfg, cfgPath, flagTokenRevoke)
	case flagTokenName != "":
		return generateToken(cfg, cfgPath, flagTokenName)
	default:
		return fmt.Errorf("one of --name, --list, or --revoke is required")
	}
}

func generateToken(cfg config.Config, cfgPath, name string) error {
	token, err := config.GenerateToken()
	if err != nil {
		return err
	}
	hash, err := config.HashToken(token)
	if err != nil {
		return err
	}
	if err := cfg.AddToken(name, hash); err != nil {
		return err
	}
	if err := cfg.Save(cfgPath); err != nil {
		return err
	}

	fmt.Printf("Token for %q added to %s\n\n", name, cfgPath)
	fmt.Printf("  %s\n\n", token)
	fmt.Println("Store this token now; it will not be shown again.")
	fmt.Println("Configure the tickit client with:")
	fmt.Printf("  server URL: http://<host>:%d\n", cfg.Server.Port)
	fmt.Printf("  token:      %s\n", token)
	return nil
}

func listTokens(cfg config.Config) error {
	if len(cfg.Tokens) == 0 {
		fmt.Println("No tokens configured.")
		return nil
	}
	for _, t := range cfg.Tokens {
		fmt.Printf("  %-20s %s\n", t.Name, previewHash(t.TokenHash))
	}
	return nil
}

func revokeToken(cfg config.Config, cfgPath, name string) error {
	if !cfg.RemoveToken(name) {
		return fmt.Errorf("no token named %q", name)
	}
	if err := cfg.Save(cfgPath); err != nil {
		return err
	}
	fmt.Printf("Token %q revoked.\n", name)
	return nil
}

// previewHash truncates a stored hash so listings never reveal enough to be
// useful to an attacker.
func previewHash(hash string) string {
	if len(hash) <= 12 {
		return hash
	}
	return hash[:12] + "..."
}
