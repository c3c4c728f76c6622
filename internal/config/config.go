// Package config loads and writes the tickit-sync server configuration:
// listen address, database location, and the set of hashed API tokens.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

// Config keys and defaults.
const (
	cfgKeyBind   = "server.bind"
	cfgKeyPort   = "server.port"
	cfgKeyDBPath = "database.path"

	defaultBind   = "0.0.0.0"
	defaultPort   = 3030
	defaultDBPath = "tickit-sync.sqlite"
)

// Config is the full server configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" toml:"server"`
	Database DatabaseConfig `mapstructure:"database" toml:"database"`
	Tokens   []TokenConfig  `mapstructure:"tokens" toml:"tokens,omitempty"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Bind string `mapstructure:"bind" toml:"bind"`
	Port int    `mapstructure:"port" toml:"port"`
}

// DatabaseConfig holds the SQLite database location.
type DatabaseConfig struct {
	Path string `mapstructure:"path" toml:"path"`
}

// TokenConfig is one named API token. TokenHash is a bcrypt hash; plaintext
// values are tolerated for backwards compatibility.
type TokenConfig struct {
	Name      string `mapstructure:"name" toml:"name"`
	TokenHash string `mapstructure:"token_hash" toml:"token_hash"`
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	return Config{
		Server:   ServerConfig{Bind: defaultBind, Port: defaultPort},
		Database: DatabaseConfig{Path: defaultDBPath},
	}
}

// Addr returns the listen address in host:port form.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

// Load reads the TOML config at path. A missing file is not an error; the
// defaults are returned.
func Load(path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads and decodes the TOML config at path, applying defaults for
// unset keys.
func LoadFrom(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetDefault(cfgKeyBind, defaultBind)
	v.SetDefault(cfgKeyPort, defaultPort)
	v.SetDefault(cfgKeyDBPath, defaultDBPath)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config %s: %w", path, err)
	}
	return cfg, nil
}

// configHeader is prepended to every written config file.
const configHeader = `# tickit-sync configuration
# Generate tokens with: tickit-sync token --name <device-name>

`

// Save writes the configuration as TOML to path, creating the parent
// directory if needed.
func (c Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}

	var buf bytes.Buffer
	buf.WriteString(configHeader)
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}
