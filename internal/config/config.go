package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix = "GOTR31"
	appDir    = ".go_tr31"
)

var (
	configData Config
	v          *viper.Viper
)

// Config holds all configuration settings.
type Config struct {
	// Server configuration
	Server struct {
		Host         string
		Port         int
		MaxConns     int           `mapstructure:"max_conns"`
		ReadTimeout  time.Duration `mapstructure:"read_timeout"`
		WriteTimeout time.Duration `mapstructure:"write_timeout"`
		Firmware     string
	}
	// Key block protection key, hex encoded. Empty selects the built-in test key.
	KBPK struct {
		Hex string
	}
	// Wrapped key store
	Keystore struct {
		Path string
	}
	// Key block wrapping defaults
	Wrap struct {
		MaskedKeyLength int `mapstructure:"masked_key_length"`
	}
	// Logging configuration
	Log struct {
		Level  string
		Format string
	}
}

// flagKeys maps command line flag names to configuration keys.
var flagKeys = map[string]string{
	"host":       "server.host",
	"port":       "server.port",
	"kbpk":       "kbpk.hex",
	"keystore":   "keystore.path",
	"masked":     "wrap.masked_key_length",
	"log-level":  "log.level",
	"log-format": "log.format",
}

// Initialize sets up the configuration system. An empty cfgFile searches the
// default locations and creates $HOME/.go_tr31/config.yaml when missing.
// Flags that were set on the command line override file and environment values.
func Initialize(cfgFile string, flags *pflag.FlagSet) error {
	v = viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")         // name of config file (without extension)
		v.SetConfigType("yaml")           // config file type
		v.AddConfigPath(".")              // optionally look for config in working directory
		v.AddConfigPath("$HOME/.go_tr31") // look for config in .go_tr31 directory in home
		v.AddConfigPath("/etc/go_tr31/")  // path to look for the config file in

		if err := ensureConfig(); err != nil {
			return fmt.Errorf("error creating config file: %w", err)
		}
	}

	setDefaults()

	v.SetEnvPrefix(envPrefix) // prefix for env vars
	v.AutomaticEnv()          // read in environment variables that match
	v.SetEnvKeyReplacer(      // replace dots with underscores in env vars
		strings.NewReplacer(".", "_"),
	)

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return fmt.Errorf("failed to bind flag %q: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// It's okay if we can't find a config file, we'll use defaults
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	configData = Config{}
	if err := v.Unmarshal(&configData); err != nil {
		return fmt.Errorf("unable to decode into config struct: %w", err)
	}

	return nil
}

// setDefaults sets default values for all configuration options.
func setDefaults() {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 1500)
	v.SetDefault("server.max_conns", 100)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.firmware", "0007-E000")

	v.SetDefault("kbpk.hex", "")

	v.SetDefault("keystore.path", filepath.Join(os.Getenv("HOME"), appDir, "keys.db"))

	v.SetDefault("wrap.masked_key_length", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "human")
}

const defaultConfig = `# GO TR-31 Configuration File
server:
  host: localhost
  port: 1500
  max_conns: 100
  read_timeout: 30s
  write_timeout: 30s

kbpk:
  # hex encoded AES key; empty selects the built-in test key
  hex: ""

wrap:
  masked_key_length: 0

log:
  level: info
  format: human
`

// ensureConfig creates a default config file if none exists.
func ensureConfig() error {
	dir := filepath.Join(os.Getenv("HOME"), appDir)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	configFile := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err := os.WriteFile(configFile, []byte(defaultConfig), 0o600); err != nil {
			return err
		}
	}

	return nil
}

// Get returns the current configuration.
func Get() *Config {
	return &configData
}

// GetViper returns the viper instance.
func GetViper() *viper.Viper {
	return v
}
