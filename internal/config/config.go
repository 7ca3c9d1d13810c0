package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/dxvk-studio/dxvk-studio/internal/branding"
	"github.com/dxvk-studio/dxvk-studio/internal/platform"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Recognized keys.
const (
	KeyCacheDir       = "cache_dir"
	KeyDefaultVariant = "default_variant"
	KeyMirror         = "mirror"
	KeyGitHubToken    = "github_token"
	KeyProtectedPaths = "protected_paths"
	KeyCatalogTTL     = "catalog_ttl"
	KeyCheckRunning   = "check_running"
	KeyLogLevel       = "log_level"
)

// DefaultCatalogTTL is how long a fetched release catalog is served from disk.
const DefaultCatalogTTL = time.Hour

// Dir returns the config directory ($XDG_CONFIG_HOME/dxvk-studio).
// DXVK_STUDIO_CONFIG_HOME overrides it.
func Dir() string {
	if v := os.Getenv(branding.EnvVar("CONFIG_HOME")); v != "" {
		return v
	}
	return filepath.Join(xdg.ConfigHome, branding.DataDir())
}

// FilePath returns the full path to the config file.
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
func Load() {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.AutomaticEnv()

	viper.SetDefault(KeyDefaultVariant, "standard")
	viper.SetDefault(KeyCatalogTTL, DefaultCatalogTTL)
	viper.SetDefault(KeyCheckRunning, true)
	viper.SetDefault(KeyLogLevel, "warn")

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()
	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	// The file may hold an API token.
	if err := platform.Chmod(configFile, 0600); err != nil {
		return fmt.Errorf("restricting config file permissions: %w", err)
	}
	return nil
}

// CacheDir returns the configured cache root override, or "" for the default.
func CacheDir() string { return viper.GetString(KeyCacheDir) }

// DefaultVariant returns the variant used when none is given on the command line.
func DefaultVariant() string { return viper.GetString(KeyDefaultVariant) }

// Mirror returns the base URL that replaces release asset download hosts.
func Mirror() string { return viper.GetString(KeyMirror) }

// GitHubToken returns the token sent to the release API. GITHUB_TOKEN is
// honored when the key is unset.
func GitHubToken() string {
	if v := viper.GetString(KeyGitHubToken); v != "" {
		return v
	}
	return os.Getenv("GITHUB_TOKEN")
}

// ProtectedPaths returns extra protected path prefixes from the config file.
func ProtectedPaths() []string { return viper.GetStringSlice(KeyProtectedPaths) }

// CatalogTTL returns how long cached release catalogs stay fresh.
func CatalogTTL() time.Duration {
	if d := viper.GetDuration(KeyCatalogTTL); d > 0 {
		return d
	}
	return DefaultCatalogTTL
}

// CheckRunning reports whether install and uninstall refuse to touch a game
// whose executable is currently running.
func CheckRunning() bool { return viper.GetBool(KeyCheckRunning) }

// LogLevel returns the configured minimum log level name.
func LogLevel() string { return viper.GetString(KeyLogLevel) }
