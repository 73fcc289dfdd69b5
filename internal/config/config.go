package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/demoray/azure-storage-blob-client/internal/credential"
	"github.com/demoray/azure-storage-blob-client/internal/docs"
)

// Config represents the application configuration
type Config struct {
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`
	Format  FormatConfig  `yaml:"format" mapstructure:"format"`
	Readme  ReadmeConfig  `yaml:"readme" mapstructure:"readme"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StorageConfig contains storage account settings. The access key is
// deliberately absent; read it with AccessKey.
type StorageConfig struct {
	Account        string    `yaml:"account" mapstructure:"account"`
	EndpointSuffix string    `yaml:"endpoint_suffix" mapstructure:"endpoint_suffix"`
	Endpoints      Endpoints `yaml:"endpoints" mapstructure:"endpoints"`
}

// Endpoints overrides per-service endpoint URLs. "{account}" is replaced
// with the account name.
type Endpoints struct {
	Blob  string `yaml:"blob" mapstructure:"blob"`
	Queue string `yaml:"queue" mapstructure:"queue"`
	DFS   string `yaml:"dfs" mapstructure:"dfs"`
	Table string `yaml:"table" mapstructure:"table"`
}

// FormatConfig contains output formatting settings
type FormatConfig struct {
	Default string `yaml:"default" mapstructure:"default"`
	Colors  bool   `yaml:"colors" mapstructure:"colors"`
}

// ReadmeConfig contains the documentation rendering settings
type ReadmeConfig struct {
	MaxHeadingDepth  int    `yaml:"max_heading_depth" mapstructure:"max_heading_depth"`
	BinaryName       string `yaml:"binary_name" mapstructure:"binary_name"`
	Alias            string `yaml:"alias" mapstructure:"alias"`
	ExecutableSuffix string `yaml:"executable_suffix" mapstructure:"executable_suffix"`
	Title            string `yaml:"title" mapstructure:"title"`
	Description      string `yaml:"description" mapstructure:"description"`
}

// LogConfig contains diagnostic logging settings
type LogConfig struct {
	// Format is auto, text or json.
	Format string `yaml:"format" mapstructure:"format"`
}

// Environment variables that supply the account and access key.
const (
	EnvAccount   = "STORAGE_ACCOUNT"
	EnvAccessKey = "STORAGE_ACCESS_KEY"
)

// Keys bound to the account and access key.
const (
	KeyAccount   = "storage.account"
	KeyAccessKey = "storage.access_key"
)

var (
	globalConfig *Config
	debug        bool
	outputFormat string
)

// Initialize loads the configuration from file, environment and defaults.
// A missing config file is not an error.
func Initialize(configFile string) error {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("could not get home directory: %w", err)
		}

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".azs")
	}

	// Set defaults
	setDefaults()

	// Environment variables
	viper.SetEnvPrefix("AZS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if err := viper.BindEnv(KeyAccount, EnvAccount); err != nil {
		return fmt.Errorf("could not bind %s: %w", EnvAccount, err)
	}
	if err := viper.BindEnv(KeyAccessKey, EnvAccessKey); err != nil {
		return fmt.Errorf("could not bind %s: %w", EnvAccessKey, err)
	}

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("could not read config file: %w", err)
		}
	}

	// Unmarshal config
	globalConfig = &Config{}
	if err := viper.Unmarshal(globalConfig); err != nil {
		return fmt.Errorf("could not unmarshal config: %w", err)
	}

	return nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("storage.account", "")
	viper.SetDefault("storage.endpoint_suffix", "core.windows.net")
	viper.SetDefault("storage.endpoints.blob", "")
	viper.SetDefault("storage.endpoints.queue", "")
	viper.SetDefault("storage.endpoints.dfs", "")
	viper.SetDefault("storage.endpoints.table", "")
	viper.SetDefault("format.default", "table")
	viper.SetDefault("format.colors", true)
	viper.SetDefault("readme.max_heading_depth", 6)
	viper.SetDefault("readme.binary_name", "azure-storage-cli")
	viper.SetDefault("readme.alias", "azs")
	viper.SetDefault("readme.executable_suffix", ".exe")
	viper.SetDefault("readme.title", "Azure Storage CLI")
	viper.SetDefault("readme.description", "")
	viper.SetDefault("log.format", "auto")
}

// Get returns the global configuration
func Get() *Config {
	if globalConfig == nil {
		globalConfig = &Config{}
	}
	return globalConfig
}

// Account returns the configured storage account name.
func Account() string {
	return viper.GetString(KeyAccount)
}

// AccessKey returns the configured access key. An empty value yields the
// zero Secret.
func AccessKey() credential.Secret {
	return credential.NewSecret(viper.GetString(KeyAccessKey))
}

// ReadmeOptions returns the documentation settings, falling back to the
// built-in defaults for anything left empty.
func ReadmeOptions() docs.Options {
	opts := docs.DefaultOptions()
	readme := Get().Readme
	if readme.MaxHeadingDepth > 0 {
		opts.MaxHeadingDepth = readme.MaxHeadingDepth
	}
	if readme.BinaryName != "" {
		opts.BinaryName = readme.BinaryName
	}
	if readme.Alias != "" {
		opts.Alias = readme.Alias
	}
	if readme.ExecutableSuffix != "" {
		opts.ExecutableSuffix = readme.ExecutableSuffix
	}
	if readme.Title != "" {
		opts.Title = readme.Title
	}
	if readme.Description != "" {
		opts.Description = readme.Description
	}
	return opts
}

// Reset clears all loaded configuration.
func Reset() {
	viper.Reset()
	globalConfig = nil
	debug = false
	outputFormat = ""
}

// SetDebug sets the debug mode
func SetDebug(enabled bool) {
	debug = enabled
}

// IsDebug returns whether debug mode is enabled
func IsDebug() bool {
	return debug
}

// SetOutputFormat sets the output format
func SetOutputFormat(format string) {
	outputFormat = format
}

// GetOutputFormat returns the current output format
func GetOutputFormat() string {
	if outputFormat != "" {
		return outputFormat
	}
	if globalConfig != nil && globalConfig.Format.Default != "" {
		return globalConfig.Format.Default
	}
	return "table"
}
