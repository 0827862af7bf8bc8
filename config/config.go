package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/meysamhadeli/livefile/constants/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config represents the structure of the configuration file
type Config struct {
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	CheckInterval time.Duration `mapstructure:"check_interval"`
	LogLevel      string        `mapstructure:"log_level"`
	LogDir        string        `mapstructure:"log_dir"`
	Theme         string        `mapstructure:"theme"`
	Highlight     bool          `mapstructure:"highlight"`
}

// DefaultConfig values
var DefaultConfig = Config{
	PollInterval:  time.Second,
	CheckInterval: 250 * time.Millisecond,
	LogLevel:      "INFO",
	LogDir:        "",
	Theme:         "dracula",
	Highlight:     true,
}

// ConfigName is the base name of the configuration file looked up in the working directory
const ConfigName = "livefile-config"

// EnvPrefix prefixes every environment variable override, e.g. LIVEFILE_POLL_INTERVAL
const EnvPrefix = "LIVEFILE"

// cfgFile holds the path to the configuration file (set via CLI)
var cfgFile string

// LoadConfigs initializes the configuration from file, flags, and environment variables, and returns the final config.
func LoadConfigs(rootCmd *cobra.Command, cwd string) (*Config, error) {
	v := viper.New()

	setDefaults(v)
	bindEnv(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		v.SetConfigName(ConfigName)
		v.AddConfigPath(cwd)

		// Support both JSON and YAML formats
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			v.SetConfigType("json")
			if err := v.ReadInConfig(); err != nil {
				fmt.Println(lipgloss.Yellow.Render("No configuration file found, using defaults"))
			}
		}
	}

	if rootCmd != nil {
		bindFlags(v, rootCmd)
	}

	return unmarshal(v)
}

// ReloadConfigFromBytes re-parses a configuration file that changed on disk.
// Environment variables and flags are not re-applied; the file is the only source.
func ReloadConfigFromBytes(content []byte, configType string) (*Config, error) {
	if configType == "" {
		configType = "yaml"
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to parse %s config: %w", configType, err)
	}

	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if config.PollInterval <= 0 {
		return nil, fmt.Errorf("poll_interval must be positive, got %s", config.PollInterval)
	}
	if config.CheckInterval <= 0 {
		return nil, fmt.Errorf("check_interval must be positive, got %s", config.CheckInterval)
	}
	return &config, nil
}

// setDefaults sets all default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("poll_interval", DefaultConfig.PollInterval)
	v.SetDefault("check_interval", DefaultConfig.CheckInterval)
	v.SetDefault("log_level", DefaultConfig.LogLevel)
	v.SetDefault("log_dir", DefaultConfig.LogDir)
	v.SetDefault("theme", DefaultConfig.Theme)
	v.SetDefault("highlight", DefaultConfig.Highlight)
}

// bindEnv explicitly binds environment variables to configuration keys
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	_ = v.BindEnv("poll_interval")
	_ = v.BindEnv("check_interval")
	_ = v.BindEnv("log_level")
	_ = v.BindEnv("log_dir")
	_ = v.BindEnv("theme")
	_ = v.BindEnv("highlight")
}

// bindFlags binds the CLI flags to configuration values.
func bindFlags(v *viper.Viper, rootCmd *cobra.Command) {
	for _, key := range []string{"poll_interval", "check_interval", "log_level", "log_dir", "theme", "highlight"} {
		if flag := rootCmd.PersistentFlags().Lookup(key); flag != nil {
			_ = v.BindPFlag(key, flag)
		}
	}
}

// InitFlags initializes the flags for the root command.
func InitFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Specifies the path to a configuration file (JSON or YAML).")

	rootCmd.PersistentFlags().Duration("poll_interval", DefaultConfig.PollInterval, "How often the background poller checks cached files for changes.")
	rootCmd.PersistentFlags().Duration("check_interval", DefaultConfig.CheckInterval, "How often the watch command asks its handles whether they were reloaded.")
	rootCmd.PersistentFlags().String("log_level", DefaultConfig.LogLevel, "Log level: DEBUG, INFO, WARN or ERROR.")
	rootCmd.PersistentFlags().String("log_dir", DefaultConfig.LogDir, "Directory for the JSON log file. Logs go to stderr when empty.")
	rootCmd.PersistentFlags().String("theme", DefaultConfig.Theme, "Chroma style used to highlight file contents (e.g., 'dracula', 'monokai', 'github').")
	rootCmd.PersistentFlags().Bool("highlight", DefaultConfig.Highlight, "Enable or disable syntax highlighting when printing file contents.")

	rootCmd.Flags().BoolP("version", "v", false, "Specifies the version of the application.")
}

// ConfigFilePath returns the configuration file in use, or "" when running on defaults.
func ConfigFilePath(cwd string) string {
	if cfgFile != "" {
		return cfgFile
	}
	for _, ext := range []string{".yaml", ".yml", ".json"} {
		candidate := filepath.Join(cwd, ConfigName+ext)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// GetConfigFileType returns the type of the configuration file based on its extension
func GetConfigFileType(filename string) string {
	if strings.HasSuffix(filename, ".json") {
		return "json"
	} else if strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml") {
		return "yaml"
	}
	return ""
}
