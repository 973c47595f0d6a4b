package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/barff/cccs/internal/fsutil"
	"github.com/barff/cccs/internal/monitor"
	"github.com/barff/cccs/internal/profile"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for cccs
type Config struct {
	Version       string             `mapstructure:"version" yaml:"version"`
	Claude        ClaudeConfig       `mapstructure:"claude" yaml:"claude"`
	Monitor       MonitorConfig      `mapstructure:"monitor" yaml:"monitor"`
	Switch        SwitchConfig       `mapstructure:"switch" yaml:"switch"`
	Notifications NotificationConfig `mapstructure:"notifications" yaml:"notifications"`
	Language      string             `mapstructure:"language" yaml:"language"`
	Logging       LoggingConfig      `mapstructure:"logging" yaml:"logging"`
}

// ClaudeConfig describes where Claude Code keeps its settings
type ClaudeConfig struct {
	Dir           string `mapstructure:"dir" yaml:"dir"` // empty = auto-detect
	SettingsFile  string `mapstructure:"settingsFile" yaml:"settingsFile"`
	ProfileSuffix string `mapstructure:"profileSuffix" yaml:"profileSuffix"`
	VolatileField string `mapstructure:"volatileField" yaml:"volatileField"`
}

// MonitorConfig holds monitor loop settings
type MonitorConfig struct {
	IntervalMinutes int           `mapstructure:"intervalMinutes" yaml:"intervalMinutes"`
	AutoStart       bool          `mapstructure:"autoStart" yaml:"autoStart"`
	FSNotify        bool          `mapstructure:"fsnotify" yaml:"fsnotify"`
	Debounce        time.Duration `mapstructure:"debounce" yaml:"debounce"`
	MetricsAddr     string        `mapstructure:"metricsAddr" yaml:"metricsAddr"` // empty = disabled
}

// SwitchConfig holds profile switching settings
type SwitchConfig struct {
	KeepBackups int `mapstructure:"keepBackups" yaml:"keepBackups"`
}

// NotificationConfig holds notification settings
type NotificationConfig struct {
	Enabled  bool          `mapstructure:"enabled" yaml:"enabled"`
	Sound    bool          `mapstructure:"sound" yaml:"sound"`
	Cooldown time.Duration `mapstructure:"cooldown" yaml:"cooldown"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // console, json
	File   string `mapstructure:"file" yaml:"file"`
}

// Languages lists the supported interface languages; empty means system default
var Languages = []string{"en", "zh", "zh-CN", "zh-TW"}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Claude: ClaudeConfig{
			Dir:           "",
			SettingsFile:  profile.DefaultSettingsFile,
			ProfileSuffix: profile.DefaultSuffix,
			VolatileField: profile.DefaultVolatileField,
		},
		Monitor: MonitorConfig{
			IntervalMinutes: monitor.DefaultInterval,
			AutoStart:       true,
			FSNotify:        false,
			Debounce:        monitor.DefaultDebounce,
			MetricsAddr:     "",
		},
		Switch: SwitchConfig{
			KeepBackups: profile.DefaultKeepBackups,
		},
		Notifications: NotificationConfig{
			Enabled:  true,
			Sound:    false,
			Cooldown: 30 * time.Second,
		},
		Language: "",
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
			File:   "",
		},
	}
}

// Load loads configuration from file and environment
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Set defaults
	setDefaults(v, DefaultConfig())

	// .env next to the config file, for overrides that should not live in YAML
	loadEnvFile(filepath.Join(filepath.Dir(Path(cfgFile)), ".env"))

	// Environment variables: CCCS_MONITOR_INTERVALMINUTES etc.
	v.SetEnvPrefix("CCCS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// loadEnvFile exports CCCS_* variables from path without overriding the
// real environment
func loadEnvFile(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	envMap, err := godotenv.Read(path)
	if err != nil {
		log.Warn().Err(err).Str("file", path).Msg("Failed to load .env file")
		return
	}
	for key, value := range envMap {
		if !strings.HasPrefix(key, "CCCS_") {
			continue
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		os.Setenv(key, value)
	}
	log.Debug().Str("file", path).Msg("Loaded .env overrides")
}

// Save writes cfg as YAML to path, replacing the file atomically
func Save(path string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := fsutil.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks the configuration for values the monitor would reject
func (c *Config) Validate() error {
	if err := monitor.ValidateInterval(c.Monitor.IntervalMinutes); err != nil {
		return fmt.Errorf("monitor.intervalMinutes: %w", err)
	}

	if c.Switch.KeepBackups < 0 {
		return fmt.Errorf("switch.keepBackups must not be negative")
	}

	if c.Language != "" && !ValidLanguage(c.Language) {
		return fmt.Errorf("unsupported language %q (supported: %s)", c.Language, strings.Join(Languages, ", "))
	}

	if _, err := zerolog.ParseLevel(strings.ToLower(c.Logging.Level)); err != nil {
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("invalid log format %q (console or json)", c.Logging.Format)
	}

	layout := c.Layout(c.Claude.Dir)
	if c.Claude.Dir != "" {
		if err := layout.Validate(); err != nil {
			return fmt.Errorf("claude: %w", err)
		}
	}
	return nil
}

// Layout returns the profile layout for dir using the configured file names
func (c *Config) Layout(dir string) profile.Layout {
	return profile.Layout{
		Dir:          dir,
		SettingsFile: c.Claude.SettingsFile,
		Suffix:       c.Claude.ProfileSuffix,
	}
}

// ValidLanguage reports whether lang is a supported language code
func ValidLanguage(lang string) bool {
	for _, l := range Languages {
		if l == lang {
			return true
		}
	}
	return false
}

// Path returns the file Save should write: cfgFile when set, else the default location
func Path(cfgFile string) string {
	if cfgFile != "" {
		return cfgFile
	}
	return filepath.Join(getConfigDir(), "config.yaml")
}

// getConfigDir returns the configuration directory based on OS
func getConfigDir() string {
	home, _ := os.UserHomeDir()

	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "cccs")
		}
		return filepath.Join(home, "AppData", "Roaming", "cccs")
	default:
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			return filepath.Join(xdgConfig, "cccs")
		}
		return filepath.Join(home, ".config", "cccs")
	}
}

// GetConfigDir returns the configuration directory
func GetConfigDir() string {
	return getConfigDir()
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("version", cfg.Version)
	v.SetDefault("claude.dir", cfg.Claude.Dir)
	v.SetDefault("claude.settingsFile", cfg.Claude.SettingsFile)
	v.SetDefault("claude.profileSuffix", cfg.Claude.ProfileSuffix)
	v.SetDefault("claude.volatileField", cfg.Claude.VolatileField)
	v.SetDefault("monitor.intervalMinutes", cfg.Monitor.IntervalMinutes)
	v.SetDefault("monitor.autoStart", cfg.Monitor.AutoStart)
	v.SetDefault("monitor.fsnotify", cfg.Monitor.FSNotify)
	v.SetDefault("monitor.debounce", cfg.Monitor.Debounce)
	v.SetDefault("monitor.metricsAddr", cfg.Monitor.MetricsAddr)
	v.SetDefault("switch.keepBackups", cfg.Switch.KeepBackups)
	v.SetDefault("notifications.enabled", cfg.Notifications.Enabled)
	v.SetDefault("notifications.sound", cfg.Notifications.Sound)
	v.SetDefault("notifications.cooldown", cfg.Notifications.Cooldown)
	v.SetDefault("language", cfg.Language)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.file", cfg.Logging.File)
}
