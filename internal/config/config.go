package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/entrepeneur4lyf/shopforge/internal/backend"
	"github.com/entrepeneur4lyf/shopforge/internal/storage"
	"github.com/spf13/viper"
)

// BackendConfig describes how to reach the assistant backend
type BackendConfig struct {
	BaseURL   string        `json:"baseURL" mapstructure:"baseURL"`
	Timeout   time.Duration `json:"timeout" mapstructure:"timeout"`
	UserAgent string        `json:"userAgent" mapstructure:"userAgent"`
}

// RetryConfig controls backend retries
type RetryConfig struct {
	MaxRetries int           `json:"maxRetries" mapstructure:"maxRetries"`
	BaseDelay  time.Duration `json:"baseDelay" mapstructure:"baseDelay"`
	MaxDelay   time.Duration `json:"maxDelay" mapstructure:"maxDelay"`
}

// StorageConfig selects the persistence backend
type StorageConfig struct {
	Driver    string `json:"driver" mapstructure:"driver"`
	Directory string `json:"directory,omitempty" mapstructure:"directory"`
}

// ChatConfig tunes the conversation
type ChatConfig struct {
	HistoryLimit int           `json:"historyLimit" mapstructure:"historyLimit"`
	TypingDelay  time.Duration `json:"typingDelay" mapstructure:"typingDelay"`
}

// CartConfig tunes cart actions
type CartConfig struct {
	OpenPace time.Duration `json:"openPace" mapstructure:"openPace"`
}

// TUIConfig holds interface defaults. The persisted UI state overrides them.
type TUIConfig struct {
	Theme string `json:"theme" mapstructure:"theme"`
}

// Config is the resolved application configuration
type Config struct {
	Backend BackendConfig `json:"backend" mapstructure:"backend"`
	Retry   RetryConfig   `json:"retry" mapstructure:"retry"`
	Storage StorageConfig `json:"storage" mapstructure:"storage"`
	Chat    ChatConfig    `json:"chat" mapstructure:"chat"`
	Cart    CartConfig    `json:"cart" mapstructure:"cart"`
	TUI     TUIConfig     `json:"tui" mapstructure:"tui"`
	Debug   bool          `json:"debug,omitempty" mapstructure:"debug"`

	// ConfigFile is the file that was read, empty when none was found
	ConfigFile string `json:"-" mapstructure:"-"`
}

// Application constants
const (
	appName          = "shopforge"
	defaultUserAgent = "shopforge/0.1"
)

// Options control how configuration is loaded
type Options struct {
	// ConfigFile is an explicit config path; empty searches the defaults
	ConfigFile string
	Debug      bool
	// Overrides are applied after file and environment, typically from flags
	Overrides map[string]any
}

// Load resolves configuration from defaults, the config file, SHOPFORGE_*
// environment variables and overrides, in increasing precedence
func Load(opts Options) (*Config, error) {
	v := viper.New()
	configureViper(v, opts.ConfigFile)
	setDefaults(v, opts.Debug)

	if err := readConfig(v); err != nil {
		return nil, err
	}
	for key, value := range opts.Overrides {
		v.Set(key, value)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// configureViper sets up viper's configuration paths and environment variables
func configureViper(v *viper.Viper, file string) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("." + appName)
		v.AddConfigPath("$HOME")
		v.AddConfigPath(fmt.Sprintf("$XDG_CONFIG_HOME/%s", appName))
		v.AddConfigPath(fmt.Sprintf("$HOME/.config/%s", appName))
	}
	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// setDefaults configures default values for configuration options
func setDefaults(v *viper.Viper, debug bool) {
	retry := backend.DefaultRetryConfig()

	v.SetDefault("backend.baseURL", backend.DefaultBaseURL)
	v.SetDefault("backend.timeout", "30s")
	v.SetDefault("backend.userAgent", defaultUserAgent)

	v.SetDefault("retry.maxRetries", retry.MaxRetries)
	v.SetDefault("retry.baseDelay", retry.BaseDelay.String())
	v.SetDefault("retry.maxDelay", retry.MaxDelay.String())

	v.SetDefault("storage.driver", storage.DriverFile)
	v.SetDefault("storage.directory", "")

	v.SetDefault("chat.historyLimit", 20)
	v.SetDefault("chat.typingDelay", "15ms")
	v.SetDefault("cart.openPace", "500ms")
	v.SetDefault("tui.theme", "shopforge")

	v.SetDefault("debug", debug)
	if debug {
		v.Set("debug", true)
	}
}

// readConfig reads the config file, tolerating its absence
func readConfig(v *viper.Viper) error {
	err := v.ReadInConfig()
	if err == nil {
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return nil
	}
	return fmt.Errorf("error reading config file: %w", err)
}

// Validate rejects settings the app cannot run with
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Backend.BaseURL) == "" {
		return errors.New("backend.baseURL must not be empty")
	}
	switch c.Storage.Driver {
	case storage.DriverFile, storage.DriverLibSQL, storage.DriverMemory:
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}
	if c.Chat.HistoryLimit <= 0 {
		return fmt.Errorf("chat.historyLimit must be positive, got %d", c.Chat.HistoryLimit)
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.maxRetries must not be negative, got %d", c.Retry.MaxRetries)
	}
	return nil
}

// Paths returns the path manager for the configured data directory
func (c *Config) Paths() *storage.PathManager {
	return storage.NewPathManager(c.Storage.Directory)
}

// BackendClientConfig converts the settings for backend.NewClient
func (c *Config) BackendClientConfig() backend.Config {
	retry := backend.DefaultRetryConfig()
	retry.MaxRetries = c.Retry.MaxRetries
	if c.Retry.BaseDelay > 0 {
		retry.BaseDelay = c.Retry.BaseDelay
	}
	if c.Retry.MaxDelay > 0 {
		retry.MaxDelay = c.Retry.MaxDelay
	}
	return backend.Config{
		BaseURL:   c.Backend.BaseURL,
		Timeout:   c.Backend.Timeout,
		UserAgent: c.Backend.UserAgent,
		Retry:     retry,
	}
}
