// config.go - Loads ragchat settings from a config file, RAGCHAT_* environment variables and flags.

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
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override, e.g. RAGCHAT_API_BASE_URL.
const EnvPrefix = "RAGCHAT"

type Config struct {
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	RAG     RAGConfig     `mapstructure:"rag" yaml:"rag"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	UI      UIConfig      `mapstructure:"ui" yaml:"ui"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Mock    MockConfig    `mapstructure:"mock" yaml:"mock"`
}

type APIConfig struct {
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	Variant string        `mapstructure:"variant" yaml:"variant"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type RAGConfig struct {
	NamespaceID string `mapstructure:"namespace_id" yaml:"namespace_id"`
	TopK        int    `mapstructure:"top_k" yaml:"top_k"`
	TokenBudget int    `mapstructure:"token_budget" yaml:"token_budget"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
	Path   string `mapstructure:"path" yaml:"path"`
}

type UIConfig struct {
	CollapseWidth int           `mapstructure:"collapse_width" yaml:"collapse_width"`
	NoticeTTL     time.Duration `mapstructure:"notice_ttl" yaml:"notice_ttl"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

type MockConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Database string `mapstructure:"database" yaml:"database"`
}

// Dir is the per-user state directory (~/.ragchat).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ragchat"
	}
	return filepath.Join(home, ".ragchat")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://127.0.0.1:8000")
	v.SetDefault("api.variant", "chat")
	v.SetDefault("api.timeout", time.Duration(0))
	v.SetDefault("rag.namespace_id", "default")
	v.SetDefault("rag.top_k", 5)
	v.SetDefault("rag.token_budget", 2000)
	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.path", Dir())
	v.SetDefault("ui.collapse_width", 100)
	v.SetDefault("ui.notice_ttl", 3*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", filepath.Join(Dir(), "ragchat.log"))
	v.SetDefault("mock.addr", "127.0.0.1:8000")
	v.SetDefault("mock.database", ":memory:")
}

// Load reads configuration. An explicit file must exist; otherwise config.yaml
// is looked up in the working directory and ~/.ragchat and is optional.
// flags, when non-nil, override file and environment values.
func Load(file string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(Dir())
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Storage.Path = expandHome(cfg.Storage.Path)
	cfg.Log.File = expandHome(cfg.Log.File)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"base-url":    "api.base_url",
	"variant":     "api.variant",
	"storage":     "storage.driver",
	"log-level":   "log.level",
	"mock-addr":   "mock.addr",
	"mock-db":     "mock.database",
	"namespace":   "rag.namespace_id",
	"top-k":       "rag.top_k",
	"token-limit": "rag.token_budget",
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	switch c.API.Variant {
	case "chat", "rag":
	default:
		return fmt.Errorf("api.variant must be chat or rag, got %q", c.API.Variant)
	}
	switch c.Storage.Driver {
	case "file", "sqlite":
	default:
		return fmt.Errorf("storage.driver must be file or sqlite, got %q", c.Storage.Driver)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}
	return nil
}

// YAML renders the effective configuration.
func (c *Config) YAML() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}
	return string(out), nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
