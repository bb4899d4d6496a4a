package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server" json:"server"`
	Logging   LoggingConfig   `mapstructure:"logging" json:"logging"`
	Embedding EmbeddingConfig `mapstructure:"embedding" json:"embedding"`
	Analysis  AnalysisConfig  `mapstructure:"analysis" json:"analysis"`
}

type ServerConfig struct {
	Addr          string   `mapstructure:"addr" json:"addr"`
	AllowOrigins  []string `mapstructure:"allow_origins" json:"allow_origins"`
	EffectiveHost string   `mapstructure:"-" json:"effectiveHost"`
	Port          int      `mapstructure:"-" json:"port"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" json:"level"`
	Format string `mapstructure:"format" json:"format"`
}

// EmbeddingConfig selects the optional embedding backend used for the
// disorder score. Provider "none" disables it.
type EmbeddingConfig struct {
	Provider  string        `mapstructure:"provider" json:"provider"`
	Path      string        `mapstructure:"path" json:"path"`
	// URL is not used by the localai, cohere and jina clients.
	URL       string        `mapstructure:"url" json:"url"`
	Model     string        `mapstructure:"model" json:"model"`
	APIKey    string        `mapstructure:"api_key" json:"api_key,omitempty"`
	MaxTokens int           `mapstructure:"max_tokens" json:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout" json:"timeout"`
}

type AnalysisConfig struct {
	KnowledgeFile string `mapstructure:"knowledge_file" json:"knowledge_file"`
}

const envPrefix = "PROTEOMORPHIC"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":5000")
	v.SetDefault("server.allow_origins", []string{"*"})
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("embedding.provider", "none")
	v.SetDefault("embedding.max_tokens", 1024)
	v.SetDefault("embedding.timeout", "30s")
	v.SetDefault("embedding.path", "")
	v.SetDefault("embedding.url", "")
	v.SetDefault("embedding.model", "")
	v.SetDefault("embedding.api_key", "")
	v.SetDefault("analysis.knowledge_file", "")
}

// Load reads config.yaml from override, the working directory or
// ~/.proteomorphic, then applies PROTEOMORPHIC_* environment overrides.
// A missing config file is not an error.
func Load(override string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if override != "" {
		v.SetConfigFile(override)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".proteomorphic"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) finalize() error {
	if err := cfg.Server.resolveAddr(); err != nil {
		return err
	}

	cfg.Embedding.Provider = strings.ToLower(strings.TrimSpace(cfg.Embedding.Provider))
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "none"
	}
	if cfg.Embedding.MaxTokens <= 0 {
		return fmt.Errorf("embedding.max_tokens must be positive, got %d", cfg.Embedding.MaxTokens)
	}

	if home, err := os.UserHomeDir(); err == nil {
		for _, p := range []*string{&cfg.Embedding.Path, &cfg.Analysis.KnowledgeFile} {
			if strings.HasPrefix(*p, "~/") {
				*p = filepath.Join(home, (*p)[2:])
			}
		}
	}

	// Override the API key from an inline placeholder ($VAR) or <PROVIDER>_API_KEY
	apiKey := cfg.Embedding.APIKey
	if strings.HasPrefix(apiKey, "$") {
		apiKey = os.Getenv(strings.TrimPrefix(apiKey, "$"))
	} else if apiKey == "" && cfg.Embedding.Provider != "none" {
		name := strings.ToUpper(strings.ReplaceAll(cfg.Embedding.Provider, "-", "_")) + "_API_KEY"
		apiKey = os.Getenv(name)
	}
	cfg.Embedding.APIKey = apiKey

	return nil
}

// SetAddr replaces server.addr and recomputes the effective host and port.
func (cfg *Config) SetAddr(addr string) error {
	prev := cfg.Server
	cfg.Server.Addr = addr
	if err := cfg.Server.resolveAddr(); err != nil {
		cfg.Server = prev
		return err
	}
	return nil
}

func (sc *ServerConfig) resolveAddr() error {
	host, portStr, err := net.SplitHostPort(sc.Addr)
	if err != nil {
		return fmt.Errorf("invalid server.addr %q: %w", sc.Addr, err)
	}
	p, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid port %q in server.addr %q: %w", portStr, sc.Addr, err)
	}
	sc.EffectiveHost = host
	if sc.EffectiveHost == "" {
		sc.EffectiveHost = "0.0.0.0"
	}
	sc.Port = p
	return nil
}
