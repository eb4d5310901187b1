// Package config loads docchat settings from a YAML file, DOCCHAT_* environment
// variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/hubenschmidt/docchat/core"
	"github.com/hubenschmidt/docchat/llm"
	"github.com/hubenschmidt/docchat/vector"
)

const (
	AppName   = "docchat"
	EnvPrefix = "DOCCHAT"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	OpenAI OpenAIConfig `mapstructure:"openai"`
	RAG    RAGConfig    `mapstructure:"rag"`
	Store  StoreConfig  `mapstructure:"store"`
	Traces TracesConfig `mapstructure:"traces"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type OpenAIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	ChatModel   string        `mapstructure:"chat_model"`
	EmbedModel  string        `mapstructure:"embed_model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type RAGConfig struct {
	TopK          int    `mapstructure:"top_k"`
	SystemPrompt  string `mapstructure:"system_prompt"`
	DocumentLabel string `mapstructure:"document_label"`
}

type StoreConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
	DSN     string `mapstructure:"dsn"`
	Table   string `mapstructure:"table"`
}

// TracesConfig selects trace persistence. An empty DSN disables it.
type TracesConfig struct {
	DSN string `mapstructure:"dsn"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":3000"},
		OpenAI: OpenAIConfig{
			BaseURL:     llm.DefaultOpenAIBaseURL,
			ChatModel:   llm.DefaultChatModel,
			EmbedModel:  llm.DefaultEmbedModel,
			Temperature: 0.7,
			MaxTokens:   1000,
			Timeout:     60 * time.Second,
		},
		RAG: RAGConfig{TopK: vector.DefaultTopK},
		Store: StoreConfig{
			Backend: vector.BackendFile,
			Path:    vector.DefaultStorePath,
			Table:   vector.DefaultTable,
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}

// SetDefaults registers every key with v so environment variables resolve
// even when no config file sets them.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", d.OpenAI.BaseURL)
	v.SetDefault("openai.chat_model", d.OpenAI.ChatModel)
	v.SetDefault("openai.embed_model", d.OpenAI.EmbedModel)
	v.SetDefault("openai.temperature", d.OpenAI.Temperature)
	v.SetDefault("openai.max_tokens", d.OpenAI.MaxTokens)
	v.SetDefault("openai.timeout", d.OpenAI.Timeout)
	v.SetDefault("rag.top_k", d.RAG.TopK)
	v.SetDefault("rag.system_prompt", "")
	v.SetDefault("rag.document_label", "")
	v.SetDefault("store.backend", d.Store.Backend)
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.table", d.Store.Table)
	v.SetDefault("traces.dsn", "")
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Load reads configFile, or searches for docchat.yaml when it is empty, then
// overlays DOCCHAT_* variables. OPENAI_API_KEY is honoured for openai.api_key.
// A missing config file is not an error.
func Load(v *viper.Viper, configFile string) (Config, error) {
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, "."+AppName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("openai.api_key", EnvPrefix+"_OPENAI_API_KEY", "OPENAI_API_KEY"); err != nil {
		return Config{}, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every out-of-range setting at once. A missing API key is
// not a config error; the chat endpoint reports it per request.
func (c Config) Validate() error {
	var errs []error

	if c.RAG.TopK <= 0 {
		errs = append(errs, fmt.Errorf("rag.top_k must be positive, got %d", c.RAG.TopK))
	}
	if c.OpenAI.Temperature < 0 || c.OpenAI.Temperature > 2 {
		errs = append(errs, fmt.Errorf("openai.temperature must be in [0, 2], got %g", c.OpenAI.Temperature))
	}
	if c.OpenAI.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("openai.max_tokens must be positive, got %d", c.OpenAI.MaxTokens))
	}
	if c.OpenAI.ChatModel == "" {
		errs = append(errs, errors.New("openai.chat_model is required"))
	}
	if c.OpenAI.EmbedModel == "" {
		errs = append(errs, errors.New("openai.embed_model is required"))
	}

	switch c.Store.Backend {
	case vector.BackendFile:
	case vector.BackendPgVector:
		if c.Store.DSN == "" {
			errs = append(errs, errors.New("store.dsn is required for the pgvector backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.backend must be %q or %q, got %q",
			vector.BackendFile, vector.BackendPgVector, c.Store.Backend))
	}

	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or console, got %q", c.Log.Format))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", core.ErrInvalidConfig, err)
	}
	return nil
}

// ChatModel returns the generation settings.
func (c Config) ChatModel() core.ModelConfig {
	return core.DefaultModelConfig(c.OpenAI.ChatModel).
		WithTemperature(c.OpenAI.Temperature).
		WithMaxTokens(c.OpenAI.MaxTokens)
}

// StoreLocation is the path or DSN the configured backend reads from.
func (c Config) StoreLocation() string {
	if c.Store.Backend == vector.BackendPgVector {
		return c.Store.DSN
	}
	return c.Store.Path
}

func (c Config) ClientConfig() llm.ClientConfig {
	return llm.ClientConfig{
		APIKey:  c.OpenAI.APIKey,
		BaseURL: c.OpenAI.BaseURL,
		Timeout: c.OpenAI.Timeout,
	}
}
