// Package config loads taskmate settings from ~/.taskmate/config.toml and
// TASKMATE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvPrefix = "TASKMATE"
	Dir       = ".taskmate"
	FileName  = "config.toml"

	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Resolver ResolverConfig `mapstructure:"resolver"`
	Sessions SessionsConfig `mapstructure:"sessions"`
	Tasks    TasksConfig    `mapstructure:"tasks"`
	Roster   RosterConfig   `mapstructure:"roster"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Secrets  SecretsConfig  `mapstructure:"secrets"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type ResolverConfig struct {
	Metric       string  `mapstructure:"metric"`
	AcceptAbove  float64 `mapstructure:"accept_threshold"`
	ConfirmAbove float64 `mapstructure:"confirm_threshold"`
}

type SessionsConfig struct {
	IdleTimeout   time.Duration `mapstructure:"idle_timeout"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type TasksConfig struct {
	DBPath          string `mapstructure:"db_path"`
	SeedDemo        bool   `mapstructure:"seed_demo"`
	DefaultDueDays  int    `mapstructure:"default_due_days"`
	DefaultPriority string `mapstructure:"default_priority"`
}

type RosterConfig struct {
	Path    string   `mapstructure:"path"`
	Members []string `mapstructure:"members"`
}

type LLMConfig struct {
	Provider    string  `mapstructure:"provider"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	// HistoryTurns bounds how many earlier turns are replayed to the model.
	HistoryTurns int `mapstructure:"history_turns"`
}

type SecretsConfig struct {
	Dir string `mapstructure:"dir"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// New builds a viper instance with defaults, environment overrides and the
// config file. A missing default config file is not an error; a missing
// explicit one is.
func New(configFile string) (*viper.Viper, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	base := filepath.Join(home, Dir)

	v := viper.New()
	setDefaults(v, base)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigType("toml")

	explicit := configFile != ""
	if !explicit {
		configFile = filepath.Join(base, FileName)
	}
	v.SetConfigFile(configFile)

	if err := v.ReadInConfig(); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return v, nil
		}
		return nil, fmt.Errorf("read config %s: %w", configFile, err)
	}

	return v, nil
}

func setDefaults(v *viper.Viper, base string) {
	v.SetDefault("server.addr", "127.0.0.1:8000")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("resolver.metric", "jaro")
	v.SetDefault("resolver.accept_threshold", 90.0)
	v.SetDefault("resolver.confirm_threshold", 70.0)

	v.SetDefault("sessions.idle_timeout", 24*time.Hour)
	v.SetDefault("sessions.sweep_interval", 10*time.Minute)

	v.SetDefault("tasks.db_path", filepath.Join(base, "tasks.db"))
	v.SetDefault("tasks.seed_demo", true)
	v.SetDefault("tasks.default_due_days", 7)
	v.SetDefault("tasks.default_priority", "medium")

	v.SetDefault("roster.path", filepath.Join(base, "team.toml"))

	v.SetDefault("llm.provider", ProviderOpenAI)
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.temperature", 0.1)
	v.SetDefault("llm.max_tokens", 1024)
	v.SetDefault("llm.history_turns", 20)

	v.SetDefault("secrets.dir", filepath.Join(base, "secrets"))

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Resolver.ConfirmAbove < 0 || c.Resolver.ConfirmAbove >= c.Resolver.AcceptAbove || c.Resolver.AcceptAbove > 100 {
		errs = append(errs, fmt.Errorf("resolver thresholds must satisfy 0 <= confirm (%.1f) < accept (%.1f) <= 100", c.Resolver.ConfirmAbove, c.Resolver.AcceptAbove))
	}
	if c.Sessions.IdleTimeout <= 0 {
		errs = append(errs, errors.New("sessions.idle_timeout must be positive"))
	}
	if c.Sessions.SweepInterval < 0 {
		errs = append(errs, errors.New("sessions.sweep_interval must not be negative"))
	}
	if strings.TrimSpace(c.Tasks.DBPath) == "" {
		errs = append(errs, errors.New("tasks.db_path is required"))
	}
	if c.Tasks.DefaultDueDays <= 0 {
		errs = append(errs, errors.New("tasks.default_due_days must be positive"))
	}
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderAnthropic, "":
	default:
		errs = append(errs, fmt.Errorf("llm.provider %q is not one of openai, anthropic", c.LLM.Provider))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, errors.New("llm.temperature must be within [0, 2]"))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func (c Config) DefaultDue() time.Duration {
	return time.Duration(c.Tasks.DefaultDueDays) * 24 * time.Hour
}
