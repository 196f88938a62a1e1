// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftforge Contributors

package config

import (
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	dferr "github.com/draftforge-dev/draftforge/pkg/errors"
	"github.com/spf13/viper"
)

// KnownProviders are the provider names the gateway can construct backends
// for. Config entries under providers: must use one of these keys.
var KnownProviders = map[string]bool{
	"gemini":    true,
	"groq":      true,
	"openai":    true,
	"anthropic": true,
}

// Config is the top-level Draftforge configuration.
type Config struct {
	Server    ServerConfig              `mapstructure:"server"`
	Providers map[string]ProviderConfig `mapstructure:"providers"`
	Router    RouterConfig              `mapstructure:"router"`
	Storage   StorageConfig             `mapstructure:"storage"`
}

// ServerConfig controls how the gateway listens for connections.
type ServerConfig struct {
	Listen string `mapstructure:"listen"`
}

// ProviderConfig holds credentials and routing metadata for one LLM
// provider. The api_key value may be a literal, an env expansion done by
// the caller, or a keyring://service/key URI resolved at load time.
type ProviderConfig struct {
	APIKey          string `mapstructure:"api_key"`
	Endpoint        string `mapstructure:"endpoint"`
	Model           string `mapstructure:"model"`
	Priority        int    `mapstructure:"priority"`
	MaxOutputTokens int    `mapstructure:"max_output_tokens"`
}

// RouterConfig tunes the failover router.
type RouterConfig struct {
	FailureThreshold int           `mapstructure:"failure_threshold"`
	Cooldown         time.Duration `mapstructure:"cooldown"`
	AttemptTimeout   time.Duration `mapstructure:"attempt_timeout"`
	Batch            BatchConfig   `mapstructure:"batch"`
}

// BatchConfig tunes parallel fan-out requests.
type BatchConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxParallel int           `mapstructure:"max_parallel"`
}

// StorageConfig selects the audit log backend.
type StorageConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

// SetDefaults installs the default values on a Viper instance. Exposed so
// the CLI layer can share one Viper across flags, env, and file sources.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.listen", "127.0.0.1:18650")
	v.SetDefault("router.failure_threshold", 3)
	v.SetDefault("router.cooldown", "10m")
	v.SetDefault("router.attempt_timeout", "2m")
	v.SetDefault("router.batch.timeout", "10m")
	v.SetDefault("router.batch.max_parallel", 4)
	v.SetDefault("storage.backend", "sqlite")
	v.SetDefault("storage.path", "draftforge.db")
}

// SetupEnv wires DRAFTFORGE_-prefixed environment overrides.
func SetupEnv(v *viper.Viper) {
	v.SetEnvPrefix("DRAFTFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	SetupEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, dferr.Errorf(dferr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}

	return FromViper(v)
}

// FromViper unmarshals and validates a fully populated Viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, dferr.Errorf(dferr.CodeConfigParseInvalidFormat, "unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, dferr.Errorf(dferr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// Validate checks the configuration for logical errors. It returns a slice
// of all validation errors found, collecting all issues rather than
// stopping at the first one.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateServer()...)
	errs = append(errs, c.validateProviders()...)
	errs = append(errs, c.validateRouter()...)
	errs = append(errs, c.validateStorage()...)

	return errs
}

func (c *Config) validateServer() []error {
	var errs []error

	if c.Server.Listen == "" {
		errs = append(errs, dferr.Errorf(dferr.CodeConfigValidateInvalidValue, "config: server.listen must not be empty"))
		return errs
	}

	_, portStr, err := net.SplitHostPort(c.Server.Listen)
	if err != nil {
		errs = append(errs, dferr.Errorf(dferr.CodeConfigValidateInvalidValue,
			"config: server.listen must be a valid host:port address, got %q: %w",
			c.Server.Listen, err,
		))
		return errs
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		errs = append(errs, dferr.Errorf(dferr.CodeConfigValidateInvalidValue,
			"config: server.listen port must be a number, got %q", portStr))
	} else if port < 1 || port > 65535 {
		errs = append(errs, dferr.Errorf(dferr.CodeConfigValidateInvalidValue,
			"config: server.listen port must be between 1 and 65535, got %d", port))
	}

	return errs
}

func (c *Config) validateProviders() []error {
	var errs []error

	seenPriority := make(map[int]string)
	for name, pc := range c.Providers {
		if !KnownProviders[name] {
			errs = append(errs, dferr.Errorf(dferr.CodeConfigValidateInvalidValue,
				"config: providers.%s is not a known provider", name))
			continue
		}
		if pc.Priority <= 0 {
			errs = append(errs, dferr.Errorf(dferr.CodeConfigValidateInvalidValue,
				"config: providers.%s.priority must be greater than 0, got %d", name, pc.Priority))
		} else if other, dup := seenPriority[pc.Priority]; dup {
			errs = append(errs, dferr.Errorf(dferr.CodeConfigValidateInvalidValue,
				"config: providers.%s.priority %d already used by providers.%s", name, pc.Priority, other))
		} else {
			seenPriority[pc.Priority] = name
		}
		if pc.MaxOutputTokens < 0 {
			errs = append(errs, dferr.Errorf(dferr.CodeConfigValidateInvalidValue,
				"config: providers.%s.max_output_tokens must not be negative, got %d", name, pc.MaxOutputTokens))
		}
	}

	return errs
}

func (c *Config) validateRouter() []error {
	var errs []error

	if c.Router.FailureThreshold <= 0 {
		errs = append(errs, dferr.Errorf(dferr.CodeConfigValidateInvalidValue,
			"config: router.failure_threshold must be greater than 0, got %d", c.Router.FailureThreshold))
	}
	if c.Router.Cooldown <= 0 {
		errs = append(errs, dferr.Errorf(dferr.CodeConfigValidateInvalidValue,
			"config: router.cooldown must be a positive duration, got %s", c.Router.Cooldown))
	}
	if c.Router.AttemptTimeout <= 0 {
		errs = append(errs, dferr.Errorf(dferr.CodeConfigValidateInvalidValue,
			"config: router.attempt_timeout must be a positive duration, got %s", c.Router.AttemptTimeout))
	}
	if c.Router.Batch.Timeout <= 0 {
		errs = append(errs, dferr.Errorf(dferr.CodeConfigValidateInvalidValue,
			"config: router.batch.timeout must be a positive duration, got %s", c.Router.Batch.Timeout))
	}
	if c.Router.Batch.MaxParallel <= 0 {
		errs = append(errs, dferr.Errorf(dferr.CodeConfigValidateInvalidValue,
			"config: router.batch.max_parallel must be greater than 0, got %d", c.Router.Batch.MaxParallel))
	}

	return errs
}

func (c *Config) validateStorage() []error {
	var errs []error

	validBackends := map[string]bool{"sqlite": true, "memory": true}
	if !validBackends[c.Storage.Backend] {
		errs = append(errs, dferr.Errorf(dferr.CodeConfigValidateInvalidValue,
			"config: storage.backend must be one of [sqlite, memory], got %q", c.Storage.Backend))
	}
	if c.Storage.Backend == "sqlite" && c.Storage.Path == "" {
		errs = append(errs, dferr.Errorf(dferr.CodeConfigValidateInvalidValue,
			"config: storage.path must not be empty for the sqlite backend"))
	}

	return errs
}
