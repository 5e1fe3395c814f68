// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CloudPrep Contributors

// Package config loads process configuration from defaults, an optional
// YAML file, and command-line flag overrides, in that order.
package config

import (
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Default values applied when neither the config file nor flags set a key.
const (
	DefaultListenAddr    = ":5000"
	DefaultMetricsAddr   = "127.0.0.1:9100"
	DefaultLogFormat     = "json"
	DefaultMongoURI      = "mongodb://localhost:27017"
	DefaultMongoDatabase = "cloudprep"
	DefaultMongoColl     = "users"
	DefaultSessionTTL    = 24 * time.Hour
	DefaultSweepSchedule = "@every 5m"
)

// Config holds the full process configuration.
type Config struct {
	ListenAddr  string        `koanf:"listen_addr"`
	MetricsAddr string        `koanf:"metrics_addr"`
	LogFormat   string        `koanf:"log_format"`
	Mongo       MongoConfig   `koanf:"mongo"`
	Session     SessionConfig `koanf:"session"`
}

// MongoConfig holds user directory connection parameters.
type MongoConfig struct {
	URI        string `koanf:"uri"`
	Database   string `koanf:"database"`
	Collection string `koanf:"collection"`
}

// SessionConfig holds session store parameters.
type SessionConfig struct {
	TTL           time.Duration `koanf:"ttl"`
	SweepSchedule string        `koanf:"sweep_schedule"`
}

// flagKeys maps command-line flag names to config keys. Flags not listed
// here (e.g. --config) are not config values and are skipped.
var flagKeys = map[string]string{
	"listen-addr":            "listen_addr",
	"metrics-addr":           "metrics_addr",
	"log-format":             "log_format",
	"mongo-uri":              "mongo.uri",
	"mongo-database":         "mongo.database",
	"mongo-collection":       "mongo.collection",
	"session-ttl":            "session.ttl",
	"session-sweep-schedule": "session.sweep_schedule",
}

// Load reads configuration from the optional YAML file at path, then applies
// changed flags from flags as overrides. Either argument may be zero ("" /
// nil). The returned config has defaults applied and is validated.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.Code("CONFIG_UNMARSHAL_FAILED").Wrap(err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.MetricsAddr == "" {
		c.MetricsAddr = DefaultMetricsAddr
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	if c.Mongo.URI == "" {
		c.Mongo.URI = DefaultMongoURI
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = DefaultMongoDatabase
	}
	if c.Mongo.Collection == "" {
		c.Mongo.Collection = DefaultMongoColl
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = DefaultSessionTTL
	}
	if c.Session.SweepSchedule == "" {
		c.Session.SweepSchedule = DefaultSweepSchedule
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").
			With("log_format", c.LogFormat).
			Errorf("log_format must be \"json\" or \"text\"")
	}
	if c.Session.TTL < 0 {
		return oops.Code("CONFIG_INVALID").
			With("ttl", c.Session.TTL).
			Errorf("session.ttl must not be negative")
	}
	return nil
}
