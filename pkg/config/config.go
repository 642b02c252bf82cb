// Package config loads specdiff settings from a TOML file.
//
// The file is optional. Without one, [Default] applies. Command-line flags
// override whatever the file sets.
//
// Example config.toml:
//
//	workers = 8
//	range_policy = "extrema"
//	pair_files = true
//	strict = false
//
//	[facts]
//	command = "solver facts {}"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "168h"
//
//	[server]
//	addr = ":8080"
package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/specdiff/pkg/cache"
	"github.com/matzehuels/specdiff/pkg/errors"
	"github.com/matzehuels/specdiff/pkg/versions"
)

const (
	appName  = "specdiff"
	fileName = "config.toml"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// DefaultServerAddr is where "specdiff serve" listens unless told otherwise.
const DefaultServerAddr = ":8080"

// Config is the complete settings file.
type Config struct {
	Workers     int    `toml:"workers"`
	RangePolicy string `toml:"range_policy"`
	PairFiles   bool   `toml:"pair_files"`
	Strict      bool   `toml:"strict"`

	Facts FactsConfig `toml:"facts"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// ServerConfig configures the artifact server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// FactsConfig selects the fact deriver.
type FactsConfig struct {
	// Command runs an external deriver; "{}" stands for the manifest path.
	// Empty derives facts from the manifest itself.
	Command string `toml:"command"`
}

// CacheConfig configures the fact cache.
type CacheConfig struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	TTL           Duration `toml:"ttl"`
	Prefix        string   `toml:"prefix"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisDB       int      `toml:"redis_db"`
	RedisPassword string   `toml:"redis_password"`

	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// Duration is a time.Duration written as a string such as "720h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the settings used when no file is present.
func Default() *Config {
	return &Config{
		RangePolicy: string(versions.DefaultRangePolicy),
		PairFiles:   true,
		Cache: CacheConfig{
			Backend: BackendFile,
			TTL:     Duration{cache.TTLFacts},
		},
		Server: ServerConfig{Addr: DefaultServerAddr},
	}
}

// Path returns the default config file location:
// $XDG_CONFIG_HOME/specdiff/config.toml, else ~/.config/specdiff/config.toml.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, fileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, fileName), nil
}

// Load reads the config file at path over [Default]. An empty path selects
// [Path]; a missing file at the default location is not an error, but a
// missing explicit path is.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "workers must be >= 0, got %d", c.Workers)
	}
	if _, err := versions.ParseRangePolicy(c.RangePolicy); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "range_policy")
	}

	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
		}
		if c.Cache.RedisDB < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_db must be >= 0")
		}
	case BackendMongo:
		if c.Cache.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.mongo_uri is required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend %q (must be one of: file, redis, mongo, none)", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server.addr must not be empty")
	}
	return nil
}

// RangePolicyValue returns the validated range policy.
func (c *Config) RangePolicyValue() versions.RangePolicy {
	p, err := versions.ParseRangePolicy(c.RangePolicy)
	if err != nil {
		return versions.DefaultRangePolicy
	}
	return p
}
