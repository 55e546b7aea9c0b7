// Package config loads the cratesmith service configuration from an optional
// TOML file and CRATESMITH_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/nightconcept/cratesmith/internal/core/source"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "cratesmith.toml"

// Starter storage backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendGitHub = "github"
)

// Config is built once at start-up and passed by value afterwards.
type Config struct {
	Label               string        `toml:"label"`
	Workspace           string        `toml:"workspace"`
	Host                string        `toml:"host"`
	Port                int           `toml:"port"`
	LogLevel            string        `toml:"log_level"`
	MaxIdentityAttempts int           `toml:"max_identity_attempts"`
	SweepAfter          string        `toml:"sweep_after"`
	Starters            StarterConfig `toml:"starters"`
}

// StarterConfig selects and configures the starter storage backend.
type StarterConfig struct {
	Backend         string `toml:"backend"`
	Dir             string `toml:"dir"`
	RedisAddr       string `toml:"redis_addr"`
	RedisPrefix     string `toml:"redis_prefix,omitempty"`
	MongoURI        string `toml:"mongo_uri,omitempty"`
	MongoDatabase   string `toml:"mongo_database,omitempty"`
	MongoCollection string `toml:"mongo_collection,omitempty"`
	GitHubSource    string `toml:"github_source,omitempty"`
}

// MinSweepAfter is the smallest accepted sweep_after.
const MinSweepAfter = time.Minute

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Label:               "Generated by cratesmith",
		Workspace:           filepath.Join(os.TempDir(), "cratesmith"),
		Host:                "127.0.0.1",
		Port:                8080,
		LogLevel:            "info",
		MaxIdentityAttempts: 16,
		SweepAfter:          "1h",
		Starters: StarterConfig{
			Backend:   BackendFile,
			Dir:       "starters",
			RedisAddr: "localhost:6379",
		},
	}
}

// Load reads the configuration. An empty path falls back to FileName in the
// working directory when it exists. Environment variables win over the file.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = FileName
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"CRATESMITH_LABEL":            &c.Label,
		"CRATESMITH_WORKSPACE":        &c.Workspace,
		"CRATESMITH_HOST":             &c.Host,
		"CRATESMITH_LOG_LEVEL":        &c.LogLevel,
		"CRATESMITH_SWEEP_AFTER":      &c.SweepAfter,
		"CRATESMITH_CONTENT":          &c.Starters.Dir,
		"CRATESMITH_STARTER_BACKEND":  &c.Starters.Backend,
		"CRATESMITH_REDIS_ADDR":       &c.Starters.RedisAddr,
		"CRATESMITH_REDIS_PREFIX":     &c.Starters.RedisPrefix,
		"CRATESMITH_MONGO_URI":        &c.Starters.MongoURI,
		"CRATESMITH_MONGO_DATABASE":   &c.Starters.MongoDatabase,
		"CRATESMITH_MONGO_COLLECTION": &c.Starters.MongoCollection,
		"CRATESMITH_GITHUB_SOURCE":    &c.Starters.GitHubSource,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"CRATESMITH_PORT":                  &c.Port,
		"CRATESMITH_MAX_IDENTITY_ATTEMPTS": &c.MaxIdentityAttempts,
	}
	for key, dst := range ints {
		v, ok := lookup(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = n
	}
	return nil
}

// Validate checks the values the service cannot start without.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Label) == "" {
		errs = append(errs, errors.New("label must not be empty"))
	}
	if strings.ContainsAny(c.Label, "\r\n") {
		errs = append(errs, errors.New("label must be a single line"))
	}
	if c.Workspace == "" {
		errs = append(errs, errors.New("workspace must not be empty"))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range 1-65535", c.Port))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.MaxIdentityAttempts < 1 {
		errs = append(errs, fmt.Errorf("max_identity_attempts must be at least 1, got %d", c.MaxIdentityAttempts))
	}
	if d, err := time.ParseDuration(c.SweepAfter); err != nil || d < MinSweepAfter {
		errs = append(errs, fmt.Errorf("sweep_after must be a duration of at least %s, got %q", MinSweepAfter, c.SweepAfter))
	}

	switch c.Starters.Backend {
	case BackendFile:
		if c.Starters.Dir == "" {
			errs = append(errs, errors.New("starters.dir is required for the file backend"))
		}
	case BackendRedis:
		if c.Starters.RedisAddr == "" {
			errs = append(errs, errors.New("starters.redis_addr is required for the redis backend"))
		}
	case BackendMongo:
		if c.Starters.MongoURI == "" {
			errs = append(errs, errors.New("starters.mongo_uri is required for the mongo backend"))
		}
	case BackendGitHub:
		if _, err := source.ParseLocation(c.Starters.GitHubSource); err != nil {
			errs = append(errs, fmt.Errorf("starters.github_source: %w", err))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown starters.backend %q", c.Starters.Backend))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// Level returns the parsed log level. Validate has already rejected bad values.
func (c Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// SweepInterval returns sweep_after as a duration.
func (c Config) SweepInterval() time.Duration {
	d, err := time.ParseDuration(c.SweepAfter)
	if err != nil {
		return time.Hour
	}
	return d
}

// Addr is the listen address of the HTTP server.
func (c Config) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// EnsureWorkspace creates the workspace directory when it is missing.
func (c Config) EnsureWorkspace() error {
	if err := os.MkdirAll(c.Workspace, 0755); err != nil {
		return fmt.Errorf("failed to create workspace %s: %w", c.Workspace, err)
	}
	return nil
}

// Write encodes cfg to <dirPath>/cratesmith.toml.
// It will overwrite the file if it already exists.
func Write(dirPath string, cfg Config) error {
	buf := new(bytes.Buffer)
	if err := toml.NewEncoder(buf).Encode(cfg); err != nil {
		return err
	}

	fullPath := filepath.Join(dirPath, FileName)
	file, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	_, err = file.Write(buf.Bytes())
	return err
}
