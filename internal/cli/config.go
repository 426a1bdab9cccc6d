package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/roach88/reelsync/internal/engine"
)

// Environment variables read by LoadConfig.
const (
	EnvServer         = "REELSYNC_SERVER"
	EnvSession        = "REELSYNC_SESSION"
	EnvManifest       = "REELSYNC_MANIFEST"
	EnvDB             = "REELSYNC_DB"
	EnvAddr           = "REELSYNC_ADDR"
	EnvMaxCommitDepth = "REELSYNC_MAX_COMMIT_DEPTH"
)

// DefaultEnvFile is the .env file read when --env-file is not given.
const DefaultEnvFile = ".env"

// Config holds settings shared by the commands. Flags override it.
type Config struct {
	Server         string `yaml:"server"`
	Session        string `yaml:"session"`
	Manifest       string `yaml:"manifest"`
	DB             string `yaml:"db"`
	Addr           string `yaml:"addr"`
	MaxCommitDepth int    `yaml:"max_commit_depth"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Addr:           ":8080",
		MaxCommitDepth: engine.DefaultMaxCommitDepth,
	}
}

// LoadConfig layers the defaults, the YAML file at path (skipped when
// empty), the env file (tolerated when missing) and the process
// environment, in that order.
func LoadConfig(path, envFile string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	vars := map[string]string{}
	if envFile != "" {
		fileVars, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			vars = fileVars
		case errors.Is(err, fs.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("read env file %s: %w", envFile, err)
		}
	}
	for _, key := range []string{EnvServer, EnvSession, EnvManifest, EnvDB, EnvAddr, EnvMaxCommitDepth} {
		if v, ok := os.LookupEnv(key); ok {
			vars[key] = v
		}
	}

	if err := cfg.apply(vars); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) apply(vars map[string]string) error {
	set := func(key string, dst *string) {
		if v := vars[key]; v != "" {
			*dst = v
		}
	}
	set(EnvServer, &c.Server)
	set(EnvSession, &c.Session)
	set(EnvManifest, &c.Manifest)
	set(EnvDB, &c.DB)
	set(EnvAddr, &c.Addr)

	if v := vars[EnvMaxCommitDepth]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("%s: want a positive integer, got %q", EnvMaxCommitDepth, v)
		}
		c.MaxCommitDepth = n
	}
	return nil
}

// pick returns flag when set, otherwise the configured value.
func pick(flag, configured string) string {
	if flag != "" {
		return flag
	}
	return configured
}
