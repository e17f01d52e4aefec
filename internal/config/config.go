package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	toml "github.com/pelletier/go-toml/v2"
)

// FileName is the wrapper configuration file expected beside dbt_project.yml.
const FileName = "dbtx.toml"

// Config captures the user editable settings stored in dbtx.toml.
type Config struct {
	DbtBin        string   `toml:"dbt_bin"`
	SqlfluffBin   string   `toml:"sqlfluff_bin"`
	DefaultTarget string   `toml:"default_target"`
	ProfilesDir   string   `toml:"profiles_dir"`
	Args          []string `toml:"args"`
	Callbacks     []string `toml:"callbacks"`
	// NoWriteJSON suppresses dbt's JSON artifacts on every invocation.
	// Failure surfacing and `dbtx status` then degrade to exit codes.
	NoWriteJSON bool `toml:"no_write_json"`
}

// Overrides are environment variables layered over the file settings.
// DBT_PROFILES_DIR and DBT_TARGET mirror the variables dbt itself honors.
type Overrides struct {
	DbtBin      string `env:"DBTX_DBT_BIN"`
	ProfilesDir string `env:"DBT_PROFILES_DIR"`
	Target      string `env:"DBT_TARGET"`
}

var (
	// ErrInvalidTarget indicates default_target contains whitespace or is otherwise unusable.
	ErrInvalidTarget = errors.New("config.default_target must be a single target name")
	// ErrBlankCallback indicates the callbacks list contains an empty entry.
	ErrBlankCallback = errors.New("config.callbacks must not contain blank names")
)

// Default returns a baseline configuration.
func Default() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.DefaultTarget == "" {
		c.DefaultTarget = "dev"
	}
}

// Validate ensures the configuration can guide dbtx's behavior.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DefaultTarget) == "" || strings.ContainsAny(c.DefaultTarget, " \t") {
		return ErrInvalidTarget
	}
	for _, name := range c.Callbacks {
		if strings.TrimSpace(name) == "" {
			return ErrBlankCallback
		}
	}
	return nil
}

// Load reads configuration from disk. Missing files return a default config.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, err
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Save writes configuration to disk, creating parent directories as needed.
func Save(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// LoadOverrides reads the environment overrides.
func LoadOverrides() (Overrides, error) {
	var o Overrides
	if err := env.Parse(&o); err != nil {
		return Overrides{}, fmt.Errorf("parse environment overrides: %w", err)
	}
	return o, nil
}

// Apply layers the overrides on top of cfg, returning the effective config.
func (o Overrides) Apply(cfg Config) Config {
	if o.DbtBin != "" {
		cfg.DbtBin = o.DbtBin
	}
	if o.ProfilesDir != "" {
		cfg.ProfilesDir = o.ProfilesDir
	}
	if o.Target != "" {
		cfg.DefaultTarget = o.Target
	}
	return cfg
}
