package project

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/dbtx/dbtx/internal/config"
)

// SpecFileName is the dbt project file that marks a project root.
const SpecFileName = "dbt_project.yml"

// ErrNotFound indicates no dbt_project.yml could be discovered.
var ErrNotFound = errors.New("no dbt_project.yml found in this directory or any parent; run inside a dbt project")

// Project encapsulates a dbt project discovered on disk, together with
// the wrapper's own configuration layered with environment overrides.
type Project struct {
	Root       string
	SpecPath   string
	Spec       Spec
	ConfigPath string
	Config     config.Config
}

// Discover walks upward from start until it finds a dbt_project.yml,
// mirroring dbt's own nearest-project-dir rule.
func Discover(start string) (*Project, error) {
	root, err := locateRoot(start)
	if err != nil {
		return nil, err
	}
	return Load(root)
}

// Load constructs a Project from a known root directory.
func Load(root string) (*Project, error) {
	specPath := filepath.Join(root, SpecFileName)
	spec, err := LoadSpec(specPath)
	if err != nil {
		return nil, err
	}

	cfgPath := filepath.Join(root, config.FileName)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	overrides, err := config.LoadOverrides()
	if err != nil {
		return nil, err
	}
	cfg = overrides.Apply(cfg)

	return &Project{
		Root:       root,
		SpecPath:   specPath,
		Spec:       spec,
		ConfigPath: cfgPath,
		Config:     cfg,
	}, nil
}

func locateRoot(start string) (string, error) {
	cur, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		if isFile(filepath.Join(cur, SpecFileName)) {
			return cur, nil
		}
		next := filepath.Dir(cur)
		if next == cur {
			break
		}
		cur = next
	}
	return "", ErrNotFound
}

// Vars returns the global vars declared in dbt_project.yml. Variables
// passed on the command line are not included.
func (p *Project) Vars() map[string]any {
	return p.Spec.Vars
}

// ProfilesDir resolves the profiles directory: explicit flag value,
// then environment/config (already layered into Config), then ~/.dbt.
// Empty string means dbt's own default should apply.
func (p *Project) ProfilesDir(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if p.Config.ProfilesDir != "" {
		return p.Config.ProfilesDir
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, ".dbt")
		if isFile(filepath.Join(candidate, "profiles.yml")) {
			return candidate
		}
	}
	return ""
}

// TargetPath returns the absolute artifact directory for the project.
func (p *Project) TargetPath() string {
	tp := p.Spec.TargetPath
	if tp == "" {
		tp = "target"
	}
	if filepath.IsAbs(tp) {
		return tp
	}
	return filepath.Join(p.Root, tp)
}

// EnsureConfig ensures a baseline dbtx.toml exists, writing when missing.
func EnsureConfig(root string) (config.Config, error) {
	path := filepath.Join(root, config.FileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := config.Default()
		if err := config.Save(path, cfg); err != nil {
			return config.Config{}, err
		}
		return cfg, nil
	}
	return config.Load(path)
}

func isFile(path string) bool {
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !fi.IsDir()
}
