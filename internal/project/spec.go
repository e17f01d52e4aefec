package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Spec is the subset of dbt_project.yml the wrapper cares about.
type Spec struct {
	Name       string         `yaml:"name"`
	Version    string         `yaml:"version"`
	Profile    string         `yaml:"profile"`
	TargetPath string         `yaml:"target-path"`
	Vars       map[string]any `yaml:"vars"`
}

// ErrMissingName indicates dbt_project.yml omitted the required project name.
var ErrMissingName = errors.New("dbt_project.yml must declare a project name")

// LoadSpec parses a dbt_project.yml file.
func LoadSpec(path string) (Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Spec{}, ErrNotFound
		}
		return Spec{}, err
	}

	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return Spec{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if spec.Name == "" {
		return Spec{}, ErrMissingName
	}
	return spec, nil
}

// Profiles is the subset of profiles.yml used by doctor checks.
type Profiles map[string]Profile

// Profile holds the outputs declared for one dbt profile.
type Profile struct {
	Target  string                    `yaml:"target"`
	Outputs map[string]map[string]any `yaml:"outputs"`
}

// LoadProfiles parses a profiles.yml file. Keys that are not profile
// mappings (such as the top-level config block) are skipped.
func LoadProfiles(path string) (Profiles, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	profiles := make(Profiles, len(raw))
	for name, node := range raw {
		if name == "config" {
			continue
		}
		var p Profile
		if err := node.Decode(&p); err != nil {
			continue
		}
		if len(p.Outputs) == 0 {
			continue
		}
		profiles[name] = p
	}
	return profiles, nil
}
