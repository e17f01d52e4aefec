package artifacts

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Manifest mirrors the parts of target/manifest.json that the wrapper
// surfaces: node identity and layout, not compiled SQL.
type Manifest struct {
	Metadata Metadata        `json:"metadata"`
	Nodes    map[string]Node `json:"nodes"`
	Sources  map[string]Node `json:"sources"`
}

// Node describes one entry of the transformation graph.
type Node struct {
	UniqueID     string `json:"unique_id"`
	Name         string `json:"name"`
	ResourceType string `json:"resource_type"`
	PackageName  string `json:"package_name"`
	Path         string `json:"path"`
	Schema       string `json:"schema"`
}

// LoadManifest reads manifest.json from the given target directory.
func LoadManifest(targetDir string) (*Manifest, error) {
	path := filepath.Join(targetDir, "manifest.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrMissing)
		}
		return nil, err
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &manifest, nil
}

// NodesByType groups node counts by resource type, sources included.
func (m *Manifest) NodesByType() map[string]int {
	counts := make(map[string]int)
	for _, node := range m.Nodes {
		counts[node.ResourceType]++
	}
	for range m.Sources {
		counts["source"]++
	}
	return counts
}

// SortedNodes returns all nodes ordered by unique ID for stable output.
func (m *Manifest) SortedNodes() []Node {
	nodes := make([]Node, 0, len(m.Nodes))
	for _, node := range m.Nodes {
		nodes = append(nodes, node)
	}
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].UniqueID < nodes[j].UniqueID
	})
	return nodes
}
