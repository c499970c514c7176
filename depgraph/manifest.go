package depgraph

// This file contains the on-disk dependency manifest: a YAML description of
// spec files, their flattened load dependencies and referenced namespaces,
// plus the source-file to namespace mapping.

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ManifestSpec declares the dependencies of one spec file.
type ManifestSpec struct {
	// File is the spec file path
	File string `yaml:"file"`
	// DependsOn lists files pulled in when the spec loads, fully flattened
	DependsOn []string `yaml:"depends_on,omitempty"`
	// Namespaces lists the symbolic module references the spec uses
	Namespaces []string `yaml:"namespaces,omitempty"`
}

// Manifest is the YAML dependency description consumed by the CLI layer.
type Manifest struct {
	Specs []ManifestSpec `yaml:"specs"`
	// Sources maps source file paths to the namespace they belong to
	Sources map[string]string `yaml:"sources,omitempty"`
}

// LoadManifest reads and validates a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks that every spec entry names a file and no file is declared
// twice.
func (m *Manifest) Validate() error {
	seen := make(map[string]struct{}, len(m.Specs))
	for i, s := range m.Specs {
		if s.File == "" {
			return fmt.Errorf("specs[%d]: file is required", i)
		}
		if _, dup := seen[s.File]; dup {
			return fmt.Errorf("specs[%d]: duplicate spec file %q", i, s.File)
		}
		seen[s.File] = struct{}{}
	}
	return nil
}

// BuildGraph constructs a Graph from the manifest.
func (m *Manifest) BuildGraph() *Graph {
	g := New()
	for _, s := range m.Specs {
		g.AddSpec(SpecDependency{
			SpecFile:         s.File,
			LoadDependencies: s.DependsOn,
			Namespaces:       s.Namespaces,
		})
	}
	for src, ns := range m.Sources {
		g.AddNamespaceMapping(src, ns)
	}
	return g
}
