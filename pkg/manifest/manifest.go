package manifest

import (
	"fmt"
	"sort"
)

// Unconstrained is the version constraint meaning "any version allowed".
const Unconstrained = ":"

// Compiler identifies the compiler a package was built with.
type Compiler struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// String returns "name@version".
func (c Compiler) String() string {
	return fmt.Sprintf("%s@%s", c.Name, c.Version)
}

// Dependency is an edge from a package to one of its dependencies.
type Dependency struct {
	Name  string   `json:"name"`
	Hash  string   `json:"hash,omitempty"`
	Types []string `json:"type,omitempty"`
}

// Package is one component of a manifest.
type Package struct {
	Name         string         `json:"name"`
	Version      string         `json:"version,omitempty"`
	Versions     []string       `json:"versions,omitempty"`
	Compiler     Compiler       `json:"compiler"`
	Parameters   map[string]any `json:"parameters,omitempty"`
	Arch         map[string]any `json:"arch,omitempty"`
	Namespace    string         `json:"namespace,omitempty"`
	Hash         string         `json:"hash,omitempty"`
	Dependencies []Dependency   `json:"dependencies,omitempty"`
}

// Unconstrained reports whether the package declares the "any version"
// placeholder instead of a concrete version.
func (p *Package) Unconstrained() bool {
	return len(p.Versions) == 1 && p.Versions[0] == Unconstrained
}

// ParameterNames returns the package's parameter names in sorted order.
func (p *Package) ParameterNames() []string {
	return sortedKeys(p.Parameters)
}

// ArchNames returns the package's architecture attribute names in sorted order.
func (p *Package) ArchNames() []string {
	return sortedKeys(p.Arch)
}

// Manifest is a parsed configuration document.
type Manifest struct {
	// Name identifies the manifest; it is the source file's basename
	// without extension.
	Name string

	// Path is the file the manifest was read from, if any.
	Path string

	// Digest is the SHA-256 of the raw document.
	Digest string

	// Packages in document order. The first entry is the primary package.
	Packages []Package
}

// Primary returns the manifest's first package, or nil for an empty manifest.
func (m *Manifest) Primary() *Package {
	if len(m.Packages) == 0 {
		return nil
	}
	return &m.Packages[0]
}

// Degenerate reports whether the primary package is unconstrained.
// Degenerate manifests are never compared.
func (m *Manifest) Degenerate() bool {
	p := m.Primary()
	return p != nil && p.Unconstrained()
}

// Same reports whether m and other were loaded from the same source.
func (m *Manifest) Same(other *Manifest) bool {
	if m == other {
		return true
	}
	if m == nil || other == nil {
		return false
	}
	if m.Path != "" && other.Path != "" {
		return m.Path == other.Path
	}
	return false
}

// Package returns the last package named name, mirroring lookup semantics.
func (m *Manifest) Package(name string) (*Package, bool) {
	for i := len(m.Packages) - 1; i >= 0; i-- {
		if m.Packages[i].Name == name {
			return &m.Packages[i], true
		}
	}
	return nil, false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
