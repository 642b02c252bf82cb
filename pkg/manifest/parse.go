package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/specdiff/pkg/errors"
)

// yamlPackage is the raw YAML structure of one package entry.
type yamlPackage struct {
	Version      string         `yaml:"version"`
	Versions     []string       `yaml:"versions"`
	Compiler     *yamlCompiler  `yaml:"compiler"`
	Parameters   map[string]any `yaml:"parameters"`
	Arch         map[string]any `yaml:"arch"`
	Namespace    string         `yaml:"namespace"`
	Hash         string         `yaml:"hash"`
	Dependencies yaml.Node      `yaml:"dependencies"`
}

type yamlCompiler struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type yamlDependency struct {
	Name string   `yaml:"name"`
	Hash string   `yaml:"hash"`
	Type []string `yaml:"type"`
}

// ReadFile parses the manifest at path. The manifest is named after the
// file's basename without its extension.
func ReadFile(path string) (*Manifest, error) {
	//nolint:gosec // G304: path comes from the corpus directory listing
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read manifest %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read manifest %s", path)
	}

	m, err := Parse(NameFromPath(path), data)
	if err != nil {
		return nil, err
	}
	m.Path = path
	return m, nil
}

// NameFromPath derives a manifest name from its file path.
func NameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Parse decodes a manifest document.
//
// Parse fails with [errors.ErrCodeInvalidManifest] when the document is not
// a list of single-key mappings, or when a concrete (non-placeholder) entry
// lacks a version or a compiler. There is no partial recovery: one bad
// entry rejects the whole manifest.
func Parse(name string, data []byte) (*Manifest, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "%s: parse YAML", name)
	}

	list, err := packageList(&root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "%s", name)
	}

	sum := sha256.Sum256(data)
	m := &Manifest{
		Name:     name,
		Digest:   hex.EncodeToString(sum[:]),
		Packages: make([]Package, 0, len(list.Content)),
	}

	for i, item := range list.Content {
		pkg, err := parsePackage(item)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "%s: entry %d", name, i)
		}
		m.Packages = append(m.Packages, pkg)
	}

	return m, nil
}

// packageList locates the sequence of package entries in a document.
func packageList(root *yaml.Node) (*yaml.Node, error) {
	if root.Kind == 0 {
		return &yaml.Node{Kind: yaml.SequenceNode}, nil
	}
	doc := root
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			return &yaml.Node{Kind: yaml.SequenceNode}, nil
		}
		doc = doc.Content[0]
	}

	switch doc.Kind {
	case yaml.SequenceNode:
		return doc, nil
	case yaml.MappingNode:
		for i := 0; i+1 < len(doc.Content); i += 2 {
			if doc.Content[i].Value == "spec" {
				list := doc.Content[i+1]
				if list.Kind != yaml.SequenceNode {
					return nil, fmt.Errorf("spec must be a list, got %s", kindName(list.Kind))
				}
				return list, nil
			}
		}
		return nil, fmt.Errorf("document has no spec list")
	}
	return nil, fmt.Errorf("document must be a list or a mapping, got %s", kindName(doc.Kind))
}

func parsePackage(item *yaml.Node) (Package, error) {
	if item.Kind != yaml.MappingNode || len(item.Content) != 2 {
		return Package{}, fmt.Errorf("package entry must be a single-key mapping")
	}

	name := item.Content[0].Value
	if err := errors.ValidatePackageName(name); err != nil {
		return Package{}, err
	}

	var raw yamlPackage
	if err := item.Content[1].Decode(&raw); err != nil {
		return Package{}, fmt.Errorf("package %q: %w", name, err)
	}

	pkg := Package{
		Name:       name,
		Version:    raw.Version,
		Versions:   raw.Versions,
		Parameters: raw.Parameters,
		Arch:       raw.Arch,
		Namespace:  raw.Namespace,
		Hash:       raw.Hash,
	}
	if raw.Compiler != nil {
		pkg.Compiler = Compiler{Name: raw.Compiler.Name, Version: raw.Compiler.Version}
	}

	deps, err := parseDependencies(&raw.Dependencies)
	if err != nil {
		return Package{}, fmt.Errorf("package %q: %w", name, err)
	}
	pkg.Dependencies = deps

	if pkg.Unconstrained() {
		return pkg, nil
	}
	if pkg.Version == "" {
		return Package{}, fmt.Errorf("package %q has no version", name)
	}
	if pkg.Compiler.Name == "" || pkg.Compiler.Version == "" {
		return Package{}, fmt.Errorf("package %q has no compiler name/version", name)
	}
	return pkg, nil
}

// parseDependencies accepts either a name-keyed mapping or a list of
// {name, hash, type} records.
func parseDependencies(n *yaml.Node) ([]Dependency, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.MappingNode:
		var raw map[string]yamlDependency
		if err := n.Decode(&raw); err != nil {
			return nil, fmt.Errorf("dependencies: %w", err)
		}
		deps := make([]Dependency, 0, len(raw))
		for name, d := range raw {
			deps = append(deps, Dependency{Name: name, Hash: d.Hash, Types: d.Type})
		}
		sort.Slice(deps, func(i, j int) bool { return deps[i].Name < deps[j].Name })
		return deps, nil
	case yaml.SequenceNode:
		var raw []yamlDependency
		if err := n.Decode(&raw); err != nil {
			return nil, fmt.Errorf("dependencies: %w", err)
		}
		deps := make([]Dependency, 0, len(raw))
		for _, d := range raw {
			if d.Name == "" {
				return nil, fmt.Errorf("dependency without name")
			}
			deps = append(deps, Dependency{Name: d.Name, Hash: d.Hash, Types: d.Type})
		}
		return deps, nil
	}
	return nil, fmt.Errorf("dependencies must be a mapping or a list")
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "list"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}

// Files lists the manifest files in dir, sorted by path.
func Files(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeDirectoryNotFound, "%s does not exist", dir)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "stat %s", dir)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrCodeDirectoryNotFound, "%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read directory %s", dir)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || errors.ValidateManifestFilename(e.Name()) != nil {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)

	if len(files) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyCorpus, "no manifests found in %s", dir)
	}
	return files, nil
}
