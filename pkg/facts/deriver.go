package facts

import (
	"context"
	"fmt"
	"sort"

	"github.com/matzehuels/specdiff/pkg/errors"
	"github.com/matzehuels/specdiff/pkg/manifest"
)

// Config is a resolved configuration ready for fact derivation.
type Config struct {
	Name     string
	Path     string
	Digest   string
	Manifest *manifest.Manifest
}

// Loader resolves a parsed manifest into a [Config].
type Loader interface {
	Load(ctx context.Context, m *manifest.Manifest) (*Config, error)
}

// Deriver produces the facts describing a configuration.
//
// Implementations must be synchronous and free of side effects: deriving
// the same Config twice yields the same Set.
type Deriver interface {
	// ID identifies the deriver in cache keys.
	ID() string

	Derive(ctx context.Context, cfg *Config) (Set, error)
}

// ConcreteLoader loads manifests that are already fully resolved, which is
// the case for every manifest a corpus directory holds.
type ConcreteLoader struct{}

// Load wraps m without further resolution.
func (ConcreteLoader) Load(_ context.Context, m *manifest.Manifest) (*Config, error) {
	if m == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nil manifest")
	}
	if m.Degenerate() {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "%s: primary package is unconstrained", m.Name)
	}
	return &Config{Name: m.Name, Path: m.Path, Digest: m.Digest, Manifest: m}, nil
}

// ManifestDeriver reads facts directly off a concrete manifest.
//
// For every package it emits node, version, compiler, parameter, arch,
// dependency, namespace and hash facts; the primary package is also marked
// root. Unconstrained entries only contribute their node fact.
type ManifestDeriver struct{}

// ID implements [Deriver].
func (ManifestDeriver) ID() string { return "manifest" }

// Derive implements [Deriver].
func (ManifestDeriver) Derive(ctx context.Context, cfg *Config) (Set, error) {
	if cfg == nil || cfg.Manifest == nil {
		return Set{}, errors.New(errors.ErrCodeFactDerivation, "no manifest to derive facts from")
	}
	if err := ctx.Err(); err != nil {
		return Set{}, err
	}

	s := NewSet()
	if root := cfg.Manifest.Primary(); root != nil {
		s.Add(New("root", root.Name))
	}
	for i := range cfg.Manifest.Packages {
		addPackage(&s, &cfg.Manifest.Packages[i])
	}
	return s, nil
}

func addPackage(s *Set, p *manifest.Package) {
	s.Add(New("node", p.Name))
	if p.Unconstrained() {
		return
	}

	s.Add(New("version", p.Name, p.Version))
	s.Add(New("node_compiler", p.Name, p.Compiler.Name))
	s.Add(New("node_compiler_version", p.Name, p.Compiler.Name, p.Compiler.Version))

	for _, key := range p.ParameterNames() {
		for _, v := range variantValues(p.Parameters[key]) {
			s.Add(New("variant_value", p.Name, key, v))
		}
	}

	for _, key := range p.ArchNames() {
		v := p.Arch[key]
		switch key {
		case "platform":
			s.Add(New("node_platform", p.Name, v))
		case "platform_os", "os":
			s.Add(New("node_os", p.Name, v))
		case "target":
			s.Add(New("node_target", p.Name, targetName(v)))
		default:
			s.Add(New("node_arch", p.Name, key, fmt.Sprint(v)))
		}
	}

	for _, d := range p.Dependencies {
		if len(d.Types) == 0 {
			s.Add(New("depends_on", p.Name, d.Name))
			continue
		}
		for _, t := range d.Types {
			s.Add(New("depends_on", p.Name, d.Name, t))
		}
	}

	if p.Namespace != "" {
		s.Add(New("namespace", p.Name, p.Namespace))
	}
	if p.Hash != "" {
		s.Add(New("hash", p.Name, p.Hash))
	}
}

// variantValues expands multi-valued parameters into one value each.
func variantValues(v any) []any {
	switch x := v.(type) {
	case []any:
		return x
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]any, len(keys))
		for i, k := range keys {
			out[i] = k + "=" + Arg(x[k])
		}
		return out
	}
	return []any{v}
}

// targetName reduces a detailed target description to its name.
func targetName(v any) any {
	if m, ok := v.(map[string]any); ok {
		if name, ok := m["name"]; ok {
			return name
		}
	}
	return v
}

var (
	_ Loader  = ConcreteLoader{}
	_ Deriver = ManifestDeriver{}
)
