package manifest

import "sort"

// Entry is one row of a [Lookup]: either a real package or a compiler
// promoted to a pseudo-package.
type Entry struct {
	Name       string
	Version    string
	Parameters map[string]any
	Arch       map[string]any

	// Compiler is true for entries synthesized from a compiler selection.
	Compiler bool
}

// Lookup is a name-keyed view of a manifest in which compilers are
// treated as packages.
type Lookup struct {
	entries    map[string]Entry
	collisions []string
}

// NewLookup flattens m into a name-keyed table.
//
// Every package's compiler is inserted as an entry keyed by the compiler
// name that carries only the compiler version. Duplicate package names are
// resolved last-write-wins, and so are repeated compiler names. A compiler
// never shadows a real package of the same name; such names are reported
// by [Lookup.Collisions].
//
// Unconstrained entries have no concrete version and are left out.
func NewLookup(m *Manifest) *Lookup {
	l := &Lookup{entries: make(map[string]Entry, len(m.Packages)*2)}

	packages := make(map[string]bool, len(m.Packages))
	for _, p := range m.Packages {
		if !p.Unconstrained() {
			packages[p.Name] = true
		}
	}

	for _, p := range m.Packages {
		if p.Unconstrained() || p.Compiler.Name == "" {
			continue
		}
		if packages[p.Compiler.Name] {
			continue
		}
		l.entries[p.Compiler.Name] = Entry{
			Name:     p.Compiler.Name,
			Version:  p.Compiler.Version,
			Compiler: true,
		}
	}

	for _, p := range m.Packages {
		if p.Unconstrained() {
			continue
		}
		l.entries[p.Name] = Entry{
			Name:       p.Name,
			Version:    p.Version,
			Parameters: p.Parameters,
			Arch:       p.Arch,
		}
	}

	seen := make(map[string]bool)
	for _, p := range m.Packages {
		c := p.Compiler.Name
		if c != "" && packages[c] && !seen[c] {
			seen[c] = true
			l.collisions = append(l.collisions, c)
		}
	}
	sort.Strings(l.collisions)

	return l
}

// Get returns the entry named name.
func (l *Lookup) Get(name string) (Entry, bool) {
	e, ok := l.entries[name]
	return e, ok
}

// Has reports whether name is present.
func (l *Lookup) Has(name string) bool {
	_, ok := l.entries[name]
	return ok
}

// Len returns the number of entries, compilers included.
func (l *Lookup) Len() int {
	return len(l.entries)
}

// Names returns all entry names in sorted order.
func (l *Lookup) Names() []string {
	names := make([]string, 0, len(l.entries))
	for name := range l.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Collisions returns compiler names that are also real package names in
// the manifest.
func (l *Lookup) Collisions() []string {
	return l.collisions
}
