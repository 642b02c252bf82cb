package versions

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/matzehuels/specdiff/pkg/manifest"
)

// RangePolicy selects how a semantic domain's range is computed.
type RangePolicy string

const (
	// RangeSorted uses the projections of the first and last versions in
	// sorted string order.
	RangeSorted RangePolicy = "sorted"

	// RangeExtrema uses the smallest and largest projections.
	RangeExtrema RangePolicy = "extrema"
)

// DefaultRangePolicy is the policy used when none is configured.
const DefaultRangePolicy = RangeSorted

// ParseRangePolicy validates a policy name. The empty string selects
// [DefaultRangePolicy].
func ParseRangePolicy(s string) (RangePolicy, error) {
	switch RangePolicy(s) {
	case "":
		return DefaultRangePolicy, nil
	case RangeSorted, RangeExtrema:
		return RangePolicy(s), nil
	}
	return "", fmt.Errorf("invalid range policy: %q (must be one of: sorted, extrema)", s)
}

var strictVersion = regexp.MustCompile(`^(\d+)\.(\d+)(\.(\d+))?([ab](\d+))?$`)

// IsSemantic reports whether v is a strict X.Y[.Z] version that can be
// projected onto a number.
func IsSemantic(v string) bool {
	if !strictVersion.MatchString(v) {
		return false
	}
	_, err := project(v)
	return err == nil
}

// Project returns the numeric projection of v: the decimal obtained by
// removing the first "." ("1.2.3" -> 12.3).
func Project(v string) (float64, error) {
	return project(v)
}

func project(v string) (float64, error) {
	return strconv.ParseFloat(strings.Replace(v, ".", "", 1), 64)
}

// Domain is the corpus-wide record of versions seen for one package name.
type Domain struct {
	Name string `json:"name"`

	// Semantic is true only if every observed version is semantic.
	Semantic bool `json:"semantic"`

	// Sorted holds the distinct observed versions in ascending string order.
	Sorted []string `json:"versions"`

	// Numbers holds the projection of each entry of Sorted. Nil unless Semantic.
	Numbers []float64 `json:"numbers,omitempty"`

	// Range is the spread of Numbers under the table's policy. Zero unless Semantic.
	Range float64 `json:"range"`

	index map[string]int
}

func newDomain(name string, observed map[string]struct{}, policy RangePolicy) *Domain {
	d := &Domain{
		Name:     name,
		Semantic: true,
		Sorted:   make([]string, 0, len(observed)),
		index:    make(map[string]int, len(observed)),
	}
	for v := range observed {
		d.Sorted = append(d.Sorted, v)
		if !IsSemantic(v) {
			d.Semantic = false
		}
	}
	sort.Strings(d.Sorted)
	for i, v := range d.Sorted {
		d.index[v] = i
	}

	if !d.Semantic {
		return d
	}

	d.Numbers = make([]float64, len(d.Sorted))
	for i, v := range d.Sorted {
		d.Numbers[i], _ = project(v)
	}

	switch policy {
	case RangeExtrema:
		lo, hi := d.Numbers[0], d.Numbers[0]
		for _, n := range d.Numbers[1:] {
			lo = math.Min(lo, n)
			hi = math.Max(hi, n)
		}
		d.Range = hi - lo
	default:
		d.Range = math.Abs(d.Numbers[len(d.Numbers)-1] - d.Numbers[0])
	}
	return d
}

// Observed reports whether v was seen for this package.
func (d *Domain) Observed(v string) bool {
	_, ok := d.index[v]
	return ok
}

// Projection returns the numeric projection of an observed semantic version.
func (d *Domain) Projection(v string) (float64, bool) {
	if !d.Semantic {
		return 0, false
	}
	i, ok := d.index[v]
	if !ok {
		return 0, false
	}
	return d.Numbers[i], true
}

// Closeness scores how near v1 and v2 are within the domain, from 0 (the
// two ends of the range) to 1 (identical).
//
// Non-semantic domains compare verbatim and never yield a fraction. A
// domain with a single observed version, or a zero range, always yields 1.
// Versions outside the domain fall back to string equality.
func (d *Domain) Closeness(v1, v2 string) float64 {
	if !d.Semantic {
		return equal(v1, v2)
	}
	if len(d.Sorted) == 1 {
		return 1
	}

	p1, ok1 := d.Projection(v1)
	p2, ok2 := d.Projection(v2)
	if !ok1 || !ok2 {
		return equal(v1, v2)
	}
	if d.Range == 0 {
		return 1
	}

	c := 1 - math.Abs(p2-p1)/d.Range
	return math.Max(0, math.Min(1, c))
}

func equal(a, b string) float64 {
	if a == b {
		return 1
	}
	return 0
}

// Table maps package names to their domains.
type Table struct {
	Policy  RangePolicy
	domains map[string]*Domain
}

// Get returns the domain for name.
func (t *Table) Get(name string) (*Domain, bool) {
	d, ok := t.domains[name]
	return d, ok
}

// Len returns the number of package names in the table.
func (t *Table) Len() int {
	return len(t.domains)
}

// Names returns the package names in sorted order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.domains))
	for name := range t.domains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Closeness scores v1 against v2 for name. Names absent from the table
// compare verbatim.
func (t *Table) Closeness(name, v1, v2 string) float64 {
	d, ok := t.Get(name)
	if !ok {
		return equal(v1, v2)
	}
	return d.Closeness(v1, v2)
}

// Builder accumulates observed versions before the table is frozen.
type Builder struct {
	policy   RangePolicy
	observed map[string]map[string]struct{}
}

// NewBuilder creates a builder using policy for range computation.
func NewBuilder(policy RangePolicy) *Builder {
	if policy == "" {
		policy = DefaultRangePolicy
	}
	return &Builder{policy: policy, observed: make(map[string]map[string]struct{})}
}

// Observe records version for name. Empty versions are ignored.
func (b *Builder) Observe(name, version string) {
	if name == "" || version == "" {
		return
	}
	set, ok := b.observed[name]
	if !ok {
		set = make(map[string]struct{})
		b.observed[name] = set
	}
	set[version] = struct{}{}
}

// Add records every package and compiler version in m. Unconstrained
// entries have no concrete version and are skipped.
func (b *Builder) Add(m *manifest.Manifest) {
	for _, p := range m.Packages {
		if p.Unconstrained() {
			continue
		}
		b.Observe(p.Name, p.Version)
		b.Observe(p.Compiler.Name, p.Compiler.Version)
	}
}

// Build classifies every observed name and returns a read-only table.
func (b *Builder) Build() *Table {
	t := &Table{Policy: b.policy, domains: make(map[string]*Domain, len(b.observed))}
	for name, observed := range b.observed {
		t.domains[name] = newDomain(name, observed, b.policy)
	}
	return t
}

// Build scans every manifest of a corpus and returns its version table.
func Build(manifests []*manifest.Manifest, policy RangePolicy) *Table {
	b := NewBuilder(policy)
	for _, m := range manifests {
		b.Add(m)
	}
	return b.Build()
}
