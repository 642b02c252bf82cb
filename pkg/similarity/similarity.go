// Package similarity scores how alike two manifests are.
//
// [Compare] computes five complementary metrics for one pair, each in
// [0, 1]:
//
//  1. Package-name overlap: Jaccard index of the two name sets.
//  2. Exact name+version overlap: Jaccard index of "name-version" strings.
//  3. Weighted versions: per shared name, a version closeness from the
//     corpus [versions.Table], summed and divided by the size of the union.
//  4. Parameter overlap: per shared name, the Jaccard index of set
//     ("truthy") build parameters, summed and divided by the union size.
//  5. Architecture overlap: like 4 over architecture attributes, without
//     the truthiness filter.
//
// Compilers take part as pseudo-packages (see [manifest.NewLookup]).
// Every metric is symmetric in its two arguments.
package similarity

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/matzehuels/specdiff/pkg/manifest"
	"github.com/matzehuels/specdiff/pkg/versions"
)

// Metric names, used as JSON keys in result and visualization artifacts.
const (
	MetricPackageNames    = "1_package_name_overlap"
	MetricPackageVersions = "2_package_name_version_exact"
	MetricWeightedVersion = "3_package_weighted_versions"
	MetricParameters      = "4_parameter_overlap"
	MetricArch            = "5_arch_overlap"
)

// Metrics lists the metric names in order.
var Metrics = []string{
	MetricPackageNames,
	MetricPackageVersions,
	MetricWeightedVersion,
	MetricParameters,
	MetricArch,
}

// Scores holds the five similarity scores for one pair.
type Scores struct {
	PackageNames    float64 `json:"1_package_name_overlap"`
	PackageVersions float64 `json:"2_package_name_version_exact"`
	WeightedVersion float64 `json:"3_package_weighted_versions"`
	Parameters      float64 `json:"4_parameter_overlap"`
	Arch            float64 `json:"5_arch_overlap"`
}

// Identical is the score of a manifest compared with itself.
var Identical = Scores{1, 1, 1, 1, 1}

// Get returns the score stored under a metric name.
func (s Scores) Get(metric string) (float64, error) {
	switch metric {
	case MetricPackageNames:
		return s.PackageNames, nil
	case MetricPackageVersions:
		return s.PackageVersions, nil
	case MetricWeightedVersion:
		return s.WeightedVersion, nil
	case MetricParameters:
		return s.Parameters, nil
	case MetricArch:
		return s.Arch, nil
	}
	return 0, fmt.Errorf("unknown metric: %q", metric)
}

// Values returns the scores in [Metrics] order.
func (s Scores) Values() []float64 {
	return []float64{s.PackageNames, s.PackageVersions, s.WeightedVersion, s.Parameters, s.Arch}
}

// Result is the comparison of one unordered manifest pair. Spec1 and
// Spec2 are the two manifest names in sorted order.
type Result struct {
	Spec1 string `json:"spec1"`
	Spec2 string `json:"spec2"`
	Scores
}

// Key returns the identifier of the unordered pair a, b: the two names
// sorted and joined with "-".
func Key(a, b string) string {
	s1, s2 := Order(a, b)
	return s1 + "-" + s2
}

// Order returns a and b in sorted order.
func Order(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// Compare scores manifests a and b against the corpus version table.
//
// Comparing a manifest with itself yields [Identical] without further
// work. Two manifests with no packages at all are likewise identical.
func Compare(a, b *manifest.Manifest, table *versions.Table) Result {
	s1, s2 := Order(a.Name, b.Name)
	r := Result{Spec1: s1, Spec2: s2}
	if a.Same(b) {
		r.Scores = Identical
		return r
	}
	r.Scores = Score(manifest.NewLookup(a), manifest.NewLookup(b), table)
	return r
}

// Score computes the five metrics for two lookups.
func Score(l1, l2 *manifest.Lookup, table *versions.Table) Scores {
	p1, p2 := newSet(l1.Names()...), newSet(l2.Names()...)
	union := p1.union(p2)
	if len(union) == 0 {
		return Identical
	}
	shared := p1.intersect(p2)
	n := float64(len(union))

	var s Scores
	s.PackageNames = Jaccard(p1, p2)
	s.PackageVersions = Jaccard(versionStrings(l1), versionStrings(l2))

	var weighted, params, arch float64
	for _, name := range shared.sorted() {
		e1, _ := l1.Get(name)
		e2, _ := l2.Get(name)

		weighted += table.Closeness(name, e1.Version, e2.Version)

		k1, k2 := pairStrings(e1.Parameters, true), pairStrings(e2.Parameters, true)
		if len(k1) > 0 || len(k2) > 0 {
			params += Jaccard(k1, k2)
		}

		a1, a2 := pairStrings(e1.Arch, false), pairStrings(e2.Arch, false)
		if len(a1) > 0 || len(a2) > 0 {
			arch += Jaccard(a1, a2)
		}
	}

	s.WeightedVersion = weighted / n
	s.Parameters = params / n
	s.Arch = arch / n
	return s
}

func versionStrings(l *manifest.Lookup) set {
	s := make(set, l.Len())
	for _, name := range l.Names() {
		e, _ := l.Get(name)
		s.add(name + "-" + e.Version)
	}
	return s
}

// pairStrings renders a mapping as "key-value" strings. With truthy set,
// unset values (false, empty, zero, nil) are dropped.
func pairStrings(m map[string]any, truthy bool) set {
	s := make(set, len(m))
	for k, v := range m {
		if truthy && !Truthy(v) {
			continue
		}
		s.add(k + "-" + FormatValue(v))
	}
	return s
}

// Truthy reports whether a parameter value counts as set.
func Truthy(v any) bool {
	if v == nil {
		return false
	}
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return x != ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

// FormatValue renders a parameter or architecture value for comparison.
// Lists keep their order; mappings are rendered with sorted keys.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []any:
		out := "["
		for i, item := range x {
			if i > 0 {
				out += " "
			}
			out += FormatValue(item)
		}
		return out + "]"
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := "{"
		for i, k := range keys {
			if i > 0 {
				out += " "
			}
			out += k + ":" + FormatValue(x[k])
		}
		return out + "}"
	}
	return fmt.Sprint(v)
}
