package batch

import (
	"sort"
	"time"

	"github.com/matzehuels/specdiff/pkg/facts"
	"github.com/matzehuels/specdiff/pkg/similarity"
	"github.com/matzehuels/specdiff/pkg/versions"
)

// Report is the outcome of one corpus run.
type Report struct {
	Dir   string
	RunID string

	// Diffs holds one result per unordered pair, keyed by [similarity.Key].
	Diffs map[string]similarity.Result

	// Comparisons holds the fact diff of each pair, under the same keys.
	Comparisons map[string]facts.Comparison

	// Viz is Diffs pivoted by metric.
	Viz Viz

	// Table is the corpus version table.
	Table *versions.Table

	// Skipped lists manifests excluded because they could not be used.
	Skipped []Skip

	// Degenerate lists manifests excluded because their primary package
	// is unconstrained.
	Degenerate []string

	Duration time.Duration
}

// Skip records a manifest excluded from a run.
type Skip struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Keys returns the pair keys in sorted order.
func (r *Report) Keys() []string {
	return sortedKeys(r.Diffs)
}

// Point is one pair's value for one metric.
type Point struct {
	Spec1 string  `json:"spec1"`
	Spec2 string  `json:"spec2"`
	Value float64 `json:"value"`
}

// Viz maps each metric name to one point per pair.
type Viz map[string][]Point

// Pivot reorganizes diffs by metric. Every metric list holds one point per
// pair, ordered by pair key.
func Pivot(diffs map[string]similarity.Result) Viz {
	viz := make(Viz, len(similarity.Metrics))
	for _, metric := range similarity.Metrics {
		viz[metric] = make([]Point, 0, len(diffs))
	}
	for _, key := range sortedKeys(diffs) {
		res := diffs[key]
		values := res.Values()
		for i, metric := range similarity.Metrics {
			viz[metric] = append(viz[metric], Point{Spec1: res.Spec1, Spec2: res.Spec2, Value: values[i]})
		}
	}
	return viz
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Manifests returns the number of manifests that took part in comparison.
func (r *Report) Manifests() int {
	n := 0
	for _, res := range r.Diffs {
		if res.Spec1 == res.Spec2 {
			n++
		}
	}
	return n
}
