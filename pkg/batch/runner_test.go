package batch

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/specdiff/pkg/errors"
	"github.com/matzehuels/specdiff/pkg/facts"
	"github.com/matzehuels/specdiff/pkg/similarity"
	"github.com/matzehuels/specdiff/pkg/versions"
)

const (
	manifestA = `spec:
- libfoo:
    version: "1.0"
    compiler:
      name: gcc
      version: "9.0"
`
	manifestB = `spec:
- libfoo:
    version: "2.0"
    compiler:
      name: gcc
      version: "9.0"
`
	degenerate = `spec:
- libfoo:
    versions: [":"]
- libbar:
    version: "0.3"
    compiler:
      name: gcc
      version: "9.0"
`
	broken = `spec:
- libfoo:
    compiler:
      name: gcc
`
)

func writeCorpus(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func newRunner(t *testing.T, opts Options) *Runner {
	t.Helper()
	r, err := NewRunner(opts)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	return r
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestRunScenario(t *testing.T) {
	dir := writeCorpus(t, map[string]string{
		"a.yaml":     manifestA,
		"b.yaml":     manifestB,
		"empty.yaml": degenerate,
		"bad.yaml":   broken,
		"notes.txt":  "ignored",
	})

	rep, err := newRunner(t, Options{Workers: 2}).Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got, want := rep.Keys(), []string{"a-a", "a-b", "b-b"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	if len(rep.Skipped) != 1 || filepath.Base(rep.Skipped[0].Path) != "bad.yaml" {
		t.Errorf("Skipped = %+v", rep.Skipped)
	}
	if !reflect.DeepEqual(rep.Degenerate, []string{"empty"}) {
		t.Errorf("Degenerate = %v", rep.Degenerate)
	}
	if rep.RunID == "" {
		t.Error("RunID should be set")
	}

	for _, key := range []string{"a-a", "b-b"} {
		if rep.Diffs[key].Scores != similarity.Identical {
			t.Errorf("%s should be identical, got %+v", key, rep.Diffs[key].Scores)
		}
	}

	ab := rep.Diffs["a-b"]
	if ab.Spec1 != "a" || ab.Spec2 != "b" {
		t.Errorf("a-b names = %s, %s", ab.Spec1, ab.Spec2)
	}
	want := []float64{1, 1.0 / 3, 0.5, 0, 0}
	for i, got := range ab.Values() {
		if !approx(got, want[i]) {
			t.Errorf("%s = %v, want %v", similarity.Metrics[i], got, want[i])
		}
	}

	// The degenerate manifest's libbar still reaches the version table.
	if _, ok := rep.Table.Get("libbar"); !ok {
		t.Error("degenerate manifest should feed the version scan")
	}

	cmp := rep.Comparisons["a-b"]
	if cmp.Spec1Name != "a" || cmp.Spec2Name != "b" {
		t.Errorf("comparison names = %s, %s", cmp.Spec1Name, cmp.Spec2Name)
	}
	if !containsFact(cmp.Spec1NotSpec2, "version", "libfoo 1.0") || !containsFact(cmp.Spec2NotSpec1, "version", "libfoo 2.0") {
		t.Errorf("version facts missing from diff: %+v", cmp)
	}
	if !containsFact(cmp.Intersect, "node_compiler_version", "libfoo gcc 9.0") {
		t.Errorf("shared compiler fact missing: %+v", cmp.Intersect)
	}
}

func containsFact(list [][2]string, pred, args string) bool {
	for _, f := range list {
		if f[0] == pred && f[1] == args {
			return true
		}
	}
	return false
}

func TestRunStrict(t *testing.T) {
	dir := writeCorpus(t, map[string]string{"a.yaml": manifestA, "bad.yaml": broken})
	_, err := newRunner(t, Options{Strict: true}).Run(context.Background(), dir)
	if !errors.Is(err, errors.ErrCodeInvalidManifest) {
		t.Errorf("strict run: err = %v", err)
	}
}

func TestRunStrictCollision(t *testing.T) {
	collide := `spec:
- gcc:
    version: "1.0"
    compiler:
      name: gcc
      version: "9.0"
`
	dir := writeCorpus(t, map[string]string{"a.yaml": collide})

	if _, err := newRunner(t, Options{Strict: true}).Run(context.Background(), dir); !errors.Is(err, errors.ErrCodeInvalidManifest) {
		t.Errorf("strict collision: err = %v", err)
	}
	if _, err := newRunner(t, Options{}).Run(context.Background(), dir); err != nil {
		t.Errorf("lenient collision: err = %v", err)
	}
}

func TestRunNoComparisons(t *testing.T) {
	dir := writeCorpus(t, map[string]string{"empty.yaml": degenerate, "bad.yaml": broken})
	_, err := newRunner(t, Options{}).Run(context.Background(), dir)
	if !errors.Is(err, errors.ErrCodeNoComparisons) {
		t.Errorf("err = %v, want NO_COMPARISONS", err)
	}
}

func TestRunMissingDirectory(t *testing.T) {
	_, err := newRunner(t, Options{}).Run(context.Background(), filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, errors.ErrCodeDirectoryNotFound) {
		t.Errorf("err = %v, want DIRECTORY_NOT_FOUND", err)
	}
}

func TestRunEmptyDirectory(t *testing.T) {
	_, err := newRunner(t, Options{}).Run(context.Background(), t.TempDir())
	if !errors.Is(err, errors.ErrCodeEmptyCorpus) {
		t.Errorf("err = %v, want EMPTY_CORPUS", err)
	}
}

func TestRunDuplicateNames(t *testing.T) {
	dir := writeCorpus(t, map[string]string{"a.yaml": manifestA, "a.yml": manifestB})
	rep, err := newRunner(t, Options{}).Run(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Skipped) != 1 || filepath.Base(rep.Skipped[0].Path) != "a.yml" {
		t.Errorf("Skipped = %+v", rep.Skipped)
	}
	if len(rep.Diffs) != 1 {
		t.Errorf("Diffs = %v", rep.Keys())
	}
}

func TestRunCancelled(t *testing.T) {
	dir := writeCorpus(t, map[string]string{"a.yaml": manifestA, "b.yaml": manifestB})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newRunner(t, Options{}).Run(ctx, dir); err == nil {
		t.Error("cancelled run should fail")
	}
}

func TestWorkerCountDoesNotChangeResults(t *testing.T) {
	files := map[string]string{"a.yaml": manifestA, "b.yaml": manifestB, "empty.yaml": degenerate}
	for name, body := range map[string]string{"c.yaml": manifestA, "d.yaml": degenerate[strings.Index(degenerate, "- libbar"):]} {
		files[name] = body
	}
	dir := writeCorpus(t, files)

	seq, err := newRunner(t, Options{Workers: 1}).Run(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	par, err := newRunner(t, Options{Workers: 8}).Run(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(seq.Diffs, par.Diffs) {
		t.Error("diffs depend on worker count")
	}
	if !reflect.DeepEqual(seq.Comparisons, par.Comparisons) {
		t.Error("comparisons depend on worker count")
	}
}

func TestRunRangePolicy(t *testing.T) {
	dir := writeCorpus(t, map[string]string{"a.yaml": manifestA})
	rep, err := newRunner(t, Options{RangePolicy: versions.RangeExtrema}).Run(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Table.Policy != versions.RangeExtrema {
		t.Errorf("Policy = %q", rep.Table.Policy)
	}
}

func TestOptionsValidate(t *testing.T) {
	if _, err := NewRunner(Options{Workers: -1}); err == nil {
		t.Error("negative workers should fail")
	}
	if _, err := NewRunner(Options{RangePolicy: "median"}); err == nil {
		t.Error("unknown range policy should fail")
	}

	r := newRunner(t, Options{})
	opts := r.Options()
	if opts.Workers < 1 || opts.RangePolicy != versions.DefaultRangePolicy || opts.Logger == nil {
		t.Errorf("defaults not applied: %+v", opts)
	}
	if _, ok := opts.Deriver.(facts.ManifestDeriver); !ok {
		t.Errorf("default deriver = %T", opts.Deriver)
	}
}

func TestPivot(t *testing.T) {
	diffs := map[string]similarity.Result{
		"b-c": {Spec1: "b", Spec2: "c", Scores: similarity.Scores{PackageNames: 0.5}},
		"a-b": {Spec1: "a", Spec2: "b", Scores: similarity.Scores{PackageNames: 0.25, Arch: 1}},
	}
	viz := Pivot(diffs)
	if len(viz) != len(similarity.Metrics) {
		t.Fatalf("Pivot has %d metrics", len(viz))
	}
	names := viz[similarity.MetricPackageNames]
	want := []Point{{"a", "b", 0.25}, {"b", "c", 0.5}}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("package names = %+v, want %+v", names, want)
	}
	if viz[similarity.MetricArch][0].Value != 1 {
		t.Errorf("arch = %+v", viz[similarity.MetricArch])
	}
}

func TestReportWrite(t *testing.T) {
	dir := writeCorpus(t, map[string]string{"a.yaml": manifestA, "b.yaml": manifestB})
	rep, err := newRunner(t, Options{}).Run(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}

	written, err := rep.Write(true)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(written) != 5 {
		t.Errorf("wrote %d files, want 3 comparisons + 2 summaries: %v", len(written), written)
	}

	diffs, err := ReadDiffs(filepath.Join(dir, DiffsFile))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(diffs, rep.Diffs) {
		t.Errorf("round-tripped diffs differ: %+v", diffs)
	}

	raw, err := os.ReadFile(filepath.Join(dir, DiffsFile))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "\n    \"a-a\": {\n        \"spec1\": \"a\",") {
		t.Errorf("unexpected layout:\n%s", raw)
	}

	var cmp facts.Comparison
	data, err := os.ReadFile(filepath.Join(dir, ComparisonFile("a-b")))
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, &cmp); err != nil {
		t.Fatal(err)
	}
	if cmp.Spec1Name != "a" || len(cmp.Spec1NotSpec2) == 0 {
		t.Errorf("comparison file = %+v", cmp)
	}

	var viz Viz
	data, _ = os.ReadFile(filepath.Join(dir, VizFile))
	if err := json.Unmarshal(data, &viz); err != nil {
		t.Fatal(err)
	}
	if len(viz[similarity.MetricWeightedVersion]) != 3 {
		t.Errorf("viz = %+v", viz)
	}
}

func TestReportWriteWithoutPairFiles(t *testing.T) {
	dir := writeCorpus(t, map[string]string{"a.yaml": manifestA})
	rep, err := newRunner(t, Options{}).Run(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	written, err := rep.Write(false)
	if err != nil {
		t.Fatal(err)
	}
	if len(written) != 2 {
		t.Errorf("written = %v", written)
	}
	if _, err := os.Stat(filepath.Join(dir, ComparisonFile("a-a"))); !os.IsNotExist(err) {
		t.Error("pair file should not be written")
	}
}

func TestReadDiffsErrors(t *testing.T) {
	if _, err := ReadDiffs(filepath.Join(t.TempDir(), DiffsFile)); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: err = %v", err)
	}
	dir := writeCorpus(t, map[string]string{DiffsFile: "[1, 2"})
	if _, err := ReadDiffs(filepath.Join(dir, DiffsFile)); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad json: err = %v", err)
	}
}

func TestScan(t *testing.T) {
	dir := writeCorpus(t, map[string]string{"a.yaml": manifestA, "b.yaml": manifestB, "bad.yaml": broken})
	table, skipped, err := newRunner(t, Options{}).Scan(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(skipped) != 1 {
		t.Errorf("skipped = %+v", skipped)
	}
	foo, ok := table.Get("libfoo")
	if !ok || !reflect.DeepEqual(foo.Sorted, []string{"1.0", "2.0"}) {
		t.Errorf("libfoo domain = %+v", foo)
	}
}
