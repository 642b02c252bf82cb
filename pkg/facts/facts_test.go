package facts

import (
	"context"
	"encoding/json"
	"os/exec"
	"reflect"
	"testing"
	"time"

	"github.com/matzehuels/specdiff/pkg/errors"
	"github.com/matzehuels/specdiff/pkg/manifest"
)

func TestArg(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"zlib", "zlib"},
		{3, "int(3)"},
		{int64(-7), "int(-7)"},
		{true, "bool(true)"},
		{false, "bool(false)"},
		{1.5, "float(1.5)"},
		{json.Number("42"), "int(42)"},
		{json.Number("0.25"), "float(0.25)"},
		{nil, "none()"},
		{uint8(2), "uint8(2)"},
	}
	for _, tt := range tests {
		if got := Arg(tt.in); got != tt.want {
			t.Errorf("Arg(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFactKeyDistinguishesArgs(t *testing.T) {
	a := New("p", "a b", "c")
	b := New("p", "a", "b c")
	if a.Key() == b.Key() {
		t.Error("facts with different argument boundaries should have different keys")
	}
	if got := a.Tuple(); !reflect.DeepEqual(got, []string{"p", "a b", "c"}) {
		t.Errorf("Tuple() = %v", got)
	}
	if got := New("version", "zlib", "1.2").String(); got != `version("zlib", "1.2")` {
		t.Errorf("String() = %s", got)
	}
}

func TestSetDeduplicates(t *testing.T) {
	s := NewSet(New("node", "zlib"), New("node", "zlib"), New("node", "cmake"))
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
	if !s.Has(New("node", "cmake")) || s.Has(New("node", "openssl")) {
		t.Error("Has() mismatch")
	}
	got := s.Facts()
	if got[0].Args[0] != "cmake" || got[1].Args[0] != "zlib" {
		t.Errorf("Facts() not sorted: %v", got)
	}

	var zero Set
	zero.Add(New("node", "x"))
	if zero.Len() != 1 {
		t.Error("zero Set should accept facts")
	}
}

func TestCompareCompleteAndDisjoint(t *testing.T) {
	a := NewSet(New("node", "zlib"), New("version", "zlib", "1.2"), New("root", "zlib"))
	b := NewSet(New("node", "zlib"), New("version", "zlib", "1.3"), New("root", "zlib"), New("node", "cmake"))

	d := Compare(a, b)

	seen := make(map[string]int)
	for _, list := range [][]Fact{d.Shared, d.OnlyA, d.OnlyB} {
		for _, f := range list {
			seen[f.Key()]++
		}
	}
	for k, n := range seen {
		if n != 1 {
			t.Errorf("fact %q appears in %d lists", k, n)
		}
	}
	union := NewSet(append(a.Facts(), b.Facts()...)...)
	if len(seen) != union.Len() {
		t.Errorf("diff covers %d facts, union has %d", len(seen), union.Len())
	}

	if len(d.Shared) != 2 || len(d.OnlyA) != 1 || len(d.OnlyB) != 2 {
		t.Errorf("Shared/OnlyA/OnlyB = %d/%d/%d, want 2/1/2", len(d.Shared), len(d.OnlyA), len(d.OnlyB))
	}
	if d.OnlyA[0].Key() != New("version", "zlib", "1.2").Key() {
		t.Errorf("OnlyA = %v", d.OnlyA)
	}
}

func TestCompareIdentical(t *testing.T) {
	a := NewSet(New("node", "zlib"), New("root", "zlib"))
	d := Compare(a, a)
	if len(d.OnlyA) != 0 || len(d.OnlyB) != 0 || len(d.Shared) != 2 {
		t.Errorf("self diff = %+v", d)
	}
}

func TestFlatten(t *testing.T) {
	got := Flatten([]Fact{
		New("node_compiler_version", "zlib", "gcc", "9.0"),
		New("root", "zlib"),
		{Predicate: "empty"},
	})
	want := [][2]string{
		{"node_compiler_version", "zlib gcc 9.0"},
		{"root", "zlib"},
		{"empty", ""},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Flatten() = %v, want %v", got, want)
	}
}

func TestComparisonJSON(t *testing.T) {
	c := NewComparison("a", NewSet(New("node", "x")), "b", NewSet(New("node", "y")))
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"intersect":[],"spec1_not_spec2":[["node","x"]],"spec2_not_spec1":[["node","y"]],"spec1_name":"a","spec2_name":"b"}`
	if string(data) != want {
		t.Errorf("json = %s\nwant  %s", data, want)
	}
}

func testManifest() *manifest.Manifest {
	return &manifest.Manifest{
		Name:   "zlib-a",
		Path:   "/corpus/zlib-a.yaml",
		Digest: "d1",
		Packages: []manifest.Package{
			{
				Name:       "zlib",
				Version:    "1.2.11",
				Compiler:   manifest.Compiler{Name: "gcc", Version: "9.0"},
				Parameters: map[string]any{"shared": true, "optimize": false, "cflags": []any{"-O2", "-g"}},
				Arch: map[string]any{
					"platform":    "linux",
					"platform_os": "ubuntu20.04",
					"target":      map[string]any{"name": "skylake", "vendor": "GenuineIntel"},
				},
				Namespace:    "builtin",
				Hash:         "abc123",
				Dependencies: []manifest.Dependency{{Name: "cmake", Types: []string{"build"}}},
			},
			{Name: "cmake", Versions: []string{manifest.Unconstrained}},
		},
	}
}

func TestManifestDeriver(t *testing.T) {
	cfg, err := ConcreteLoader{}.Load(context.Background(), testManifest())
	if err != nil {
		t.Fatal(err)
	}
	s, err := ManifestDeriver{}.Derive(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}

	want := []Fact{
		New("root", "zlib"),
		New("node", "zlib"),
		New("node", "cmake"),
		New("version", "zlib", "1.2.11"),
		New("node_compiler", "zlib", "gcc"),
		New("node_compiler_version", "zlib", "gcc", "9.0"),
		New("variant_value", "zlib", "shared", true),
		New("variant_value", "zlib", "optimize", false),
		New("variant_value", "zlib", "cflags", "-O2"),
		New("variant_value", "zlib", "cflags", "-g"),
		New("node_platform", "zlib", "linux"),
		New("node_os", "zlib", "ubuntu20.04"),
		New("node_target", "zlib", "skylake"),
		New("depends_on", "zlib", "cmake", "build"),
		New("namespace", "zlib", "builtin"),
		New("hash", "zlib", "abc123"),
	}
	for _, f := range want {
		if !s.Has(f) {
			t.Errorf("missing fact %s", f)
		}
	}
	if s.Len() != len(want) {
		t.Errorf("Len() = %d, want %d: %v", s.Len(), len(want), s.Facts())
	}
	if s.Has(New("version", "cmake", manifest.Unconstrained)) {
		t.Error("unconstrained entry should not produce a version fact")
	}
}

func TestConcreteLoaderRejectsDegenerate(t *testing.T) {
	m := &manifest.Manifest{Name: "x", Packages: []manifest.Package{{Name: "x", Versions: []string{":"}}}}
	if _, err := (ConcreteLoader{}).Load(context.Background(), m); !errors.Is(err, errors.ErrCodeInvalidManifest) {
		t.Errorf("degenerate manifest: err = %v", err)
	}
}

func TestNewCommandDeriver(t *testing.T) {
	if _, err := NewCommandDeriver("  "); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("empty command: err = %v", err)
	}
	d, err := NewCommandDeriver("solver facts {} --json")
	if err != nil {
		t.Fatal(err)
	}
	if got := d.args("/x.yaml"); !reflect.DeepEqual(got, []string{"solver", "facts", "/x.yaml", "--json"}) {
		t.Errorf("args() = %v", got)
	}
	d2 := &CommandDeriver{Argv: []string{"solver"}}
	if got := d2.args("/x.yaml"); !reflect.DeepEqual(got, []string{"solver", "/x.yaml"}) {
		t.Errorf("args() without placeholder = %v", got)
	}
	if d.ID() != "command:solver facts {} --json" {
		t.Errorf("ID() = %q", d.ID())
	}
}

func TestCommandDeriver(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	script := `printf '[{"name":"node","args":["%s"]},{"name":"weight","args":["x",3,true,0.5]}]' "$0"`
	d := &CommandDeriver{Argv: []string{"sh", "-c", script, Placeholder}}

	s, err := d.Derive(context.Background(), &Config{Name: "m", Path: "m.yaml"})
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if !s.Has(New("node", "m.yaml")) {
		t.Errorf("placeholder not substituted: %v", s.Facts())
	}
	if !s.Has(Fact{Predicate: "weight", Args: []string{"x", "int(3)", "bool(true)", "float(0.5)"}}) {
		t.Errorf("typed args not tagged: %v", s.Facts())
	}
}

func TestCommandDeriverFailures(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	ctx := context.Background()
	cfg := &Config{Name: "m", Path: "m.yaml"}

	failing := &CommandDeriver{Argv: []string{"sh", "-c", "echo boom >&2; exit 3"}}
	if _, err := failing.Derive(ctx, cfg); !errors.Is(err, errors.ErrCodeFactDerivation) {
		t.Errorf("failing tool: err = %v", err)
	}

	garbage := &CommandDeriver{Argv: []string{"sh", "-c", "echo not-json"}}
	if _, err := garbage.Derive(ctx, cfg); !errors.Is(err, errors.ErrCodeFactDerivation) {
		t.Errorf("bad output: err = %v", err)
	}

	if _, err := failing.Derive(ctx, &Config{Name: "m"}); !errors.Is(err, errors.ErrCodeFactDerivation) {
		t.Errorf("missing path: err = %v", err)
	}
}

// memCache is an in-memory cache.Cache for tests.
type memCache struct {
	data map[string][]byte
	sets int
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	if c.data == nil {
		c.data = make(map[string][]byte)
	}
	c.data[key] = data
	c.sets++
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

// countingDeriver counts Derive calls.
type countingDeriver struct {
	ManifestDeriver
	calls int
}

func (d *countingDeriver) Derive(ctx context.Context, cfg *Config) (Set, error) {
	d.calls++
	return d.ManifestDeriver.Derive(ctx, cfg)
}

func TestCachedDeriver(t *testing.T) {
	ctx := context.Background()
	inner := &countingDeriver{}
	mc := &memCache{}
	d := NewCachedDeriver(inner, mc, nil)

	cfg, _ := ConcreteLoader{}.Load(ctx, testManifest())
	first, err := d.Derive(ctx, cfg)
	if err != nil {
		t.Fatal(err)
	}
	second, err := d.Derive(ctx, cfg)
	if err != nil {
		t.Fatal(err)
	}

	if inner.calls != 1 {
		t.Errorf("inner deriver called %d times, want 1", inner.calls)
	}
	if mc.sets != 1 {
		t.Errorf("cache written %d times, want 1", mc.sets)
	}
	if !reflect.DeepEqual(first.Facts(), second.Facts()) {
		t.Error("cached facts differ from derived facts")
	}
	if d.ID() != "manifest" {
		t.Errorf("ID() = %q", d.ID())
	}

	// A changed digest misses.
	cfg2 := *cfg
	cfg2.Digest = "d2"
	if _, err := d.Derive(ctx, &cfg2); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 2 {
		t.Errorf("new digest should miss, calls = %d", inner.calls)
	}
}
