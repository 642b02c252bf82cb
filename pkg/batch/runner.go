package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/specdiff/pkg/errors"
	"github.com/matzehuels/specdiff/pkg/facts"
	"github.com/matzehuels/specdiff/pkg/manifest"
	"github.com/matzehuels/specdiff/pkg/observability"
	"github.com/matzehuels/specdiff/pkg/similarity"
	"github.com/matzehuels/specdiff/pkg/versions"
)

// Runner compares corpus directories.
//
// A Runner holds no per-run state; one Runner may process several
// directories, one after the other or concurrently.
type Runner struct {
	opts Options
}

// NewRunner validates opts and creates a runner.
func NewRunner(opts Options) (*Runner, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return &Runner{opts: opts}, nil
}

// Options returns the runner's effective options.
func (r *Runner) Options() Options { return r.opts }

// subject is a manifest taking part in pairwise comparison.
type subject struct {
	m     *manifest.Manifest
	facts facts.Set
}

type pair struct{ a, b *subject }

// Run processes the corpus in dir and returns its report. Nothing is
// written to disk; see [Report.Write].
func (r *Runner) Run(ctx context.Context, dir string) (*Report, error) {
	start := time.Now()
	hooks := observability.Batch()
	runID := uuid.NewString()
	logger := r.opts.Logger.With("run", runID[:8], "dir", dir)

	rep := &Report{
		Dir:         dir,
		RunID:       runID,
		Diffs:       make(map[string]similarity.Result),
		Comparisons: make(map[string]facts.Comparison),
	}

	n, err := r.run(ctx, dir, logger, rep)
	rep.Duration = time.Since(start)
	hooks.OnCorpusComplete(ctx, dir, n, rep.Duration, err)
	if err != nil {
		return nil, err
	}
	return rep, nil
}

func (r *Runner) run(ctx context.Context, dir string, logger *log.Logger, rep *Report) (int, error) {
	// Stage 1: Load
	all, err := r.load(ctx, dir, logger, rep)
	if err != nil {
		return 0, err
	}
	observability.Batch().OnCorpusStart(ctx, dir, len(all))

	// Stage 2: Scan
	rep.Table = versions.Build(all, r.opts.RangePolicy)
	logger.Debug("built version table", "names", rep.Table.Len(), "policy", rep.Table.Policy)

	var subjects []*subject
	for _, m := range all {
		if m.Degenerate() {
			rep.Degenerate = append(rep.Degenerate, m.Name)
			logger.Debug("excluding degenerate manifest", "manifest", m.Name)
			continue
		}
		subjects = append(subjects, &subject{m: m})
	}
	if len(subjects) == 0 {
		return 0, errors.New(errors.ErrCodeNoComparisons, "no comparable manifests in %s", dir)
	}

	// Stage 3: Derive
	deriveStart := time.Now()
	if err := r.derive(ctx, subjects); err != nil {
		return 0, err
	}
	logger.Info("derived facts", "manifests", len(subjects), "duration", time.Since(deriveStart).Round(time.Millisecond))

	// Stage 4: Compare
	pairs := make([]pair, 0, len(subjects)*(len(subjects)+1)/2)
	for i := range subjects {
		for j := i; j < len(subjects); j++ {
			pairs = append(pairs, pair{subjects[i], subjects[j]})
		}
	}
	compareStart := time.Now()
	results, comparisons, err := r.compare(ctx, pairs, rep.Table)
	if err != nil {
		return 0, err
	}

	// Stage 5: Aggregate
	for i, res := range results {
		key := similarity.Key(res.Spec1, res.Spec2)
		rep.Diffs[key] = res
		rep.Comparisons[key] = comparisons[i]
	}
	rep.Viz = Pivot(rep.Diffs)

	logger.Info("compared manifests",
		"pairs", len(rep.Diffs),
		"skipped", len(rep.Skipped),
		"degenerate", len(rep.Degenerate),
		"duration", time.Since(compareStart).Round(time.Millisecond))
	return len(rep.Diffs), nil
}

// load parses every manifest in dir. Broken manifests and name clashes
// are recorded in rep.Skipped unless the runner is strict.
func (r *Runner) load(ctx context.Context, dir string, logger *log.Logger, rep *Report) ([]*manifest.Manifest, error) {
	files, err := manifest.Files(dir)
	if err != nil {
		return nil, err
	}

	hooks := observability.Batch()
	seen := make(map[string]string, len(files))
	var out []*manifest.Manifest

	skip := func(path string, err error) error {
		if r.opts.Strict || errors.Fatal(err) {
			return err
		}
		rep.Skipped = append(rep.Skipped, Skip{Path: path, Reason: errors.UserMessage(err)})
		hooks.OnManifestSkipped(ctx, path, err)
		logger.Warn("skipping manifest", "path", path, "reason", errors.UserMessage(err))
		return nil
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		m, err := manifest.ReadFile(path)
		if err != nil {
			if err := skip(path, err); err != nil {
				return nil, err
			}
			continue
		}

		if prev, ok := seen[m.Name]; ok {
			err := errors.New(errors.ErrCodeInvalidManifest, "%s: name %q already used by %s", path, m.Name, prev)
			if err := skip(path, err); err != nil {
				return nil, err
			}
			continue
		}

		if c := manifest.NewLookup(m).Collisions(); len(c) > 0 {
			if r.opts.Strict {
				return nil, errors.New(errors.ErrCodeInvalidManifest, "%s: compiler names collide with packages: %v", path, c)
			}
			logger.Debug("compiler shadowed by package", "manifest", m.Name, "names", c)
		}

		seen[m.Name] = path
		out = append(out, m)
	}

	logger.Debug("loaded manifests", "files", len(files), "parsed", len(out))
	return out, nil
}

// derive fills in the fact set of every subject.
func (r *Runner) derive(ctx context.Context, subjects []*subject) error {
	hooks := observability.Batch()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)

	for _, s := range subjects {
		g.Go(func() error {
			start := time.Now()
			cfg, err := r.opts.Loader.Load(gctx, s.m)
			if err != nil {
				hooks.OnFactsDerived(gctx, s.m.Name, 0, time.Since(start), err)
				return errors.Wrap(errors.ErrCodeFactDerivation, err, "load %s", s.m.Name)
			}
			set, err := r.opts.Deriver.Derive(gctx, cfg)
			hooks.OnFactsDerived(gctx, s.m.Name, set.Len(), time.Since(start), err)
			if err != nil {
				return err
			}
			s.facts = set
			return nil
		})
	}
	return g.Wait()
}

// compare scores every pair. Each pair writes only its own slot.
func (r *Runner) compare(ctx context.Context, pairs []pair, table *versions.Table) ([]similarity.Result, []facts.Comparison, error) {
	hooks := observability.Batch()
	results := make([]similarity.Result, len(pairs))
	comparisons := make([]facts.Comparison, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)

	for i, p := range pairs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			a, b := p.a, p.b
			if b.m.Name < a.m.Name {
				a, b = b, a
			}
			results[i] = similarity.Compare(a.m, b.m, table)
			comparisons[i] = facts.NewComparison(a.m.Name, a.facts, b.m.Name, b.facts)
			hooks.OnPairCompared(gctx, similarity.Key(a.m.Name, b.m.Name), time.Since(start))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return results, comparisons, nil
}

// Scan loads the corpus in dir and builds its version table without
// comparing anything.
func (r *Runner) Scan(ctx context.Context, dir string) (*versions.Table, []Skip, error) {
	logger := r.opts.Logger.With("dir", dir)
	rep := &Report{Dir: dir}
	all, err := r.load(ctx, dir, logger, rep)
	if err != nil {
		return nil, nil, err
	}
	return versions.Build(all, r.opts.RangePolicy), rep.Skipped, nil
}
