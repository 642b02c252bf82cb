// Package pkg holds the specdiff libraries.
//
// # Overview
//
// specdiff measures how alike the package-configuration manifests of a
// corpus are. For each pair of manifests it computes five similarity
// scores and a symbolic fact diff.
//
//  1. [manifest] - Manifest model, YAML parsing, package lookups
//  2. [versions] - Corpus-wide version domains and version closeness
//  3. [similarity] - The five pairwise metrics
//  4. [facts] - Fact derivation and fact-set diffs
//  5. [batch] - Corpus runs and JSON artifacts
//
// Supporting packages: [cache], [config], [errors], [observability] and
// [buildinfo].
//
// # Data Flow
//
//	corpus directory (*.yaml)
//	         ↓
//	    [manifest] (parse, lookup)
//	         ↓
//	    [versions] (version table over the whole corpus)
//	         ↓
//	    [similarity] + [facts] (per pair)
//	         ↓
//	    [batch] (spec-diffs.json, spec-diffs-vizdata.json, <key>-comparison.json)
//
// # Quick Start
//
//	runner, err := batch.NewRunner(batch.Options{Workers: 4})
//	if err != nil {
//	    return err
//	}
//	report, err := runner.Run(ctx, "data/zlib")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(report.Diffs["a-b"].PackageNames)
//
// [manifest]: github.com/matzehuels/specdiff/pkg/manifest
// [versions]: github.com/matzehuels/specdiff/pkg/versions
// [similarity]: github.com/matzehuels/specdiff/pkg/similarity
// [facts]: github.com/matzehuels/specdiff/pkg/facts
// [batch]: github.com/matzehuels/specdiff/pkg/batch
// [cache]: github.com/matzehuels/specdiff/pkg/cache
// [config]: github.com/matzehuels/specdiff/pkg/config
// [errors]: github.com/matzehuels/specdiff/pkg/errors
// [observability]: github.com/matzehuels/specdiff/pkg/observability
// [buildinfo]: github.com/matzehuels/specdiff/pkg/buildinfo
package pkg
