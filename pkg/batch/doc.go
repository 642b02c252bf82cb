// Package batch compares every manifest of a corpus directory with every
// other.
//
// A run goes through five stages:
//
//  1. Load: list and parse the directory's manifests; broken ones are
//     skipped (or fail the run in strict mode)
//  2. Scan: build the corpus [versions.Table] from all parsed manifests
//  3. Derive: compute one fact set per comparable manifest
//  4. Compare: score every unordered pair, self-pairs included, on a
//     bounded worker pool
//  5. Aggregate: collect results into a [Report]
//
// Degenerate manifests (see [manifest.Manifest.Degenerate]) feed the
// version scan but are never compared.
//
// # Usage
//
//	runner, err := batch.NewRunner(batch.Options{Workers: 4, Logger: logger})
//	if err != nil {
//	    return err
//	}
//	report, err := runner.Run(ctx, "data/zlib")
//	if err != nil {
//	    return err
//	}
//	written, err := report.Write(true)
//
// [Report.Write] produces spec-diffs.json, spec-diffs-vizdata.json and,
// optionally, one <key>-comparison.json per pair.
package batch
