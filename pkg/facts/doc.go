// Package facts derives symbolic facts from manifests and diffs them.
//
// A fact is a predicate with string arguments, such as
// version("zlib", "1.2.11") or variant_value("zlib", "shared", "bool(true)").
// Two manifests are compared by deriving a [Set] for each and splitting
// their union with [Compare] into facts both share and facts unique to
// either side.
//
// # Derivation
//
// A [Loader] turns a parsed manifest into a resolved [Config]; a [Deriver]
// turns a Config into facts. Three derivers are provided:
//
//   - [ManifestDeriver] reads facts straight off an already concrete manifest
//   - [CommandDeriver] delegates to an external tool that prints facts as JSON
//   - [CachedDeriver] wraps either one with a [cache.Cache]
//
// One Loader and one Deriver are built per batch run and passed explicitly
// to the runner.
//
// # Output
//
// [Flatten] renders facts as [predicate, "arg1 arg2 ..."] pairs, the shape
// used by the comparison artifacts ([Comparison]).
package facts
