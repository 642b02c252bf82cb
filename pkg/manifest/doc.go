// Package manifest models resolved package-configuration manifests.
//
// A manifest is a YAML document describing one concretized configuration:
// an ordered list of packages, each with a version, the compiler that built
// it, build parameters and architecture attributes. The first entry is the
// primary (root) package.
//
// # Format
//
// Two document shapes are accepted. The wrapped form used by build tools:
//
//	spec:
//	- zlib:
//	    version: 1.2.11
//	    arch: {platform: linux, platform_os: ubuntu20.04, target: x86_64}
//	    compiler: {name: gcc, version: 9.3.0}
//	    parameters: {optimize: true, pic: true, shared: true}
//
// and a bare list of the same single-key mappings. Every entry's key is the
// package name; it is copied into [Package.Name] at parse time so callers
// never inspect map keys.
//
// # Degenerate Manifests
//
// A manifest whose primary entry carries the unconstrained version
// sentinel (versions: [":"]) describes a package that could not be
// concretized. [Manifest.Degenerate] reports this; such manifests are
// excluded from pairwise comparison.
//
// # Lookups
//
// [NewLookup] flattens a manifest into a name-keyed table in which each
// package's compiler also appears as a pseudo-package carrying only its
// version.
package manifest
