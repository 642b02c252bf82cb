// Package versions builds corpus-wide version domains.
//
// A [Domain] records every version string observed for one package name
// across a whole corpus of manifests, and, when all of those strings look
// like plain semantic versions, a numeric scale used to turn the distance
// between two versions into a similarity in [0, 1].
//
// # Semantic Classification
//
// A version string is semantic when it matches X.Y, X.Y.Z, or either of
// those with an aN/bN pre-release suffix, AND it parses as a decimal once
// its first "." is removed. The second condition rejects pre-release
// suffixes in practice, so the accepted set is X.Y and X.Y.Z. One
// non-semantic string marks the whole name as non-semantic; comparisons for
// such names fall back to exact string equality.
//
// # Projection and Range
//
// Semantic versions are projected onto a number by deleting the first dot
// ("1.2.3" becomes 12.3, "2.0" becomes 20). The range of a domain is, by
// default, the absolute difference between the projections of the first
// and last versions in byte-wise sorted order ([RangeSorted]). Because
// string order and numeric order disagree for inputs such as "1.9" and
// "1.10", this can differ from the true numeric spread; [RangeExtrema]
// uses the actual minimum and maximum projections instead.
//
// # Usage
//
//	table := versions.Build(manifests, versions.RangeSorted)
//	d, ok := table.Get("zlib")
//	if ok {
//	    score := d.Closeness("1.2.8", "1.2.11")
//	}
package versions
