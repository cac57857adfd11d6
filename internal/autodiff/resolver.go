package autodiff

import (
	"github.com/tangentlang/tangent/internal/indexset"
)

// FindMinimalCover returns the annotation with the fewest participating
// indices whose parameter set still covers every requested index, together
// with that annotation's index set. It returns (nil, nil) when no annotation
// covers the request.
//
// Annotations declared against the full, un-partial-applied form of a
// function legitimately have larger capacity than a request computed against
// a partially applied view; the request is zero-extended to each annotation's
// capacity before the superset test. Extra empty positions never create a
// false superset, so extension is sound. An annotation with smaller capacity
// than the request cannot cover it and is skipped.
//
// When several covering annotations have the same minimal index count, the
// first one in declaration order wins. This tie-break is deliberate and must
// stay stable: declaration order is source order, so resolution stays
// reproducible across builds.
func FindMinimalCover(requested *indexset.IndexSet, annotations []*Annotation) (*Annotation, *indexset.IndexSet) {
	var best *Annotation
	var bestIndices *indexset.IndexSet
	for _, a := range annotations {
		if a.ParameterIndices.Capacity() < requested.Capacity() {
			continue
		}
		extended := requested.ExtendingCapacity(a.ParameterIndices.Capacity())
		if !a.ParameterIndices.IsSupersetOf(extended) {
			continue
		}
		if best == nil || a.ParameterIndices.NumIndices() < bestIndices.NumIndices() {
			best = a
			bestIndices = a.ParameterIndices
		}
	}
	return best, bestIndices
}
