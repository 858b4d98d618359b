package nnd

// buildCandidatesLowMemory is the memory-constrained candidate variant:
// it samples only the "new" candidate heap and skips "old" entirely
// (allocating it at zero width, which keeps its backing arrays empty
// rather than N×maxCandidates), cutting the local join to a single
// new-new pass instead of the usual new-new plus new-old passes. This
// roughly halves per-iteration candidate memory and join cost at the
// expense of re-pairing "old" neighbors less aggressively, for graphs too
// large to afford a full second candidate array.
func buildCandidatesLowMemory(graph *NeighborHeap, maxCandidates int, seed uint64) *CandidateHeaps {
	n := graph.NPoints()
	newH := NewNeighborHeap(n, maxCandidates)
	oldH := NewNeighborHeap(n, 0)

	for i := 0; i < n; i++ {
		for j := 0; j < graph.NNbrs(); j++ {
			nbr := graph.Index(i, j)
			if nbr == NPOS || !graph.Flag(i, j) {
				continue
			}
			key := graph.Distance(i, j)
			accepted := newH.CheckedPushPair(i, key, int(nbr), true)
			FlagRetainedNewCandidates(graph, i, j, accepted > 0)
		}
	}

	return &CandidateHeaps{New: newH, Old: oldH}
}
