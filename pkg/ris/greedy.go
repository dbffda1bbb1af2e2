package ris

// GreedySeeds builds a k-node seed set by repeatedly taking the node with
// the largest marginal coverage gain. This is the classical RIS greedy
// baseline; it also supplies the lower-bound estimate for the theta
// scheduler and the hybrid seeding of the genetic optimizer.
func GreedySeeds(index *CoverageIndex, k int) []int32 {
	n := index.NodeCount()
	if k > n {
		k = n
	}

	selected := make([]int32, 0, k)
	covered := make([]bool, index.Size())
	inSeed := make([]bool, n)

	for len(selected) < k {
		best := int32(-1)
		bestGain := -1

		for node := int32(0); int(node) < n; node++ {
			if inSeed[node] {
				continue
			}
			gain := 0
			for _, idx := range index.nodeToSets[node] {
				if !covered[idx] {
					gain++
				}
			}
			if gain > bestGain {
				best = node
				bestGain = gain
			}
		}

		if best < 0 {
			break
		}

		selected = append(selected, best)
		inSeed[best] = true
		for _, idx := range index.nodeToSets[best] {
			covered[idx] = true
		}
	}

	return selected
}
