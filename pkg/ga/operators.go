package ga

import (
	"math/rand"
	"sort"

	"github.com/mbjallow6/ris-ga-influence-maximization/pkg/ris"
)

// tournamentSelect picks the fittest of tournamentSize random candidates.
func tournamentSelect(rng *rand.Rand, pop Population, tournamentSize int) *Candidate {
	best := pop[rng.Intn(len(pop))]
	for i := 1; i < tournamentSize; i++ {
		contender := pop[rng.Intn(len(pop))]
		if contender.Fitness.Aggregate > best.Fitness.Aggregate {
			best = contender
		}
	}
	return best
}

// crossover unions both parents' seed sets and trims the union back to k
// nodes by marginal-gain ranking against the coverage index.
func crossover(index *ris.CoverageIndex, a, b *Candidate, k int) *Candidate {
	seen := make(map[int32]bool, 2*k)
	union := make([]int32, 0, 2*k)
	for _, parent := range []*Candidate{a, b} {
		for _, n := range parent.Nodes {
			if !seen[n] {
				seen[n] = true
				union = append(union, n)
			}
		}
	}

	if len(union) <= k {
		sort.Slice(union, func(i, j int) bool { return union[i] < union[j] })
		return NewCandidate(union)
	}

	return NewCandidate(trimByMarginalGain(index, union, k))
}

// trimByMarginalGain greedily keeps the k nodes of pool with the largest
// incremental coverage.
func trimByMarginalGain(index *ris.CoverageIndex, pool []int32, k int) []int32 {
	selected := make([]int32, 0, k)
	remaining := append([]int32(nil), pool...)

	for len(selected) < k && len(remaining) > 0 {
		bestIdx := 0
		bestGain := -1
		for i, n := range remaining {
			gain := index.MarginalGain(n, selected)
			if gain > bestGain {
				bestIdx = i
				bestGain = gain
			}
		}
		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	sort.Slice(selected, func(i, j int) bool { return selected[i] < selected[j] })
	return selected
}

// mutate replaces one random member with a random non-member node,
// returning a new candidate.
func mutate(rng *rand.Rand, c *Candidate, numNodes int) *Candidate {
	nodes := append([]int32(nil), c.Nodes...)
	if len(nodes) >= numNodes {
		return NewCandidate(nodes)
	}

	victim := rng.Intn(len(nodes))
	for {
		replacement := int32(rng.Intn(numNodes))
		if !c.Contains(replacement) {
			nodes[victim] = replacement
			break
		}
	}

	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })
	return NewCandidate(nodes)
}

// repair enforces the size-k and uniqueness invariants after the genetic
// operators, deduplicating, refilling with random nodes and trimming by
// marginal gain as needed.
func repair(rng *rand.Rand, index *ris.CoverageIndex, nodes []int32, numNodes, k int) []int32 {
	seen := make(map[int32]bool, len(nodes))
	unique := make([]int32, 0, len(nodes))
	for _, n := range nodes {
		if n >= 0 && int(n) < numNodes && !seen[n] {
			seen[n] = true
			unique = append(unique, n)
		}
	}

	for len(unique) < k {
		n := int32(rng.Intn(numNodes))
		if !seen[n] {
			seen[n] = true
			unique = append(unique, n)
		}
	}

	if len(unique) > k {
		unique = trimByMarginalGain(index, unique, k)
	}

	sort.Slice(unique, func(i, j int) bool { return unique[i] < unique[j] })
	return unique
}
