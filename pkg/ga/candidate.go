package ga

import (
	"math/rand"
	"sort"

	"github.com/mbjallow6/ris-ga-influence-maximization/pkg/objective"
)

// Candidate is one chromosome: a seed set of k distinct node ids with a
// cached fitness vector. Operators produce new candidates; an evaluated
// candidate is never edited in place.
type Candidate struct {
	Nodes     []int32           `json:"nodes"`
	Fitness   objective.Fitness `json:"fitness"`
	Evaluated bool              `json:"-"`
}

// NewCandidate wraps a seed set in an unevaluated candidate.
func NewCandidate(nodes []int32) *Candidate {
	return &Candidate{Nodes: nodes}
}

// Clone deep-copies the candidate, including its cached fitness.
func (c *Candidate) Clone() *Candidate {
	return &Candidate{
		Nodes:     append([]int32(nil), c.Nodes...),
		Fitness:   c.Fitness,
		Evaluated: c.Evaluated,
	}
}

// Contains reports whether node is part of the seed set.
func (c *Candidate) Contains(node int32) bool {
	for _, n := range c.Nodes {
		if n == node {
			return true
		}
	}
	return false
}

// randomCandidate draws k distinct nodes uniformly from 0..numNodes-1.
func randomCandidate(rng *rand.Rand, numNodes, k int) *Candidate {
	perm := rng.Perm(numNodes)
	nodes := make([]int32, k)
	for i := 0; i < k; i++ {
		nodes[i] = int32(perm[i])
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })
	return NewCandidate(nodes)
}

// Population is one generation of candidates, replaced wholesale each
// generation.
type Population []*Candidate

// Best returns the evaluated candidate with the highest aggregate fitness.
func (p Population) Best() *Candidate {
	var best *Candidate
	for _, c := range p {
		if c.Evaluated && (best == nil || c.Fitness.Aggregate > best.Fitness.Aggregate) {
			best = c
		}
	}
	return best
}

// MeanAggregate returns the mean aggregate fitness of evaluated candidates.
func (p Population) MeanAggregate() float64 {
	sum, count := 0.0, 0
	for _, c := range p {
		if c.Evaluated {
			sum += c.Fitness.Aggregate
			count++
		}
	}
	if count == 0 {
		return 0.0
	}
	return sum / float64(count)
}

// sortByFitness orders the population by descending aggregate fitness,
// keeping the original order on ties so trajectories stay deterministic.
func (p Population) sortByFitness() {
	sort.SliceStable(p, func(i, j int) bool {
		return p[i].Fitness.Aggregate > p[j].Fitness.Aggregate
	})
}
