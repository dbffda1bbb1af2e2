package ga

import (
	"math/rand"
	"testing"

	"github.com/mbjallow6/ris-ga-influence-maximization/pkg/ris"
)

func smallIndex() *ris.CoverageIndex {
	index := ris.NewCoverageIndex(10)
	index.AddBatch([]ris.RRSet{
		{Root: 0, Nodes: []int32{0, 1, 2}},
		{Root: 3, Nodes: []int32{3, 4}},
		{Root: 5, Nodes: []int32{5}},
		{Root: 6, Nodes: []int32{6, 7, 8, 9}},
		{Root: 1, Nodes: []int32{1}},
	})
	return index
}

func checkCandidateInvariants(t *testing.T, c *Candidate, numNodes, k int) {
	t.Helper()
	if len(c.Nodes) != k {
		t.Fatalf("candidate size %d, expected %d: %v", len(c.Nodes), k, c.Nodes)
	}
	seen := make(map[int32]bool)
	for _, n := range c.Nodes {
		if n < 0 || int(n) >= numNodes {
			t.Fatalf("candidate contains out-of-range node %d", n)
		}
		if seen[n] {
			t.Fatalf("candidate contains duplicate node %d: %v", n, c.Nodes)
		}
		seen[n] = true
	}
}

func TestRandomCandidateInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 100; i++ {
		c := randomCandidate(rng, 10, 4)
		checkCandidateInvariants(t, c, 10, 4)
	}
}

func TestCrossoverInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	index := smallIndex()
	k := 3

	for i := 0; i < 200; i++ {
		a := randomCandidate(rng, 10, k)
		b := randomCandidate(rng, 10, k)
		child := crossover(index, a, b, k)
		checkCandidateInvariants(t, child, 10, k)

		// Children draw only from the parents' union
		for _, n := range child.Nodes {
			if !a.Contains(n) && !b.Contains(n) {
				t.Fatalf("crossover introduced node %d outside parent union", n)
			}
		}
	}
}

func TestMutateInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	k := 3

	for i := 0; i < 200; i++ {
		c := randomCandidate(rng, 10, k)
		mutated := mutate(rng, c, 10)
		checkCandidateInvariants(t, mutated, 10, k)

		// Exactly one member replaced
		shared := 0
		for _, n := range mutated.Nodes {
			if c.Contains(n) {
				shared++
			}
		}
		if shared != k-1 {
			t.Fatalf("mutation changed %d members, expected exactly 1: %v -> %v", k-shared, c.Nodes, mutated.Nodes)
		}
	}
}

func TestMutateDoesNotEditParent(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	c := NewCandidate([]int32{0, 1, 2})
	before := append([]int32(nil), c.Nodes...)

	mutate(rng, c, 10)

	for i := range before {
		if c.Nodes[i] != before[i] {
			t.Fatalf("mutate edited the parent in place: %v -> %v", before, c.Nodes)
		}
	}
}

func TestRepair(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	index := smallIndex()

	tests := []struct {
		name  string
		nodes []int32
		k     int
	}{
		{name: "duplicates", nodes: []int32{1, 1, 2}, k: 3},
		{name: "too_short", nodes: []int32{1}, k: 3},
		{name: "too_long", nodes: []int32{0, 1, 2, 3, 4}, k: 3},
		{name: "out_of_range", nodes: []int32{1, 2, 99}, k: 3},
		{name: "empty", nodes: nil, k: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repaired := repair(rng, index, tt.nodes, 10, tt.k)
			checkCandidateInvariants(t, NewCandidate(repaired), 10, tt.k)
		})
	}
}

func TestTournamentSelectPicksFittest(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	pop := make(Population, 5)
	for i := range pop {
		pop[i] = NewCandidate([]int32{int32(i)})
		pop[i].Fitness.Aggregate = float64(i) / 10.0
		pop[i].Evaluated = true
	}

	// Tournament over the whole population must return the global best.
	best := tournamentSelect(rng, pop, 50)
	if best.Fitness.Aggregate != 0.4 {
		t.Errorf("expected aggregate 0.4, got %f", best.Fitness.Aggregate)
	}
}

func TestTrimByMarginalGainKeepsHighCoverage(t *testing.T) {
	index := smallIndex()

	// Node 6 covers the largest RR-set count among the pool.
	trimmed := trimByMarginalGain(index, []int32{2, 4, 5, 6, 1}, 2)
	if len(trimmed) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(trimmed))
	}

	found := false
	for _, n := range trimmed {
		if n == 1 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected node 1 (two RR-sets) in trimmed set %v", trimmed)
	}
}
