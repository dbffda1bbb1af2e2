package ga

import (
	"context"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat/combin"

	"github.com/mbjallow6/ris-ga-influence-maximization/pkg/graph"
	"github.com/mbjallow6/ris-ga-influence-maximization/pkg/objective"
	"github.com/mbjallow6/ris-ga-influence-maximization/pkg/ris"
)

// sixNodeIndex samples theta RR-sets from a 6-node directed graph with
// uniform edge probability 0.5.
func sixNodeIndex(t *testing.T, theta int) *ris.CoverageIndex {
	t.Helper()

	g := graph.NewGraph(6)
	edges := [][2]int32{
		{0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 5}, {5, 0},
		{0, 2}, {1, 4}, {3, 0},
	}
	for _, e := range edges {
		if err := g.AddEdge(e[0], e[1], 0.5); err != nil {
			t.Fatalf("AddEdge failed: %v", err)
		}
	}

	sampler := ris.NewSampler(g, 42, 2, zerolog.Nop())
	rrs, err := sampler.Generate(context.Background(), theta)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	index := ris.NewCoverageIndex(6)
	index.AddBatch(rrs)
	return index
}

func testParams(k, pop, gens int) Params {
	return Params{
		K:                    k,
		PopulationSize:       pop,
		Generations:          gens,
		CrossoverRate:        0.8,
		MutationRate:         0.1,
		TournamentSize:       3,
		EliteSize:            2,
		SeedFraction:         0.1,
		Patience:             0, // run the full budget
		ConvergenceThreshold: 1e-4,
		NumWorkers:           2,
		RandomSeed:           42,
	}
}

func newTestOptimizer(t *testing.T, params Params, index *ris.CoverageIndex, weights objective.Weights) *Optimizer {
	t.Helper()
	ev, err := objective.NewEvaluator(index, objective.UniformCostTable(index.NodeCount()),
		objective.UniformGroupTable(index.NodeCount()), weights, params.K)
	if err != nil {
		t.Fatalf("NewEvaluator failed: %v", err)
	}
	opt, err := NewOptimizer(params, ev, index, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewOptimizer failed: %v", err)
	}
	return opt
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{name: "zero_k", mutate: func(p *Params) { p.K = 0 }},
		{name: "k_exceeds_nodes", mutate: func(p *Params) { p.K = 100 }},
		{name: "tiny_population", mutate: func(p *Params) { p.PopulationSize = 1 }},
		{name: "elite_too_large", mutate: func(p *Params) { p.EliteSize = 15 }},
		{name: "zero_generations", mutate: func(p *Params) { p.Generations = 0 }},
		{name: "bad_crossover_rate", mutate: func(p *Params) { p.CrossoverRate = 1.5 }},
		{name: "bad_mutation_rate", mutate: func(p *Params) { p.MutationRate = -0.1 }},
		{name: "zero_tournament", mutate: func(p *Params) { p.TournamentSize = 0 }},
		{name: "bad_seed_fraction", mutate: func(p *Params) { p.SeedFraction = 2.0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := testParams(2, 20, 10)
			tt.mutate(&params)
			if err := params.Validate(6); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}

	if err := testParams(2, 20, 10).Validate(6); err != nil {
		t.Errorf("valid params rejected: %v", err)
	}
}

// End-to-end scenario: the optimizer must come within 0.05 of the
// brute-force optimal 2-node seed set over all C(6,2)=15 pairs.
func TestOptimizerMatchesBruteForce(t *testing.T) {
	index := sixNodeIndex(t, 500)
	params := testParams(2, 20, 10)

	opt := newTestOptimizer(t, params, index, objective.Weights{Influence: 1.0})
	result, err := opt.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	bestCoverage := 0.0
	for _, pair := range combin.Combinations(6, 2) {
		seeds := []int32{int32(pair[0]), int32(pair[1])}
		if cov := index.CoverageFraction(seeds); cov > bestCoverage {
			bestCoverage = cov
		}
	}

	got := index.CoverageFraction(result.Best.Nodes)
	if bestCoverage-got > 0.05 {
		t.Errorf("optimizer coverage %f more than 0.05 below brute-force optimum %f", got, bestCoverage)
	}
	checkCandidateInvariants(t, result.Best, 6, 2)
}

func TestOptimizerDeterminism(t *testing.T) {
	index := sixNodeIndex(t, 300)
	params := testParams(2, 16, 8)
	weights := objective.Weights{Influence: 0.6, Cost: 0.2, Equity: 0.2}

	a, err := newTestOptimizer(t, params, index, weights).Run(context.Background())
	if err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	b, err := newTestOptimizer(t, params, index, weights).Run(context.Background())
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}

	if len(a.Best.Nodes) != len(b.Best.Nodes) {
		t.Fatalf("best candidates differ in size")
	}
	for i := range a.Best.Nodes {
		if a.Best.Nodes[i] != b.Best.Nodes[i] {
			t.Fatalf("best candidates differ: %v vs %v", a.Best.Nodes, b.Best.Nodes)
		}
	}

	if len(a.Generations) != len(b.Generations) {
		t.Fatalf("generation counts differ: %d vs %d", len(a.Generations), len(b.Generations))
	}
	for i := range a.Generations {
		if math.Abs(a.Generations[i].BestAggregate-b.Generations[i].BestAggregate) > 1e-15 {
			t.Fatalf("generation %d best differs: %f vs %f",
				i, a.Generations[i].BestAggregate, b.Generations[i].BestAggregate)
		}
	}
}

// With influence weight 1 the optimizer must at least match the greedy
// baseline, which its hybrid seeding starts from.
func TestInfluenceOnlyMatchesGreedyBaseline(t *testing.T) {
	index := sixNodeIndex(t, 500)
	params := testParams(2, 20, 10)

	opt := newTestOptimizer(t, params, index, objective.Weights{Influence: 1.0})
	result, err := opt.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	greedy := ris.GreedySeeds(index, 2)
	greedyCov := index.CoverageFraction(greedy)
	gaCov := index.CoverageFraction(result.Best.Nodes)

	if gaCov+1e-12 < greedyCov {
		t.Errorf("GA coverage %f below greedy baseline %f", gaCov, greedyCov)
	}
}

func TestOptimizerCancellation(t *testing.T) {
	index := sixNodeIndex(t, 100)
	params := testParams(2, 10, 1000)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opt := newTestOptimizer(t, params, index, objective.Weights{Influence: 1.0})
	if _, err := opt.Run(ctx); err == nil {
		t.Errorf("expected context error from cancelled Run")
	}
}

func TestPopulationInvariantsAcrossGenerations(t *testing.T) {
	index := sixNodeIndex(t, 200)
	params := testParams(3, 12, 6)

	opt := newTestOptimizer(t, params, index, objective.Weights{Influence: 1.0})

	pop := opt.initPopulation()
	if len(pop) != params.PopulationSize {
		t.Fatalf("initial population size %d, expected %d", len(pop), params.PopulationSize)
	}
	if err := opt.evaluate(context.Background(), pop); err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}

	for gen := 0; gen < 5; gen++ {
		next, err := opt.reproduce(pop)
		if err != nil {
			t.Fatalf("reproduce failed: %v", err)
		}
		if len(next) != params.PopulationSize {
			t.Fatalf("generation %d: population size %d, expected %d", gen, len(next), params.PopulationSize)
		}
		for _, c := range next {
			checkCandidateInvariants(t, c, 6, params.K)
		}
		if err := opt.evaluate(context.Background(), next); err != nil {
			t.Fatalf("evaluate failed: %v", err)
		}
		pop = next
	}
}
