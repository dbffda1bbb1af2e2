package ga

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mbjallow6/ris-ga-influence-maximization/pkg/objective"
	"github.com/mbjallow6/ris-ga-influence-maximization/pkg/ris"
)

// Params holds the optimizer hyperparameters, validated once before a run.
type Params struct {
	K                    int     `json:"k"`
	PopulationSize       int     `json:"population_size"`
	Generations          int     `json:"generations"`
	CrossoverRate        float64 `json:"crossover_rate"`
	MutationRate         float64 `json:"mutation_rate"`
	TournamentSize       int     `json:"tournament_size"`
	EliteSize            int     `json:"elite_size"`
	SeedFraction         float64 `json:"seed_fraction"`
	Patience             int     `json:"patience"`
	ConvergenceThreshold float64 `json:"convergence_threshold"`
	NumWorkers           int     `json:"num_workers"`
	RandomSeed           int64   `json:"random_seed"`
}

// Validate checks the hyperparameters.
func (p Params) Validate(numNodes int) error {
	if p.K <= 0 {
		return fmt.Errorf("k must be positive: %d", p.K)
	}
	if p.K > numNodes {
		return fmt.Errorf("k=%d exceeds node count %d", p.K, numNodes)
	}
	if p.PopulationSize < 2 {
		return fmt.Errorf("population size must be at least 2: %d", p.PopulationSize)
	}
	if p.EliteSize < 0 || p.PopulationSize < 2*p.EliteSize {
		return fmt.Errorf("population size %d must be at least twice elite size %d",
			p.PopulationSize, p.EliteSize)
	}
	if p.Generations <= 0 {
		return fmt.Errorf("generation budget must be positive: %d", p.Generations)
	}
	if p.CrossoverRate < 0 || p.CrossoverRate > 1 {
		return fmt.Errorf("crossover rate must be in [0,1]: %f", p.CrossoverRate)
	}
	if p.MutationRate < 0 || p.MutationRate > 1 {
		return fmt.Errorf("mutation rate must be in [0,1]: %f", p.MutationRate)
	}
	if p.TournamentSize < 1 {
		return fmt.Errorf("tournament size must be at least 1: %d", p.TournamentSize)
	}
	if p.SeedFraction < 0 || p.SeedFraction > 1 {
		return fmt.Errorf("seed fraction must be in [0,1]: %f", p.SeedFraction)
	}
	return nil
}

// GenerationStats records per-generation progress.
type GenerationStats struct {
	Generation    int     `json:"generation"`
	BestAggregate float64 `json:"best_aggregate"`
	MeanAggregate float64 `json:"mean_aggregate"`
	RuntimeMS     int64   `json:"runtime_ms"`
}

// Result is the optimizer output.
type Result struct {
	Best        *Candidate        `json:"best"`
	Generations []GenerationStats `json:"generations"`
	Converged   bool              `json:"converged"`
	RuntimeMS   int64             `json:"runtime_ms"`
}

// Optimizer runs the generational loop over seed-set candidates. Identical
// seed and coverage index state produce identical trajectories.
type Optimizer struct {
	params    Params
	evaluator *objective.Evaluator
	index     *ris.CoverageIndex
	rng       *rand.Rand
	logger    zerolog.Logger
}

// NewOptimizer creates an optimizer over an evaluated coverage index.
func NewOptimizer(params Params, evaluator *objective.Evaluator, index *ris.CoverageIndex, logger zerolog.Logger) (*Optimizer, error) {
	if err := params.Validate(index.NodeCount()); err != nil {
		return nil, err
	}
	return &Optimizer{
		params:    params,
		evaluator: evaluator,
		index:     index,
		rng:       rand.New(rand.NewSource(params.RandomSeed)),
		logger:    logger,
	}, nil
}

// Run executes the Init -> Evaluate -> Select -> Reproduce loop until the
// generation budget is spent or the best fitness stalls for the patience
// window. Cancellation is checked once per generation.
func (o *Optimizer) Run(ctx context.Context) (*Result, error) {
	startTime := time.Now()

	o.logger.Info().
		Int("population", o.params.PopulationSize).
		Int("generations", o.params.Generations).
		Int("k", o.params.K).
		Msg("Starting genetic optimization")

	pop := o.initPopulation()
	if err := o.evaluate(ctx, pop); err != nil {
		return nil, err
	}

	result := &Result{Generations: make([]GenerationStats, 0, o.params.Generations)}

	bestSoFar := pop.Best().Clone()
	stall := 0

	for gen := 0; gen < o.params.Generations; gen++ {
		genStart := time.Now()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		next, err := o.reproduce(pop)
		if err != nil {
			return nil, err
		}
		if err := o.evaluate(ctx, next); err != nil {
			return nil, err
		}
		pop = next

		best := pop.Best()
		if best.Fitness.Aggregate > bestSoFar.Fitness.Aggregate+o.params.ConvergenceThreshold {
			bestSoFar = best.Clone()
			stall = 0
		} else {
			if best.Fitness.Aggregate > bestSoFar.Fitness.Aggregate {
				bestSoFar = best.Clone()
			}
			stall++
		}

		stats := GenerationStats{
			Generation:    gen,
			BestAggregate: bestSoFar.Fitness.Aggregate,
			MeanAggregate: pop.MeanAggregate(),
			RuntimeMS:     time.Since(genStart).Milliseconds(),
		}
		result.Generations = append(result.Generations, stats)

		o.logger.Debug().
			Int("generation", gen).
			Float64("best", stats.BestAggregate).
			Float64("mean", stats.MeanAggregate).
			Msg("Generation complete")

		if o.params.Patience > 0 && stall >= o.params.Patience {
			o.logger.Info().Int("generation", gen).Msg("Converged: fitness stalled")
			result.Converged = true
			break
		}
	}

	result.Best = bestSoFar
	result.RuntimeMS = time.Since(startTime).Milliseconds()

	o.logger.Info().
		Float64("best_aggregate", result.Best.Fitness.Aggregate).
		Float64("influence", result.Best.Fitness.Influence).
		Int64("runtime_ms", result.RuntimeMS).
		Msg("Genetic optimization completed")

	return result, nil
}

// initPopulation samples random candidates, seeding a fraction from greedy
// marginal-gain construction for faster convergence (hybrid seeding).
func (o *Optimizer) initPopulation() Population {
	pop := make(Population, 0, o.params.PopulationSize)

	greedyCount := int(o.params.SeedFraction * float64(o.params.PopulationSize))
	if greedyCount > 0 {
		greedy := ris.GreedySeeds(o.index, o.params.K)
		pop = append(pop, NewCandidate(append([]int32(nil), greedy...)))

		// Mutated copies of the greedy seed keep the seeded fraction diverse.
		base := NewCandidate(greedy)
		for i := 1; i < greedyCount; i++ {
			pop = append(pop, mutate(o.rng, base, o.index.NodeCount()))
		}
	}

	for len(pop) < o.params.PopulationSize {
		pop = append(pop, randomCandidate(o.rng, o.index.NodeCount(), o.params.K))
	}

	return pop
}

// evaluate fills the fitness cache of every unevaluated candidate, in
// parallel across the configured worker count.
func (o *Optimizer) evaluate(ctx context.Context, pop Population) error {
	workers := o.params.NumWorkers
	if workers < 1 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, c := range pop {
		if c.Evaluated {
			continue
		}
		c := c
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			fit, err := o.evaluator.Evaluate(c.Nodes)
			if err != nil {
				return err
			}
			c.Fitness = fit
			c.Evaluated = true
			return nil
		})
	}

	return g.Wait()
}

// reproduce builds the next generation: elites carry over unconditionally,
// the remainder comes from tournament selection plus crossover and
// mutation, with a repair step restoring the candidate invariants.
func (o *Optimizer) reproduce(pop Population) (Population, error) {
	sorted := append(Population(nil), pop...)
	sorted.sortByFitness()

	next := make(Population, 0, o.params.PopulationSize)
	for i := 0; i < o.params.EliteSize && i < len(sorted); i++ {
		next = append(next, sorted[i].Clone())
	}

	for len(next) < o.params.PopulationSize {
		parentA := tournamentSelect(o.rng, pop, o.params.TournamentSize)
		parentB := tournamentSelect(o.rng, pop, o.params.TournamentSize)

		var child *Candidate
		if o.rng.Float64() < o.params.CrossoverRate {
			child = crossover(o.index, parentA, parentB, o.params.K)
		} else {
			child = parentA.Clone()
			child.Evaluated = false
		}

		if o.rng.Float64() < o.params.MutationRate {
			child = mutate(o.rng, child, o.index.NodeCount())
		}

		child.Nodes = repair(o.rng, o.index, child.Nodes, o.index.NodeCount(), o.params.K)
		child.Evaluated = false
		next = append(next, child)
	}

	return next, nil
}
