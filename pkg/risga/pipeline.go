package risga

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mbjallow6/ris-ga-influence-maximization/pkg/ga"
	"github.com/mbjallow6/ris-ga-influence-maximization/pkg/graph"
	"github.com/mbjallow6/ris-ga-influence-maximization/pkg/objective"
	"github.com/mbjallow6/ris-ga-influence-maximization/pkg/ris"
)

// Result is the pipeline output: the best seed set with its fitness vector
// and the realized sampling budget. Persistence is left to the caller.
type Result struct {
	SeedSet     []int32              `json:"seed_set"`
	Fitness     objective.Fitness    `json:"fitness"`
	Theta       int                  `json:"theta"`
	ThetaRounds int                  `json:"theta_rounds"`
	RRSetStats  ris.Stats            `json:"rr_set_stats"`
	GA          []ga.GenerationStats `json:"ga_generations"`
	Converged   bool                 `json:"converged"`
	RuntimeMS   int64                `json:"runtime_ms"`
}

// Run executes the full pipeline: a single up-front theta-convergence phase
// (doubling rounds of sampling into the coverage index), then a fixed-index
// genetic optimization phase. Cancellation is honored once per theta round
// and once per generation.
func Run(ctx context.Context, g *graph.Graph, costs *objective.CostTable, groups *objective.GroupTable, config *Config) (*Result, error) {
	startTime := time.Now()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid graph: %w", err)
	}

	logger := config.CreateLogger()

	logger.Info().
		Int("nodes", g.NumNodes).
		Int("edges", g.NumEdges).
		Int("k", config.K()).
		Int64("seed", config.RandomSeed()).
		Msg("Starting RIS+GA pipeline")

	sampler := ris.NewSampler(g, config.RandomSeed(), config.NumWorkers(), logger)
	index := ris.NewCoverageIndex(g.NumNodes)

	rounds, err := samplePhase(ctx, sampler, index, config, logger)
	if err != nil {
		return nil, err
	}

	weights := objective.Weights{
		Influence: config.InfluenceWeight(),
		Cost:      config.CostWeight(),
		Equity:    config.EquityWeight(),
	}
	evaluator, err := objective.NewEvaluator(index, costs, groups, weights, config.K())
	if err != nil {
		return nil, err
	}

	params := ga.Params{
		K:                    config.K(),
		PopulationSize:       config.PopulationSize(),
		Generations:          config.Generations(),
		CrossoverRate:        config.CrossoverRate(),
		MutationRate:         config.MutationRate(),
		TournamentSize:       config.TournamentSize(),
		EliteSize:            config.EliteSize(),
		SeedFraction:         config.SeedFraction(),
		Patience:             config.Patience(),
		ConvergenceThreshold: config.ConvergenceThreshold(),
		NumWorkers:           config.NumWorkers(),
		RandomSeed:           config.RandomSeed(),
	}

	optimizer, err := ga.NewOptimizer(params, evaluator, index, logger)
	if err != nil {
		return nil, err
	}

	gaResult, err := optimizer.Run(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{
		SeedSet:     gaResult.Best.Nodes,
		Fitness:     gaResult.Best.Fitness,
		Theta:       index.Size(),
		ThetaRounds: rounds,
		RRSetStats:  index.Statistics(),
		GA:          gaResult.Generations,
		Converged:   gaResult.Converged,
		RuntimeMS:   time.Since(startTime).Milliseconds(),
	}

	logger.Info().
		Int("theta", result.Theta).
		Float64("influence", result.Fitness.Influence).
		Float64("aggregate", result.Fitness.Aggregate).
		Int64("runtime_ms", result.RuntimeMS).
		Msg("RIS+GA pipeline completed")

	return result, nil
}

// samplePhase fills the coverage index. A fixed ris.theta bypasses the
// scheduler; otherwise doubling rounds run until the (epsilon, ell)
// stopping condition holds or the round cap is hit.
func samplePhase(ctx context.Context, sampler *ris.Sampler, index *ris.CoverageIndex, config *Config, logger zerolog.Logger) (int, error) {
	if theta := config.Theta(); theta > 0 {
		rrs, err := sampler.Generate(ctx, theta)
		if err != nil {
			return 0, err
		}
		index.AddBatch(rrs)

		logger.Info().Int("theta", theta).Msg("Sampled fixed RR-set budget")
		return 0, nil
	}

	scheduler := ris.NewThetaScheduler(index.NodeCount(), config.K(), config.Epsilon(), config.Ell(), config.MaxRounds())

	lastEstimate := 0.0
	for round := 0; round < scheduler.MaxRounds(); round++ {
		select {
		case <-ctx.Done():
			return round, ctx.Err()
		default:
		}

		target := scheduler.NextRoundSize(round)
		if add := target - index.Size(); add > 0 {
			rrs, err := sampler.Generate(ctx, add)
			if err != nil {
				return round, err
			}
			index.AddBatch(rrs)
		}

		greedy := ris.GreedySeeds(index, config.K())
		lastEstimate = index.CoverageFraction(greedy)

		if config.EnableProgress() {
			logger.Info().
				Int("round", round).
				Int("theta", index.Size()).
				Float64("greedy_coverage", lastEstimate).
				Msg("Theta round complete")
		}

		if scheduler.ShouldStop(round, lastEstimate) {
			logger.Info().
				Int("rounds", round+1).
				Int("theta", index.Size()).
				Int("required_theta", scheduler.RequiredTheta()).
				Msg("Theta schedule converged")
			return round + 1, nil
		}
	}

	return scheduler.MaxRounds(), ris.SamplingBudgetExceededError{
		Rounds:       scheduler.MaxRounds(),
		Theta:        index.Size(),
		LastEstimate: lastEstimate,
	}
}
