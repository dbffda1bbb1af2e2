package objective

import (
	"fmt"
	"math"
	"sort"

	"github.com/mbjallow6/ris-ga-influence-maximization/pkg/ris"
)

// InvalidCandidateError reports a candidate violating the size or
// uniqueness invariants. Always an internal repair bug, never user input;
// callers should abort the run.
type InvalidCandidateError struct {
	Reason string
}

func (e InvalidCandidateError) Error() string {
	return fmt.Sprintf("invalid candidate: %s", e.Reason)
}

// Weights scalarizes the multi-objective fitness. Must sum to 1.
type Weights struct {
	Influence float64 `json:"influence"`
	Cost      float64 `json:"cost"`
	Equity    float64 `json:"equity"`
}

// Validate checks the weight vector.
func (w Weights) Validate() error {
	if w.Influence < 0 || w.Cost < 0 || w.Equity < 0 {
		return fmt.Errorf("objective weights must be non-negative: %+v", w)
	}
	if sum := w.Influence + w.Cost + w.Equity; math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("objective weights must sum to 1, got %f", sum)
	}
	return nil
}

// Fitness is the evaluated objective vector of a candidate plus its
// weighted aggregate. Each component lies in [0,1].
type Fitness struct {
	Influence float64 `json:"influence"`
	Cost      float64 `json:"cost"`
	Equity    float64 `json:"equity"`
	Aggregate float64 `json:"aggregate"`
}

// Evaluator scores seed sets on influence coverage, cost and equity. It is
// a pure function of the candidate, the coverage index and the external
// tables, so concurrent evaluation is safe.
type Evaluator struct {
	index   *ris.CoverageIndex
	costs   *CostTable
	groups  *GroupTable
	weights Weights
	k       int
}

// NewEvaluator creates an evaluator for candidates of size k.
func NewEvaluator(index *ris.CoverageIndex, costs *CostTable, groups *GroupTable, weights Weights, k int) (*Evaluator, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, fmt.Errorf("seed set size must be positive: %d", k)
	}
	return &Evaluator{index: index, costs: costs, groups: groups, weights: weights, k: k}, nil
}

// Evaluate computes the fitness vector of a candidate seed set.
func (ev *Evaluator) Evaluate(nodes []int32) (Fitness, error) {
	if err := ev.checkCandidate(nodes); err != nil {
		return Fitness{}, err
	}

	influence := clip01(ev.index.CoverageFraction(nodes))
	cost := clip01(ev.costScore(nodes))
	equity := clip01(ev.equityScore(nodes))

	return Fitness{
		Influence: influence,
		Cost:      cost,
		Equity:    equity,
		Aggregate: ev.weights.Influence*influence + ev.weights.Cost*cost + ev.weights.Equity*equity,
	}, nil
}

func (ev *Evaluator) checkCandidate(nodes []int32) error {
	if len(nodes) != ev.k {
		return InvalidCandidateError{Reason: fmt.Sprintf("size %d, expected %d", len(nodes), ev.k)}
	}
	seen := make(map[int32]bool, len(nodes))
	for _, n := range nodes {
		if n < 0 || int(n) >= ev.index.NodeCount() {
			return InvalidCandidateError{Reason: fmt.Sprintf("node id %d out of range", n)}
		}
		if seen[n] {
			return InvalidCandidateError{Reason: fmt.Sprintf("duplicate node id %d", n)}
		}
		seen[n] = true
	}
	return nil
}

// costScore is 1 minus the normalized total cost, so cheaper seed sets
// score higher.
func (ev *Evaluator) costScore(nodes []int32) float64 {
	total := 0.0
	for _, n := range nodes {
		total += ev.costs.Cost(n)
	}
	norm := total / (float64(len(nodes)) * ev.costs.MaxCost())
	return 1.0 - norm
}

// equityScore is 1 minus the Gini coefficient of per-group coverage rates.
// A group's rate is the covered fraction of RR-sets whose root lies in the
// group; roots are uniform over nodes, so the rate estimates the group's
// conditional probability of being reached.
func (ev *Evaluator) equityScore(nodes []int32) float64 {
	groups := ev.groups.Groups()
	if len(groups) <= 1 {
		return 1.0
	}

	covered := ev.index.CoveredMask(nodes)
	coveredByGroup := make(map[string]float64, len(groups))
	totalByGroup := make(map[string]float64, len(groups))

	for i := range covered {
		g := ev.groups.Group(ev.index.Root(i))
		totalByGroup[g]++
		if covered[i] {
			coveredByGroup[g]++
		}
	}

	rates := make([]float64, 0, len(groups))
	for _, g := range groups {
		if totalByGroup[g] == 0 {
			continue
		}
		rates = append(rates, coveredByGroup[g]/totalByGroup[g])
	}

	return 1.0 - gini(rates)
}

// gini computes the Gini coefficient of non-negative values in [0,1].
func gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0.0
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	sum := 0.0
	weighted := 0.0
	for i, v := range sorted {
		sum += v
		weighted += float64(i+1) * v
	}
	if sum == 0 {
		return 0.0
	}

	return (2.0*weighted)/(float64(n)*sum) - float64(n+1)/float64(n)
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
