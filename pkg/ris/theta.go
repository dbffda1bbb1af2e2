package ris

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/combin"
)

// SamplingBudgetExceededError reports that the doubling rounds hit the hard
// cap before the stopping condition held. LastEstimate carries the final
// greedy coverage estimate so the caller can retry with a relaxed epsilon.
type SamplingBudgetExceededError struct {
	Rounds       int
	Theta        int
	LastEstimate float64
}

func (e SamplingBudgetExceededError) Error() string {
	return fmt.Sprintf("sampling budget exceeded after %d rounds (theta=%d, last estimate=%.4f)",
		e.Rounds, e.Theta, e.LastEstimate)
}

// ThetaScheduler decides the total RR-set budget needed for the
// (epsilon, ell) approximation guarantee: with probability at least
// 1 - n^-ell, the greedy-derived seed set is within (1 - 1/e - epsilon) of
// optimal. It runs doubling rounds: sample up to the round's target size,
// estimate a lower bound on the optimal coverage from the current index,
// and stop once the realized theta passes the closed-form requirement.
type ThetaScheduler struct {
	numNodes  int
	k         int
	epsilon   float64
	ell       float64
	maxRounds int

	baseSize   int
	lambdaStar float64
	epsPrime   float64

	requiredTheta int
	realizedTheta int
}

// NewThetaScheduler creates a scheduler for a graph of numNodes nodes and
// seed sets of size k. maxRounds bounds the number of doubling rounds.
func NewThetaScheduler(numNodes, k int, epsilon, ell float64, maxRounds int) *ThetaScheduler {
	n := float64(numNodes)

	logNChooseK := combin.LogGeneralizedBinomial(n, float64(k))
	logN := math.Log(n)

	// IMM-style lambda*: theta >= lambda* / OPT suffices for the guarantee.
	alpha := math.Sqrt(ell*logN + math.Ln2)
	beta := math.Sqrt((1.0 - 1.0/math.E) * (logNChooseK + ell*logN + math.Ln2))
	oneMinusInvE := 1.0 - 1.0/math.E
	lambdaStar := 2.0 * n * math.Pow(oneMinusInvE*alpha+beta, 2) / (epsilon * epsilon)

	// Round zero starts small; the doubling rounds grow it until the
	// closed-form requirement is met.
	base := 64
	if k > base {
		base = k
	}

	return &ThetaScheduler{
		numNodes:   numNodes,
		k:          k,
		epsilon:    epsilon,
		ell:        ell,
		maxRounds:  maxRounds,
		baseSize:   base,
		lambdaStar: lambdaStar,
		epsPrime:   math.Sqrt2 * epsilon,
	}
}

// NextRoundSize returns the cumulative RR-set target for the given round:
// the base size doubled round times.
func (ts *ThetaScheduler) NextRoundSize(round int) int {
	size := ts.baseSize
	for i := 0; i < round; i++ {
		if size > math.MaxInt32/2 {
			break
		}
		size *= 2
	}
	return size
}

// ShouldStop evaluates the stopping condition for the given round.
// currentEstimate is the greedy seed set's coverage fraction on the current
// index, which lower-bounds OPT/n after deflation by (1 + epsilon').
func (ts *ThetaScheduler) ShouldStop(round int, currentEstimate float64) bool {
	if currentEstimate <= 0 {
		return false
	}

	lowerBound := currentEstimate * float64(ts.numNodes) / (1.0 + ts.epsPrime)
	if lowerBound < 1 {
		lowerBound = 1
	}

	required := int(math.Ceil(ts.lambdaStar / lowerBound))
	realized := ts.NextRoundSize(round)

	if realized >= required {
		ts.requiredTheta = required
		ts.realizedTheta = realized
		return true
	}
	return false
}

// MaxRounds returns the hard cap on doubling rounds.
func (ts *ThetaScheduler) MaxRounds() int { return ts.maxRounds }

// Theta returns the realized RR-set budget after ShouldStop returned true.
func (ts *ThetaScheduler) Theta() int { return ts.realizedTheta }

// RequiredTheta returns the closed-form requirement computed at the
// stopping round.
func (ts *ThetaScheduler) RequiredTheta() int { return ts.requiredTheta }
