package ris

import (
	"sync"

	"gonum.org/v1/gonum/stat"
)

// CoverageIndex maintains, for each node, the RR-sets it appears in.
// Growth is append-only within a theta round, so any prefix of the index is
// a consistent snapshot. A single mutex guards appends; reads during a
// round are only performed between batches, matching the single-writer
// discipline of the sampling loop.
type CoverageIndex struct {
	numNodes int

	mu         sync.Mutex
	rrSets     []RRSet
	nodeToSets [][]int32 // nodeToSets[n] = indices of RR-sets containing node n
}

// NewCoverageIndex creates an empty index for a graph with numNodes nodes.
func NewCoverageIndex(numNodes int) *CoverageIndex {
	return &CoverageIndex{
		numNodes:   numNodes,
		nodeToSets: make([][]int32, numNodes),
	}
}

// Add appends one RR-set and updates the node mapping. Amortized O(|rr|).
func (ci *CoverageIndex) Add(rr RRSet) {
	ci.mu.Lock()
	defer ci.mu.Unlock()
	ci.add(rr)
}

// AddBatch appends a batch of RR-sets under a single lock acquisition.
func (ci *CoverageIndex) AddBatch(rrs []RRSet) {
	ci.mu.Lock()
	defer ci.mu.Unlock()
	for _, rr := range rrs {
		ci.add(rr)
	}
}

func (ci *CoverageIndex) add(rr RRSet) {
	idx := int32(len(ci.rrSets))
	ci.rrSets = append(ci.rrSets, rr)
	for _, n := range rr.Nodes {
		ci.nodeToSets[n] = append(ci.nodeToSets[n], idx)
	}
}

// Size returns the number of indexed RR-sets.
func (ci *CoverageIndex) Size() int { return len(ci.rrSets) }

// NodeCount returns the number of graph nodes the index was built for.
func (ci *CoverageIndex) NodeCount() int { return ci.numNodes }

// Root returns the root node of RR-set i.
func (ci *CoverageIndex) Root(i int) int32 { return ci.rrSets[i].Root }

// NodeCoverage returns how many RR-sets contain node.
func (ci *CoverageIndex) NodeCoverage(node int32) int {
	if node < 0 || int(node) >= ci.numNodes {
		return 0
	}
	return len(ci.nodeToSets[node])
}

// CoveredMask marks, for each RR-set index, whether any node of seedSet
// appears in it.
func (ci *CoverageIndex) CoveredMask(seedSet []int32) []bool {
	covered := make([]bool, len(ci.rrSets))
	for _, n := range seedSet {
		if n < 0 || int(n) >= ci.numNodes {
			continue
		}
		for _, idx := range ci.nodeToSets[n] {
			covered[idx] = true
		}
	}
	return covered
}

// CoveredCount returns the number of RR-sets covered by the union of seedSet.
func (ci *CoverageIndex) CoveredCount(seedSet []int32) int {
	count := 0
	for _, c := range ci.CoveredMask(seedSet) {
		if c {
			count++
		}
	}
	return count
}

// CoverageFraction is the Monte-Carlo estimator of normalized influence
// spread: covered RR-sets over total RR-sets. Zero for an empty index.
func (ci *CoverageIndex) CoverageFraction(seedSet []int32) float64 {
	if len(ci.rrSets) == 0 {
		return 0.0
	}
	return float64(ci.CoveredCount(seedSet)) / float64(len(ci.rrSets))
}

// MarginalGain counts the RR-sets covered by node but by no node of selected.
func (ci *CoverageIndex) MarginalGain(node int32, selected []int32) int {
	if node < 0 || int(node) >= ci.numNodes {
		return 0
	}

	covered := ci.CoveredMask(selected)
	gain := 0
	for _, idx := range ci.nodeToSets[node] {
		if !covered[idx] {
			gain++
		}
	}
	return gain
}

// Stats summarizes the sizes of the indexed RR-sets.
type Stats struct {
	TotalRRSets int     `json:"total_rr_sets"`
	AvgSize     float64 `json:"avg_size"`
	StdSize     float64 `json:"std_size"`
	MinSize     int     `json:"min_size"`
	MaxSize     int     `json:"max_size"`
}

// Statistics computes size statistics over the indexed RR-sets.
func (ci *CoverageIndex) Statistics() Stats {
	if len(ci.rrSets) == 0 {
		return Stats{}
	}

	sizes := make([]float64, len(ci.rrSets))
	minSize, maxSize := ci.rrSets[0].Size(), ci.rrSets[0].Size()
	for i, rr := range ci.rrSets {
		n := rr.Size()
		sizes[i] = float64(n)
		if n < minSize {
			minSize = n
		}
		if n > maxSize {
			maxSize = n
		}
	}

	mean, std := stat.MeanStdDev(sizes, nil)
	return Stats{
		TotalRRSets: len(ci.rrSets),
		AvgSize:     mean,
		StdSize:     std,
		MinSize:     minSize,
		MaxSize:     maxSize,
	}
}
