package graph

import (
	"fmt"
)

// ActivationModel selects how edge activation probabilities are assigned.
type ActivationModel int

const (
	// ModelIC uses the probability given on each edge (Independent Cascade).
	ModelIC ActivationModel = iota
	// ModelWC assigns each edge (u,v) probability 1/indegree(v) (Weighted Cascade).
	ModelWC
)

func (m ActivationModel) String() string {
	switch m {
	case ModelIC:
		return "IC"
	case ModelWC:
		return "WC"
	default:
		return fmt.Sprintf("ActivationModel(%d)", int(m))
	}
}

// DefaultEdgeProb is used under ModelIC when an edge carries no weight column.
const DefaultEdgeProb = 0.1

// Graph represents a directed influence graph using simple arrays.
// Nodes are dense integers 0..NumNodes-1. The graph is read-only after
// construction, so concurrent reads need no synchronization.
type Graph struct {
	NumNodes int         `json:"num_nodes"`
	NumEdges int         `json:"num_edges"`
	OutAdj   [][]int32   `json:"-"` // outAdj[u] = targets of edges leaving u
	OutProbs [][]float64 `json:"-"` // outProbs[u][i] = activation prob of edge u -> outAdj[u][i]
	InAdj    [][]int32   `json:"-"` // inAdj[v] = sources of edges entering v
	InProbs  [][]float64 `json:"-"` // inProbs[v][i] = activation prob of edge inAdj[v][i] -> v
}

// NewGraph creates a new empty directed graph with n nodes.
func NewGraph(numNodes int) *Graph {
	return &Graph{
		NumNodes: numNodes,
		OutAdj:   make([][]int32, numNodes),
		OutProbs: make([][]float64, numNodes),
		InAdj:    make([][]int32, numNodes),
		InProbs:  make([][]float64, numNodes),
	}
}

// AddEdge adds a directed edge u -> v with the given activation probability.
func (g *Graph) AddEdge(u, v int32, prob float64) error {
	if u < 0 || int(u) >= g.NumNodes || v < 0 || int(v) >= g.NumNodes {
		return fmt.Errorf("node index out of range: u=%d, v=%d, numNodes=%d", u, v, g.NumNodes)
	}

	if prob <= 0 || prob > 1 {
		return fmt.Errorf("activation probability must be in (0,1]: %f", prob)
	}

	for _, target := range g.OutAdj[u] {
		if target == v {
			return fmt.Errorf("duplicate edge %d -> %d", u, v)
		}
	}

	g.OutAdj[u] = append(g.OutAdj[u], v)
	g.OutProbs[u] = append(g.OutProbs[u], prob)
	g.InAdj[v] = append(g.InAdj[v], u)
	g.InProbs[v] = append(g.InProbs[v], prob)
	g.NumEdges++

	return nil
}

// OutNeighbors returns the targets and activation probabilities of edges leaving u.
func (g *Graph) OutNeighbors(u int32) ([]int32, []float64) {
	if u < 0 || int(u) >= g.NumNodes {
		return nil, nil
	}
	return g.OutAdj[u], g.OutProbs[u]
}

// InNeighbors returns the sources and activation probabilities of edges entering v.
func (g *Graph) InNeighbors(v int32) ([]int32, []float64) {
	if v < 0 || int(v) >= g.NumNodes {
		return nil, nil
	}
	return g.InAdj[v], g.InProbs[v]
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return g.NumNodes }

// EdgeCount returns the number of directed edges.
func (g *Graph) EdgeCount() int { return g.NumEdges }

// InDegree returns the number of edges entering v.
func (g *Graph) InDegree(v int32) int {
	if v < 0 || int(v) >= g.NumNodes {
		return 0
	}
	return len(g.InAdj[v])
}

// OutDegree returns the number of edges leaving u.
func (g *Graph) OutDegree(u int32) int {
	if u < 0 || int(u) >= g.NumNodes {
		return 0
	}
	return len(g.OutAdj[u])
}

// Clone creates a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	clone := NewGraph(g.NumNodes)
	clone.NumEdges = g.NumEdges

	for i := 0; i < g.NumNodes; i++ {
		clone.OutAdj[i] = append([]int32(nil), g.OutAdj[i]...)
		clone.OutProbs[i] = append([]float64(nil), g.OutProbs[i]...)
		clone.InAdj[i] = append([]int32(nil), g.InAdj[i]...)
		clone.InProbs[i] = append([]float64(nil), g.InProbs[i]...)
	}

	return clone
}

// Validate checks graph consistency.
func (g *Graph) Validate() error {
	if g.NumNodes <= 0 {
		return fmt.Errorf("graph must have positive number of nodes")
	}

	outEdges := 0
	for u := 0; u < g.NumNodes; u++ {
		if len(g.OutAdj[u]) != len(g.OutProbs[u]) {
			return fmt.Errorf("adjacency and probability arrays inconsistent for node %d", u)
		}

		for i, v := range g.OutAdj[u] {
			if v < 0 || int(v) >= g.NumNodes {
				return fmt.Errorf("invalid target %d for node %d", v, u)
			}

			if p := g.OutProbs[u][i]; p <= 0 || p > 1 {
				return fmt.Errorf("activation probability out of range for edge %d -> %d: %f", u, v, p)
			}
		}
		outEdges += len(g.OutAdj[u])
	}

	inEdges := 0
	for v := 0; v < g.NumNodes; v++ {
		if len(g.InAdj[v]) != len(g.InProbs[v]) {
			return fmt.Errorf("reverse adjacency and probability arrays inconsistent for node %d", v)
		}
		inEdges += len(g.InAdj[v])
	}

	if outEdges != inEdges || outEdges != g.NumEdges {
		return fmt.Errorf("edge count mismatch: out=%d, in=%d, recorded=%d", outEdges, inEdges, g.NumEdges)
	}

	return nil
}
