package graph

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// MalformedGraphError reports a rejected edge-list row with its location.
type MalformedGraphError struct {
	Path   string
	Line   int
	Reason string
}

func (e MalformedGraphError) Error() string {
	return fmt.Sprintf("malformed graph input %s:%d: %s", e.Path, e.Line, e.Reason)
}

// Parser handles parsing and normalizing edge-list files.
type Parser struct {
	// Mapping from original node ID to normalized index
	OriginalToNormalized map[string]int32
	// Mapping from normalized index to original node ID
	NormalizedToOriginal map[int32]string
	// Total number of nodes
	NumNodes int
}

// ParseResult contains the parsed graph and the id mappings.
type ParseResult struct {
	Graph  *Graph
	Parser *Parser
}

// NewParser creates a new edge-list parser.
func NewParser() *Parser {
	return &Parser{
		OriginalToNormalized: make(map[string]int32),
		NormalizedToOriginal: make(map[int32]string),
	}
}

type parsedEdge struct {
	from, to  string
	prob      float64
	hasWeight bool
	line      int
}

// ParseEdgeList parses an edge-list file into a directed graph under the
// given activation model.
// Expected format: "source target weight" or "source target" (weight
// defaulting per model). Blank lines and lines starting with '#' are skipped.
func (p *Parser) ParseEdgeList(filename string, model ActivationModel) (*ParseResult, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	// First pass: validate rows, collect unique node IDs
	nodeSet := make(map[string]bool)
	edges := make([]parsedEdge, 0)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) < 2 {
			return nil, MalformedGraphError{Path: filename, Line: lineNum,
				Reason: fmt.Sprintf("expected at least 2 columns, got %d", len(parts))}
		}

		edge := parsedEdge{from: parts[0], to: parts[1], line: lineNum}

		if edge.from == edge.to {
			return nil, MalformedGraphError{Path: filename, Line: lineNum,
				Reason: fmt.Sprintf("self-loop on node %q", edge.from)}
		}

		if len(parts) >= 3 {
			w, err := strconv.ParseFloat(parts[2], 64)
			if err != nil {
				return nil, MalformedGraphError{Path: filename, Line: lineNum,
					Reason: fmt.Sprintf("invalid weight %q", parts[2])}
			}
			if w <= 0 || w > 1 {
				return nil, MalformedGraphError{Path: filename, Line: lineNum,
					Reason: fmt.Sprintf("weight %f outside (0,1]", w)}
			}
			edge.prob = w
			edge.hasWeight = true
		}

		nodeSet[edge.from] = true
		nodeSet[edge.to] = true
		edges = append(edges, edge)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	if len(nodeSet) == 0 {
		return nil, MalformedGraphError{Path: filename, Line: lineNum, Reason: "no edges found"}
	}

	p.createNormalizedMapping(nodeSet)

	// Second pass: build the graph with model-dependent probabilities
	g := NewGraph(p.NumNodes)

	indegree := make([]int, p.NumNodes)
	if model == ModelWC {
		for _, e := range edges {
			indegree[p.OriginalToNormalized[e.to]]++
		}
	}

	for _, e := range edges {
		u := p.OriginalToNormalized[e.from]
		v := p.OriginalToNormalized[e.to]

		prob := e.prob
		switch {
		case model == ModelWC:
			prob = 1.0 / float64(indegree[v])
		case !e.hasWeight:
			prob = DefaultEdgeProb
		}

		if err := g.AddEdge(u, v, prob); err != nil {
			return nil, MalformedGraphError{Path: filename, Line: e.line, Reason: err.Error()}
		}
	}

	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("parsed graph failed validation: %w", err)
	}

	return &ParseResult{Graph: g, Parser: p}, nil
}

// createNormalizedMapping assigns dense indices to original node IDs.
// Numeric IDs sort numerically so "10" comes after "9".
func (p *Parser) createNormalizedMapping(nodeSet map[string]bool) {
	ids := make([]string, 0, len(nodeSet))
	for id := range nodeSet {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.ParseInt(ids[i], 10, 64)
		b, errB := strconv.ParseInt(ids[j], 10, 64)
		if errA == nil && errB == nil {
			return a < b
		}
		return ids[i] < ids[j]
	})

	for i, id := range ids {
		p.OriginalToNormalized[id] = int32(i)
		p.NormalizedToOriginal[int32(i)] = id
	}
	p.NumNodes = len(ids)
}

// OriginalIDs maps normalized node indices back to their original labels.
func (p *Parser) OriginalIDs(nodes []int32) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = p.NormalizedToOriginal[n]
	}
	return out
}
