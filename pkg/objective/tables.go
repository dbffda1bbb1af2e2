package objective

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DefaultGroup is assigned to nodes with no group label.
const DefaultGroup = "general"

// CostTable supplies per-node intervention costs. Read-only collaborator of
// the evaluator; nodes without an entry cost 1.0.
type CostTable struct {
	costs   []float64
	maxCost float64
}

// UniformCostTable gives every node cost 1.0.
func UniformCostTable(numNodes int) *CostTable {
	costs := make([]float64, numNodes)
	for i := range costs {
		costs[i] = 1.0
	}
	return &CostTable{costs: costs, maxCost: 1.0}
}

// NewCostTable builds a table from explicit per-node costs.
func NewCostTable(costs []float64) (*CostTable, error) {
	maxCost := 0.0
	for i, c := range costs {
		if c <= 0 {
			return nil, fmt.Errorf("cost for node %d must be positive: %f", i, c)
		}
		if c > maxCost {
			maxCost = c
		}
	}
	return &CostTable{costs: append([]float64(nil), costs...), maxCost: maxCost}, nil
}

// LoadCostTable reads "node_index cost" rows for a graph with numNodes
// nodes. Missing nodes default to cost 1.0.
func LoadCostTable(filename string, numNodes int) (*CostTable, error) {
	costs := make([]float64, numNodes)
	for i := range costs {
		costs[i] = 1.0
	}

	err := scanTable(filename, func(line int, fields []string) error {
		if len(fields) < 2 {
			return fmt.Errorf("line %d: expected 2 columns, got %d", line, len(fields))
		}
		node, err := strconv.Atoi(fields[0])
		if err != nil || node < 0 || node >= numNodes {
			return fmt.Errorf("line %d: invalid node index %q", line, fields[0])
		}
		cost, err := strconv.ParseFloat(fields[1], 64)
		if err != nil || cost <= 0 {
			return fmt.Errorf("line %d: invalid cost %q", line, fields[1])
		}
		costs[node] = cost
		return nil
	})
	if err != nil {
		return nil, err
	}

	return NewCostTable(costs)
}

// Cost returns the cost of node, defaulting to 1.0 out of range.
func (ct *CostTable) Cost(node int32) float64 {
	if node < 0 || int(node) >= len(ct.costs) {
		return 1.0
	}
	return ct.costs[node]
}

// MaxCost returns the largest cost in the table.
func (ct *CostTable) MaxCost() float64 { return ct.maxCost }

// GroupTable supplies per-node demographic group labels. Read-only
// collaborator of the evaluator; unlabeled nodes belong to DefaultGroup.
type GroupTable struct {
	labels []string
	groups []string // distinct labels, in first-seen order
}

// UniformGroupTable puts every node in DefaultGroup.
func UniformGroupTable(numNodes int) *GroupTable {
	labels := make([]string, numNodes)
	for i := range labels {
		labels[i] = DefaultGroup
	}
	return &GroupTable{labels: labels, groups: []string{DefaultGroup}}
}

// NewGroupTable builds a table from explicit per-node labels.
func NewGroupTable(labels []string) *GroupTable {
	gt := &GroupTable{labels: make([]string, len(labels))}
	seen := make(map[string]bool)
	for i, label := range labels {
		if label == "" {
			label = DefaultGroup
		}
		gt.labels[i] = label
		if !seen[label] {
			seen[label] = true
			gt.groups = append(gt.groups, label)
		}
	}
	return gt
}

// LoadGroupTable reads "node_index group_label" rows for a graph with
// numNodes nodes. Missing nodes default to DefaultGroup.
func LoadGroupTable(filename string, numNodes int) (*GroupTable, error) {
	labels := make([]string, numNodes)

	err := scanTable(filename, func(line int, fields []string) error {
		if len(fields) < 2 {
			return fmt.Errorf("line %d: expected 2 columns, got %d", line, len(fields))
		}
		node, err := strconv.Atoi(fields[0])
		if err != nil || node < 0 || node >= numNodes {
			return fmt.Errorf("line %d: invalid node index %q", line, fields[0])
		}
		labels[node] = fields[1]
		return nil
	})
	if err != nil {
		return nil, err
	}

	return NewGroupTable(labels), nil
}

// Group returns the label of node.
func (gt *GroupTable) Group(node int32) string {
	if node < 0 || int(node) >= len(gt.labels) {
		return DefaultGroup
	}
	return gt.labels[node]
}

// Groups returns the distinct labels in first-seen order.
func (gt *GroupTable) Groups() []string { return gt.groups }

func scanTable(filename string, handle func(line int, fields []string) error) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := handle(lineNum, strings.Fields(line)); err != nil {
			return err
		}
	}
	return scanner.Err()
}
