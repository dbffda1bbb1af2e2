package ris

// RRSet represents a single reverse-reachable sample. Nodes holds the
// visited nodes in BFS order, starting with the root. Never mutated after
// creation.
type RRSet struct {
	Root  int32   `json:"root"`
	Nodes []int32 `json:"nodes"`
}

// Size returns the number of nodes in the set.
func (rr RRSet) Size() int { return len(rr.Nodes) }

// Contains reports whether node is a member of the set.
func (rr RRSet) Contains(node int32) bool {
	for _, n := range rr.Nodes {
		if n == node {
			return true
		}
	}
	return false
}
