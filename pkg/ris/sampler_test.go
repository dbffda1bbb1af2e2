package ris

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mbjallow6/ris-ga-influence-maximization/pkg/graph"
)

// testGraph builds a small directed graph with uniform activation probability.
func testGraph(t *testing.T, numNodes int, edges [][2]int32, prob float64) *graph.Graph {
	t.Helper()
	g := graph.NewGraph(numNodes)
	for _, e := range edges {
		if err := g.AddEdge(e[0], e[1], prob); err != nil {
			t.Fatalf("AddEdge(%d, %d) failed: %v", e[0], e[1], err)
		}
	}
	return g
}

func chainGraph(t *testing.T, prob float64) *graph.Graph {
	return testGraph(t, 4, [][2]int32{{0, 1}, {1, 2}, {0, 2}, {2, 3}}, prob)
}

func TestSamplerDeterminism(t *testing.T) {
	g := chainGraph(t, 0.5)
	ctx := context.Background()

	a := NewSampler(g, 42, 4, zerolog.Nop())
	b := NewSampler(g, 42, 1, zerolog.Nop())

	rrsA, err := a.Generate(ctx, 200)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	rrsB, err := b.Generate(ctx, 200)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(rrsA) != len(rrsB) {
		t.Fatalf("length mismatch: %d vs %d", len(rrsA), len(rrsB))
	}
	for i := range rrsA {
		if !sameRRSet(rrsA[i], rrsB[i]) {
			t.Fatalf("sample %d differs between worker counts: %v vs %v", i, rrsA[i], rrsB[i])
		}
	}
}

func TestSamplerDeterminismAcrossBatching(t *testing.T) {
	g := chainGraph(t, 0.5)
	ctx := context.Background()

	whole := NewSampler(g, 7, 2, zerolog.Nop())
	split := NewSampler(g, 7, 2, zerolog.Nop())

	all, err := whole.Generate(ctx, 100)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	first, err := split.Generate(ctx, 40)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	second, err := split.Generate(ctx, 60)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	combined := append(first, second...)
	for i := range all {
		if !sameRRSet(all[i], combined[i]) {
			t.Fatalf("sample %d differs between batchings", i)
		}
	}
}

func TestSamplerDifferentSeeds(t *testing.T) {
	g := chainGraph(t, 0.5)
	ctx := context.Background()

	a, _ := NewSampler(g, 1, 1, zerolog.Nop()).Generate(ctx, 100)
	b, _ := NewSampler(g, 2, 1, zerolog.Nop()).Generate(ctx, 100)

	same := true
	for i := range a {
		if !sameRRSet(a[i], b[i]) {
			same = false
			break
		}
	}
	if same {
		t.Errorf("different seeds produced identical sample streams")
	}
}

func TestRRSetInvariants(t *testing.T) {
	g := chainGraph(t, 0.5)

	rrs, err := NewSampler(g, 42, 4, zerolog.Nop()).Generate(context.Background(), 500)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(rrs) != 500 {
		t.Fatalf("expected 500 RR-sets, got %d", len(rrs))
	}

	for i, rr := range rrs {
		if rr.Size() == 0 {
			t.Fatalf("RR-set %d is empty", i)
		}
		if rr.Nodes[0] != rr.Root {
			t.Errorf("RR-set %d does not start with its root", i)
		}
		seen := make(map[int32]bool)
		for _, n := range rr.Nodes {
			if n < 0 || int(n) >= g.NumNodes {
				t.Errorf("RR-set %d contains invalid node %d", i, n)
			}
			if seen[n] {
				t.Errorf("RR-set %d contains duplicate node %d", i, n)
			}
			seen[n] = true
		}
	}
}

func TestIsolatedRootYieldsSingleton(t *testing.T) {
	// No edges at all: every RR-set is a singleton of its root.
	g := graph.NewGraph(5)

	rrs, err := NewSampler(g, 42, 2, zerolog.Nop()).Generate(context.Background(), 100)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	for i, rr := range rrs {
		if rr.Size() != 1 || rr.Nodes[0] != rr.Root {
			t.Errorf("RR-set %d not a singleton of its root: %v", i, rr)
		}
	}
}

func TestGenerateCancellation(t *testing.T) {
	g := chainGraph(t, 0.5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewSampler(g, 42, 2, zerolog.Nop())
	if _, err := s.Generate(ctx, 100); err == nil {
		t.Errorf("expected context error from cancelled Generate")
	}
	if s.Generated() != 0 {
		t.Errorf("cancelled Generate advanced the stream: %d", s.Generated())
	}
}

func sameRRSet(a, b RRSet) bool {
	if a.Root != b.Root || len(a.Nodes) != len(b.Nodes) {
		return false
	}
	for i := range a.Nodes {
		if a.Nodes[i] != b.Nodes[i] {
			return false
		}
	}
	return true
}
