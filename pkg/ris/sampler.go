package ris

import (
	"context"
	"math/rand"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mbjallow6/ris-ga-influence-maximization/pkg/graph"
)

// Sampler generates reverse-reachable sets by reverse BFS under the
// Independent Cascade model. Each sample draws its own rng stream from the
// base seed and a monotonically increasing task index, so output is
// identical for any worker count and any batching of Generate calls.
type Sampler struct {
	graph      *graph.Graph
	seed       int64
	numWorkers int
	logger     zerolog.Logger

	nextTask int64 // index of the next sample to draw
}

// NewSampler creates a sampler over g with the given base seed.
func NewSampler(g *graph.Graph, seed int64, numWorkers int, logger zerolog.Logger) *Sampler {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &Sampler{
		graph:      g,
		seed:       seed,
		numWorkers: numWorkers,
		logger:     logger,
	}
}

// Reset rewinds the sample stream to the beginning.
func (s *Sampler) Reset() { s.nextTask = 0 }

// Generated returns the number of samples drawn so far.
func (s *Sampler) Generated() int64 { return s.nextTask }

// Generate produces count RR-sets, in task order, splitting the work across
// the configured number of workers. Cancellation is checked per worker chunk;
// a cancelled call returns ctx.Err() and leaves the stream position unchanged.
func (s *Sampler) Generate(ctx context.Context, count int) ([]RRSet, error) {
	if count <= 0 {
		return nil, nil
	}

	out := make([]RRSet, count)
	first := s.nextTask

	workers := s.numWorkers
	if workers > count {
		workers = count
	}
	chunk := (count + workers - 1) / workers

	s.logger.Debug().
		Int("count", count).
		Int("workers", workers).
		Int64("stream_position", first).
		Msg("Generating RR-sets")

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > count {
			hi = count
		}
		if lo >= hi {
			break
		}

		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				select {
				case <-ctx.Done():
					return
				default:
				}
				out[i] = s.generateOne(first + int64(i))
			}
		}(lo, hi)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.nextTask += int64(count)
	return out, nil
}

// generateOne draws sample number task: a uniform random root, then a
// reverse BFS over incoming edges, each traversed with its activation
// probability. A visited guard keeps the expansion cycle-safe.
func (s *Sampler) generateOne(task int64) RRSet {
	rng := rand.New(rand.NewSource(splitMix64(s.seed, task)))

	root := int32(rng.Intn(s.graph.NumNodes))

	nodes := []int32{root}
	visited := map[int32]struct{}{root: {}}
	queue := []int32{root}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		sources, probs := s.graph.InNeighbors(current)
		for i, src := range sources {
			if _, seen := visited[src]; seen {
				continue
			}
			if rng.Float64() < probs[i] {
				visited[src] = struct{}{}
				nodes = append(nodes, src)
				queue = append(queue, src)
			}
		}
	}

	return RRSet{Root: root, Nodes: nodes}
}

// splitMix64 derives an independent per-task seed from the base seed.
func splitMix64(seed, task int64) int64 {
	z := uint64(seed) + uint64(task)*0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return int64(z ^ (z >> 31))
}
