package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mbjallow6/ris-ga-influence-maximization/pkg/graph"
	"github.com/mbjallow6/ris-ga-influence-maximization/pkg/objective"
	"github.com/mbjallow6/ris-ga-influence-maximization/pkg/ris"
	"github.com/mbjallow6/ris-ga-influence-maximization/pkg/risga"
)

func main() {
	fmt.Println("RIS+GA Influence Maximization Framework")
	fmt.Println("=======================================")

	if len(os.Args) < 3 {
		fmt.Println("Usage: go run main.go <mode> <edge_list> [config_file] [cost_table] [group_table]")
		fmt.Println("Modes:")
		fmt.Println("  greedy   - RR-set sampling + greedy baseline only")
		fmt.Println("  optimize - full RIS + genetic optimization pipeline")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  go run main.go greedy data/network.txt")
		fmt.Println("  go run main.go optimize data/network.txt config.yaml data/costs.txt data/groups.txt")
		os.Exit(1)
	}

	mode := os.Args[1]
	edgeFile := os.Args[2]

	config := risga.NewConfig()
	if len(os.Args) > 3 {
		if err := config.LoadFromFile(os.Args[3]); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	fmt.Printf("Loading graph from: %s\n", edgeFile)
	parsed, err := graph.NewParser().ParseEdgeList(edgeFile, graph.ModelIC)
	if err != nil {
		log.Fatalf("Graph loading failed: %v", err)
	}
	g := parsed.Graph
	fmt.Printf("Graph loaded: %d nodes, %d edges\n", g.NumNodes, g.NumEdges)

	costs := objective.UniformCostTable(g.NumNodes)
	if len(os.Args) > 4 {
		costs, err = objective.LoadCostTable(os.Args[4], g.NumNodes)
		if err != nil {
			log.Fatalf("Cost table loading failed: %v", err)
		}
	}

	groups := objective.UniformGroupTable(g.NumNodes)
	if len(os.Args) > 5 {
		groups, err = objective.LoadGroupTable(os.Args[5], g.NumNodes)
		if err != nil {
			log.Fatalf("Group table loading failed: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch mode {
	case "greedy":
		runGreedy(ctx, g, parsed.Parser, config)
	case "optimize":
		runOptimize(ctx, g, parsed.Parser, costs, groups, config)
	default:
		fmt.Printf("Unknown mode: %s\n", mode)
		fmt.Println("Available modes: greedy, optimize")
		os.Exit(1)
	}
}

func runGreedy(ctx context.Context, g *graph.Graph, parser *graph.Parser, config *risga.Config) {
	if err := config.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	theta := config.Theta()
	if theta <= 0 {
		theta = 10000
	}

	logger := config.CreateLogger()
	sampler := ris.NewSampler(g, config.RandomSeed(), config.NumWorkers(), logger)
	index := ris.NewCoverageIndex(g.NumNodes)

	rrs, err := sampler.Generate(ctx, theta)
	if err != nil {
		log.Fatalf("Sampling failed: %v", err)
	}
	index.AddBatch(rrs)

	seeds := ris.GreedySeeds(index, config.K())

	fmt.Println("\n=== Greedy Baseline ===")
	fmt.Printf("Theta (RR-sets sampled): %d\n", index.Size())
	fmt.Printf("Seed set: %v\n", parser.OriginalIDs(seeds))
	fmt.Printf("Coverage fraction: %.4f\n", index.CoverageFraction(seeds))

	stats := index.Statistics()
	fmt.Printf("RR-set sizes: avg=%.2f min=%d max=%d\n", stats.AvgSize, stats.MinSize, stats.MaxSize)
}

func runOptimize(ctx context.Context, g *graph.Graph, parser *graph.Parser, costs *objective.CostTable, groups *objective.GroupTable, config *risga.Config) {
	result, err := risga.Run(ctx, g, costs, groups, config)
	if err != nil {
		log.Fatalf("Pipeline failed: %v", err)
	}

	displayResult(result, parser)
}

func displayResult(result *risga.Result, parser *graph.Parser) {
	fmt.Println("\n=== Results ===")
	fmt.Printf("Best seed set: %v\n", parser.OriginalIDs(result.SeedSet))
	fmt.Printf("Influence:     %.4f\n", result.Fitness.Influence)
	fmt.Printf("Cost score:    %.4f\n", result.Fitness.Cost)
	fmt.Printf("Equity:        %.4f\n", result.Fitness.Equity)
	fmt.Printf("Aggregate:     %.4f\n", result.Fitness.Aggregate)
	fmt.Printf("Theta:         %d RR-sets over %d rounds\n", result.Theta, result.ThetaRounds)
	fmt.Printf("Generations:   %d (converged: %v)\n", len(result.GA), result.Converged)
	fmt.Printf("Runtime:       %d ms\n", result.RuntimeMS)
}
