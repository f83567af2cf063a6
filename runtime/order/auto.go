package order

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/aledsdavies/logexpr/core/ast"
)

// autoSiftThreshold is the variable-count ceiling under which Auto applies
// a sifting pass to the winning candidate order (spec §4.7).
const autoSiftThreshold = 60

// autoParallelThreshold is the variable-count ceiling under which Auto
// races alphabetical, frequency, and seeded-random candidates in parallel.
// Beyond it the per-candidate BDD builds get too expensive to race three
// of, so Auto falls back to frequency alone.
const autoParallelThreshold = 40

// autoRandomSeed seeds the deterministic random candidate Auto races
// alongside alphabetical and frequency.
const autoRandomSeed = 1

// Auto picks the best of several candidate orderings by actual BDD size
// (spec §4.7): for small variable counts it builds alphabetical, frequency,
// and seeded-random candidates concurrently, each against its own BDD
// manager, and keeps whichever produces the fewest nodes; it then sifts
// that winner if the variable count still allows it. Above
// autoParallelThreshold it skips the race and uses Frequency outright,
// since building three competing BDDs over that many variables costs more
// than the ordering improvement is worth.
var Auto Strategy = StrategyFunc(autoOrder)

func autoOrder(root ast.Node, currentVars []string) []string {
	n := len(currentVars)
	if n == 0 {
		return nil
	}

	var winner []string
	if n > autoParallelThreshold {
		winner = Frequency.Order(root, currentVars)
	} else {
		winner = racedOrder(root, currentVars)
	}

	if n <= autoSiftThreshold {
		return Sifting.Order(root, winner)
	}
	return winner
}

// racedOrder runs the three cheap candidate strategies in parallel, each
// scored against its own BDD manager via buildAndCount, and returns the
// order with the smallest resulting node count. A candidate whose Build
// fails (malformed AST) is simply dropped from contention.
func racedOrder(root ast.Node, currentVars []string) []string {
	candidates := []Strategy{Alphabetical, Frequency, Random(autoRandomSeed)}
	orders := make([][]string, len(candidates))
	counts := make([]int, len(candidates))
	ok := make([]bool, len(candidates))

	g, _ := errgroup.WithContext(context.Background())
	for i, strat := range candidates {
		i, strat := i, strat
		g.Go(func() error {
			order := strat.Order(root, currentVars)
			count, err := buildAndCount(root, order)
			if err != nil {
				return nil
			}
			orders[i], counts[i], ok[i] = order, count, true
			return nil
		})
	}
	_ = g.Wait()

	best := -1
	for i := range candidates {
		if !ok[i] {
			continue
		}
		if best == -1 || counts[i] < counts[best] {
			best = i
		}
	}
	if best == -1 {
		return append([]string(nil), currentVars...)
	}
	return orders[best]
}
