package pricing

import "sort"

// solveKnapsackBB maximizes sum(values[k] * x[k]) subject to
// sum(weights[k] * x[k]) <= capacity over non-negative integers x, by
// depth-first branch-and-bound with a fractional relaxation bound.
// Types with non-positive value never help and are fixed to zero.
func solveKnapsackBB(values []float64, weights []int, capacity int) (float64, []int) {
	type entry struct {
		value  float64
		weight int
		idx    int
	}
	var items []entry
	for k := range values {
		if values[k] > 0 && weights[k] > 0 && weights[k] <= capacity {
			items = append(items, entry{values[k], weights[k], k})
		}
	}
	// Best value per unit of weight first: the relaxation bound of a node
	// is then acc + remaining * density of the next item.
	sort.Slice(items, func(a, b int) bool {
		return items[a].value*float64(items[b].weight) > items[b].value*float64(items[a].weight)
	})

	best := 0.0
	bestCounts := make([]int, len(values))
	counts := make([]int, len(items))

	const eps = 1e-12
	var dfs func(k, remaining int, acc float64)
	dfs = func(k, remaining int, acc float64) {
		if k == len(items) {
			if acc > best+eps {
				best = acc
				for i := range bestCounts {
					bestCounts[i] = 0
				}
				for i, c := range counts {
					bestCounts[items[i].idx] = c
				}
			}
			return
		}
		// Relaxation bound: fill the rest at the best remaining density.
		bound := acc + float64(remaining)*items[k].value/float64(items[k].weight)
		if bound <= best+eps {
			return
		}
		for c := remaining / items[k].weight; c >= 0; c-- {
			counts[k] = c
			dfs(k+1, remaining-c*items[k].weight, acc+float64(c)*items[k].value)
		}
		counts[k] = 0
	}
	dfs(0, capacity, 0)

	return best, bestCounts
}

// solveKnapsackDP is the unbounded-knapsack dynamic program:
// O(types x capacity) over used capacities, tracking one optimal choice
// vector per capacity.
func solveKnapsackDP(values []float64, weights []int, capacity int) (float64, []int) {
	dp := make([]float64, capacity+1)
	choice := make([][]int, capacity+1)
	for w := range choice {
		choice[w] = make([]int, len(values))
	}

	for k := range values {
		if values[k] <= 0 || weights[k] <= 0 {
			continue
		}
		for w := weights[k]; w <= capacity; w++ {
			if cand := dp[w-weights[k]] + values[k]; cand > dp[w] {
				dp[w] = cand
				copy(choice[w], choice[w-weights[k]])
				choice[w][k]++
			}
		}
	}

	return dp[capacity], choice[capacity]
}
