package inspect

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Groups maps a class to the sample indices carrying that label, in
// ascending order.
type Groups map[int][]int

// GroupByLabel buckets sample indices by the arg-max of their one-hot label
// vectors. Samples with an empty label vector are skipped.
func GroupByLabel(labels [][]float64) Groups {
	groups := make(Groups)
	for i, l := range labels {
		if len(l) == 0 {
			continue
		}
		class := floats.MaxIdx(l)
		groups[class] = append(groups[class], i)
	}
	return groups
}

// Indices returns every sample index labelled class.
func (g Groups) Indices(class int) []int {
	return g[class]
}

// Classes returns the classes present, sorted.
func (g Groups) Classes() []int {
	out := make([]int, 0, len(g))
	for c := range g {
		out = append(out, c)
	}
	sort.Ints(out)
	return out
}

// Size returns the total number of grouped indices.
func (g Groups) Size() int {
	var n int
	for _, idx := range g {
		n += len(idx)
	}
	return n
}
