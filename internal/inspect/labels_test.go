package inspect

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func oneHot(class, n int) []float64 {
	v := make([]float64, n)
	v[class] = 1
	return v
}

func TestGroupByLabelPartitions(t *testing.T) {
	labels := make([][]float64, 50)
	for i := range labels {
		labels[i] = oneHot((i*7)%10, 10)
	}
	groups := GroupByLabel(labels)

	require.Equal(t, 50, groups.Size())
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, groups.Classes())

	var all []int
	for class := 0; class < 10; class++ {
		idx := groups.Indices(class)
		assert.Len(t, idx, 5)
		assert.True(t, sort.IntsAreSorted(idx))
		for _, i := range idx {
			assert.Equal(t, class, (i*7)%10)
		}
		all = append(all, idx...)
	}
	sort.Ints(all)
	for i, v := range all {
		assert.Equal(t, i, v)
	}
}

func TestGroupByLabelArgMax(t *testing.T) {
	groups := GroupByLabel([][]float64{
		{0.1, 0.7, 0.2},
		{0.9, 0, 0},
		{},
		{0, 0.2, 0.3},
	})
	assert.Equal(t, []int{1}, groups.Indices(0))
	assert.Equal(t, []int{0}, groups.Indices(1))
	assert.Equal(t, []int{3}, groups.Indices(2))
	assert.Empty(t, groups.Indices(7))
	assert.Equal(t, 3, groups.Size())
}
