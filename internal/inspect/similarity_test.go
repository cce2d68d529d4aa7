package inspect

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSelfIsOne(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		v := make([]float64, 1+rng.Intn(64))
		for j := range v {
			v[j] = rng.NormFloat64() * 100
		}
		sim, err := CosineSimilarity(v, v)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, sim, 1e-12)
	}
}

func TestCosineKnownValues(t *testing.T) {
	cases := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"orthogonal", []float64{1, 0}, []float64{0, 3}, 0},
		{"opposite", []float64{1, 2, 3}, []float64{-2, -4, -6}, -1},
		{"scaled", []float64{1, 1}, []float64{5, 5}, 1},
		{"45 degrees", []float64{1, 0}, []float64{1, 1}, 0.7071067811865476},
		{"both zero", []float64{0, 0}, []float64{0, 0}, 1},
		{"one zero", []float64{0, 0}, []float64{1, 2}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sim, err := CosineSimilarity(tc.a, tc.b)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, sim, 1e-12)
		})
	}
}

func TestCosineLengthMismatch(t *testing.T) {
	_, err := CosineSimilarity([]float64{1, 2, 3}, []float64{1, 2})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = CosineSimilarity(nil, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
