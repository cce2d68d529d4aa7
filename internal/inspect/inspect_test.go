package inspect

import (
	"bytes"
	"fmt"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mnist-autoenc/internal/model"
)

func newInspector(t *testing.T, arch model.Architecture) Inspector {
	t.Helper()
	m, err := model.Build(model.DefaultCreator, arch, rand.New(rand.NewSource(2)))
	require.NoError(t, err)
	return Inspector{Model: m}
}

func pixels(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(rng.Intn(256))
	}
	return out
}

func TestEncodeHasBottleneckWidth(t *testing.T) {
	for _, arch := range []model.Architecture{model.Shallow(), model.Deep()} {
		in := newInspector(t, arch)
		code, err := in.Encode(pixels(arch.InputDim, 1))
		require.NoError(t, err)
		assert.Len(t, code, arch.Bottleneck())
		for _, v := range code {
			assert.GreaterOrEqual(t, v, 0.0)
		}
	}
}

func TestReconstructAndCompare(t *testing.T) {
	arch := model.Architecture{InputDim: 16, Encoder: []int{4}}
	in := newInspector(t, arch)
	features := pixels(16, 3)

	out, err := in.Reconstruct(features)
	require.NoError(t, err)
	require.Len(t, out, 16)
	for _, v := range out {
		assert.Greater(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}

	cmp, err := in.Compare(features)
	require.NoError(t, err)
	assert.Equal(t, features, cmp.Original)
	for i := range out {
		assert.InDelta(t, out[i]*255, cmp.Decoded[i], 1e-9)
	}
	orig, dec, err := cmp.Stats()
	require.NoError(t, err)
	assert.LessOrEqual(t, orig.Min, orig.Median)
	assert.LessOrEqual(t, dec.Median, dec.Max)

	_, err = in.Reconstruct(features[:10])
	assert.Error(t, err)
	_, err = in.Encode(nil)
	assert.Error(t, err)
}

func TestInspectorDoesNotMutate(t *testing.T) {
	in := newInspector(t, model.Architecture{InputDim: 16, Encoder: []int{4}})
	before := in.Model.Snapshot()
	_, err := in.Reconstruct(pixels(16, 4))
	require.NoError(t, err)
	_, err = in.Encode(pixels(16, 5))
	require.NoError(t, err)
	assert.Equal(t, before, in.Model.Snapshot())
}

func TestMatchEncodings(t *testing.T) {
	in := newInspector(t, model.Architecture{InputDim: 16, Encoder: []int{4}})
	samples := [][]float64{pixels(16, 10), pixels(16, 11), pixels(16, 12), pixels(16, 13)}
	groups := GroupByLabel([][]float64{oneHot(1, 3), oneHot(0, 3), oneHot(1, 3), oneHot(2, 3)})
	lookup := func(i int) ([]float64, error) {
		if i < 0 || i >= len(samples) {
			return nil, fmt.Errorf("no sample %d", i)
		}
		return samples[i], nil
	}

	m, err := in.MatchEncodings(groups, 1, lookup)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Anchor)
	assert.Equal(t, 2, m.Same)
	assert.Equal(t, 1, m.Other)
	assert.LessOrEqual(t, m.SameClass, 1.0)
	assert.GreaterOrEqual(t, m.OtherClass, -1.0)

	_, err = in.MatchEncodings(groups, 0, lookup)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRenderPair(t *testing.T) {
	left := make([]float64, 9)
	right := make([]float64, 9)
	for i := range left {
		left[i] = 255
		right[i] = float64(i * 40)
	}
	right[8] = 900

	var buf bytes.Buffer
	require.NoError(t, RenderPair(&buf, left, right))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 3*2+2, img.Bounds().Dx())
	assert.Equal(t, 3, img.Bounds().Dy())

	r, _, _, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	r, _, _, _ = img.At(5, 0).RGBA()
	assert.Equal(t, uint32(0), r)

	assert.ErrorIs(t, RenderPair(&buf, left, right[:4]), ErrInvalidArgument)
	assert.ErrorIs(t, RenderPair(&buf, left[:8], right[:8]), ErrInvalidArgument)
}

func TestSavePair(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "pair.png")
	require.NoError(t, SavePair(path, pixels(16, 1), pixels(16, 2)))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
