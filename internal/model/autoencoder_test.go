package model

import (
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unixpickle/anynet"
)

var small = Architecture{InputDim: 16, Encoder: []int{8, 4}, Decoder: []int{8}}

func randomRows(rng *rand.Rand, n, width int) [][]float64 {
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, width)
		for j := range rows[i] {
			rows[i][j] = float64(rng.Intn(256))
		}
	}
	return rows
}

func TestBuildLayout(t *testing.T) {
	ae, err := Build(DefaultCreator, small, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	// Scale + 2x(FC, ReLU)
	require.Len(t, ae.Encoder, 5)
	assert.IsType(t, &Scale{}, ae.Encoder[0])
	assert.Equal(t, anynet.ReLU, ae.Encoder[2])

	// (FC, ReLU) + output FC
	require.Len(t, ae.Decoder, 3)
	out := ae.Decoder[2].(*anynet.FC)
	assert.Equal(t, 8, out.InCount)
	assert.Equal(t, 16, out.OutCount)

	// weights+biases for 4 dense layers
	assert.Len(t, ae.Parameters(), 8)
}

func TestBuildRejectsBadArchitecture(t *testing.T) {
	_, err := Build(DefaultCreator, Architecture{InputDim: 4, Encoder: []int{8}}, rand.New(rand.NewSource(1)))
	assert.Error(t, err)

	_, err = Build(DefaultCreator, small, nil)
	assert.Error(t, err)
}

func TestBuildDeterministic(t *testing.T) {
	a, err := Build(DefaultCreator, small, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	b, err := Build(DefaultCreator, small, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	c, err := Build(DefaultCreator, small, rand.New(rand.NewSource(43)))
	require.NoError(t, err)

	assert.Equal(t, a.Snapshot(), b.Snapshot())
	assert.NotEqual(t, a.Snapshot(), c.Snapshot())
}

func TestEncodeHasBottleneckWidth(t *testing.T) {
	for _, arch := range []Architecture{Shallow(), Deep()} {
		ae, err := Build(DefaultCreator, arch, rand.New(rand.NewSource(7)))
		require.NoError(t, err)

		rows := randomRows(rand.New(rand.NewSource(8)), 3, arch.InputDim)
		codes, err := ae.EncodeRows(rows)
		require.NoError(t, err)
		require.Len(t, codes, 3)
		for _, code := range codes {
			assert.Len(t, code, arch.Bottleneck())
			for _, v := range code {
				assert.GreaterOrEqual(t, v, 0.0, "bottleneck is post-ReLU")
			}
		}
	}
}

func TestReconstructRange(t *testing.T) {
	ae, err := Build(DefaultCreator, small, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	recon, err := ae.ReconstructRows(randomRows(rand.New(rand.NewSource(4)), 5, 16))
	require.NoError(t, err)
	require.Len(t, recon, 5)
	for _, row := range recon {
		require.Len(t, row, 16)
		for _, v := range row {
			assert.True(t, v > 0 && v < 1, "sigmoid output %v outside (0,1)", v)
		}
	}
}

func TestRowsValidation(t *testing.T) {
	ae, err := Build(DefaultCreator, small, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	_, err = ae.ReconstructRows(nil)
	assert.Error(t, err)
	_, err = ae.EncodeRows([][]float64{make([]float64, 15)})
	assert.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	ae, err := Build(DefaultCreator, small, rand.New(rand.NewSource(5)))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "nested", "ae.model")
	require.NoError(t, ae.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, small, loaded.Arch)
	assert.Equal(t, ae.Snapshot(), loaded.Snapshot())

	rows := randomRows(rand.New(rand.NewSource(6)), 2, 16)
	want, err := ae.ReconstructRows(rows)
	require.NoError(t, err)
	got, err := loaded.ReconstructRows(rows)
	require.NoError(t, err)
	assert.InDeltaSlice(t, want[0], got[0], 1e-9)
	assert.InDeltaSlice(t, want[1], got[1], 1e-9)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.model"))
	assert.Error(t, err)
}

func TestPackUnpack(t *testing.T) {
	rows := [][]float64{{1, 2}, {3, 4}, {5, 6}}
	packed := Pack(DefaultCreator, rows, 0.5)
	assert.Equal(t, []float64{0.5, 1, 1.5, 2, 2.5, 3}, Floats(packed.Output()))
	assert.Equal(t, [][]float64{{0.5, 1}, {1.5, 2}, {2.5, 3}}, Unpack(packed.Output(), 3))
}
