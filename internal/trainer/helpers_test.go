package trainer

import (
	"io"
	"log"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"mnist-autoenc/internal/dataset"
	"mnist-autoenc/internal/metrics"
	"mnist-autoenc/internal/model"
)

var tinyArch = model.Architecture{InputDim: 16, Encoder: []int{8, 4}, Decoder: []int{8}}

// patternSamples returns n binary 16-pixel images drawn from four
// prototypes, labelled with the prototype index.
func patternSamples(n int) []dataset.Sample {
	out := make([]dataset.Sample, n)
	for i := range out {
		class := i % 4
		features := make([]float64, 16)
		for j := range features {
			if j/4 == class || j%4 == class {
				features[j] = 255
			}
		}
		labels := make([]float64, 4)
		labels[class] = 1
		out[i] = dataset.Sample{Features: features, Labels: labels}
	}
	return out
}

func newModel(t *testing.T, seed int64) *model.Autoencoder {
	t.Helper()
	m, err := model.Build(model.DefaultCreator, tinyArch, rand.New(rand.NewSource(seed)))
	require.NoError(t, err)
	return m
}

func newTrainer(m *model.Autoencoder) *Trainer {
	return &Trainer{
		Model:         m,
		Metric:        metrics.PixelError{Threshold: 0.5},
		LearningRates: Schedule{0.01},
		Momentums:     Schedule{0.9},
		Logger:        log.New(io.Discard, "", 0),
	}
}

func trainSource(t *testing.T, n int, seed int64) *dataset.Source {
	t.Helper()
	src, err := dataset.NewSource(patternSamples(n), dataset.Train, seed)
	require.NoError(t, err)
	return src
}

func evalSource(t *testing.T, n int) *dataset.Source {
	t.Helper()
	src, err := dataset.NewSource(patternSamples(n), dataset.Eval, 0)
	require.NoError(t, err)
	return src
}
