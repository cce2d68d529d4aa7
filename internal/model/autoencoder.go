package model

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec64"
)

// DefaultCreator is the numeric backend used by the commands and tests.
var DefaultCreator anyvec.Creator = anyvec64.DefaultCreator{}

// Autoencoder is a dense autoencoder split into its two paths.
//
// Encoder maps raw pixels to the bottleneck: a 1/255 Scale followed by FC+ReLU
// stages. Decoder maps the bottleneck to pre-sigmoid logits: FC+ReLU stages
// followed by a final FC back to the input width. Reconstruct applies the
// sigmoid; training feeds Logits to a fused sigmoid cross-entropy instead.
type Autoencoder struct {
	Arch    Architecture
	Encoder anynet.Net
	Decoder anynet.Net
}

// Build creates a freshly initialized autoencoder. Weights are drawn from a
// Glorot-uniform distribution using rng and biases start at zero, so the same
// seed always yields the same parameters.
func Build(c anyvec.Creator, arch Architecture, rng *rand.Rand) (*Autoencoder, error) {
	if err := arch.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("build: nil random source")
	}

	encoder := anynet.Net{&Scale{Factor: PixelScale}}
	in := arch.InputDim
	for _, w := range arch.Encoder {
		encoder = append(encoder, newFC(c, in, w, rng), anynet.ReLU)
		in = w
	}

	var decoder anynet.Net
	for _, w := range arch.Decoder {
		decoder = append(decoder, newFC(c, in, w, rng), anynet.ReLU)
		in = w
	}
	decoder = append(decoder, newFC(c, in, arch.InputDim, rng))

	return &Autoencoder{
		Arch:    arch,
		Encoder: encoder,
		Decoder: decoder,
	}, nil
}

func newFC(c anyvec.Creator, in, out int, rng *rand.Rand) *anynet.FC {
	fc := anynet.NewFCZero(c, in, out)
	limit := math.Sqrt(6 / float64(in+out))
	weights := make([]float64, in*out)
	for i := range weights {
		weights[i] = (rng.Float64()*2 - 1) * limit
	}
	fc.Weights.Vector.SetData(c.MakeNumericList(weights))
	return fc
}

// Encode returns the bottleneck path for a batch of n raw inputs.
func (a *Autoencoder) Encode(in anydiff.Res, n int) anydiff.Res {
	return a.Encoder.Apply(in, n)
}

// Logits returns the full path up to, but excluding, the output sigmoid.
func (a *Autoencoder) Logits(in anydiff.Res, n int) anydiff.Res {
	return a.Decoder.Apply(a.Encoder.Apply(in, n), n)
}

// Reconstruct returns the full reconstruction path, with outputs in (0,1).
func (a *Autoencoder) Reconstruct(in anydiff.Res, n int) anydiff.Res {
	return anydiff.Sigmoid(a.Logits(in, n))
}

// Parameters returns every learnable variable, encoder first.
func (a *Autoencoder) Parameters() []*anydiff.Var {
	return append(a.Encoder.Parameters(), a.Decoder.Parameters()...)
}

// Creator returns the numeric backend the parameters live on.
func (a *Autoencoder) Creator() anyvec.Creator {
	params := a.Parameters()
	if len(params) == 0 {
		return DefaultCreator
	}
	return params[0].Vector.Creator()
}

// Snapshot copies out the current parameter values.
func (a *Autoencoder) Snapshot() [][]float64 {
	params := a.Parameters()
	out := make([][]float64, len(params))
	for i, p := range params {
		out[i] = Floats(p.Vector)
	}
	return out
}

// ReconstructRows runs the reconstruction path on raw pixel rows.
func (a *Autoencoder) ReconstructRows(rows [][]float64) ([][]float64, error) {
	if err := a.checkRows(rows); err != nil {
		return nil, err
	}
	c := a.Creator()
	out := a.Reconstruct(Pack(c, rows, 1), len(rows)).Output()
	return Unpack(out, len(rows)), nil
}

// EncodeRows runs the bottleneck path on raw pixel rows.
func (a *Autoencoder) EncodeRows(rows [][]float64) ([][]float64, error) {
	if err := a.checkRows(rows); err != nil {
		return nil, err
	}
	c := a.Creator()
	out := a.Encode(Pack(c, rows, 1), len(rows)).Output()
	return Unpack(out, len(rows)), nil
}

func (a *Autoencoder) checkRows(rows [][]float64) error {
	if len(rows) == 0 {
		return fmt.Errorf("no input rows")
	}
	for i, r := range rows {
		if len(r) != a.Arch.InputDim {
			return fmt.Errorf("row %d has %d values, want %d", i, len(r), a.Arch.InputDim)
		}
	}
	return nil
}

// Pack concatenates equally sized rows into one constant, multiplying every
// value by scale.
func Pack(c anyvec.Creator, rows [][]float64, scale float64) *anydiff.Const {
	var width int
	if len(rows) > 0 {
		width = len(rows[0])
	}
	flat := make([]float64, 0, len(rows)*width)
	for _, r := range rows {
		for _, v := range r {
			flat = append(flat, v*scale)
		}
	}
	return anydiff.NewConst(c.MakeVectorData(c.MakeNumericList(flat)))
}

// Unpack splits a packed batch of n equally sized rows.
func Unpack(v anyvec.Vector, n int) [][]float64 {
	flat := Floats(v)
	width := len(flat) / n
	out := make([][]float64, n)
	for i := range out {
		out[i] = flat[i*width : (i+1)*width]
	}
	return out
}

// Floats copies a vector's contents into a []float64.
func Floats(v anyvec.Vector) []float64 {
	switch data := v.Data().(type) {
	case []float64:
		return append([]float64(nil), data...)
	case []float32:
		out := make([]float64, len(data))
		for i, x := range data {
			out[i] = float64(x)
		}
		return out
	default:
		panic(fmt.Sprintf("unsupported numeric type %T", data))
	}
}
