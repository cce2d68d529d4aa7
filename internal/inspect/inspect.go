package inspect

import (
	"fmt"

	"mnist-autoenc/internal/metrics"
	"mnist-autoenc/internal/model"
)

// Inspector runs single samples through a trained model. It never changes
// the model.
type Inspector struct {
	Model *model.Autoencoder
}

// Reconstruct returns the model's full output for one raw sample, with
// values in (0,1).
func (in Inspector) Reconstruct(features []float64) ([]float64, error) {
	rows, err := in.Model.ReconstructRows([][]float64{features})
	if err != nil {
		return nil, fmt.Errorf("reconstruct: %w", err)
	}
	return rows[0], nil
}

// Encode returns the bottleneck vector for one raw sample.
func (in Inspector) Encode(features []float64) ([]float64, error) {
	rows, err := in.Model.EncodeRows([][]float64{features})
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return rows[0], nil
}

// Comparison holds a raw sample next to its reconstruction, both on the
// 0..255 pixel scale.
type Comparison struct {
	Original []float64
	Decoded  []float64
}

// Compare reconstructs features and rescales the result to pixel units.
func (in Inspector) Compare(features []float64) (Comparison, error) {
	out, err := in.Reconstruct(features)
	if err != nil {
		return Comparison{}, err
	}
	decoded := make([]float64, len(out))
	for i, v := range out {
		decoded[i] = v / model.PixelScale
	}
	return Comparison{
		Original: append([]float64(nil), features...),
		Decoded:  decoded,
	}, nil
}

// Stats summarizes both images.
func (c Comparison) Stats() (original, decoded metrics.Summary, err error) {
	if original, err = metrics.Summarize(c.Original); err != nil {
		return original, decoded, err
	}
	decoded, err = metrics.Summarize(c.Decoded)
	return original, decoded, err
}

// EncodingMatch reports how close the encodings of two samples of one class
// are, next to an encoding of a sample from another class.
type EncodingMatch struct {
	Anchor, Same, Other int
	SameClass           float64
	OtherClass          float64
}

// MatchEncodings picks the first two samples of class and the first sample
// of any other class from groups, encodes them and compares the encodings.
// sample maps an index to its raw features.
func (in Inspector) MatchEncodings(groups Groups, class int, sample func(int) ([]float64, error)) (EncodingMatch, error) {
	same := groups.Indices(class)
	if len(same) < 2 {
		return EncodingMatch{}, fmt.Errorf("%w: class %d has %d samples, need 2", ErrInvalidArgument, class, len(same))
	}
	other := -1
	for _, c := range groups.Classes() {
		if c != class && len(groups.Indices(c)) > 0 {
			other = groups.Indices(c)[0]
			break
		}
	}
	if other < 0 {
		return EncodingMatch{}, fmt.Errorf("%w: no sample outside class %d", ErrInvalidArgument, class)
	}

	m := EncodingMatch{Anchor: same[0], Same: same[1], Other: other}
	codes := make([][]float64, 3)
	for i, idx := range []int{m.Anchor, m.Same, m.Other} {
		features, err := sample(idx)
		if err != nil {
			return EncodingMatch{}, err
		}
		if codes[i], err = in.Encode(features); err != nil {
			return EncodingMatch{}, err
		}
	}

	var err error
	if m.SameClass, err = CosineSimilarity(codes[0], codes[1]); err != nil {
		return EncodingMatch{}, err
	}
	if m.OtherClass, err = CosineSimilarity(codes[0], codes[2]); err != nil {
		return EncodingMatch{}, err
	}
	return m, nil
}
