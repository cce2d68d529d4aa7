package metrics

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// ErrorMetric scores a batch of reconstructions against their targets.
// Both are rows of values in [0,1]. Rate returns the fraction of the batch
// judged wrong, in [0,1].
type ErrorMetric interface {
	Name() string
	Rate(outputs, targets [][]float64) float64
}

// PixelError binarizes every output and target value at Threshold and
// reports the fraction of pixels that disagree.
type PixelError struct {
	Threshold float64
}

func (p PixelError) Name() string {
	return "pixel"
}

func (p PixelError) Rate(outputs, targets [][]float64) float64 {
	th := p.Threshold
	if th == 0 {
		th = 0.5
	}
	var wrong, total int
	for i, out := range outputs {
		for j, v := range out {
			if (v >= th) != (targets[i][j] >= th) {
				wrong++
			}
			total++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(wrong) / float64(total)
}

// ArgMaxError counts a sample as wrong when the brightest output pixel is not
// the brightest target pixel. This is what a classification error metric
// computes when handed reconstruction targets.
type ArgMaxError struct{}

func (ArgMaxError) Name() string {
	return "argmax"
}

func (ArgMaxError) Rate(outputs, targets [][]float64) float64 {
	if len(outputs) == 0 {
		return 0
	}
	var wrong int
	for i, out := range outputs {
		if floats.MaxIdx(out) != floats.MaxIdx(targets[i]) {
			wrong++
		}
	}
	return float64(wrong) / float64(len(outputs))
}

// MetricByName returns the metric registered under name.
func MetricByName(name string) (ErrorMetric, error) {
	switch name {
	case "", "pixel":
		return PixelError{Threshold: 0.5}, nil
	case "argmax":
		return ArgMaxError{}, nil
	default:
		return nil, fmt.Errorf("unknown metric %q", name)
	}
}
