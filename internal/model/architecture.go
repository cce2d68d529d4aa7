package model

import (
	"errors"
	"fmt"
)

// Architecture lists the widths of a symmetric-ish dense autoencoder.
//
// The encoder widths must be non-increasing and end at the bottleneck, which
// must be narrower than InputDim. The decoder widths are the hidden layers
// between the bottleneck and the output; they must be non-decreasing and lie
// between the bottleneck width and InputDim. The output layer back to
// InputDim is implied.
type Architecture struct {
	InputDim int
	Encoder  []int
	Decoder  []int
}

// Shallow is the single-stage 784 -> 32 -> 784 autoencoder.
func Shallow() Architecture {
	return Architecture{InputDim: 784, Encoder: []int{32}}
}

// Deep is the 784 -> 128 -> 64 -> 32 -> 64 -> 128 -> 784 autoencoder.
func Deep() Architecture {
	return Architecture{
		InputDim: 784,
		Encoder:  []int{128, 64, 32},
		Decoder:  []int{64, 128},
	}
}

// Bottleneck returns the width of the encoding.
func (a Architecture) Bottleneck() int {
	if len(a.Encoder) == 0 {
		return 0
	}
	return a.Encoder[len(a.Encoder)-1]
}

// Validate checks the width constraints.
func (a Architecture) Validate() error {
	if a.InputDim <= 0 {
		return fmt.Errorf("architecture: input dim must be > 0 (got %d)", a.InputDim)
	}
	if len(a.Encoder) == 0 {
		return errors.New("architecture: at least one encoder stage is required")
	}
	prev := a.InputDim
	for i, w := range a.Encoder {
		if w <= 0 {
			return fmt.Errorf("architecture: encoder width %d must be > 0 (got %d)", i, w)
		}
		if w > prev {
			return fmt.Errorf("architecture: encoder widths must not increase (%d -> %d)", prev, w)
		}
		prev = w
	}
	k := a.Bottleneck()
	if k >= a.InputDim {
		return fmt.Errorf("architecture: bottleneck %d must be smaller than input dim %d", k, a.InputDim)
	}
	prev = k
	for _, w := range a.Decoder {
		if w < prev {
			return fmt.Errorf("architecture: decoder widths must not decrease (%d -> %d)", prev, w)
		}
		if w > a.InputDim {
			return fmt.Errorf("architecture: decoder width %d exceeds input dim %d", w, a.InputDim)
		}
		prev = w
	}
	return nil
}

func (a Architecture) String() string {
	return fmt.Sprintf("%d -> %v -> %v -> %d", a.InputDim, a.Encoder, a.Decoder, a.InputDim)
}
