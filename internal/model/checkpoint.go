package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/unixpickle/anynet"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

// Save writes the encoder and decoder to path.
func (a *Autoencoder) Save(path string) error {
	data, err := serializer.SerializeAny(a.Encoder, a.Decoder)
	if err != nil {
		return essentials.AddCtx("save autoencoder", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return essentials.AddCtx("save autoencoder", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return essentials.AddCtx("save autoencoder", err)
	}
	return nil
}

// Load reads an autoencoder written by Save and recovers its architecture
// from the layer shapes.
func Load(path string) (*Autoencoder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, essentials.AddCtx("load autoencoder", err)
	}
	var encoder, decoder anynet.Net
	if err := serializer.DeserializeAny(data, &encoder, &decoder); err != nil {
		return nil, essentials.AddCtx("load autoencoder", err)
	}
	arch, err := inferArchitecture(encoder, decoder)
	if err != nil {
		return nil, essentials.AddCtx("load autoencoder", err)
	}
	return &Autoencoder{Arch: arch, Encoder: encoder, Decoder: decoder}, nil
}

func inferArchitecture(encoder, decoder anynet.Net) (Architecture, error) {
	var arch Architecture
	for _, layer := range encoder {
		if fc, ok := layer.(*anynet.FC); ok {
			if arch.InputDim == 0 {
				arch.InputDim = fc.InCount
			}
			arch.Encoder = append(arch.Encoder, fc.OutCount)
		}
	}
	var outs []int
	for _, layer := range decoder {
		if fc, ok := layer.(*anynet.FC); ok {
			outs = append(outs, fc.OutCount)
		}
	}
	if len(outs) == 0 {
		return Architecture{}, fmt.Errorf("decoder has no dense layers")
	}
	if outs[len(outs)-1] != arch.InputDim {
		return Architecture{}, fmt.Errorf("decoder output %d does not match input %d", outs[len(outs)-1], arch.InputDim)
	}
	arch.Decoder = outs[:len(outs)-1]
	if len(arch.Decoder) == 0 {
		arch.Decoder = nil
	}
	return arch, arch.Validate()
}
