package model

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/serializer"
)

func init() {
	var s Scale
	serializer.RegisterTypedDeserializer(s.SerializerType(), DeserializeScale)
}

// PixelScale maps raw 8-bit intensities into [0,1].
const PixelScale = 1.0 / 255

// Scale multiplies every input component by a fixed factor. It has no
// learnable parameters.
type Scale struct {
	Factor float64
}

// DeserializeScale decodes a Scale layer.
func DeserializeScale(d []byte) (*Scale, error) {
	if len(d) != 8 {
		return nil, fmt.Errorf("deserialize Scale: data length (%d) should be 8", len(d))
	}
	return &Scale{Factor: math.Float64frombits(binary.LittleEndian.Uint64(d))}, nil
}

// Apply scales the batch.
func (s *Scale) Apply(in anydiff.Res, n int) anydiff.Res {
	return anydiff.Scale(in, in.Output().Creator().MakeNumeric(s.Factor))
}

// SerializerType returns the unique ID used to serialize a Scale.
func (s *Scale) SerializerType() string {
	return "mnist-autoenc/internal/model.Scale"
}

// Serialize encodes the factor.
func (s *Scale) Serialize() ([]byte, error) {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, math.Float64bits(s.Factor))
	return buf, nil
}
