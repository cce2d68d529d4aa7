package inspect

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// ErrInvalidArgument marks a comparison that cannot be computed from its
// inputs. It only fails the one call.
var ErrInvalidArgument = errors.New("inspect: invalid argument")

// CosineSimilarity returns the cosine of the angle between a and b, that is
// 1 minus their cosine distance. Two zero vectors are identical (1); a zero
// vector against any other vector shares no direction (0).
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: vectors have lengths %d and %d", ErrInvalidArgument, len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("%w: empty vectors", ErrInvalidArgument)
	}
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	switch {
	case na == 0 && nb == 0:
		return 1, nil
	case na == 0 || nb == 0:
		return 0, nil
	}
	sim := floats.Dot(a, b) / (na * nb)
	// Rounding can push parallel vectors just outside [-1,1].
	if sim > 1 {
		sim = 1
	} else if sim < -1 {
		sim = -1
	}
	return sim, nil
}
