package dataset

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
)

// Mode selects how a Source walks its samples.
type Mode int

const (
	// Train shuffles the samples and repeats them forever, reshuffling at the
	// start of every sweep.
	Train Mode = iota
	// Eval walks the samples in file order exactly once.
	Eval
)

func (m Mode) String() string {
	switch m {
	case Train:
		return "train"
	case Eval:
		return "eval"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Batch is a minibatch of samples, split by stream.
type Batch struct {
	Features [][]float64
	Labels   [][]float64
}

// Len returns the number of samples in the batch.
func (b Batch) Len() int {
	return len(b.Features)
}

// Source yields minibatches from an in-memory sample set. It is not safe for
// concurrent use; Prefetch is the supported way to draw from another
// goroutine.
type Source struct {
	samples []Sample
	order   []int
	mode    Mode
	rng     *rand.Rand
	pos     int
	sweeps  int
}

// Open reads the file at path and returns a Source over it. All parsing
// happens here, so a missing or malformed file fails before any batch is
// produced.
func Open(path string, mode Mode, dims Dims, seed int64) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDataMissing, path)
		}
		return nil, fmt.Errorf("open data: %w", err)
	}
	defer f.Close()

	samples, err := ReadCTF(f, dims)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return NewSource(samples, mode, seed)
}

// NewSource wraps samples already in memory.
func NewSource(samples []Sample, mode Mode, seed int64) (*Source, error) {
	if len(samples) == 0 {
		return nil, errors.New("source: no samples")
	}
	width := len(samples[0].Features)
	for i, s := range samples {
		if len(s.Features) != width {
			return nil, fmt.Errorf("source: sample %d has %d features, want %d", i, len(s.Features), width)
		}
	}
	src := &Source{
		samples: samples,
		order:   make([]int, len(samples)),
		mode:    mode,
	}
	for i := range src.order {
		src.order[i] = i
	}
	if mode == Train {
		src.rng = rand.New(rand.NewSource(seed))
		src.shuffle()
	}
	return src, nil
}

// Len returns the number of samples in one sweep.
func (s *Source) Len() int {
	return len(s.samples)
}

// Mode reports how the source walks its samples.
func (s *Source) Mode() Mode {
	return s.mode
}

// Sweeps returns how many times a Train source has wrapped around to a new
// shuffled pass.
func (s *Source) Sweeps() int {
	return s.sweeps
}

// Sample returns the sample at idx in file order.
func (s *Source) Sample(idx int) (Sample, error) {
	if idx < 0 || idx >= len(s.samples) {
		return Sample{}, fmt.Errorf("source: index %d out of range [0,%d)", idx, len(s.samples))
	}
	return s.samples[idx], nil
}

// Next draws up to n samples. In Train mode it always returns n samples,
// wrapping into a freshly shuffled sweep as needed. In Eval mode the final
// batch may be short, and io.EOF is returned once the pass is exhausted.
func (s *Source) Next(n int) (Batch, error) {
	if n <= 0 {
		return Batch{}, fmt.Errorf("source: batch size must be > 0 (got %d)", n)
	}
	if s.mode == Eval && s.pos >= len(s.order) {
		return Batch{}, io.EOF
	}
	batch := Batch{
		Features: make([][]float64, 0, n),
		Labels:   make([][]float64, 0, n),
	}
	for batch.Len() < n {
		if s.pos == len(s.order) {
			if s.mode == Eval {
				break
			}
			s.sweeps++
			s.pos = 0
			s.shuffle()
		}
		sample := s.samples[s.order[s.pos]]
		s.pos++
		batch.Features = append(batch.Features, sample.Features)
		batch.Labels = append(batch.Labels, sample.Labels)
	}
	return batch, nil
}

func (s *Source) shuffle() {
	s.rng.Shuffle(len(s.order), func(i, j int) {
		s.order[i], s.order[j] = s.order[j], s.order[i]
	})
}
