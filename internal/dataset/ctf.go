package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Field names used in the MNIST text files.
const (
	LabelsField   = "labels"
	FeaturesField = "features"
)

// maxLineBytes bounds a single record; 784 pixels of up to three digits fit
// comfortably.
const maxLineBytes = 1 << 20

// MaxPixel is the largest feature value a record may carry. Labels must lie
// in [0,1].
const MaxPixel = 255

// Dims fixes the width of each field in a file.
type Dims struct {
	Features int
	Labels   int
}

// MNIST is the layout of the 28x28 digit files.
var MNIST = Dims{Features: 28 * 28, Labels: 10}

// Sample is one record: raw pixel intensities in [0,255] plus an optional
// one-hot label.
type Sample struct {
	Features []float64
	Labels   []float64
}

// ParseError reports a malformed record.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ErrNoRecords is returned for a file without a single record.
var ErrNoRecords = errors.New("ctf: no records")

// ReadCTF parses every record from r. Each non-blank line looks like
//
//	|labels 0 0 1 0 0 0 0 0 0 0 |features 0 0 0 ... 255 ...
//
// A Labels width of zero makes the labels field optional and ignored.
func ReadCTF(r io.Reader, dims Dims) ([]Sample, error) {
	if dims.Features <= 0 {
		return nil, fmt.Errorf("ctf: feature dimension must be > 0 (got %d)", dims.Features)
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	var samples []Sample
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		sample, err := parseRecord(line, dims)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Err: err}
		}
		samples = append(samples, sample)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ctf: %w", err)
	}
	if len(samples) == 0 {
		return nil, ErrNoRecords
	}
	return samples, nil
}

func parseRecord(line string, dims Dims) (Sample, error) {
	if !strings.HasPrefix(line, "|") {
		return Sample{}, errors.New("record must start with '|'")
	}
	var sample Sample
	for _, part := range strings.Split(line[1:], "|") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			return Sample{}, errors.New("empty field")
		}
		name, raw := fields[0], fields[1:]
		switch name {
		case FeaturesField:
			if sample.Features != nil {
				return Sample{}, errors.New("duplicate features field")
			}
			vals, err := parseValues(raw, dims.Features, 0, MaxPixel)
			if err != nil {
				return Sample{}, fmt.Errorf("features: %w", err)
			}
			sample.Features = vals
		case LabelsField:
			if dims.Labels == 0 {
				continue
			}
			if sample.Labels != nil {
				return Sample{}, errors.New("duplicate labels field")
			}
			vals, err := parseValues(raw, dims.Labels, 0, 1)
			if err != nil {
				return Sample{}, fmt.Errorf("labels: %w", err)
			}
			sample.Labels = vals
		default:
			return Sample{}, fmt.Errorf("unknown field %q", name)
		}
	}
	if sample.Features == nil {
		return Sample{}, errors.New("missing features field")
	}
	if dims.Labels > 0 && sample.Labels == nil {
		return Sample{}, errors.New("missing labels field")
	}
	return sample, nil
}

func parseValues(raw []string, want int, lo, hi float64) ([]float64, error) {
	if len(raw) != want {
		return nil, fmt.Errorf("expected %d values, got %d", want, len(raw))
	}
	out := make([]float64, want)
	for i, s := range raw {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		// NaN fails both comparisons, so test for the inside of the range.
		if !(v >= lo && v <= hi) {
			return nil, fmt.Errorf("value %d is %s, want [%g,%g]", i, s, lo, hi)
		}
		out[i] = v
	}
	return out, nil
}

// WriteCTF writes samples in the format accepted by ReadCTF. Labels are
// omitted for samples that carry none.
func WriteCTF(w io.Writer, samples []Sample) error {
	bw := bufio.NewWriter(w)
	for _, s := range samples {
		if len(s.Labels) > 0 {
			bw.WriteString("|" + LabelsField)
			writeValues(bw, s.Labels)
			bw.WriteByte(' ')
		}
		bw.WriteString("|" + FeaturesField)
		writeValues(bw, s.Features)
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("write ctf: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write ctf: %w", err)
	}
	return nil
}

func writeValues(bw *bufio.Writer, vals []float64) {
	for _, v := range vals {
		bw.WriteByte(' ')
		bw.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
}
