package trainer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"mnist-autoenc/internal/dataset"
	"mnist-autoenc/internal/metrics"
	"mnist-autoenc/internal/model"
)

// EvalConfig sizes an evaluation pass.
type EvalConfig struct {
	BatchSize    int
	TotalSamples int
	Streams      dataset.StreamMap
}

// Report is the outcome of an evaluation pass.
type Report struct {
	Batches      int
	Samples      int
	ErrorPercent float64
}

// Evaluate runs exactly TotalSamples/BatchSize batches from src through the
// reconstruction path and reports the sample-weighted error percentage. It
// only reads the model.
func Evaluate(ctx context.Context, m *model.Autoencoder, metric metrics.ErrorMetric, src dataset.BatchSource, cfg EvalConfig) (Report, error) {
	if m == nil || metric == nil {
		return Report{}, errors.New("evaluate: model and metric are required")
	}
	batches := BatchesFor(cfg.TotalSamples, cfg.BatchSize)
	if batches == 0 {
		return Report{}, fmt.Errorf("evaluate: %d samples do not fill a batch of %d", cfg.TotalSamples, cfg.BatchSize)
	}
	streams := cfg.Streams
	if streams == nil {
		streams = dataset.Autoencoding()
	}

	c := m.Creator()
	var acc metrics.Accumulator
	var rep Report
	for i := 0; i < batches; i++ {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		batch, err := src.Next(cfg.BatchSize)
		if errors.Is(err, io.EOF) {
			return rep, fmt.Errorf("evaluate: source exhausted after %d of %d batches", i, batches)
		}
		if err != nil {
			return rep, fmt.Errorf("evaluate: batch %d: %w", i, err)
		}
		if batch.Len() != cfg.BatchSize {
			return rep, fmt.Errorf("evaluate: batch %d has %d samples, want %d", i, batch.Len(), cfg.BatchSize)
		}
		bound, err := streams.Bind(batch)
		if err != nil {
			return rep, fmt.Errorf("evaluate: batch %d: %w", i, err)
		}

		in := model.Pack(c, bound.Input, 1)
		out := m.Reconstruct(in, bound.N).Output()
		targets := scaleRows(bound.Target, model.PixelScale)
		acc.Add(metric.Rate(model.Unpack(out, bound.N), targets), bound.N)

		rep.Batches++
		rep.Samples += bound.N
	}
	rep.ErrorPercent = acc.Percent()
	return rep, nil
}

func scaleRows(rows [][]float64, s float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		out[i] = make([]float64, len(r))
		for j, v := range r {
			out[i][j] = v * s
		}
	}
	return out
}
