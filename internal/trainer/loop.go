package trainer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anynet/anysgd"
	"github.com/unixpickle/anyvec"

	"mnist-autoenc/internal/dataset"
	"mnist-autoenc/internal/metrics"
	"mnist-autoenc/internal/model"
)

// ErrNumeric is returned when the loss stops being a finite number.
var ErrNumeric = errors.New("trainer: loss is not finite")

// RunConfig captures the knobs required by the training loop.
type RunConfig struct {
	Steps     int
	BatchSize int
	EpochSize int
	LogEvery  int
	Prefetch  int
}

// Result summarizes a completed run.
type Result struct {
	Steps    int
	Samples  int
	AvgError float64 // percent, averaged over every sample seen
	LastLoss float64
}

// Trainer fits an autoencoder to its own inputs.
type Trainer struct {
	Model  *model.Autoencoder
	Metric metrics.ErrorMetric

	// Cost compares pre-sigmoid logits with targets in [0,1]. If nil,
	// per-sample summed sigmoid cross-entropy is used.
	Cost anynet.Cost

	// Optimizer transforms raw gradients into steps. If nil, a fresh Adam
	// is created on first use.
	Optimizer *anysgd.Adam

	// LearningRates and Momentums are indexed by epoch. Momentum feeds
	// Adam's first-moment decay; zero selects Adam's default.
	LearningRates Schedule
	Momentums     Schedule

	// Streams maps batch fields onto input and target. If nil, features
	// are used for both.
	Streams dataset.StreamMap

	// Logger receives progress lines. If nil, the standard logger is used.
	Logger *log.Logger

	state State
}

// State reports where the trainer is in its lifecycle.
func (t *Trainer) State() State {
	return t.state
}

// Run performs exactly cfg.Steps updates, drawing one batch from src before
// each. Any error ends the run and leaves the trainer Failed.
func (t *Trainer) Run(ctx context.Context, src dataset.BatchSource, cfg RunConfig) (Result, error) {
	if t.state != Uninitialized {
		return Result{}, fmt.Errorf("trainer: cannot run from state %s", t.state)
	}
	if err := t.check(cfg); err != nil {
		return Result{}, err
	}
	if cfg.LogEvery <= 0 {
		cfg.LogEvery = 100
	}
	logger := t.logger()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	feed := dataset.NewFeed(ctx, src, cfg.BatchSize, cfg.Prefetch)

	var (
		window  metrics.Window
		overall metrics.Accumulator
		res     Result
	)
	for step := 1; step <= cfg.Steps; step++ {
		t.state = Running

		startData := time.Now()
		batch, err := feed.Next(ctx)
		if err != nil {
			return t.fail(res, fmt.Errorf("step %d: draw batch: %w", step, err))
		}
		dataTime := time.Since(startData)

		epoch := float64(res.Samples) / float64(cfg.EpochSize)
		startCompute := time.Now()
		loss, errRate, err := t.Step(batch, epoch)
		if err != nil {
			return t.fail(res, fmt.Errorf("step %d: %w", step, err))
		}
		computeTime := time.Since(startCompute)

		res.Steps = step
		res.Samples += batch.Len()
		res.LastLoss = loss
		overall.Add(errRate, batch.Len())
		window.Record(batch.Len(), dataTime, computeTime, loss, errRate)

		if step%cfg.LogEvery == 0 || step == cfg.Steps {
			snap := window.Snapshot()
			logger.Printf("step=%d epoch=%.2f images_per_sec=%.1f data_ms=%.2f compute_ms=%.2f loss=%.4f error=%.2f%%",
				step,
				float64(res.Samples)/float64(cfg.EpochSize),
				snap.ImagesPerSec,
				snap.AvgDataMS,
				snap.AvgComputeMS,
				snap.LastLoss,
				snap.ErrorPercent,
			)
		}
	}

	res.AvgError = overall.Percent()
	t.state = Completed
	return res, nil
}

// Step applies one optimizer update for batch and returns the mean
// per-sample loss and the batch error rate measured before the update.
func (t *Trainer) Step(batch dataset.Batch, epoch float64) (loss, errRate float64, err error) {
	f, err := t.forward(batch)
	if err != nil {
		return 0, 0, err
	}

	params := t.Model.Parameters()
	grad := anydiff.NewGrad(params...)
	upstream := f.c.MakeVectorData(f.c.MakeNumericList([]float64{1}))
	f.total.Propagate(upstream, grad)

	if t.Optimizer == nil {
		t.Optimizer = &anysgd.Adam{}
	}
	t.Optimizer.DecayRate1 = t.Momentums.Rate(epoch)
	update := t.Optimizer.Transform(grad)
	update.Scale(f.c.MakeNumeric(-t.LearningRates.Rate(epoch)))
	update.AddToVars()

	return f.loss, f.errRate, nil
}

// Loss returns the mean per-sample loss and error rate for batch without
// changing any parameter.
func (t *Trainer) Loss(batch dataset.Batch) (loss, errRate float64, err error) {
	f, err := t.forward(batch)
	if err != nil {
		return 0, 0, err
	}
	return f.loss, f.errRate, nil
}

type forwardPass struct {
	c       anyvec.Creator
	total   anydiff.Res
	loss    float64
	errRate float64
}

func (t *Trainer) forward(batch dataset.Batch) (*forwardPass, error) {
	if t.Model == nil || t.Metric == nil {
		return nil, errors.New("trainer: model and metric are required")
	}
	streams := t.Streams
	if streams == nil {
		streams = dataset.Autoencoding()
	}
	bound, err := streams.Bind(batch)
	if err != nil {
		return nil, err
	}
	n := bound.N
	c := t.Model.Creator()

	in := model.Pack(c, bound.Input, 1)
	target := model.Pack(c, bound.Target, model.PixelScale)
	logits := t.Model.Logits(in, n)

	cost := t.cost().Cost(target, logits, n)
	total := anydiff.Scale(anydiff.Sum(cost), c.MakeNumeric(1/float64(n)))
	loss := model.Floats(total.Output())[0]
	if math.IsNaN(loss) || math.IsInf(loss, 0) {
		return nil, fmt.Errorf("%w (got %v)", ErrNumeric, loss)
	}

	outputs := model.Unpack(anydiff.Sigmoid(logits).Output(), n)
	targets := model.Unpack(target.Output(), n)
	return &forwardPass{
		c:       c,
		total:   total,
		loss:    loss,
		errRate: t.Metric.Rate(outputs, targets),
	}, nil
}

func (t *Trainer) check(cfg RunConfig) error {
	if t.Model == nil {
		return errors.New("trainer: model is nil")
	}
	if t.Metric == nil {
		return errors.New("trainer: metric is nil")
	}
	if len(t.LearningRates) == 0 {
		return errors.New("trainer: no learning rate schedule")
	}
	if cfg.Steps <= 0 {
		return errors.New("trainer: steps must be > 0")
	}
	if cfg.BatchSize <= 0 {
		return errors.New("trainer: batch size must be > 0")
	}
	if cfg.EpochSize <= 0 {
		return errors.New("trainer: epoch size must be > 0")
	}
	return nil
}

func (t *Trainer) cost() anynet.Cost {
	if t.Cost != nil {
		return t.Cost
	}
	return anynet.SigmoidCE{}
}

func (t *Trainer) logger() *log.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return log.Default()
}

func (t *Trainer) fail(res Result, err error) (Result, error) {
	t.state = Failed
	return res, err
}
