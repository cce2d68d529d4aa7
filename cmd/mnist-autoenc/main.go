package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"mnist-autoenc/internal/config"
	"mnist-autoenc/internal/dataset"
	"mnist-autoenc/internal/device"
	"mnist-autoenc/internal/inspect"
	"mnist-autoenc/internal/metrics"
	"mnist-autoenc/internal/model"
	"mnist-autoenc/internal/trainer"
)

func main() {
	cfgPath := flag.String("config", "configs/shallow.yaml", "Path to YAML config (empty for built-in defaults)")
	dataDir := flag.String("data-dir", "", "Directory holding the CTF files (searched first)")
	variant := flag.String("variant", "", "Architecture preset: shallow or deep")
	sweeps := flag.Int("sweeps", 0, "Number of passes over epoch_size samples")
	batchSize := flag.Int("batch-size", 0, "Training minibatch size")
	seed := flag.Int64("seed", 0, "PRNG seed")
	logEvery := flag.Int("log-every", 0, "Log every N steps")
	prefetch := flag.Int("prefetch", 0, "Batches to prefetch in the background (0 = synchronous)")
	metric := flag.String("metric", "", "Error metric: pixel or argmax")
	dev := flag.String("device", "", "Compute device")
	modelIn := flag.String("model-in", "", "Evaluate a saved model instead of training")
	modelOut := flag.String("model-out", "", "Where to save the trained model")
	imageOut := flag.String("image-out", "", "Where to write the original/reconstruction PNG")
	inspectIdx := flag.Int("inspect-index", 0, "Test sample to reconstruct and inspect")

	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		cfg, err = config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	cfg.ApplyOverrides(config.Overrides{
		DataDir:      *dataDir,
		Variant:      *variant,
		Sweeps:       *sweeps,
		BatchSize:    *batchSize,
		Seed:         *seed,
		LogEvery:     *logEvery,
		Prefetch:     *prefetch,
		Metric:       *metric,
		Device:       *dev,
		ModelIn:      *modelIn,
		ModelOut:     *modelOut,
		ImageOut:     *imageOut,
		InspectIndex: *inspectIdx,
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stdout, log.Default()); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, out io.Writer, logger *log.Logger) error {
	dev, err := device.Select(cfg.Device)
	if err != nil {
		return err
	}
	logger.Print(dev)
	if !dev.Supports("avx2") && !dev.Supports("asimd") {
		logger.Printf("no vector extensions detected; training runs on scalar code")
	}

	dir, err := dataset.Locate(cfg.DataDirs, cfg.TrainFile, cfg.TestFile)
	if err != nil {
		return err
	}
	paths := dataset.Paths(dir, cfg.TrainFile, cfg.TestFile)
	dims := dataset.Dims{Features: cfg.InputDim, Labels: cfg.NumClasses}
	logger.Printf("data_dir=%s", dir)

	metric, err := metrics.MetricByName(cfg.Metric)
	if err != nil {
		return err
	}

	// Both files are parsed and sized before any training step.
	test, err := dataset.Open(paths[1], dataset.Eval, dims, 0)
	if err != nil {
		return err
	}
	if cfg.TestSamples > test.Len() {
		return fmt.Errorf("test_samples (%d) exceeds the %d records in %s", cfg.TestSamples, test.Len(), paths[1])
	}
	if cfg.InspectIndex >= test.Len() {
		return fmt.Errorf("inspect_index (%d) is out of range for the %d records in %s", cfg.InspectIndex, test.Len(), paths[1])
	}

	streams := dataset.Autoencoding()
	for _, role := range streams.Roles() {
		logger.Printf("role=%s stream=%s", role, streams[role])
	}

	var ae *model.Autoencoder
	if cfg.ModelIn != "" {
		if ae, err = model.Load(cfg.ModelIn); err != nil {
			return err
		}
		if ae.Arch.InputDim != cfg.InputDim {
			return fmt.Errorf("model %s takes %d inputs, data has %d", cfg.ModelIn, ae.Arch.InputDim, cfg.InputDim)
		}
		logger.Printf("model_in=%s arch=%s", cfg.ModelIn, ae.Arch)
	} else {
		train, err := dataset.Open(paths[0], dataset.Train, dims, cfg.Seed)
		if err != nil {
			return err
		}
		if ae, err = trainModel(ctx, cfg, train, metric, streams, out, logger); err != nil {
			return err
		}
	}

	if cfg.ModelOut != "" && cfg.ModelIn == "" {
		if err := ae.Save(cfg.ModelOut); err != nil {
			return err
		}
		logger.Printf("model_out=%s", cfg.ModelOut)
	}

	rep, err := trainer.Evaluate(ctx, ae, metric, test, trainer.EvalConfig{
		BatchSize:    cfg.TestBatchSize,
		TotalSamples: cfg.TestSamples,
		Streams:      streams,
	})
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}
	fmt.Fprintf(out, "Average test error: %.2f%% (%d batches)\n", rep.ErrorPercent, rep.Batches)

	return inspectSample(cfg, ae, test, out, logger)
}

func trainModel(ctx context.Context, cfg *config.Config, train *dataset.Source, metric metrics.ErrorMetric, streams dataset.StreamMap, out io.Writer, logger *log.Logger) (*model.Autoencoder, error) {
	arch := model.Architecture{InputDim: cfg.InputDim, Encoder: cfg.Encoder, Decoder: cfg.Decoder}
	ae, err := model.Build(model.DefaultCreator, arch, rand.New(rand.NewSource(cfg.Seed)))
	if err != nil {
		return nil, fmt.Errorf("build model: %w", err)
	}
	logger.Printf("variant=%s arch=%s params=%d", cfg.Variant, arch, len(ae.Parameters()))

	tr := &trainer.Trainer{
		Model:         ae,
		Metric:        metric,
		LearningRates: cfg.LearningRates,
		Momentums:     cfg.Momentums,
		Streams:       streams,
		Logger:        logger,
	}
	res, err := tr.Run(ctx, train, trainer.RunConfig{
		Steps:     trainer.StepsFor(cfg.EpochSize, cfg.Sweeps, cfg.BatchSize),
		BatchSize: cfg.BatchSize,
		EpochSize: cfg.EpochSize,
		LogEvery:  cfg.LogEvery,
		Prefetch:  cfg.Prefetch,
	})
	if err != nil {
		return nil, fmt.Errorf("training failed: %w", err)
	}
	fmt.Fprintf(out, "Average training error: %.2f%%\n", res.AvgError)
	return ae, nil
}

// groupWindow is how many leading test samples are bucketed by label when
// looking for same-class and different-class encodings.
const groupWindow = 50

func inspectSample(cfg *config.Config, ae *model.Autoencoder, test *dataset.Source, out io.Writer, logger *log.Logger) error {
	in := inspect.Inspector{Model: ae}

	sample, err := test.Sample(cfg.InspectIndex)
	if err != nil {
		return err
	}
	cmp, err := in.Compare(sample.Features)
	if err != nil {
		return err
	}
	orig, dec, err := cmp.Stats()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Original image statistics: %s\n", orig)
	fmt.Fprintf(out, "Decoded image statistics:  %s\n", dec)

	if cfg.ImageOut != "" {
		if err := inspect.SavePair(cfg.ImageOut, cmp.Original, cmp.Decoded); err != nil {
			return err
		}
		logger.Printf("image_out=%s left=original right=reconstruction index=%d", cfg.ImageOut, cfg.InspectIndex)
	}

	if cfg.NumClasses == 0 {
		return nil
	}
	n := groupWindow
	if n > test.Len() {
		n = test.Len()
	}
	labels := make([][]float64, n)
	for i := range labels {
		s, err := test.Sample(i)
		if err != nil {
			return err
		}
		labels[i] = s.Labels
	}
	groups := inspect.GroupByLabel(labels)
	class := 0
	if len(sample.Labels) > 0 {
		class = inspect.GroupByLabel([][]float64{sample.Labels}).Classes()[0]
	}

	features := func(i int) ([]float64, error) {
		s, err := test.Sample(i)
		return s.Features, err
	}
	match, err := in.MatchEncodings(groups, class, features)
	if err != nil {
		// Not enough samples of this class nearby; the run still succeeded.
		logger.Printf("skip encoding comparison: %v", err)
		return nil
	}
	fmt.Fprintf(out, "Encoding similarity, same digit %d (#%d vs #%d): %.4f\n", class, match.Anchor, match.Same, match.SameClass)
	fmt.Fprintf(out, "Encoding similarity, other digit (#%d vs #%d): %.4f\n", match.Anchor, match.Other, match.OtherClass)
	return nil
}
