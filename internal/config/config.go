package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Variant names a preset autoencoder architecture.
const (
	VariantShallow = "shallow"
	VariantDeep    = "deep"
)

// Config captures the runtime knobs for a training run.
type Config struct {
	DataDirs  []string `yaml:"data_dirs"`
	TrainFile string   `yaml:"train_file"`
	TestFile  string   `yaml:"test_file"`

	Variant    string `yaml:"variant"`
	Encoder    []int  `yaml:"encoder"`
	Decoder    []int  `yaml:"decoder"`
	InputDim   int    `yaml:"input_dim"`
	NumClasses int    `yaml:"num_classes"`

	BatchSize     int       `yaml:"batch_size"`
	EpochSize     int       `yaml:"epoch_size"`
	Sweeps        int       `yaml:"sweeps"`
	LearningRates []float64 `yaml:"learning_rates"`
	Momentums     []float64 `yaml:"momentums"`

	TestBatchSize int `yaml:"test_batch_size"`
	TestSamples   int `yaml:"test_samples"`

	Seed     int64  `yaml:"seed"`
	LogEvery int    `yaml:"log_every"`
	Prefetch int    `yaml:"prefetch"`
	Metric   string `yaml:"metric"`
	Device   string `yaml:"device"`

	ModelIn      string `yaml:"model_in"`
	ModelOut     string `yaml:"model_out"`
	ImageOut     string `yaml:"image_out"`
	InspectIndex int    `yaml:"inspect_index"`
}

// Overrides captures CLI supplied values.
type Overrides struct {
	DataDir      string
	Variant      string
	Sweeps       int
	BatchSize    int
	Seed         int64
	LogEvery     int
	Prefetch     int
	Metric       string
	Device       string
	ModelIn      string
	ModelOut     string
	ImageOut     string
	InspectIndex int
}

// Default returns the configuration used when no file is given. It matches
// the shallow MNIST run: 5 sweeps of 30000 samples in minibatches of 64,
// evaluated on 10000 test samples in minibatches of 32.
func Default() *Config {
	return &Config{
		DataDirs:      []string{"data/MNIST", "../Examples/Image/DataSets/MNIST"},
		TrainFile:     "Train-28x28_cntk_text.txt",
		TestFile:      "Test-28x28_cntk_text.txt",
		Variant:       VariantShallow,
		InputDim:      784,
		NumClasses:    10,
		BatchSize:     64,
		EpochSize:     30000,
		Sweeps:        5,
		LearningRates: []float64{0.001},
		Momentums:     []float64{0.9},
		TestBatchSize: 32,
		TestSamples:   10000,
		Seed:          1,
		LogEvery:      100,
		Metric:        "pixel",
		Device:        "cpu",
	}
}

// Load reads a Config from YAML on top of Default and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Parse decodes YAML into a Config seeded with Default values.
// Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}

// ApplyOverrides updates cfg using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.DataDir != "" {
		c.DataDirs = append([]string{o.DataDir}, c.DataDirs...)
	}
	if o.Variant != "" && o.Variant != c.Variant {
		c.Variant = o.Variant
		// Explicit widths belong to the variant they were written for.
		c.Encoder = nil
		c.Decoder = nil
	}
	if o.Sweeps > 0 {
		c.Sweeps = o.Sweeps
	}
	if o.BatchSize > 0 {
		c.BatchSize = o.BatchSize
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.LogEvery > 0 {
		c.LogEvery = o.LogEvery
	}
	if o.Prefetch > 0 {
		c.Prefetch = o.Prefetch
	}
	if o.Metric != "" {
		c.Metric = o.Metric
	}
	if o.Device != "" {
		c.Device = o.Device
	}
	if o.ModelIn != "" {
		c.ModelIn = o.ModelIn
	}
	if o.ModelOut != "" {
		c.ModelOut = o.ModelOut
	}
	if o.ImageOut != "" {
		c.ImageOut = o.ImageOut
	}
	if o.InspectIndex > 0 {
		c.InspectIndex = o.InspectIndex
	}
}

// Validate verifies the config is runnable and fills in derived defaults.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if len(c.DataDirs) == 0 {
		return errors.New("at least one data directory must be set")
	}
	if c.TrainFile == "" || c.TestFile == "" {
		return errors.New("both train_file and test_file must be provided")
	}
	switch c.Variant {
	case VariantShallow, VariantDeep:
	default:
		return fmt.Errorf("variant must be %q or %q (got %q)", VariantShallow, VariantDeep, c.Variant)
	}
	if len(c.Encoder) == 0 {
		c.Encoder, c.Decoder = presetWidths(c.Variant)
	}
	if c.InputDim <= 0 {
		return fmt.Errorf("input_dim must be > 0 (got %d)", c.InputDim)
	}
	if c.NumClasses < 0 {
		return fmt.Errorf("num_classes must be >= 0 (got %d)", c.NumClasses)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0 (got %d)", c.BatchSize)
	}
	if c.EpochSize <= 0 {
		return fmt.Errorf("epoch_size must be > 0 (got %d)", c.EpochSize)
	}
	if c.Sweeps <= 0 {
		return fmt.Errorf("sweeps must be > 0 (got %d)", c.Sweeps)
	}
	if c.EpochSize*c.Sweeps < c.BatchSize {
		return fmt.Errorf("epoch_size*sweeps (%d) is smaller than one batch (%d)", c.EpochSize*c.Sweeps, c.BatchSize)
	}
	if len(c.LearningRates) == 0 {
		return errors.New("learning_rates must list at least one rate")
	}
	for _, lr := range c.LearningRates {
		if lr <= 0 {
			return fmt.Errorf("learning rates must be > 0 (got %g)", lr)
		}
	}
	for _, m := range c.Momentums {
		if m < 0 || m >= 1 {
			return fmt.Errorf("momentums must be in [0,1) (got %g)", m)
		}
	}
	if c.TestBatchSize <= 0 {
		return fmt.Errorf("test_batch_size must be > 0 (got %d)", c.TestBatchSize)
	}
	if c.TestSamples < c.TestBatchSize {
		return fmt.Errorf("test_samples (%d) must cover at least one test batch (%d)", c.TestSamples, c.TestBatchSize)
	}
	if c.Prefetch < 0 {
		return fmt.Errorf("prefetch must be >= 0 (got %d)", c.Prefetch)
	}
	switch c.Metric {
	case "":
		c.Metric = "pixel"
	case "pixel", "argmax":
	default:
		return fmt.Errorf("metric must be pixel or argmax (got %q)", c.Metric)
	}
	if c.InspectIndex < 0 {
		return fmt.Errorf("inspect_index must be >= 0 (got %d)", c.InspectIndex)
	}
	if c.LogEvery <= 0 {
		c.LogEvery = 100
	}
	return nil
}

// Steps returns the number of minibatches needed for the configured sweeps.
func (c *Config) Steps() int {
	return c.EpochSize * c.Sweeps / c.BatchSize
}

func presetWidths(variant string) (encoder, decoder []int) {
	if variant == VariantDeep {
		return []int{128, 64, 32}, []int{64, 128}
	}
	return []int{32}, nil
}
