// Command mnist-ctf writes the MNIST training and test sets in the CTF text
// format read by mnist-autoenc.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/unixpickle/mnist"

	"mnist-autoenc/internal/dataset"
)

func main() {
	outDir := flag.String("out", "data/MNIST", "Output directory")
	trainFile := flag.String("train-file", "Train-28x28_cntk_text.txt", "Training set file name")
	testFile := flag.String("test-file", "Test-28x28_cntk_text.txt", "Test set file name")
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("create output dir: %v", err)
	}

	sets := []struct {
		name string
		data mnist.DataSet
	}{
		{*trainFile, mnist.LoadTrainingDataSet()},
		{*testFile, mnist.LoadTestingDataSet()},
	}
	for _, set := range sets {
		path := filepath.Join(*outDir, set.name)
		if err := writeSet(path, set.data.Samples); err != nil {
			log.Fatalf("write %s: %v", path, err)
		}
		log.Printf("wrote path=%s samples=%d", path, len(set.data.Samples))
	}
}

func writeSet(path string, samples []mnist.Sample) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	w := bufio.NewWriter(f)
	if err := dataset.WriteCTF(w, convert(samples, dataset.MNIST.Labels)); err != nil {
		return err
	}
	return w.Flush()
}

// convert maps intensities in [0,1] to whole pixel values in [0,255] and
// labels to one-hot vectors of width classes.
func convert(samples []mnist.Sample, classes int) []dataset.Sample {
	out := make([]dataset.Sample, len(samples))
	for i, s := range samples {
		features := make([]float64, len(s.Intensities))
		for j, v := range s.Intensities {
			features[j] = math.Round(math.Min(math.Max(v, 0), 1) * 255)
		}
		labels := make([]float64, classes)
		if s.Label >= 0 && s.Label < classes {
			labels[s.Label] = 1
		} else {
			panic(fmt.Sprintf("label %d outside [0,%d)", s.Label, classes))
		}
		out[i] = dataset.Sample{Features: features, Labels: labels}
	}
	return out
}
