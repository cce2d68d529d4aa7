package metrics

import (
	"math"
	"testing"
	"time"
)

func TestWindowSnapshot(t *testing.T) {
	var w Window
	w.Record(64, 20*time.Millisecond, 10*time.Millisecond, 1.2, 0.5)
	w.Record(64, 10*time.Millisecond, 20*time.Millisecond, 0.8, 0.25)
	snap := w.Snapshot()
	if math.Abs(snap.ImagesPerSec-2133.3333) > 1 {
		t.Fatalf("unexpected throughput %.2f", snap.ImagesPerSec)
	}
	if w.samples != 0 || w.steps != 0 || w.errors.Count() != 0 {
		t.Fatalf("window was not reset")
	}
	if snap.LastLoss != 0.8 {
		t.Fatalf("expected last loss 0.8, got %.2f", snap.LastLoss)
	}
	if math.Abs(snap.ErrorPercent-37.5) > 1e-9 {
		t.Fatalf("expected error 37.5%%, got %.4f", snap.ErrorPercent)
	}
}

func TestAccumulatorWeightsByBatch(t *testing.T) {
	var a Accumulator
	if a.Percent() != 0 {
		t.Fatalf("empty accumulator should report 0")
	}
	a.Add(0.1, 30)
	a.Add(0.4, 10)
	if math.Abs(a.Percent()-17.5) > 1e-9 {
		t.Fatalf("expected 17.5%%, got %.4f", a.Percent())
	}
	a.Reset()
	if a.Count() != 0 || a.Mean() != 0 {
		t.Fatalf("accumulator was not reset")
	}
}
