package metrics

import "time"

// Window accumulates timing and error stats across multiple steps.
type Window struct {
	samples  int
	data     time.Duration
	compute  time.Duration
	steps    int
	lastLoss float64
	errors   Accumulator
}

// Record adds a new measurement to the window.
func (w *Window) Record(batchSize int, dataTime, computeTime time.Duration, loss, errRate float64) {
	w.samples += batchSize
	w.data += dataTime
	w.compute += computeTime
	w.steps++
	w.lastLoss = loss
	w.errors.Add(errRate, batchSize)
}

// Snapshot returns aggregated metrics and resets the window.
func (w *Window) Snapshot() Snapshot {
	snap := Snapshot{}
	total := w.data + w.compute
	if total > 0 {
		snap.ImagesPerSec = float64(w.samples) / total.Seconds()
	}
	if w.steps > 0 {
		snap.AvgDataMS = (w.data.Seconds() * 1000) / float64(w.steps)
		snap.AvgComputeMS = (w.compute.Seconds() * 1000) / float64(w.steps)
	}
	snap.LastLoss = w.lastLoss
	snap.ErrorPercent = w.errors.Percent()

	w.samples = 0
	w.data = 0
	w.compute = 0
	w.steps = 0
	w.errors.Reset()
	return snap
}

// Snapshot represents loggable metrics.
type Snapshot struct {
	ImagesPerSec float64
	AvgDataMS    float64
	AvgComputeMS float64
	LastLoss     float64
	ErrorPercent float64
}

// Accumulator keeps the running sums needed for a sample-weighted average
// error over a pass.
type Accumulator struct {
	weighted float64
	count    int
}

// Add records the error rate of one batch of n samples.
func (a *Accumulator) Add(errRate float64, n int) {
	a.weighted += errRate * float64(n)
	a.count += n
}

// Count returns the number of samples seen since the last Reset.
func (a *Accumulator) Count() int {
	return a.count
}

// Mean returns the weighted average error rate, or 0 before any Add.
func (a *Accumulator) Mean() float64 {
	if a.count == 0 {
		return 0
	}
	return a.weighted / float64(a.count)
}

// Percent returns Mean scaled to [0,100].
func (a *Accumulator) Percent() float64 {
	return 100 * a.Mean()
}

// Reset clears the sums for a new pass.
func (a *Accumulator) Reset() {
	*a = Accumulator{}
}
