package trainer

// Schedule holds one value per epoch; the last value persists for all later
// epochs. It satisfies anysgd.Rater.
type Schedule []float64

// Rate returns the value for the (possibly fractional) epoch.
func (s Schedule) Rate(epoch float64) float64 {
	if len(s) == 0 {
		return 0
	}
	idx := int(epoch)
	if idx < 0 {
		idx = 0
	}
	if idx >= len(s) {
		idx = len(s) - 1
	}
	return s[idx]
}

// StepsFor returns how many minibatches cover sweeps passes over epochSize
// samples. Any remainder smaller than one batch is dropped.
func StepsFor(epochSize, sweeps, batchSize int) int {
	if batchSize <= 0 {
		return 0
	}
	return epochSize * sweeps / batchSize
}

// BatchesFor returns how many full test batches fit in total samples.
func BatchesFor(total, batchSize int) int {
	if batchSize <= 0 {
		return 0
	}
	return total / batchSize
}
