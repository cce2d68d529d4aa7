package dataset

import (
	"context"
	"errors"
	"io"
)

// BatchSource is anything that can hand out minibatches.
type BatchSource interface {
	Next(n int) (Batch, error)
}

// Prefetch draws batches of batchSize from src on a separate goroutine, keeping
// up to depth batches buffered. Batches arrive in the order src produced
// them. The batch channel closes when src reports io.EOF, when src fails (the
// error is sent on the error channel first), or when ctx is cancelled.
//
// Only src is touched by the background goroutine; callers must not use src
// directly until the batch channel is closed.
func Prefetch(ctx context.Context, src BatchSource, batchSize, depth int) (<-chan Batch, <-chan error) {
	if depth <= 0 {
		depth = 1
	}
	out := make(chan Batch, depth)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			batch, err := src.Next(batchSize)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				errCh <- err
				return
			}

			select {
			case <-ctx.Done():
				return
			case out <- batch:
			}
		}
	}()

	return out, errCh
}

// Feed adapts either a synchronous source or a prefetched channel pair to a
// single pull interface.
type Feed struct {
	src     BatchSource
	batches <-chan Batch
	errs    <-chan error
	size    int
}

// NewFeed returns a Feed over src. A positive depth starts a prefetching
// goroutine bound to ctx; zero keeps every draw on the caller's goroutine.
func NewFeed(ctx context.Context, src BatchSource, batchSize, depth int) *Feed {
	f := &Feed{src: src, size: batchSize}
	if depth > 0 {
		f.batches, f.errs = Prefetch(ctx, src, batchSize, depth)
	}
	return f
}

// Next returns the next batch, io.EOF when the source is exhausted, or the
// context error if ctx ends first.
func (f *Feed) Next(ctx context.Context) (Batch, error) {
	if f.batches == nil {
		if err := ctx.Err(); err != nil {
			return Batch{}, err
		}
		return f.src.Next(f.size)
	}
	select {
	case <-ctx.Done():
		return Batch{}, ctx.Err()
	case batch, ok := <-f.batches:
		if ok {
			return batch, nil
		}
		if err, ok := <-f.errs; ok && err != nil {
			return Batch{}, err
		}
		if err := ctx.Err(); err != nil {
			return Batch{}, err
		}
		return Batch{}, io.EOF
	}
}
