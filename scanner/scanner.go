package scanner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/d1childress/neoTUI/ports"
)

// DefaultWorkers is the worker pool size used when Options.Workers is unset.
const DefaultWorkers = 100

// DefaultTimeout is the per-probe connect timeout used when Options.Timeout
// is unset.
const DefaultTimeout = 300 * time.Millisecond

// ProgressFunc is invoked once per completed probe with the number of
// outcomes collected so far and the total number of requested ports.
// Calls are made from a single goroutine, in completion order, with a
// strictly increasing completed count.
type ProgressFunc func(completed, total int)

// Options configures a scan invocation.
type Options struct {
	// Workers bounds pool size. The pool never exceeds the number of
	// ports to scan and is never smaller than 1 for a non-empty range.
	Workers int
	// Timeout bounds each individual connect attempt.
	Timeout time.Duration
	// Progress, when non-nil, receives per-completion updates.
	Progress ProgressFunc
	// Dialer overrides the TCP connect, for tests.
	Dialer Dialer
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Dialer == nil {
		o.Dialer = timeoutDialer{timeout: o.Timeout}
	}
	return o
}

// Scan probes every port in rng against host and streams outcomes in
// completion order, not submission order: fast results are delivered
// immediately instead of queueing behind slow probes that run out the
// full timeout. The returned channel is closed once every submitted port
// has produced its outcome.
//
// Every submitted port yields exactly one Outcome. A panic inside a probe
// is caught at the worker boundary and converted to an Error outcome; it
// never aborts the pool. Cancelling ctx stops submission and delivery:
// in-flight probes drain naturally and outcomes for ports that never
// completed are simply omitted, so callers must treat a report with fewer
// outcomes than requested ports as incomplete.
func Scan(ctx context.Context, host string, rng ports.Range, opts Options) <-chan Outcome {
	opts = opts.withDefaults()
	total := len(rng)

	out := make(chan Outcome, total)
	if total == 0 {
		close(out)
		return out
	}

	workers := opts.Workers
	if workers > total {
		workers = total
	}

	jobs := make(chan int, total)
	// Buffered to capacity so workers never block on delivery, even when
	// the consumer walks away after cancellation.
	results := make(chan Outcome, total)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for port := range jobs {
				results <- safeProbe(opts.Dialer, host, port)
			}
		}()
	}

	// Submit each port exactly once, then close the job queue. Submission
	// stops early when the caller cancels.
	go func() {
		defer close(jobs)
		for _, port := range rng {
			select {
			case jobs <- port:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// Single collector: forwards completion-order outcomes and drives the
	// progress callback, which keeps the completed count monotonic.
	go func() {
		defer close(out)
		completed := 0
		for outcome := range results {
			select {
			case <-ctx.Done():
				return
			default:
			}
			completed++
			if opts.Progress != nil {
				opts.Progress(completed, total)
			}
			out <- outcome
		}
	}()

	return out
}

// safeProbe runs one probe and converts a panic into an Error outcome so
// a failing probe never takes down the pool or loses its port.
func safeProbe(dialer Dialer, host string, port int) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = Outcome{
				Port:  port,
				State: StateError,
				Err:   fmt.Sprintf("probe panic: %v", r),
			}
		}
	}()
	return probe(dialer, host, port)
}
