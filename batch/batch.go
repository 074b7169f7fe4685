// Package batch runs one diagnostic across many targets with bounded
// concurrency.
package batch

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Task produces a human-readable result line for one target.
type Task func(ctx context.Context, target string) (string, error)

// Result pairs a target with its task output or failure.
type Result struct {
	Target string `json:"target"`
	Output string `json:"output,omitempty"`
	Err    string `json:"error,omitempty"`
}

// Run executes task for every target, at most limit at a time, and
// returns results in target order. Per-target failures are captured in
// the Result, never aborting the batch; Run itself fails only when the
// context is cancelled before all targets finish.
func Run(ctx context.Context, targets []string, limit int, task Task) ([]Result, error) {
	if len(targets) == 0 {
		return nil, nil
	}
	if limit < 1 {
		limit = 1
	}
	if limit > len(targets) {
		limit = len(targets)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	results := make([]Result, len(targets))
	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := task(ctx, target)
			if err != nil {
				results[i] = Result{Target: target, Err: err.Error()}
				return nil
			}
			results[i] = Result{Target: target, Output: out}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch aborted: %w", err)
	}
	return results, nil
}
