package api

import (
	"context"
	"time"

	"github.com/d1childress/neoTUI/logging"
	"github.com/d1childress/neoTUI/ports"
	"github.com/d1childress/neoTUI/scanner"
)

// StartWorkers launches background goroutines that process queued scan
// tasks until ctx is cancelled.
func StartWorkers(ctx context.Context, store TaskStore, defaults TaskDefaults, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go workerLoop(ctx, store, defaults)
	}
}

// TaskDefaults fills in scan options a request left unset.
type TaskDefaults struct {
	Timeout time.Duration
	Workers int
}

func workerLoop(ctx context.Context, store TaskStore, defaults TaskDefaults) {
	logger := logging.Logger()
	for {
		if ctx.Err() != nil {
			return
		}

		taskID, err := store.PopFromQueue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("worker failed to pop task", "error", err)
			time.Sleep(time.Second)
			continue
		}

		task, err := store.GetTask(ctx, taskID)
		if err != nil {
			if err == ErrTaskNotFound {
				logger.Warn("worker task disappeared", "task_id", taskID)
				continue
			}
			logger.Error("worker failed to load task", "task_id", taskID, "error", err)
			continue
		}

		task.Status = StatusRunning
		task.Error = ""
		task.Report = nil
		task.CompletedAt = nil
		if err := store.UpdateTask(ctx, task); err != nil {
			logger.Error("worker failed to mark task running", "task_id", taskID, "error", err)
			continue
		}

		rng, err := ports.Parse(task.Ports)
		if err != nil {
			failTask(ctx, task, store, err)
			continue
		}

		opts := scanner.Options{Timeout: defaults.Timeout, Workers: defaults.Workers}
		if task.TimeoutMS > 0 {
			opts.Timeout = time.Duration(task.TimeoutMS) * time.Millisecond
		}
		if task.Workers > 0 {
			opts.Workers = task.Workers
		}

		collector := scanner.NewCollector(len(rng))
		for outcome := range scanner.Scan(ctx, task.Host, rng, opts) {
			collector.Add(outcome)
		}
		report := collector.Report()

		if !report.Complete() {
			// Cancelled mid-scan; the task never reached a terminal state.
			logger.Warn("worker scan incomplete", "task_id", task.ID,
				"collected", len(report.Outcomes), "requested", report.TotalRequested)
			return
		}

		task.Status = StatusCompleted
		task.Report = report
		now := time.Now().UTC()
		task.CompletedAt = &now

		if err := store.UpdateTask(ctx, task); err != nil {
			logger.Error("worker failed to update task", "task_id", task.ID, "error", err)
		}
	}
}

func failTask(ctx context.Context, task *ScanTask, store TaskStore, err error) {
	logger := logging.Logger()
	logger.Error("worker task failed", "task_id", task.ID, "error", err)
	task.Status = StatusFailed
	task.Error = err.Error()
	task.Report = nil
	now := time.Now().UTC()
	task.CompletedAt = &now
	if updateErr := store.UpdateTask(ctx, task); updateErr != nil {
		logger.Error("worker failed to persist failed task", "task_id", task.ID, "error", updateErr)
	}
}
