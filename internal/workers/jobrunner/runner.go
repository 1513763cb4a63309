package jobrunner

import (
    "context"
    "log/slog"
    "sync"
    "time"

    "langid/internal/ports"
)

// Run starts worker goroutines that each own a claim→process loop and blocks
// until ctx is cancelled and all workers have exited. A worker survives any
// single job's failure; claim/store errors end the iteration and back off for
// one poll interval.
func Run(ctx context.Context, repo ports.JobRepository, pipe *Pipeline, workers int, pollInterval time.Duration, sink ports.MetricsSink, log *slog.Logger) {
    if workers < 1 {
        return
    }
    sink.SetActiveWorkers(workers)
    defer sink.SetActiveWorkers(0)

    var wg sync.WaitGroup
    for i := 0; i < workers; i++ {
        wg.Add(1)
        go func(idx int) {
            defer wg.Done()
            wlog := log.With("worker", idx)
            for ctx.Err() == nil {
                job, found, err := repo.ClaimNext(ctx)
                if err != nil {
                    if ctx.Err() != nil {
                        return
                    }
                    wlog.Error("claim failed", "err", err)
                    pause(ctx, pollInterval)
                    continue
                }
                if !found {
                    pause(ctx, pollInterval)
                    continue
                }
                if err := pipe.ProcessOne(ctx, job); err != nil {
                    wlog.Error("processing aborted", "job_id", job.ID, "err", err)
                    pause(ctx, pollInterval)
                }
            }
        }(i)
    }
    wg.Wait()
}

func pause(ctx context.Context, d time.Duration) {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
    case <-t.C:
    }
}
