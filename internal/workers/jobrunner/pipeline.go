package jobrunner

import (
    "context"
    "encoding/json"
    "fmt"
    "log/slog"
    "time"

    "langid/internal/domain"
    "langid/internal/ports"
)

// Pipeline drives one claimed job through a single attempt. Detection and
// serialization failures are consumed into a retry/fail transition; only
// store-level errors escape, so the caller knows to back off and re-loop.
type Pipeline struct {
    Repo       ports.JobRepository
    Detector   ports.Detector
    Metrics    ports.MetricsSink
    MaxRetries int
    Log        *slog.Logger
}

func (p *Pipeline) ProcessOne(ctx context.Context, job *domain.Job) error {
    log := p.Log.With("job_id", job.ID)
    p.Metrics.AddRunningJobs(1)
    defer p.Metrics.AddRunningJobs(-1)

    // Early feedback for pollers; also resets progress when a retried job
    // re-enters running.
    if err := p.Repo.UpdateProgress(ctx, job.ID, 10); err != nil {
        return fmt.Errorf("set initial progress: %w", err)
    }

    res, err := p.Detector.Detect(ctx, job.InputPath)
    if err == nil {
        // Two-phase progress update: a crash between these persists leaves an
        // observable intermediate state instead of a jump.
        if err := p.Repo.UpdateProgress(ctx, job.ID, 90); err != nil {
            return fmt.Errorf("set progress: %w", err)
        }
        payload, merr := json.Marshal(res)
        if merr == nil {
            if err := p.Repo.Complete(ctx, job.ID, payload); err != nil {
                return fmt.Errorf("commit result: %w", err)
            }
            p.Metrics.JobProcessed(domain.StatusSucceeded)
            p.Metrics.ObserveProcessingSeconds(time.Since(job.CreatedAt).Seconds())
            p.Metrics.ObserveAudioSeconds(res.AudioDurationS)
            p.Metrics.ObserveInferenceMillis(float64(res.ProcessingMS))
            p.Metrics.SetLanguageProbability(res.LanguageRaw, res.Probability)
            log.Info("job succeeded", "language", res.LanguageMapped, "probability", res.Probability)
            return nil
        }
        err = fmt.Errorf("serialize result: %w", merr)
    }

    if domain.IsDecodeFailure(err) {
        p.Metrics.DecodeFailure()
    }
    requeued, attempts, uerr := p.Repo.FailOrRequeue(ctx, job.ID, err.Error(), p.MaxRetries)
    if uerr != nil {
        return fmt.Errorf("commit failure: %w", uerr)
    }
    if requeued {
        p.Metrics.JobProcessed(domain.StatusQueued)
        log.Warn("attempt failed, requeued", "attempts", attempts, "err", err)
    } else {
        p.Metrics.JobProcessed(domain.StatusFailed)
        p.Metrics.ObserveProcessingSeconds(time.Since(job.CreatedAt).Seconds())
        log.Error("job failed, retries exhausted", "attempts", attempts, "err", err)
    }
    return nil
}
