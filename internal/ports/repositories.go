package ports

import (
    "context"
    "time"

    "langid/internal/domain"
)

// ListOpts filters and orders job listings. Zero Status means all statuses.
// Listings default to newest first; the claim path always scans oldest first.
type ListOpts struct {
    Status      domain.JobStatus
    OldestFirst bool
}

// JobRepository is the durable job store and the claim/transition surface.
//
// ClaimNext atomically selects the oldest queued job and marks it running;
// no two concurrent callers may obtain the same job. It does not touch the
// attempt counter: attempts are committed with the attempt's outcome so a
// crash between claim and completion leaves the counter unchanged.
//
// Complete and FailOrRequeue reject jobs not currently running with a
// domain.ErrInvalidTransition wrapped error.
type JobRepository interface {
    Insert(ctx context.Context, job *domain.Job) error
    Get(ctx context.Context, id string) (*domain.Job, error)
    List(ctx context.Context, opts ListOpts) ([]*domain.Job, error)
    Delete(ctx context.Context, ids []string) (int64, error)

    ClaimNext(ctx context.Context) (job *domain.Job, found bool, err error)
    UpdateProgress(ctx context.Context, id string, progress int) error
    Complete(ctx context.Context, id string, result []byte) error
    FailOrRequeue(ctx context.Context, id string, msg string, maxRetries int) (requeued bool, attempts int, err error)

    CountByStatus(ctx context.Context) (map[domain.JobStatus]int, error)
    // RequeueStale returns running jobs untouched for longer than olderThan to
    // the queue. Administrative only; nothing calls it automatically since a
    // slow-but-alive job would be double processed.
    RequeueStale(ctx context.Context, olderThan time.Duration) (int64, error)
}
