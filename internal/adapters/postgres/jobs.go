package postgres

import (
    "context"
    "errors"
    "time"

    "github.com/jackc/pgx/v5"
    "github.com/jackc/pgx/v5/pgconn"

    "langid/internal/domain"
    "langid/internal/ports"
)

const jobColumns = `id, status, progress, input_path, result, error, attempts, created_at, updated_at`

func (db *DB) Insert(ctx context.Context, j *domain.Job) error {
    now := time.Now().UTC()
    if j.Status == "" {
        j.Status = domain.StatusQueued
    }
    if j.CreatedAt.IsZero() {
        j.CreatedAt = now
    }
    j.UpdatedAt = now
    _, err := db.Pool.Exec(ctx, `
        INSERT INTO jobs (id, status, progress, input_path, result, error, attempts, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `, j.ID, j.Status, j.Progress, j.InputPath, j.Result, j.Error, j.Attempts, j.CreatedAt, j.UpdatedAt)
    var pgErr *pgconn.PgError
    if errors.As(err, &pgErr) && pgErr.Code == "23505" {
        return domain.ErrDuplicateID
    }
    return err
}

func (db *DB) Get(ctx context.Context, id string) (*domain.Job, error) {
    row := db.Pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
    j, err := scanJob(row)
    if errors.Is(err, pgx.ErrNoRows) {
        return nil, domain.ErrNotFound
    }
    return j, err
}

func (db *DB) List(ctx context.Context, opts ports.ListOpts) ([]*domain.Job, error) {
    q := `SELECT ` + jobColumns + ` FROM jobs`
    var args []any
    if opts.Status != "" {
        q += ` WHERE status = $1`
        args = append(args, opts.Status)
    }
    if opts.OldestFirst {
        q += ` ORDER BY created_at ASC`
    } else {
        q += ` ORDER BY created_at DESC`
    }
    rows, err := db.Pool.Query(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var out []*domain.Job
    for rows.Next() {
        j, err := scanJob(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, j)
    }
    return out, rows.Err()
}

func (db *DB) Delete(ctx context.Context, ids []string) (int64, error) {
    if len(ids) == 0 {
        return 0, nil
    }
    tag, err := db.Pool.Exec(ctx, `DELETE FROM jobs WHERE id = ANY($1)`, ids)
    if err != nil {
        return 0, err
    }
    return tag.RowsAffected(), nil
}

// ClaimNext selects the oldest queued job using SKIP LOCKED and marks it
// running in the same transaction. Contended rows are invisible to the
// select, so a lost race cannot happen; an empty result means empty queue.
// The attempt counter is deliberately untouched here: it commits with the
// attempt's outcome so a crash mid-attempt leaves the job recoverable.
func (db *DB) ClaimNext(ctx context.Context) (job *domain.Job, found bool, err error) {
    tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
    if err != nil {
        return nil, false, err
    }
    defer func() {
        if err != nil {
            _ = tx.Rollback(ctx)
        } else {
            _ = tx.Commit(ctx)
        }
    }()

    row := tx.QueryRow(ctx, `
        SELECT `+jobColumns+` FROM jobs
        WHERE status = 'queued'
        ORDER BY created_at
        FOR UPDATE SKIP LOCKED
        LIMIT 1
    `)
    job, err = scanJob(row)
    if errors.Is(err, pgx.ErrNoRows) {
        err = nil
        return nil, false, nil
    }
    if err != nil {
        return nil, false, err
    }

    now := time.Now().UTC()
    if _, err = tx.Exec(ctx, `
        UPDATE jobs SET status='running', updated_at=$2 WHERE id=$1
    `, job.ID, now); err != nil {
        return nil, false, err
    }
    job.Status = domain.StatusRunning
    job.UpdatedAt = now
    return job, true, nil
}

func (db *DB) UpdateProgress(ctx context.Context, id string, progress int) error {
    tag, err := db.Pool.Exec(ctx, `
        UPDATE jobs SET progress=$2, updated_at=$3 WHERE id=$1
    `, id, progress, time.Now().UTC())
    if err != nil {
        return err
    }
    if tag.RowsAffected() == 0 {
        return domain.ErrNotFound
    }
    return nil
}

func (db *DB) Complete(ctx context.Context, id string, result []byte) error {
    tag, err := db.Pool.Exec(ctx, `
        UPDATE jobs SET status='succeeded', progress=100, result=$2, error='', attempts=attempts+1, updated_at=$3
        WHERE id=$1 AND status='running'
    `, id, result, time.Now().UTC())
    if err != nil {
        return err
    }
    if tag.RowsAffected() == 0 {
        return db.transitionFailure(ctx, id, domain.StatusSucceeded)
    }
    return nil
}

func (db *DB) FailOrRequeue(ctx context.Context, id string, msg string, maxRetries int) (requeued bool, attempts int, err error) {
    tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
    if err != nil {
        return false, 0, err
    }
    defer func() {
        if err != nil {
            _ = tx.Rollback(ctx)
        } else {
            _ = tx.Commit(ctx)
        }
    }()

    var status domain.JobStatus
    err = tx.QueryRow(ctx, `SELECT attempts, status FROM jobs WHERE id=$1 FOR UPDATE`, id).Scan(&attempts, &status)
    if errors.Is(err, pgx.ErrNoRows) {
        err = nil
        return false, 0, domain.ErrNotFound
    }
    if err != nil {
        return false, 0, err
    }
    if status != domain.StatusRunning {
        return false, 0, domain.TransitionError(status, domain.StatusQueued)
    }

    attempts++
    next := domain.StatusQueued
    if attempts > maxRetries {
        next = domain.StatusFailed
    }
    if _, err = tx.Exec(ctx, `
        UPDATE jobs SET status=$2, error=$3, attempts=$4, updated_at=$5 WHERE id=$1
    `, id, next, msg, attempts, time.Now().UTC()); err != nil {
        return false, 0, err
    }
    return next == domain.StatusQueued, attempts, nil
}

func (db *DB) CountByStatus(ctx context.Context) (map[domain.JobStatus]int, error) {
    rows, err := db.Pool.Query(ctx, `SELECT status, COUNT(*) FROM jobs GROUP BY status`)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    out := map[domain.JobStatus]int{
        domain.StatusQueued:    0,
        domain.StatusRunning:   0,
        domain.StatusSucceeded: 0,
        domain.StatusFailed:    0,
    }
    for rows.Next() {
        var st string
        var n int
        if err := rows.Scan(&st, &n); err != nil {
            return nil, err
        }
        out[domain.JobStatus(st)] = n
    }
    return out, rows.Err()
}

func (db *DB) RequeueStale(ctx context.Context, olderThan time.Duration) (int64, error) {
    tag, err := db.Pool.Exec(ctx, `
        UPDATE jobs SET status='queued', updated_at=now()
        WHERE status='running' AND updated_at <= $1
    `, time.Now().UTC().Add(-olderThan))
    if err != nil {
        return 0, err
    }
    return tag.RowsAffected(), nil
}

func (db *DB) transitionFailure(ctx context.Context, id string, to domain.JobStatus) error {
    j, err := db.Get(ctx, id)
    if err != nil {
        return err
    }
    return domain.TransitionError(j.Status, to)
}

func scanJob(row pgx.Row) (*domain.Job, error) {
    var j domain.Job
    if err := row.Scan(&j.ID, &j.Status, &j.Progress, &j.InputPath, &j.Result, &j.Error, &j.Attempts, &j.CreatedAt, &j.UpdatedAt); err != nil {
        return nil, err
    }
    return &j, nil
}
