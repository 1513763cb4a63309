package sqlite

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "strings"
    "time"

    "langid/internal/domain"
    "langid/internal/ports"
)

const jobColumns = `id, status, progress, input_path, result, error, attempts, created_at, updated_at`

func (s *Store) Insert(ctx context.Context, j *domain.Job) error {
    now := time.Now().UTC()
    if j.Status == "" {
        j.Status = domain.StatusQueued
    }
    if j.CreatedAt.IsZero() {
        j.CreatedAt = now
    }
    j.UpdatedAt = now
    _, err := s.db.ExecContext(ctx, `
INSERT INTO jobs (id, status, progress, input_path, result, error, attempts, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
        j.ID, j.Status, j.Progress, j.InputPath, nullableBytes(j.Result), j.Error, j.Attempts, j.CreatedAt, j.UpdatedAt)
    if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
        return fmt.Errorf("%w: %s", domain.ErrDuplicateID, j.ID)
    }
    return err
}

func (s *Store) Get(ctx context.Context, id string) (*domain.Job, error) {
    row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
    j, err := scanJob(row)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, domain.ErrNotFound
    }
    return j, err
}

func (s *Store) List(ctx context.Context, opts ports.ListOpts) ([]*domain.Job, error) {
    q := `SELECT ` + jobColumns + ` FROM jobs`
    var args []any
    if opts.Status != "" {
        q += ` WHERE status = ?`
        args = append(args, opts.Status)
    }
    if opts.OldestFirst {
        q += ` ORDER BY created_at ASC`
    } else {
        q += ` ORDER BY created_at DESC`
    }
    rows, err := s.db.QueryContext(ctx, q, args...)
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

// Delete removes rows by id. Administrative and best-effort: it takes no part
// in claim locking, so deleting a job that a worker holds is last-writer-wins.
func (s *Store) Delete(ctx context.Context, ids []string) (int64, error) {
    if len(ids) == 0 {
        return 0, nil
    }
    placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
    args := make([]any, len(ids))
    for i, id := range ids {
        args[i] = id
    }
    res, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id IN (`+placeholders+`)`, args...)
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

// ClaimNext picks the oldest queued job and transitions it to running with a
// conditional update. Losing the update race to a concurrent claimer just
// restarts the selection; an empty queue returns found=false.
func (s *Store) ClaimNext(ctx context.Context) (*domain.Job, bool, error) {
    for {
        row := s.db.QueryRowContext(ctx, `
SELECT `+jobColumns+` FROM jobs
WHERE status = ?
ORDER BY created_at ASC
LIMIT 1`, domain.StatusQueued)
        j, err := scanJob(row)
        if errors.Is(err, sql.ErrNoRows) {
            return nil, false, nil
        }
        if err != nil {
            return nil, false, err
        }

        now := time.Now().UTC()
        res, err := s.db.ExecContext(ctx, `
UPDATE jobs SET status = ?, updated_at = ?
WHERE id = ? AND status = ?`, domain.StatusRunning, now, j.ID, domain.StatusQueued)
        if err != nil {
            return nil, false, err
        }
        if n, _ := res.RowsAffected(); n != 1 {
            // lost the race; another worker claimed it first
            continue
        }
        j.Status = domain.StatusRunning
        j.UpdatedAt = now
        return j, true, nil
    }
}

func (s *Store) UpdateProgress(ctx context.Context, id string, progress int) error {
    res, err := s.db.ExecContext(ctx, `
UPDATE jobs SET progress = ?, updated_at = ? WHERE id = ?`, progress, time.Now().UTC(), id)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return domain.ErrNotFound
    }
    return nil
}

// Complete commits a successful attempt: result payload, terminal status and
// the attempt counter land in one statement guarded on the running status.
func (s *Store) Complete(ctx context.Context, id string, result []byte) error {
    res, err := s.db.ExecContext(ctx, `
UPDATE jobs SET status = ?, progress = 100, result = ?, error = '', attempts = attempts + 1, updated_at = ?
WHERE id = ? AND status = ?`, domain.StatusSucceeded, string(result), time.Now().UTC(), id, domain.StatusRunning)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return s.transitionFailure(ctx, id, domain.StatusSucceeded)
    }
    return nil
}

// FailOrRequeue commits a failed attempt: bump attempts, record the message,
// and either requeue the job or mark it terminally failed once attempts
// exceed maxRetries.
func (s *Store) FailOrRequeue(ctx context.Context, id string, msg string, maxRetries int) (bool, int, error) {
    var attempts int
    var status domain.JobStatus
    err := s.db.QueryRowContext(ctx, `SELECT attempts, status FROM jobs WHERE id = ?`, id).Scan(&attempts, &status)
    if errors.Is(err, sql.ErrNoRows) {
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
    res, err := s.db.ExecContext(ctx, `
UPDATE jobs SET status = ?, error = ?, attempts = ?, updated_at = ?
WHERE id = ? AND status = ?`, next, msg, attempts, time.Now().UTC(), id, domain.StatusRunning)
    if err != nil {
        return false, 0, err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return false, 0, s.transitionFailure(ctx, id, next)
    }
    return next == domain.StatusQueued, attempts, nil
}

func (s *Store) CountByStatus(ctx context.Context) (map[domain.JobStatus]int, error) {
    rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM jobs GROUP BY status`)
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

// RequeueStale returns running jobs untouched for longer than olderThan to the
// queue. Operator action only; see the port contract.
func (s *Store) RequeueStale(ctx context.Context, olderThan time.Duration) (int64, error) {
    cutoff := time.Now().UTC().Add(-olderThan)
    res, err := s.db.ExecContext(ctx, `
UPDATE jobs SET status = ?, updated_at = ?
WHERE status = ? AND updated_at <= ?`, domain.StatusQueued, time.Now().UTC(), domain.StatusRunning, cutoff)
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

// transitionFailure explains a zero-row conditional update: either the job is
// gone or it is no longer in a state the transition is legal from.
func (s *Store) transitionFailure(ctx context.Context, id string, to domain.JobStatus) error {
    j, err := s.Get(ctx, id)
    if err != nil {
        return err
    }
    return domain.TransitionError(j.Status, to)
}

type rowScanner interface {
    Scan(dest ...any) error
}

func scanJob(row rowScanner) (*domain.Job, error) {
    var j domain.Job
    var result sql.NullString
    if err := row.Scan(&j.ID, &j.Status, &j.Progress, &j.InputPath, &result, &j.Error, &j.Attempts, &j.CreatedAt, &j.UpdatedAt); err != nil {
        return nil, err
    }
    if result.Valid {
        j.Result = []byte(result.String)
    }
    return &j, nil
}

func nullableBytes(b []byte) any {
    if b == nil {
        return nil
    }
    return string(b)
}
