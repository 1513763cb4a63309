package jobs

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "os"
    "path/filepath"
    "strings"

    "github.com/google/uuid"

    "langid/internal/domain"
    "langid/internal/ports"
)

var (
    ErrUnsupportedFormat = errors.New("unsupported audio format")
    ErrTooLarge          = errors.New("upload exceeds size limit")
    // ErrNotReady is returned when a result is requested before the job
    // reached the succeeded state.
    ErrNotReady = errors.New("job has no result yet")
)

var allowedExts = map[string]bool{".wav": true, ".wave": true}

// Service owns the submission and query paths in front of the job store.
// The worker side never goes through it; workers mutate jobs via the
// repository's claim and transition operations directly.
type Service struct {
    repo           ports.JobRepository
    dataDir        string
    maxUploadBytes int64
}

func New(repo ports.JobRepository, dataDir string, maxUploadBytes int64) *Service {
    return &Service{repo: repo, dataDir: dataDir, maxUploadBytes: maxUploadBytes}
}

// Submit persists the uploaded clip under the data dir and creates the job in
// queued state. The stored file name keeps the client's base name so the
// audio blob stays recognizable next to its job id.
func (s *Service) Submit(ctx context.Context, filename string, r io.Reader) (*domain.Job, error) {
    ext := strings.ToLower(filepath.Ext(filename))
    if !allowedExts[ext] {
        return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
    }

    if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
        return nil, err
    }

    id := uuid.NewString()
    dest := filepath.Join(s.dataDir, id+"_"+sanitizeName(filename))
    f, err := os.Create(dest)
    if err != nil {
        return nil, err
    }
    n, err := io.Copy(f, io.LimitReader(r, s.maxUploadBytes+1))
    closeErr := f.Close()
    if err == nil {
        err = closeErr
    }
    if err == nil && n > s.maxUploadBytes {
        err = ErrTooLarge
    }
    if err != nil {
        _ = os.Remove(dest)
        return nil, err
    }

    job := &domain.Job{ID: id, Status: domain.StatusQueued, InputPath: dest}
    if err := s.repo.Insert(ctx, job); err != nil {
        _ = os.Remove(dest)
        return nil, err
    }
    return job, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Job, error) {
    return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, opts ports.ListOpts) ([]*domain.Job, error) {
    return s.repo.List(ctx, opts)
}

// Result returns the decoded detection payload for a succeeded job.
func (s *Service) Result(ctx context.Context, id string) (*domain.DetectionResult, *domain.Job, error) {
    job, err := s.repo.Get(ctx, id)
    if err != nil {
        return nil, nil, err
    }
    if job.Status != domain.StatusSucceeded || len(job.Result) == 0 {
        return nil, job, ErrNotReady
    }
    var res domain.DetectionResult
    if err := json.Unmarshal(job.Result, &res); err != nil {
        return nil, job, fmt.Errorf("decode stored result: %w", err)
    }
    return &res, job, nil
}

// Delete removes jobs by id and their stored clips, best effort on the files.
func (s *Service) Delete(ctx context.Context, ids []string) (int64, error) {
    for _, id := range ids {
        if job, err := s.repo.Get(ctx, id); err == nil && job.InputPath != "" {
            _ = os.Remove(job.InputPath)
        }
    }
    return s.repo.Delete(ctx, ids)
}

func (s *Service) Stats(ctx context.Context) (map[domain.JobStatus]int, error) {
    return s.repo.CountByStatus(ctx)
}

func sanitizeName(name string) string {
    base := filepath.Base(name)
    base = strings.ReplaceAll(base, string(os.PathSeparator), "_")
    return strings.ReplaceAll(base, "..", "_")
}
